package restrictions

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/campuslink/points-engine/internal/repos/restrictions"
)

var _ restrictions.Restrictions = (*restrictionsRepo)(nil)

type restrictionsRepo struct{ db *sql.DB }

func New(db *sql.DB) *restrictionsRepo {
	return &restrictionsRepo{db: db}
}

func (r *restrictionsRepo) IsRestricted(tx *sql.Tx, accountID int64, at time.Time) (bool, error) {
	var restricted bool

	err := tx.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM restrictions
			WHERE account_id = $1
			  AND starts_at <= $2
			  AND (ends_at IS NULL OR ends_at > $2)
		)
	`, accountID, at).Scan(&restricted)
	if err != nil {
		return false, fmt.Errorf("check restriction: %w", err)
	}

	return restricted, nil
}
