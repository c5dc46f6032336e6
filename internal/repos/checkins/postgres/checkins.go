package checkins

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/campuslink/points-engine/internal/repos/checkins"
)

var _ checkins.CheckIns = (*checkinsRepo)(nil)

type checkinsRepo struct{ db *sql.DB }

func New(db *sql.DB) *checkinsRepo {
	return &checkinsRepo{db: db}
}

func (r *checkinsRepo) Insert(tx *sql.Tx, c checkins.CheckIn) error {
	_, err := tx.Exec(`
		INSERT INTO checkins (event_id, account_id, checked_in_at, points_awarded)
		VALUES ($1, $2, $3, $4)
	`, c.EventID, c.AccountID, c.CheckedInAt, c.PointsAwarded)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return checkins.ErrAlreadyCheckedIn
			}
		}

		return fmt.Errorf("insert checkin: %w", err)
	}

	return nil
}

func (r *checkinsRepo) CountInRange(tx *sql.Tx, accountID int64, from, to time.Time) (int, error) {
	var n int

	err := tx.QueryRow(`
		SELECT COUNT(*)
		FROM checkins
		WHERE account_id = $1
		  AND checked_in_at >= $2
		  AND checked_in_at < $3
	`, accountID, from, to).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count checkins: %w", err)
	}

	return n, nil
}
