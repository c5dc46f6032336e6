package redemptions

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/campuslink/points-engine/internal/repos/redemptions"
)

var _ redemptions.Redemptions = (*redemptionsRepo)(nil)

type redemptionsRepo struct{ db *sql.DB }

func New(db *sql.DB) *redemptionsRepo {
	return &redemptionsRepo{db: db}
}

func (r *redemptionsRepo) Insert(tx *sql.Tx, red redemptions.Redemption) error {
	_, err := tx.Exec(`
		INSERT INTO redemptions (id, account_id, coupon_id, code, points_spent, status, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, red.ID, red.AccountID, red.CouponID, red.Code, red.PointsSpent, red.Status, red.CreatedAt, red.ExpiresAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return redemptions.ErrDuplicateCode
			}
		}

		return fmt.Errorf("insert redemption: %w", err)
	}

	return nil
}

func (r *redemptionsRepo) CodeExists(tx *sql.Tx, code string) (bool, error) {
	var exists bool

	err := tx.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM redemptions WHERE code = $1)
	`, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check code exists: %w", err)
	}

	return exists, nil
}
