package coupons

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/campuslink/points-engine/internal/repos/coupons"
)

var _ coupons.Coupons = (*couponsRepo)(nil)

type couponsRepo struct{ db *sql.DB }

func New(db *sql.DB) *couponsRepo {
	return &couponsRepo{db: db}
}

func (r *couponsRepo) Get(tx *sql.Tx, couponID int64) (coupons.Coupon, error) {
	var c coupons.Coupon

	err := tx.QueryRow(`
		SELECT id, title, points_required, is_active, expires_at
		FROM coupons
		WHERE id = $1
	`, couponID).Scan(&c.ID, &c.Title, &c.PointsRequired, &c.IsActive, &c.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return coupons.Coupon{}, coupons.ErrCouponNotFound
		}

		return coupons.Coupon{}, fmt.Errorf("get coupon: %w", err)
	}

	return c, nil
}
