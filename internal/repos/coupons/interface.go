package coupons

import (
	"database/sql"
	"errors"
	"time"
)

var ErrCouponNotFound = errors.New("coupon not found")

// Coupon is a read-only catalog entry. The coordinator re-reads it inside
// the redeeming transaction so it never debits against stale pricing.
type Coupon struct {
	ID             int64
	Title          string
	PointsRequired int64
	IsActive       bool
	ExpiresAt      *time.Time
}

// Available reports whether the coupon can be redeemed at the given time.
func (c Coupon) Available(at time.Time) bool {
	if !c.IsActive {
		return false
	}

	if c.ExpiresAt != nil && !at.Before(*c.ExpiresAt) {
		return false
	}

	return true
}

type Coupons interface {
	Get(tx *sql.Tx, couponID int64) (Coupon, error)
}
