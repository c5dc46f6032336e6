// Package redemption exchanges points for coupons: it verifies balance,
// debits the ledger and issues a uniquely-coded redemption record, all in
// one transaction.
package redemption

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/campuslink/points-engine/internal/infra/pgutils"
	"github.com/campuslink/points-engine/internal/repos/accounts"
	pgaccounts "github.com/campuslink/points-engine/internal/repos/accounts/postgres"
	"github.com/campuslink/points-engine/internal/repos/coupons"
	pgcoupons "github.com/campuslink/points-engine/internal/repos/coupons/postgres"
	"github.com/campuslink/points-engine/internal/repos/ledger"
	pgledger "github.com/campuslink/points-engine/internal/repos/ledger/postgres"
	"github.com/campuslink/points-engine/internal/repos/redemptions"
	pgredemptions "github.com/campuslink/points-engine/internal/repos/redemptions/postgres"
	"github.com/campuslink/points-engine/internal/repos/restrictions"
	pgrestrictions "github.com/campuslink/points-engine/internal/repos/restrictions/postgres"
)

var (
	// ErrCouponUnavailable covers missing, deactivated and expired coupons.
	ErrCouponUnavailable = errors.New("coupon unavailable")

	// ErrAccountRestricted means an active restriction blocks spending.
	ErrAccountRestricted = errors.New("account restricted")

	// ErrInsufficientBalance is the sentinel under InsufficientBalanceError.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrCodeGeneration means no unique code was found within the retry
	// budget. The whole transaction rolls back.
	ErrCodeGeneration = errors.New("code generation failed")
)

const codeAttempts = 5

// InsufficientBalanceError carries the numbers the caller shows the user.
type InsufficientBalanceError struct {
	Current  int64
	Required int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: have %d, need %d", e.Current, e.Required)
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}

// Receipt is returned on success; it carries the post-debit balance so
// the caller need not issue a second read.
type Receipt struct {
	RedemptionID uuid.UUID
	Code         string
	ExpiresAt    time.Time
	PointsSpent  int64
	Balance      int64
}

type RedemptionService struct {
	db           *sql.DB
	accounts     accounts.Accounts
	coupons      coupons.Coupons
	restrictions restrictions.Restrictions
	entries      ledger.Ledger
	redemptions  redemptions.Redemptions

	validity time.Duration
	now      func() time.Time
}

// New wires the coordinator against db. validity is how long an issued
// code stays redeemable at fulfillment.
func New(db *sql.DB, validity time.Duration) *RedemptionService {
	return &RedemptionService{
		db:           db,
		accounts:     pgaccounts.New(db),
		coupons:      pgcoupons.New(db),
		restrictions: pgrestrictions.New(db),
		entries:      pgledger.New(db),
		redemptions:  pgredemptions.New(db),
		validity:     validity,
		now:          time.Now,
	}
}

// Redeem runs the full exchange in a single DB transaction:
//
// 1) Lock the account row (FOR UPDATE) and hold it through commit, so two
//    concurrent redemptions can never both pass the balance check against
//    the same pre-debit sum.
// 2) Re-read the coupon inside the transaction (fresh pricing).
// 3) Refuse restricted accounts.
// 4) Aggregate the balance in-transaction; abort if it cannot cover the cost.
// 5) Generate a verified-unique code (bounded retries).
// 6) Append the debit entry, then insert the redemption row.
func (s *RedemptionService) Redeem(ctx context.Context, accountID, couponID int64) (Receipt, error) {
	now := s.now().UTC()

	var rec Receipt

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := s.accounts.LockAndGet(tx, accountID)
		if err != nil {
			return fmt.Errorf("lock account: %w", err)
		}

		coupon, err := s.coupons.Get(tx, couponID)
		if err != nil {
			if errors.Is(err, coupons.ErrCouponNotFound) {
				return ErrCouponUnavailable
			}

			return fmt.Errorf("get coupon: %w", err)
		}

		if !coupon.Available(now) {
			return ErrCouponUnavailable
		}

		restricted, err := s.restrictions.IsRestricted(tx, accountID, now)
		if err != nil {
			return fmt.Errorf("check restriction: %w", err)
		}

		if restricted {
			return ErrAccountRestricted
		}

		totals, err := s.entries.TotalsTx(tx, accountID)
		if err != nil {
			return fmt.Errorf("aggregate balance: %w", err)
		}

		if totals.Current < coupon.PointsRequired {
			return &InsufficientBalanceError{
				Current:  totals.Current,
				Required: coupon.PointsRequired,
			}
		}

		code, err := s.uniqueCode(tx, now)
		if err != nil {
			return err
		}

		redemptionID := uuid.New()

		_, err = s.entries.Append(tx, accountID, -coupon.PointsRequired,
			fmt.Sprintf("redeem:coupon:%d:%s", couponID, redemptionID))
		if err != nil {
			return fmt.Errorf("append debit: %w", err)
		}

		err = s.redemptions.Insert(tx, redemptions.Redemption{
			ID:          redemptionID,
			AccountID:   accountID,
			CouponID:    couponID,
			Code:        code,
			PointsSpent: coupon.PointsRequired,
			Status:      redemptions.StatusIssued,
			CreatedAt:   now,
			ExpiresAt:   now.Add(s.validity),
		})
		if err != nil {
			// A duplicate here means we lost the check-then-insert race
			// to a concurrent issuer; the transaction is already doomed.
			if errors.Is(err, redemptions.ErrDuplicateCode) {
				return ErrCodeGeneration
			}

			return fmt.Errorf("insert redemption: %w", err)
		}

		rec = Receipt{
			RedemptionID: redemptionID,
			Code:         code,
			ExpiresAt:    now.Add(s.validity),
			PointsSpent:  coupon.PointsRequired,
			Balance:      totals.Current - coupon.PointsRequired,
		}

		return nil
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("redeem: %w", err)
	}

	return rec, nil
}

// uniqueCode generates candidates until one is unused, with a bounded
// retry budget.
func (s *RedemptionService) uniqueCode(tx *sql.Tx, now time.Time) (string, error) {
	for range codeAttempts {
		code, err := NewCode(now)
		if err != nil {
			return "", fmt.Errorf("new code: %w", err)
		}

		exists, err := s.redemptions.CodeExists(tx, code)
		if err != nil {
			return "", fmt.Errorf("verify code: %w", err)
		}

		if !exists {
			return code, nil
		}
	}

	return "", ErrCodeGeneration
}
