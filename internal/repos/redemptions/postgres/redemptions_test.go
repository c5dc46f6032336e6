package redemptions

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/campuslink/points-engine/internal/infra/pgtestutil"
	"github.com/campuslink/points-engine/internal/repos/redemptions"
)

func seedAccountAndCoupon(t *testing.T, db *sql.DB) {
	t.Helper()

	_, err := db.Exec(`INSERT INTO accounts (id, display_name) VALUES (1, 'redeemer')`)
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}

	_, err = db.Exec(`INSERT INTO coupons (id, title, points_required) VALUES (1, 'drink', 20)`)
	if err != nil {
		t.Fatalf("seed coupon: %v", err)
	}
}

func newRedemption(code string) redemptions.Redemption {
	now := time.Now().UTC()

	return redemptions.Redemption{
		ID:          uuid.New(),
		AccountID:   1,
		CouponID:    1,
		Code:        code,
		PointsSpent: 20,
		Status:      redemptions.StatusIssued,
		CreatedAt:   now,
		ExpiresAt:   now.Add(30 * 24 * time.Hour),
	}
}

func TestRedemptions_Insert_DuplicateCode(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	seedAccountAndCoupon(t, db)

	repo := New(db)
	ctx := context.Background()

	insert := func(code string) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			t.Fatalf("begin tx: %v", err)
		}
		defer func() { _ = tx.Rollback() }()

		err = repo.Insert(tx, newRedemption(code))
		if err != nil {
			return err
		}

		return tx.Commit()
	}

	if err := insert("RDM-AAAA-11111111"); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	err := insert("RDM-AAAA-11111111")
	if !errors.Is(err, redemptions.ErrDuplicateCode) {
		t.Fatalf("expected ErrDuplicateCode, got: %v", err)
	}

	if err := insert("RDM-AAAA-22222222"); err != nil {
		t.Fatalf("distinct code insert: %v", err)
	}
}

func TestRedemptions_CodeExists(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	seedAccountAndCoupon(t, db)

	repo := New(db)
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	exists, err := repo.CodeExists(tx, "RDM-UNUSED-1")
	if err != nil {
		t.Fatalf("code exists: %v", err)
	}
	if exists {
		t.Fatal("unused code reported as existing")
	}

	if err := repo.Insert(tx, newRedemption("RDM-USED-1")); err != nil {
		t.Fatalf("insert: %v", err)
	}

	// Visible to the same transaction before commit.
	exists, err = repo.CodeExists(tx, "RDM-USED-1")
	if err != nil {
		t.Fatalf("code exists: %v", err)
	}
	if !exists {
		t.Fatal("inserted code not visible in tx")
	}
}
