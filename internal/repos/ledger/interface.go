package ledger

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrZeroAmount is returned when an entry with amount == 0 is appended.
// Every entry must move the balance one way or the other.
var ErrZeroAmount = errors.New("ledger entry amount must be non-zero")

// Entry is an immutable signed point transaction. Entries are never
// updated or deleted; corrections are new entries of the opposite sign.
type Entry struct {
	ID        int64
	AccountID int64
	Amount    int64
	Reason    string
	CreatedAt time.Time
}

// Totals is the live aggregation over an account's entries.
// Current = sum(amount), Earned = sum of credits, Spent = sum of |debits|.
type Totals struct {
	Current int64
	Earned  int64
	Spent   int64
}

type Ledger interface {
	// Append writes one entry. It never commits on its own: the caller
	// owns the transaction so the entry lands atomically with whatever
	// other rows the caller writes (check-in, redemption).
	Append(tx *sql.Tx, accountID, amount int64, reason string) (Entry, error)

	// Totals aggregates committed entries (no locks; read endpoints).
	Totals(ctx context.Context, accountID int64) (Totals, error)

	// TotalsTx aggregates inside tx, seeing the tx's own uncommitted writes.
	TotalsTx(tx *sql.Tx, accountID int64) (Totals, error)

	// Entries returns the newest entries first, up to limit.
	Entries(ctx context.Context, accountID int64, limit int) ([]Entry, error)
}
