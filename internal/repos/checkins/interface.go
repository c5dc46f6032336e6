package checkins

import (
	"database/sql"
	"errors"
	"time"
)

// ErrAlreadyCheckedIn is returned when the (event, account) pair already
// has a check-in row. The primary key on that pair is the authoritative
// race-breaker: of two concurrent inserts exactly one commits and the
// loser surfaces here via the unique violation.
var ErrAlreadyCheckedIn = errors.New("already checked in")

type CheckIn struct {
	EventID       int64
	AccountID     int64
	CheckedInAt   time.Time
	PointsAwarded int64
}

type CheckIns interface {
	// Insert writes one check-in row; tx-scoped so it commits atomically
	// with the registration update and the reward ledger entry.
	Insert(tx *sql.Tx, c CheckIn) error

	// CountInRange counts the account's check-ins with checked_in_at in
	// [from, to), across all events. Tx-scoped so the count includes a
	// row the same transaction just inserted.
	CountInRange(tx *sql.Tx, accountID int64, from, to time.Time) (int, error)
}
