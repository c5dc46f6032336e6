package events

import (
	"database/sql"
	"errors"
	"time"
)

var ErrEventNotFound = errors.New("event not found")

// Event is collaborator-owned; the core only reads the fields the
// check-in window and host bypass need.
type Event struct {
	ID       int64
	HostID   int64
	Title    string
	StartsAt time.Time
	EndsAt   time.Time
}

type Events interface {
	Get(tx *sql.Tx, eventID int64) (Event, error)

	IsRegistered(tx *sql.Tx, eventID, accountID int64) (bool, error)

	// MarkAttended flips the registration status; a missing registration
	// row (host or admin walk-in) is a no-op, not an error.
	MarkAttended(tx *sql.Tx, eventID, accountID int64) error
}
