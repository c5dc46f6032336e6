package redemptions

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrDuplicateCode is returned when an insert hits the unique index on
// code. The coordinator treats it as a lost generate-check race.
var ErrDuplicateCode = errors.New("duplicate redemption code")

const StatusIssued = "issued"

type Redemption struct {
	ID          uuid.UUID
	AccountID   int64
	CouponID    int64
	Code        string
	PointsSpent int64
	Status      string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

type Redemptions interface {
	// Insert writes the redemption row as the last step of the
	// coordinator's transaction.
	Insert(tx *sql.Tx, red Redemption) error

	// CodeExists checks a candidate code against every redemption ever
	// issued, inside the issuing transaction.
	CodeExists(tx *sql.Tx, code string) (bool, error)
}
