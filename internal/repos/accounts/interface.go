package accounts

import (
	"context"
	"database/sql"
	"errors"
)

var ErrAccountNotFound = errors.New("account not found")
var ErrAccountInactive = errors.New("account deactivated")

const RoleAdmin = "admin"

type Account struct {
	ID          int64
	DisplayName string
	Role        string
	Active      bool
}

type Accounts interface {
	// Exists reports whether an active account exists (plain read path).
	Exists(ctx context.Context, accountID int64) error

	// LockAndGet reads the account row FOR UPDATE. The row lock is the
	// per-account serialization point: every earning or spending
	// transaction takes it first, so two transactions on the same
	// account never interleave between balance read and ledger write.
	LockAndGet(tx *sql.Tx, accountID int64) (Account, error)
}
