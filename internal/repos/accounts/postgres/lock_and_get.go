package accounts

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/campuslink/points-engine/internal/repos/accounts"
)

func (r *accountsRepo) LockAndGet(tx *sql.Tx, accountID int64) (accounts.Account, error) {
	var acc accounts.Account

	err := tx.QueryRow(`
		SELECT id, display_name, role, is_active
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`, accountID).Scan(&acc.ID, &acc.DisplayName, &acc.Role, &acc.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return accounts.Account{}, accounts.ErrAccountNotFound
		}

		return accounts.Account{}, fmt.Errorf("lock/get account: %w", err)
	}

	if !acc.Active {
		return accounts.Account{}, accounts.ErrAccountInactive
	}

	return acc, nil
}
