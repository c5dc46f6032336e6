package ledger

import (
	"database/sql"
	"fmt"

	"github.com/campuslink/points-engine/internal/repos/ledger"
)

func (r *ledgerRepo) Append(tx *sql.Tx, accountID, amount int64, reason string) (ledger.Entry, error) {
	if amount == 0 {
		return ledger.Entry{}, ledger.ErrZeroAmount
	}

	entry := ledger.Entry{
		AccountID: accountID,
		Amount:    amount,
		Reason:    reason,
	}

	err := tx.QueryRow(`
		INSERT INTO ledger_entries (account_id, amount, reason)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, accountID, amount, reason).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("append entry: %w", err)
	}

	return entry, nil
}
