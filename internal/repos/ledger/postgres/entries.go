package ledger

import (
	"context"
	"fmt"

	"github.com/campuslink/points-engine/internal/repos/ledger"
)

func (r *ledgerRepo) Entries(ctx context.Context, accountID int64, limit int) ([]ledger.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, account_id, amount, reason, created_at
		FROM ledger_entries
		WHERE account_id = $1
		ORDER BY id DESC
		LIMIT $2
	`, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []ledger.Entry

	for rows.Next() {
		var e ledger.Entry

		err = rows.Scan(&e.ID, &e.AccountID, &e.Amount, &e.Reason, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}

		entries = append(entries, e)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	return entries, nil
}
