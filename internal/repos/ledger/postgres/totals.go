package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/campuslink/points-engine/internal/repos/ledger"
)

// totalsQuery aggregates live over the entries; there is no stored balance
// column anywhere, so a sum can never drift from the ledger.
const totalsQuery = `
	SELECT
		COALESCE(SUM(amount), 0),
		COALESCE(SUM(amount) FILTER (WHERE amount > 0), 0),
		COALESCE(SUM(-amount) FILTER (WHERE amount < 0), 0)
	FROM ledger_entries
	WHERE account_id = $1
`

func (r *ledgerRepo) Totals(ctx context.Context, accountID int64) (ledger.Totals, error) {
	var t ledger.Totals

	err := r.db.QueryRowContext(ctx, totalsQuery, accountID).
		Scan(&t.Current, &t.Earned, &t.Spent)
	if err != nil {
		return ledger.Totals{}, fmt.Errorf("sum entries: %w", err)
	}

	return t, nil
}

func (r *ledgerRepo) TotalsTx(tx *sql.Tx, accountID int64) (ledger.Totals, error) {
	var t ledger.Totals

	err := tx.QueryRow(totalsQuery, accountID).
		Scan(&t.Current, &t.Earned, &t.Spent)
	if err != nil {
		return ledger.Totals{}, fmt.Errorf("sum entries in tx: %w", err)
	}

	return t, nil
}
