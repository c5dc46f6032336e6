// Package balance derives point balances from the ledger. Balance is never
// stored: every read is a live aggregation over the account's entries.
package balance

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/campuslink/points-engine/internal/repos/accounts"
	pgaccounts "github.com/campuslink/points-engine/internal/repos/accounts/postgres"
	"github.com/campuslink/points-engine/internal/repos/ledger"
	pgledger "github.com/campuslink/points-engine/internal/repos/ledger/postgres"
)

type Balance struct {
	AccountID int64
	Current   int64
	Earned    int64
	Spent     int64
}

type BalanceService struct {
	db       *sql.DB
	accounts accounts.Accounts
	entries  ledger.Ledger
}

func New(db *sql.DB) *BalanceService {
	return &BalanceService{
		db:       db,
		accounts: pgaccounts.New(db),
		entries:  pgledger.New(db),
	}
}

// BalanceOf returns the account's derived balance. An account with no
// entries has balance {0,0,0}; only a missing account is an error.
func (s *BalanceService) BalanceOf(ctx context.Context, accountID int64) (Balance, error) {
	err := s.accounts.Exists(ctx, accountID)
	if err != nil {
		return Balance{}, fmt.Errorf("check account exists: %w", err)
	}

	totals, err := s.entries.Totals(ctx, accountID)
	if err != nil {
		return Balance{}, fmt.Errorf("aggregate ledger: %w", err)
	}

	return Balance{
		AccountID: accountID,
		Current:   totals.Current,
		Earned:    totals.Earned,
		Spent:     totals.Spent,
	}, nil
}

// History returns the account's newest ledger entries, up to limit.
func (s *BalanceService) History(ctx context.Context, accountID int64, limit int) ([]ledger.Entry, error) {
	err := s.accounts.Exists(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("check account exists: %w", err)
	}

	entries, err := s.entries.Entries(ctx, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}

	return entries, nil
}
