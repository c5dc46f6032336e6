// Package checkin gates event attendance and feeds the points ledger.
package checkin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/campuslink/points-engine/internal/infra/pgutils"
	"github.com/campuslink/points-engine/internal/repos/accounts"
	pgaccounts "github.com/campuslink/points-engine/internal/repos/accounts/postgres"
	"github.com/campuslink/points-engine/internal/repos/checkins"
	pgcheckins "github.com/campuslink/points-engine/internal/repos/checkins/postgres"
	"github.com/campuslink/points-engine/internal/repos/events"
	pgevents "github.com/campuslink/points-engine/internal/repos/events/postgres"
	"github.com/campuslink/points-engine/internal/repos/ledger"
	pgledger "github.com/campuslink/points-engine/internal/repos/ledger/postgres"
	"github.com/campuslink/points-engine/internal/repos/restrictions"
	pgrestrictions "github.com/campuslink/points-engine/internal/repos/restrictions/postgres"
)

var ErrOutsideWindow = errors.New("outside check-in window")
var ErrNotRegistered = errors.New("not registered for event")

// Result reports what one check-in did. Restricted means attendance was
// recorded but the reward was suppressed by an active restriction.
type Result struct {
	PointsAwarded     int64
	DailyCheckinCount int
	Restricted        bool
}

type CheckInService struct {
	db           *sql.DB
	accounts     accounts.Accounts
	events       events.Events
	checkins     checkins.CheckIns
	restrictions restrictions.Restrictions
	entries      ledger.Ledger

	earlyEntry time.Duration
	now        func() time.Time
}

// New wires the gate against db. earlyEntry is how far before starts_at
// a check-in is already allowed.
func New(db *sql.DB, earlyEntry time.Duration) *CheckInService {
	return &CheckInService{
		db:           db,
		accounts:     pgaccounts.New(db),
		events:       pgevents.New(db),
		checkins:     pgcheckins.New(db),
		restrictions: pgrestrictions.New(db),
		entries:      pgledger.New(db),
		earlyEntry:   earlyEntry,
		now:          time.Now,
	}
}

// CheckIn runs the full gate in a single DB transaction:
//
// 1) Lock the account row (FOR UPDATE) — serializes the daily index.
// 2) Validate the event time window.
// 3) Require a registration, unless the caller hosts the event or is an admin.
// 4) Insert the check-in row (unique violation -> ErrAlreadyCheckedIn).
// 5) Mark the registration attended.
// 6) Append the reward ledger entry per the daily decay schedule,
//    skipped when the account is restricted from earning.
func (s *CheckInService) CheckIn(ctx context.Context, eventID, accountID int64) (Result, error) {
	now := s.now().UTC()

	var res Result

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		acc, err := s.accounts.LockAndGet(tx, accountID)
		if err != nil {
			return fmt.Errorf("lock account: %w", err)
		}

		ev, err := s.events.Get(tx, eventID)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}

		if now.Before(ev.StartsAt.Add(-s.earlyEntry)) || now.After(ev.EndsAt) {
			return ErrOutsideWindow
		}

		registered, err := s.events.IsRegistered(tx, eventID, accountID)
		if err != nil {
			return fmt.Errorf("check registration: %w", err)
		}

		if !registered && acc.Role != accounts.RoleAdmin && ev.HostID != accountID {
			return ErrNotRegistered
		}

		restricted, err := s.restrictions.IsRestricted(tx, accountID, now)
		if err != nil {
			return fmt.Errorf("check restriction: %w", err)
		}

		// The account row is locked, so no concurrent transaction can
		// add a check-in for this account between count and insert.
		dayStart, dayEnd := DayBounds(now)

		prior, err := s.checkins.CountInRange(tx, accountID, dayStart, dayEnd)
		if err != nil {
			return fmt.Errorf("count daily checkins: %w", err)
		}

		index := prior + 1

		points := RewardForIndex(index)
		if restricted {
			points = 0
		}

		err = s.checkins.Insert(tx, checkins.CheckIn{
			EventID:       eventID,
			AccountID:     accountID,
			CheckedInAt:   now,
			PointsAwarded: points,
		})
		if err != nil {
			return fmt.Errorf("insert checkin: %w", err)
		}

		err = s.events.MarkAttended(tx, eventID, accountID)
		if err != nil {
			return fmt.Errorf("mark attended: %w", err)
		}

		if points > 0 {
			_, err = s.entries.Append(tx, accountID, points, fmt.Sprintf("checkin:event:%d", eventID))
			if err != nil {
				return fmt.Errorf("append reward: %w", err)
			}
		}

		res = Result{
			PointsAwarded:     points,
			DailyCheckinCount: index,
			Restricted:        restricted,
		}

		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("check in: %w", err)
	}

	return res, nil
}
