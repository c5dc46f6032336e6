package checkin

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/campuslink/points-engine/internal/infra/pgtestutil"
	"github.com/campuslink/points-engine/internal/repos/checkins"
	"github.com/campuslink/points-engine/internal/repos/events"
)

const earlyEntry = 15 * time.Minute

func seedAccount(t *testing.T, db *sql.DB, id int64, role string) {
	t.Helper()

	_, err := db.Exec(`INSERT INTO accounts (id, display_name, role) VALUES ($1, 'test', $2)`, id, role)
	if err != nil {
		t.Fatalf("seed account(%d): %v", id, err)
	}
}

// seedEvent creates an event hosted by hostID whose window is offset
// relative to now.
func seedEvent(t *testing.T, db *sql.DB, id, hostID int64, startsIn, endsIn time.Duration) {
	t.Helper()

	now := time.Now().UTC()

	_, err := db.Exec(`
		INSERT INTO events (id, host_id, title, starts_at, ends_at)
		VALUES ($1, $2, 'test event', $3, $4)
	`, id, hostID, now.Add(startsIn), now.Add(endsIn))
	if err != nil {
		t.Fatalf("seed event(%d): %v", id, err)
	}
}

func register(t *testing.T, db *sql.DB, eventID, accountID int64) {
	t.Helper()

	_, err := db.Exec(`INSERT INTO event_registrations (event_id, account_id) VALUES ($1, $2)`, eventID, accountID)
	if err != nil {
		t.Fatalf("register(%d, %d): %v", eventID, accountID, err)
	}
}

func currentBalance(t *testing.T, db *sql.DB, accountID int64) int64 {
	t.Helper()

	var balance int64

	err := db.QueryRow(`
		SELECT COALESCE(SUM(amount), 0) FROM ledger_entries WHERE account_id = $1
	`, accountID).Scan(&balance)
	if err != nil {
		t.Fatalf("sum ledger: %v", err)
	}

	return balance
}

func TestCheckIn_FirstOfDay(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	seedAccount(t, db, 1, "member")
	seedAccount(t, db, 2, "member")
	seedEvent(t, db, 10, 2, -time.Hour, time.Hour)
	register(t, db, 10, 1)

	svc := New(db, earlyEntry)

	res, err := svc.CheckIn(context.Background(), 10, 1)
	if err != nil {
		t.Fatalf("check in: %v", err)
	}

	if res.PointsAwarded != 20 || res.DailyCheckinCount != 1 || res.Restricted {
		t.Fatalf("unexpected result: %+v", res)
	}

	if got := currentBalance(t, db, 1); got != 20 {
		t.Fatalf("balance: want 20, got %d", got)
	}

	var reason string
	err = db.QueryRow(`SELECT reason FROM ledger_entries WHERE account_id = 1`).Scan(&reason)
	if err != nil {
		t.Fatalf("read reward entry: %v", err)
	}
	if reason != "checkin:event:10" {
		t.Fatalf("reward reason: got %q", reason)
	}

	var status string
	err = db.QueryRow(`
		SELECT status FROM event_registrations WHERE event_id = 10 AND account_id = 1
	`).Scan(&status)
	if err != nil {
		t.Fatalf("read registration: %v", err)
	}
	if status != "attended" {
		t.Fatalf("registration status: want attended, got %s", status)
	}
}

func TestCheckIn_SecondAttemptFails(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	seedAccount(t, db, 1, "member")
	seedAccount(t, db, 2, "member")
	seedEvent(t, db, 10, 2, -time.Hour, time.Hour)
	register(t, db, 10, 1)

	svc := New(db, earlyEntry)
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, 10, 1)
	if err != nil {
		t.Fatalf("first check in: %v", err)
	}

	_, err = svc.CheckIn(ctx, 10, 1)
	if !errors.Is(err, checkins.ErrAlreadyCheckedIn) {
		t.Fatalf("expected ErrAlreadyCheckedIn, got: %v", err)
	}

	// The failed attempt must not move the balance.
	if got := currentBalance(t, db, 1); got != 20 {
		t.Fatalf("balance after repeat: want 20, got %d", got)
	}
}

func TestCheckIn_DailyDecaySchedule(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	seedAccount(t, db, 1, "member")
	seedAccount(t, db, 2, "member")

	wantPoints := []int64{20, 15, 10, 0}

	for i := range wantPoints {
		eventID := int64(10 + i)
		seedEvent(t, db, eventID, 2, -time.Hour, time.Hour)
		register(t, db, eventID, 1)
	}

	svc := New(db, earlyEntry)
	ctx := context.Background()

	for i, want := range wantPoints {
		res, err := svc.CheckIn(ctx, int64(10+i), 1)
		if err != nil {
			t.Fatalf("check in #%d: %v", i+1, err)
		}
		if res.PointsAwarded != want {
			t.Fatalf("check in #%d: want %d points, got %d", i+1, want, res.PointsAwarded)
		}
		if res.DailyCheckinCount != i+1 {
			t.Fatalf("check in #%d: want count %d, got %d", i+1, i+1, res.DailyCheckinCount)
		}
	}

	// 20 + 15 + 10 + 0
	if got := currentBalance(t, db, 1); got != 45 {
		t.Fatalf("balance: want 45, got %d", got)
	}

	// The unrewarded fourth check-in is still recorded.
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM checkins WHERE account_id = 1`).Scan(&n)
	if err != nil {
		t.Fatalf("count checkins: %v", err)
	}
	if n != 4 {
		t.Fatalf("checkin rows: want 4, got %d", n)
	}
}

func TestCheckIn_Window(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		startsIn time.Duration
		endsIn   time.Duration
		wantErr  error
	}{
		{name: "too_early", startsIn: time.Hour, endsIn: 2 * time.Hour, wantErr: ErrOutsideWindow},
		{name: "already_over", startsIn: -3 * time.Hour, endsIn: -time.Hour, wantErr: ErrOutsideWindow},
		{name: "within_early_entry", startsIn: 10 * time.Minute, endsIn: 2 * time.Hour},
		{name: "mid_event", startsIn: -time.Hour, endsIn: time.Hour},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, cleanup := pgtestutil.NewTestDB(t)
			defer cleanup()

			seedAccount(t, db, 1, "member")
			seedAccount(t, db, 2, "member")
			seedEvent(t, db, 10, 2, tt.startsIn, tt.endsIn)
			register(t, db, 10, 1)

			svc := New(db, earlyEntry)

			_, err := svc.CheckIn(context.Background(), 10, 1)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want %v, got: %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("check in: %v", err)
			}
		})
	}
}

func TestCheckIn_RegistrationRequired(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	seedAccount(t, db, 1, "member")
	seedAccount(t, db, 2, "member")
	seedAccount(t, db, 3, "admin")
	seedEvent(t, db, 10, 2, -time.Hour, time.Hour)

	svc := New(db, earlyEntry)
	ctx := context.Background()

	// Unregistered member is refused.
	_, err := svc.CheckIn(ctx, 10, 1)
	if !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got: %v", err)
	}

	// The host walks in without a registration.
	res, err := svc.CheckIn(ctx, 10, 2)
	if err != nil {
		t.Fatalf("host check in: %v", err)
	}
	if res.PointsAwarded != 20 {
		t.Fatalf("host points: want 20, got %d", res.PointsAwarded)
	}

	// So does an admin.
	_, err = svc.CheckIn(ctx, 10, 3)
	if err != nil {
		t.Fatalf("admin check in: %v", err)
	}
}

func TestCheckIn_MissingEvent(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	seedAccount(t, db, 1, "member")

	svc := New(db, earlyEntry)

	_, err := svc.CheckIn(context.Background(), 404, 1)
	if !errors.Is(err, events.ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got: %v", err)
	}
}

func TestCheckIn_RestrictedAccount(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	seedAccount(t, db, 1, "member")
	seedAccount(t, db, 2, "member")
	seedEvent(t, db, 10, 2, -time.Hour, time.Hour)
	register(t, db, 10, 1)

	_, err := db.Exec(`
		INSERT INTO restrictions (account_id, reason, starts_at, ends_at)
		VALUES (1, 'spam reports', now() - interval '1 day', now() + interval '1 day')
	`)
	if err != nil {
		t.Fatalf("seed restriction: %v", err)
	}

	svc := New(db, earlyEntry)

	res, err := svc.CheckIn(context.Background(), 10, 1)
	if err != nil {
		t.Fatalf("restricted check in should still record attendance: %v", err)
	}

	if !res.Restricted || res.PointsAwarded != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}

	if got := currentBalance(t, db, 1); got != 0 {
		t.Fatalf("restricted account earned points: %d", got)
	}

	var n int
	err = db.QueryRow(`SELECT COUNT(*) FROM checkins WHERE event_id = 10 AND account_id = 1`).Scan(&n)
	if err != nil {
		t.Fatalf("count checkins: %v", err)
	}
	if n != 1 {
		t.Fatalf("attendance not recorded")
	}
}

func TestCheckIn_ConcurrentRace(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	seedAccount(t, db, 1, "member")
	seedAccount(t, db, 2, "member")
	seedEvent(t, db, 10, 2, -time.Hour, time.Hour)
	register(t, db, 10, 1)

	svc := New(db, earlyEntry)

	var wg sync.WaitGroup
	var mu sync.Mutex
	success, alreadyIn := 0, 0

	worker := func(name string) {
		defer wg.Done()

		_, err := svc.CheckIn(context.Background(), 10, 1)
		if err == nil {
			mu.Lock()
			success++
			mu.Unlock()
			return
		}

		if errors.Is(err, checkins.ErrAlreadyCheckedIn) {
			mu.Lock()
			alreadyIn++
			mu.Unlock()
			return
		}

		t.Errorf("[%s] unexpected error: %v", name, err)
	}

	wg.Add(2)
	go worker("A")
	go worker("B")
	wg.Wait()

	if success != 1 || alreadyIn != 1 {
		t.Fatalf("want 1 success and 1 already-checked-in, got success=%d already=%d", success, alreadyIn)
	}

	// Exactly one reward landed.
	if got := currentBalance(t, db, 1); got != 20 {
		t.Fatalf("balance after race: want 20, got %d", got)
	}
}
