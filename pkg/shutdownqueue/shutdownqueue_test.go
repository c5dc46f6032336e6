package shutdownqueue

import (
	"context"
	"errors"
	"testing"
)

// The queue is process-global, so a single test drives the full
// lifecycle: ordering, error aggregation, idempotency, and late Add.
func TestShutdownQueue(t *testing.T) {
	var order []string

	Add(func(context.Context) error {
		order = append(order, "first")
		return nil
	})

	wantErr := errors.New("task failed")
	Add(func(context.Context) error {
		order = append(order, "second")
		return wantErr
	})

	Add(func(context.Context) error {
		order = append(order, "third")
		panic("boom")
	})

	err := Shutdown(context.Background())
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected aggregated task error, got: %v", err)
	}

	// LIFO: last registered runs first; the panic is recovered and the
	// remaining tasks still run.
	if len(order) != 3 || order[0] != "third" || order[1] != "second" || order[2] != "first" {
		t.Fatalf("wrong order: %v", order)
	}

	// Second drain is a no-op.
	err = Shutdown(context.Background())
	if err != nil {
		t.Fatalf("second shutdown: %v", err)
	}

	// Adds after shutdown are dropped.
	ran := false
	Add(func(context.Context) error {
		ran = true
		return nil
	})

	_ = Shutdown(context.Background())
	if ran {
		t.Fatal("task registered after shutdown must not run")
	}
}
