// Package shutdownqueue provides a process-wide LIFO queue of cleanup tasks.
//
// Register tasks anywhere via Add and drain them at the end of main:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
//	defer cancel()
//	defer shutdownqueue.Shutdown(ctx)
//
// Tasks run once, in reverse order of registration. Panics are recovered.
// Shutdown is idempotent and returns an aggregated error via errors.Join.
package shutdownqueue

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Task is a shutdown function. It should honor ctx and return an error
// if it can't finish (or ctx is canceled).
type Task func(ctx context.Context) error

var (
	mu     sync.Mutex
	tasks  []Task
	closed bool
)

// Add registers a task to be run on Shutdown, in LIFO order.
// Safe to call from any goroutine. If t is nil or shutdown has already
// started, Add does nothing.
func Add(t Task) {
	if t == nil {
		return
	}

	mu.Lock()
	defer mu.Unlock()

	if closed {
		return
	}

	tasks = append(tasks, t)
}

// Shutdown drains all registered tasks in LIFO order. Safe to call multiple
// times; after the first run, subsequent calls are no-ops.
//
// If ctx is canceled mid-drain, Shutdown stops early and returns an error
// that includes the context error and any task errors so far.
func Shutdown(ctx context.Context) error {
	mu.Lock()

	if closed && len(tasks) == 0 {
		mu.Unlock()

		return nil
	}

	closed = true
	pending := tasks
	tasks = nil

	mu.Unlock()

	var errs []error

	for i := len(pending) - 1; i >= 0; i-- {
		select {
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("shutdown canceled: %w", ctx.Err()))

			return errors.Join(errs...)
		default:
		}

		func(t Task) {
			defer func() {
				r := recover()
				if r != nil {
					errs = append(errs, fmt.Errorf("panic in shutdown task: %v", r))
				}
			}()

			err := t(ctx)
			if err != nil {
				errs = append(errs, err)
			}
		}(pending[i])
	}

	return errors.Join(errs...)
}
