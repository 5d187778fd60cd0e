// Package testutil holds helpers shared by tests: polling for asynchronous
// state and unique names for tests that share process-wide state.
package testutil

import (
	"context"
	"fmt"
	"time"
)

// Poll checks condition every interval until it holds, timeout elapses or
// ctx is done.
func Poll(ctx context.Context, timeout, interval time.Duration, condition func() bool) error {
	_, err := WaitFor(ctx, timeout, interval, func() bool { return condition() }, func(ok bool) bool { return ok })
	return err
}

// WaitFor reads state every interval until predicate accepts it, returning
// the accepted state.
func WaitFor[T any](ctx context.Context, timeout, interval time.Duration, get func() T, predicate func(T) bool) (T, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last T
	for {
		last = get()
		if predicate(last) {
			return last, nil
		}
		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-deadline.C:
			return last, fmt.Errorf("testutil: timed out after %v, last state %+v", timeout, last)
		case <-ticker.C:
		}
	}
}
