// Package clock provides the time collaborators used by convergence polling:
// a Clock that reports the current instant and a Sleeper that suspends the
// caller between samples.
//
// Production code uses System. Tests that need deterministic timing use Fake,
// whose Sleep advances virtual time instead of blocking.
package clock

import (
	"context"
	"time"
)

// Clock reports the current instant. Readings must be monotonically non-decreasing.
type Clock interface {
	Now() time.Time
}

// Sleeper suspends the caller for a duration, or until the context is done.
type Sleeper interface {
	Sleep(ctx context.Context, dur time.Duration) error
}

// System is the wall clock. The zero value is ready to use.
type System struct{}

// Now returns time.Now(), which carries a monotonic reading.
func (System) Now() time.Time {
	return time.Now()
}

// Sleep blocks for dur or until ctx is done, whichever comes first.
// A non-positive duration returns immediately.
func (System) Sleep(ctx context.Context, dur time.Duration) error {
	if dur <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(dur)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
