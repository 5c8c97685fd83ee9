package clock

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// Fake is a manually driven clock. Time only moves when Advance or Sleep is
// called, and callbacks registered with AfterFunc fire as virtual time passes
// their deadline. It is safe for concurrent use.
type Fake struct {
	nanos *atomic.Int64

	mu      sync.Mutex
	pending []scheduled
}

type scheduled struct {
	at time.Time
	fn func()
}

// NewFake returns a Fake clock reading start.
func NewFake(start time.Time) *Fake {
	return &Fake{
		nanos: atomic.NewInt64(start.UnixNano()),
	}
}

// Now returns the current virtual time.
func (f *Fake) Now() time.Time {
	return time.Unix(0, f.nanos.Load())
}

// Advance moves virtual time forward by dur and runs every callback whose
// deadline has been reached, in deadline order. Callbacks run on the caller's
// goroutine after the clock has moved.
func (f *Fake) Advance(dur time.Duration) {
	if dur < 0 {
		return
	}

	f.mu.Lock()

	now := time.Unix(0, f.nanos.Add(int64(dur)))

	var due []scheduled

	remaining := f.pending[:0]

	for _, s := range f.pending {
		if s.at.After(now) {
			remaining = append(remaining, s)
		} else {
			due = append(due, s)
		}
	}

	f.pending = remaining

	f.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].at.Before(due[j].at)
	})

	for _, s := range due {
		s.fn()
	}
}

// AfterFunc schedules fn to run once virtual time has advanced by dur.
func (f *Fake) AfterFunc(dur time.Duration, fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.pending = append(f.pending, scheduled{
		at: f.Now().Add(dur),
		fn: fn,
	})
}

// Sleep advances virtual time by dur without blocking.
func (f *Fake) Sleep(ctx context.Context, dur time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.Advance(dur)

	return nil
}
