package converge

import (
	"context"
	"time"

	"github.com/amp-labs/converge/clock"
)

// SampleInterval is the fixed pause between two checkpoints of a Series.
const SampleInterval = 10 * time.Millisecond

// Series is a finite, time-bounded sequence of Checkpoints. It is consumed
// like a bufio.Scanner:
//
//	series := converge.NewSeries(check, time.Second, nil, nil)
//	for series.Next(ctx) {
//	    cp := series.Checkpoint()
//	    ...
//	}
//	if err := series.Err(); err != nil { ... }
//
// The first sample is taken immediately. Each later call to Next waits
// SampleInterval, then samples again unless the duration has elapsed since
// the first sample. A Series is not safe for concurrent use and cannot be
// restarted; build a new one instead.
type Series struct {
	check    Check
	duration time.Duration
	clock    clock.Clock
	sleeper  clock.Sleeper

	start   time.Time
	started bool
	done    bool
	current *Checkpoint
	samples int
	err     error
}

// NewSeries returns a Series sampling check for duration. A nil clk or
// sleeper defaults to the system clock. A non-positive duration yields no
// checkpoints.
func NewSeries(check Check, duration time.Duration, clk clock.Clock, sleeper clock.Sleeper) *Series {
	if clk == nil {
		clk = clock.System{}
	}

	if sleeper == nil {
		sleeper = clock.System{}
	}

	return &Series{
		check:    check,
		duration: duration,
		clock:    clk,
		sleeper:  sleeper,
	}
}

// Next samples the check and reports whether a new Checkpoint is available.
// It returns false once the duration has elapsed, the context is done, or
// the check was misused; Err tells these apart.
func (s *Series) Next(ctx context.Context) bool {
	if s.done {
		return false
	}

	if err := ctx.Err(); err != nil {
		return s.stop(err)
	}

	if !s.started {
		s.started = true
		s.start = s.clock.Now()
	} else if err := s.sleeper.Sleep(ctx, SampleInterval); err != nil {
		return s.stop(err)
	}

	if s.clock.Now().Sub(s.start) >= s.duration {
		return s.stop(nil)
	}

	cp, err := NewCheckpoint(s.clock, s.check)
	if err != nil {
		return s.stop(err)
	}

	s.current = cp
	s.samples++

	return true
}

func (s *Series) stop(err error) bool {
	s.done = true
	s.err = err

	return false
}

// Checkpoint returns the most recent checkpoint, or nil before the first
// sample. It remains available after the series has ended.
func (s *Series) Checkpoint() *Checkpoint {
	return s.current
}

// Samples is the number of checkpoints produced so far.
func (s *Series) Samples() int {
	return s.samples
}

// Elapsed is the time since the first sample, per the series' clock.
func (s *Series) Elapsed() time.Duration {
	if !s.started {
		return 0
	}

	return s.clock.Now().Sub(s.start)
}

// Err returns the error that ended the series early: the context's error or
// a *MisuseError. It is nil while sampling and after a series ran its full
// duration.
func (s *Series) Err() error {
	return s.err
}
