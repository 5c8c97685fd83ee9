package converge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amp-labs/converge/logger"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// Policy names a rule for reducing a Series to a verdict.
type Policy string

const (
	// PolicyWhen succeeds on the first passing checkpoint.
	PolicyWhen Policy = "when"

	// PolicyAlways succeeds only if every checkpoint passes.
	PolicyAlways Policy = "always"
)

// When samples check until it passes. It returns nil as soon as one
// checkpoint passes. If none does before the duration (default 2s) elapses,
// it returns the error raised by the last checkpoint, or a *TimeoutError if
// the last checkpoint simply returned false.
//
// Example:
//
//	err := converge.When(ctx, converge.Bool(func() bool {
//	    return job.Done()
//	}), converge.WithDuration(time.Second))
func When(ctx context.Context, check Check, opts ...Option) error {
	r, err := newRun(ctx, PolicyWhen, check, opts)
	if err != nil {
		return err
	}

	return r.finish(r.when())
}

// Always samples check for the whole duration (default 200ms) and returns
// nil only if every checkpoint passed. At the first checkpoint that fails it
// returns immediately with that checkpoint's error, or a *TimeoutError if the
// check returned false.
//
// Example:
//
//	err := converge.Always(ctx, converge.Bool(func() bool {
//	    return cache.Len() == 5
//	}), converge.WithDuration(50*time.Millisecond))
func Always(ctx context.Context, check Check, opts ...Option) error {
	r, err := newRun(ctx, PolicyAlways, check, opts)
	if err != nil {
		return err
	}

	return r.finish(r.always())
}

// run is the state of one policy invocation: SAMPLING until when/always
// returns, then SUCCEEDED or FAILED.
type run struct {
	ctx      context.Context //nolint:containedctx
	policy   Policy
	opts     *options
	id       string
	duration time.Duration
	series   *Series
	span     trace.Span
	began    time.Time
}

func newRun(ctx context.Context, policy Policy, check Check, opts []Option) (*run, error) {
	if ctx == nil {
		//nolint:contextcheck // Defensive nil check, creates new context intentionally
		ctx = context.Background()
	}

	o := newOptions(opts)

	duration := o.resolveDuration(policy)
	if duration <= 0 {
		runsTotal.WithLabelValues(string(policy), outcomeInvalid).Inc()

		return nil, fmt.Errorf("%w: %s of %v", ErrInvalidDuration, policy, duration)
	}

	r := &run{
		policy:   policy,
		opts:     o,
		id:       uuid.New().String(),
		duration: duration,
		began:    o.clock.Now(),
	}

	ctx = logger.With(ctx, "series_id", r.id, "policy", string(policy), "check", o.name)
	r.ctx, r.span = startRunSpan(ctx, r)
	r.series = NewSeries(check, duration, o.clock, o.sleeper)

	return r, nil
}

// next advances the series and records the new checkpoint.
func (r *run) next() bool {
	if !r.series.Next(r.ctx) {
		return false
	}

	cp := r.series.Checkpoint()
	outcome := checkpointOutcome(cp)

	checkpointsTotal.WithLabelValues(string(r.policy), outcome).Inc()
	addCheckpointEvent(r.span, r.series.Samples(), cp)

	logger.Get(r.ctx).Debug("convergence checkpoint",
		"index", r.series.Samples(),
		"outcome", outcome,
		"elapsed", r.series.Elapsed(),
		"error", cp.Err())

	return true
}

func (r *run) when() error {
	for r.next() {
		if r.series.Checkpoint().Passed() {
			return nil
		}
	}

	if err := r.series.Err(); err != nil {
		return err
	}

	timeout := r.timeout()

	last := r.series.Checkpoint()
	if last == nil {
		return timeout
	}

	return last.Failure(timeout)
}

func (r *run) always() error {
	for r.next() {
		if cp := r.series.Checkpoint(); !cp.Passed() {
			return cp.Failure(r.timeout())
		}
	}

	return r.series.Err()
}

func (r *run) timeout() *TimeoutError {
	return &TimeoutError{
		Policy:   r.policy,
		Name:     r.opts.name,
		Duration: r.duration,
		Samples:  r.series.Samples(),
	}
}

// finish records the verdict and hands err back unchanged.
func (r *run) finish(err error) error {
	outcome := runOutcome(err)
	elapsed := r.opts.clock.Now().Sub(r.began)

	runsTotal.WithLabelValues(string(r.policy), outcome).Inc()
	runDuration.WithLabelValues(string(r.policy), outcome).Observe(elapsed.Seconds())
	endRunSpan(r.span, outcome, r.series.Samples(), err)

	log := logger.Get(r.ctx).With(
		"outcome", outcome,
		"samples", r.series.Samples(),
		"elapsed", elapsed)

	switch outcome {
	case outcomeSucceeded:
		log.Debug("convergence succeeded")
	case outcomeMisuse:
		log.Warn("convergence check misused", "error", err)
	default:
		log.Debug("convergence failed", "error", err)
	}

	return err
}

func runOutcome(err error) string {
	switch {
	case err == nil:
		return outcomeSucceeded
	case errors.Is(err, ErrAsyncCheck):
		return outcomeMisuse
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return outcomeCanceled
	default:
		return outcomeFailed
	}
}
