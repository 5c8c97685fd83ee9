package converge

import (
	"time"

	"github.com/amp-labs/converge/clock"
)

const defaultName = "check"

// Option configures a call to When or Always.
type Option func(*options)

type options struct {
	duration    time.Duration
	hasDuration bool
	name        string
	clock       clock.Clock
	sleeper     clock.Sleeper
	config      *Config
}

func newOptions(opts []Option) *options {
	o := &options{name: defaultName}

	for _, opt := range opts {
		opt(o)
	}

	if o.config == nil {
		cfg := LoadConfig()
		o.config = &cfg
	}

	if o.clock == nil {
		o.clock = clock.System{}
	}

	if o.sleeper == nil {
		if s, ok := o.clock.(clock.Sleeper); ok {
			o.sleeper = s
		} else {
			o.sleeper = clock.System{}
		}
	}

	return o
}

// resolveDuration is the explicit or default duration, scaled by the config.
func (o *options) resolveDuration(policy Policy) time.Duration {
	d := o.config.defaultDuration(policy)
	if o.hasDuration {
		d = o.duration
	}

	return o.config.scale(d)
}

// WithDuration bounds the series. Non-positive values make the policy fail
// with ErrInvalidDuration.
//
// Example:
//
//	err := converge.When(ctx, check, converge.WithDuration(500*time.Millisecond))
func WithDuration(d time.Duration) Option {
	return func(o *options) {
		o.duration = d
		o.hasDuration = true
	}
}

// WithName describes the check in timeout messages, logs, and spans.
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithClock replaces the system clock. If clk also implements clock.Sleeper
// (as clock.Fake does) it is used for the pause between samples too.
func WithClock(clk clock.Clock) Option {
	return func(o *options) {
		o.clock = clk
	}
}

// WithSleeper replaces the delay used between samples.
func WithSleeper(s clock.Sleeper) Option {
	return func(o *options) {
		o.sleeper = s
	}
}

// WithConfig uses cfg instead of reading defaults from the environment.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.config = &cfg
	}
}
