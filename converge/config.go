package converge

import (
	"errors"
	"math"
	"time"

	"github.com/amp-labs/converge/envutil"
)

const (
	// DefaultWhenDuration bounds When when no duration is given.
	DefaultWhenDuration = 2000 * time.Millisecond

	// DefaultAlwaysDuration bounds Always when no duration is given.
	DefaultAlwaysDuration = 200 * time.Millisecond
)

var errScaleNotPositive = errors.New("duration scale must be positive")

// Config holds process-wide defaults for the policies. Zero durations fall
// back to DefaultWhenDuration and DefaultAlwaysDuration, so a partial Config
// only overrides what it sets.
type Config struct {
	WhenDuration   time.Duration
	AlwaysDuration time.Duration

	// DurationScale multiplies every duration, defaults and explicit ones
	// alike. Slow CI runners set it above 1.
	DurationScale float64
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		WhenDuration:   DefaultWhenDuration,
		AlwaysDuration: DefaultAlwaysDuration,
		DurationScale:  1,
	}
}

// LoadConfig reads the defaults from the environment:
//   - CONVERGE_WHEN_DURATION ("3s", or a bare number of milliseconds)
//   - CONVERGE_ALWAYS_DURATION (same format)
//   - CONVERGE_DURATION_SCALE (float, > 0)
//
// Unset or invalid variables fall back to DefaultConfig; invalid ones are logged.
func LoadConfig() Config {
	dfl := DefaultConfig()

	return Config{
		WhenDuration: envutil.Milliseconds("CONVERGE_WHEN_DURATION",
			envutil.Default(dfl.WhenDuration)).ValueOrElse(dfl.WhenDuration),
		AlwaysDuration: envutil.Milliseconds("CONVERGE_ALWAYS_DURATION",
			envutil.Default(dfl.AlwaysDuration)).ValueOrElse(dfl.AlwaysDuration),
		DurationScale: envutil.Float64("CONVERGE_DURATION_SCALE",
			envutil.Default(dfl.DurationScale),
			envutil.Validate(func(f float64) error {
				if f <= 0 {
					return errScaleNotPositive
				}

				return nil
			})).ValueOrElse(dfl.DurationScale),
	}
}

func (c Config) defaultDuration(policy Policy) time.Duration {
	if policy == PolicyAlways {
		if c.AlwaysDuration <= 0 {
			return DefaultAlwaysDuration
		}

		return c.AlwaysDuration
	}

	if c.WhenDuration <= 0 {
		return DefaultWhenDuration
	}

	return c.WhenDuration
}

func (c Config) scale(d time.Duration) time.Duration {
	if c.DurationScale <= 0 || c.DurationScale == 1 {
		return d
	}

	scaled := float64(d) * c.DurationScale

	// Out of range float to int conversions are implementation defined.
	switch {
	case scaled >= math.MaxInt64:
		return time.Duration(math.MaxInt64)
	case scaled <= math.MinInt64:
		return time.Duration(math.MinInt64)
	default:
		return time.Duration(scaled)
	}
}
