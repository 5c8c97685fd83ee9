// Package envutil reads typed configuration from environment variables.
//
//	scale := envutil.Float64("CONVERGE_DURATION_SCALE",
//	    envutil.Default(1.0),
//	    envutil.Validate(positive)).ValueOrElse(1.0)
package envutil

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// get returns a Reader for the raw string value of key. Blank values count as unset.
func get(key string) Reader[string] {
	val, ok := os.LookupEnv(key)
	if ok && strings.TrimSpace(val) == "" {
		ok = false
	}

	return Reader[string]{
		key:     key,
		present: ok,
		value:   strings.TrimSpace(val),
	}
}

// NewReader returns a Reader for the given raw data, for callers whose
// configuration comes from somewhere other than the process environment.
func NewReader[T any](key string, present bool, err error, value T) Reader[T] {
	return Reader[T]{
		key:     key,
		present: present,
		value:   value,
		err:     err,
	}
}

func apply[T any](rdr Reader[T], opts []Option[T]) Reader[T] {
	for _, opt := range opts {
		rdr = opt(rdr)
	}

	return rdr
}

// String reads key as a string.
func String(key string, opts ...Option[string]) Reader[string] {
	return apply(get(key), opts)
}

// Bool reads key using strconv.ParseBool.
func Bool(key string, opts ...Option[bool]) Reader[bool] {
	return apply(Map(get(key), strconv.ParseBool), opts)
}

// Float64 reads key as a float.
func Float64(key string, opts ...Option[float64]) Reader[float64] {
	return apply(Map(get(key), func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	}), opts)
}

// Duration reads key using time.ParseDuration ("1.5s", "250ms").
func Duration(key string, opts ...Option[time.Duration]) Reader[time.Duration] {
	return apply(Map(get(key), time.ParseDuration), opts)
}

// Milliseconds reads key as a duration. A bare integer is taken as a number
// of milliseconds; anything else is parsed with time.ParseDuration.
func Milliseconds(key string, opts ...Option[time.Duration]) Reader[time.Duration] {
	return apply(Map(get(key), parseMillis), opts)
}

func parseMillis(s string) (time.Duration, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}

	return time.ParseDuration(s)
}

// SlogLevel reads key as a slog level name ("debug", "INFO", "warn+2").
func SlogLevel(key string, opts ...Option[slog.Level]) Reader[slog.Level] {
	return apply(Map(get(key), func(s string) (slog.Level, error) {
		var level slog.Level

		if err := level.UnmarshalText([]byte(s)); err != nil {
			return level, fmt.Errorf("invalid log level %q: %w", s, err)
		}

		return level, nil
	}), opts)
}
