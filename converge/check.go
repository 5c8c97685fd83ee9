package converge

import (
	"fmt"

	"github.com/stretchr/testify/assert"
)

// Check is a zero-argument predicate sampled by a Series. It fails by
// returning exactly false, by returning a non-nil error, or by panicking.
// Any other result, nil included, passes.
type Check func() any

// Bool adapts a boolean predicate.
func Bool(f func() bool) Check {
	return func() any {
		return f()
	}
}

// Error adapts a function whose non-nil error is the failure.
func Error(f func() error) Check {
	return func() any {
		if err := f(); err != nil {
			return err
		}

		return nil
	}
}

// Assert adapts a block of testify assertions. Failures reported through the
// assert.TestingT are collected into an *AssertionError for that sample.
//
// Only non-fatal assertions belong here: require's FailNow calls
// runtime.Goexit on a real *testing.T, which cannot be recovered. The
// collector passed in has no FailNow, so use assert rather than require.
func Assert(f func(t assert.TestingT)) Check {
	return func() any {
		collector := &collectT{}

		f(collector)

		if len(collector.messages) > 0 {
			return &AssertionError{Messages: collector.messages}
		}

		return nil
	}
}

// collectT implements assert.TestingT by remembering every failure.
type collectT struct {
	messages []string
}

func (c *collectT) Errorf(format string, args ...any) {
	c.messages = append(c.messages, fmt.Sprintf(format, args...))
}

func (c *collectT) Helper() {}
