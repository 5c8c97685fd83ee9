package converge

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrTimeout matches the failure synthesized when a check returned false
	// without ever raising an error of its own.
	ErrTimeout = errors.New("convergence timeout")

	// ErrAsyncCheck matches misuse errors raised when a check returns a
	// deferred value (channel, future, promise).
	ErrAsyncCheck = errors.New("async check")

	// ErrInvalidDuration is returned by the policies for a non-positive duration.
	ErrInvalidDuration = errors.New("invalid convergence duration")

	// ErrPanic wraps non-error values recovered from a panicking check.
	ErrPanic = errors.New("check panicked")

	// ErrAssertion matches failures collected by Assert.
	ErrAssertion = errors.New("assertion failed")
)

// TimeoutError is the failure a policy synthesizes when the deciding
// checkpoint returned false rather than an error.
type TimeoutError struct {
	Policy   Policy
	Name     string
	Duration time.Duration
	Samples  int
}

func (e *TimeoutError) Error() string {
	if e.Policy == PolicyAlways {
		return fmt.Sprintf("TimeoutError: %s was not true throughout the duration of %dms",
			e.Name, e.Duration.Milliseconds())
	}

	return fmt.Sprintf("TimeoutError: expected %s to not return a false value within %dms, but it never did",
		e.Name, e.Duration.Milliseconds())
}

// Is reports whether target is ErrTimeout.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout //nolint:errorlint
}

// MisuseError reports a check that returned a deferred value.
type MisuseError struct {
	// Type is the dynamic type of the offending value.
	Type string
}

func (e *MisuseError) Error() string {
	return "convergent assertion encountered an async function or promise (" + e.Type + " returned); " +
		"since convergent assertions can run multiple times, you should avoid introducing " +
		"side-effects inside of them"
}

func (e *MisuseError) Unwrap() error {
	return ErrAsyncCheck
}

// AssertionError holds the messages reported through the assert.TestingT
// handed to an Assert check.
type AssertionError struct {
	Messages []string
}

func (e *AssertionError) Error() string {
	trimmed := make([]string, 0, len(e.Messages))

	for _, msg := range e.Messages {
		trimmed = append(trimmed, strings.TrimSpace(msg))
	}

	return strings.Join(trimmed, "\n")
}

func (e *AssertionError) Unwrap() error {
	return ErrAssertion
}

func panicError(val any) error {
	if err, ok := val.(error); ok {
		return err
	}

	return fmt.Errorf("%w: %v", ErrPanic, val)
}
