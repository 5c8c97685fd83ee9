package converge

import (
	"reflect"
	"time"

	"github.com/amp-labs/converge/clock"
)

// Checkpoint is one evaluation of a Check at one instant. It holds either a
// pass/fail verdict with the returned value, or the error the check raised;
// never both. Checkpoints are immutable.
type Checkpoint struct {
	timestamp time.Time
	result    any
	passed    bool
	err       error
}

// NewCheckpoint invokes check exactly once, synchronously, and records the
// outcome. It fails with a *MisuseError (matching ErrAsyncCheck) if the check
// returned a deferred value, whatever that value would have meant as a
// verdict.
func NewCheckpoint(clk clock.Clock, check Check) (*Checkpoint, error) {
	if clk == nil {
		clk = clock.System{}
	}

	cp := &Checkpoint{timestamp: clk.Now()}

	result, err := invoke(check)
	if err != nil {
		cp.err = err

		return cp, nil
	}

	if typ, ok := deferredType(result); ok {
		return nil, &MisuseError{Type: typ}
	}

	cp.result = result
	cp.passed = !isFalse(result)

	return cp, nil
}

// invoke runs check, turning panics and returned errors into err.
func invoke(check Check) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = panicError(r)
		}
	}()

	result = check()

	if e, ok := result.(error); ok && !isNil(e) {
		return nil, e
	}

	return result, nil
}

// isFalse is true only for the untyped boolean false.
func isFalse(v any) bool {
	b, ok := v.(bool)

	return ok && !b
}

// isNil catches typed nil pointers stored in an error interface.
func isNil(err error) bool {
	rv := reflect.ValueOf(err)

	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// Timestamp is the instant the check was invoked.
func (c *Checkpoint) Timestamp() time.Time {
	return c.timestamp
}

// Result is the value the check returned. It is nil when Err is set.
func (c *Checkpoint) Result() any {
	return c.result
}

// Passed reports whether the check returned anything but false without
// raising an error.
func (c *Checkpoint) Passed() bool {
	return c.err == nil && c.passed
}

// Err is the error the check raised, if any.
func (c *Checkpoint) Err() error {
	return c.err
}

// Failure returns the error this checkpoint captured, or fallback when the
// check simply returned false. Policies use it so that the check's own error
// always wins over a synthesized timeout.
func (c *Checkpoint) Failure(fallback error) error {
	if c.err != nil {
		return c.err
	}

	return fallback
}
