package converge

import (
	"errors"
	"testing"
	"time"

	"github.com/amp-labs/converge/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom") //nolint:gochecknoglobals

type pendingFuture struct{}

func (pendingFuture) Await() (bool, error) { return true, nil }

type laterFuture struct{}

func (*laterFuture) Await() error { return nil }

type thenable struct{}

func (*thenable) Then(func(any)) {}

type flag bool

func TestNewCheckpoint_Verdicts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result any
		passed bool
	}{
		{name: "true", result: true, passed: true},
		{name: "false", result: false, passed: false},
		{name: "nil", result: nil, passed: true},
		{name: "zero", result: 0, passed: true},
		{name: "empty string", result: "", passed: true},
		{name: "named bool false", result: flag(false), passed: true},
		{name: "struct", result: struct{}{}, passed: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			cp, err := NewCheckpoint(nil, func() any { return test.result })
			require.NoError(t, err)

			assert.Equal(t, test.passed, cp.Passed())
			assert.Equal(t, test.result, cp.Result())
			assert.NoError(t, cp.Err())
		})
	}
}

func TestNewCheckpoint_RunsCheckOnce(t *testing.T) {
	t.Parallel()

	calls := 0

	_, err := NewCheckpoint(nil, func() any {
		calls++

		return true
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestNewCheckpoint_Timestamp(t *testing.T) {
	t.Parallel()

	clk := clock.NewFake(time.Unix(42, 0))

	cp, err := NewCheckpoint(clk, func() any {
		clk.Advance(time.Second)

		return true
	})

	require.NoError(t, err)
	assert.Equal(t, time.Unix(42, 0).UnixNano(), cp.Timestamp().UnixNano())
}

func TestNewCheckpoint_ReturnedError(t *testing.T) {
	t.Parallel()

	cp, err := NewCheckpoint(nil, Error(func() error { return errBoom }))
	require.NoError(t, err)

	assert.False(t, cp.Passed())
	assert.Nil(t, cp.Result())
	assert.Same(t, errBoom, cp.Err()) //nolint:testifylint
}

func TestNewCheckpoint_TypedNilErrorPasses(t *testing.T) {
	t.Parallel()

	cp, err := NewCheckpoint(nil, func() any {
		var assertionErr *AssertionError

		return assertionErr
	})
	require.NoError(t, err)

	assert.True(t, cp.Passed())
	assert.NoError(t, cp.Err())
}

func TestNewCheckpoint_Panics(t *testing.T) {
	t.Parallel()

	cp, err := NewCheckpoint(nil, func() any { panic(errBoom) })
	require.NoError(t, err)
	assert.Same(t, errBoom, cp.Err()) //nolint:testifylint
	assert.False(t, cp.Passed())

	cp, err = NewCheckpoint(nil, func() any { panic("not an error") })
	require.NoError(t, err)
	require.ErrorIs(t, cp.Err(), ErrPanic)
	assert.Contains(t, cp.Err().Error(), "not an error")
}

func TestNewCheckpoint_DeferredValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result any
	}{
		{name: "channel", result: make(chan bool)},
		{name: "receive channel", result: (<-chan struct{})(make(chan struct{}))},
		{name: "future", result: pendingFuture{}},
		{name: "thenable", result: &thenable{}},
		{name: "pointer receiver by value", result: laterFuture{}},
		{name: "pointer receiver thenable by value", result: thenable{}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			cp, err := NewCheckpoint(nil, func() any { return test.result })

			assert.Nil(t, cp)
			require.ErrorIs(t, err, ErrAsyncCheck)
			assert.Contains(t, err.Error(), "async")
			assert.Contains(t, err.Error(), "promise")

			var misuse *MisuseError

			require.ErrorAs(t, err, &misuse)
			assert.NotEmpty(t, misuse.Type)
		})
	}
}

func TestCheckpoint_Failure(t *testing.T) {
	t.Parallel()

	fallback := errors.New("fallback") //nolint:err113 // Test error

	failed, err := NewCheckpoint(nil, Bool(func() bool { return false }))
	require.NoError(t, err)
	assert.Same(t, fallback, failed.Failure(fallback)) //nolint:testifylint

	raised, err := NewCheckpoint(nil, Error(func() error { return errBoom }))
	require.NoError(t, err)
	assert.Same(t, errBoom, raised.Failure(fallback)) //nolint:testifylint
}

func TestAssert_CollectsFailures(t *testing.T) {
	t.Parallel()

	cp, err := NewCheckpoint(nil, Assert(func(c assert.TestingT) {
		assert.Equal(c, 5, 0)
		assert.True(c, false, "second failure")
	}))
	require.NoError(t, err)

	require.ErrorIs(t, cp.Err(), ErrAssertion)

	var assertionErr *AssertionError

	require.ErrorAs(t, cp.Err(), &assertionErr)
	assert.Len(t, assertionErr.Messages, 2)
	assert.Contains(t, cp.Err().Error(), "Not equal")
	assert.Contains(t, cp.Err().Error(), "second failure")

	cp, err = NewCheckpoint(nil, Assert(func(c assert.TestingT) {
		assert.Equal(c, 5, 5)
	}))
	require.NoError(t, err)
	assert.True(t, cp.Passed())
}
