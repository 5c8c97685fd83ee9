// Package convergetest wires converge into Go tests: failures are reported
// through testing.T, and convergence logs go to the test log.
//
//	func TestJobFinishes(t *testing.T) {
//	    ctx := convergetest.Context(t)
//	    go job.Run(ctx)
//
//	    convergetest.Eventually(t, converge.Bool(job.Done),
//	        converge.WithDuration(time.Second))
//	}
package convergetest

import (
	"context"
	"testing"

	"github.com/amp-labs/converge/converge"
	"github.com/amp-labs/converge/logger"
	"github.com/google/uuid"
	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/require"
)

type contextKey string

const testIDKey contextKey = "testId"

// Context derives a context from t.Context() whose logger writes to the test
// log and carries the test name and a unique "test-<uuid>" id.
func Context(t *testing.T) context.Context {
	t.Helper()

	id := "test-" + uuid.New().String()

	ctx := context.WithValue(t.Context(), testIDKey, id)
	ctx = logger.WithLogger(ctx, slogt.New(t))

	return logger.With(ctx, "test", t.Name(), "test_id", id)
}

// TestID returns the id assigned by Context.
func TestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(testIDKey).(string)

	return id, ok
}

// Eventually fails the test unless check passes within the duration
// (converge.When).
func Eventually(t *testing.T, check converge.Check, opts ...converge.Option) {
	t.Helper()

	require.NoError(t, converge.When(Context(t), check, opts...))
}

// Consistently fails the test unless check passes for the whole duration
// (converge.Always).
func Consistently(t *testing.T, check converge.Check, opts ...converge.Option) {
	t.Helper()

	require.NoError(t, converge.Always(Context(t), check, opts...))
}
