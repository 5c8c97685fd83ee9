package convergetest

import (
	"strings"
	"testing"
	"time"

	"github.com/amp-labs/converge/converge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func TestContext(t *testing.T) {
	t.Parallel()

	ctx := Context(t)

	id, ok := TestID(ctx)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(id, "test-"))

	other, ok := TestID(Context(t))
	require.True(t, ok)
	assert.NotEqual(t, id, other)

	_, ok = TestID(t.Context())
	assert.False(t, ok)
}

func TestEventually(t *testing.T) {
	t.Parallel()

	ready := atomic.NewBool(false)
	timer := time.AfterFunc(20*time.Millisecond, func() { ready.Store(true) })

	t.Cleanup(func() { timer.Stop() })

	Eventually(t, converge.Bool(ready.Load), converge.WithDuration(time.Second))
}

func TestConsistently(t *testing.T) {
	t.Parallel()

	count := atomic.NewInt64(3)

	Consistently(t, converge.Assert(func(c assert.TestingT) {
		assert.Equal(c, int64(3), count.Load())
	}), converge.WithDuration(40*time.Millisecond))
}
