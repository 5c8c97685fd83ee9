package converge

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Not parallel: the counters are process-wide.
func TestMetrics_RecordRuns(t *testing.T) { //nolint:paralleltest
	passed := checkpointsTotal.WithLabelValues(string(PolicyAlways), outcomePassed)
	failed := checkpointsTotal.WithLabelValues(string(PolicyAlways), outcomeFailed)
	errored := checkpointsTotal.WithLabelValues(string(PolicyWhen), outcomeError)
	alwaysFailed := runsTotal.WithLabelValues(string(PolicyAlways), outcomeFailed)
	whenSucceeded := runsTotal.WithLabelValues(string(PolicyWhen), outcomeSucceeded)
	misuse := runsTotal.WithLabelValues(string(PolicyWhen), outcomeMisuse)
	invalid := runsTotal.WithLabelValues(string(PolicyAlways), outcomeInvalid)

	before := map[string]float64{
		"passed":        testutil.ToFloat64(passed),
		"failed":        testutil.ToFloat64(failed),
		"errored":       testutil.ToFloat64(errored),
		"alwaysFailed":  testutil.ToFloat64(alwaysFailed),
		"whenSucceeded": testutil.ToFloat64(whenSucceeded),
		"misuse":        testutil.ToFloat64(misuse),
		"invalid":       testutil.ToFloat64(invalid),
	}

	calls := 0
	opts, _ := fakeOpts(WithDuration(time.Second))

	err := Always(t.Context(), func() any {
		calls++

		return calls < 3
	}, opts...)
	require.ErrorIs(t, err, ErrTimeout)

	opts, _ = fakeOpts()
	calls = 0

	require.NoError(t, When(t.Context(), func() any {
		calls++
		if calls == 1 {
			return errBoom
		}

		return true
	}, opts...))

	opts, _ = fakeOpts()
	require.ErrorIs(t, When(t.Context(), func() any { return make(chan bool) }, opts...), ErrAsyncCheck)

	require.ErrorIs(t, Always(t.Context(), Bool(func() bool { return true }), WithDuration(0)), ErrInvalidDuration)

	assert.InDelta(t, 2, testutil.ToFloat64(passed)-before["passed"], 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(failed)-before["failed"], 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(errored)-before["errored"], 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(alwaysFailed)-before["alwaysFailed"], 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(whenSucceeded)-before["whenSucceeded"], 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(misuse)-before["misuse"], 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(invalid)-before["invalid"], 0.001)
}

// Not parallel: the histogram is process-wide.
func TestMetrics_DurationFollowsInjectedClock(t *testing.T) { //nolint:paralleltest
	observer := runDuration.WithLabelValues(string(PolicyWhen), outcomeFailed)

	before := histogramSum(t, observer)

	opts, elapsed := fakeOpts(WithDuration(time.Second))
	require.ErrorIs(t, When(t.Context(), Bool(func() bool { return false }), opts...), ErrTimeout)

	assert.Equal(t, time.Second, elapsed())
	assert.InDelta(t, 1.0, histogramSum(t, observer)-before, 0.0001)
}

func histogramSum(t *testing.T, observer prometheus.Observer) float64 {
	t.Helper()

	metric, ok := observer.(prometheus.Metric)
	require.True(t, ok)

	var out dto.Metric

	require.NoError(t, metric.Write(&out))

	return out.GetHistogram().GetSampleSum()
}

func TestRunOutcome(t *testing.T) {
	t.Parallel()

	assert.Equal(t, outcomeSucceeded, runOutcome(nil))
	assert.Equal(t, outcomeFailed, runOutcome(errBoom))
	assert.Equal(t, outcomeFailed, runOutcome(&TimeoutError{}))
	assert.Equal(t, outcomeMisuse, runOutcome(&MisuseError{Type: "chan bool"}))
	assert.Equal(t, outcomeCanceled, runOutcome(context.Canceled))
}
