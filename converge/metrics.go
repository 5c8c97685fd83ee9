package converge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomePassed = "passed"
	outcomeFailed = "failed"
	outcomeError  = "error"

	outcomeSucceeded = "succeeded"
	outcomeMisuse    = "misuse"
	outcomeCanceled  = "canceled"
	outcomeInvalid   = "invalid"
)

var (
	// checkpointsTotal counts samples by policy and verdict (passed, failed, error).
	checkpointsTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "converge_checkpoints_total",
		Help: "Total number of checkpoints sampled by policy and outcome",
	}, []string{"policy", "outcome"})

	// runsTotal counts policy invocations by verdict.
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "converge_policy_runs_total",
		Help: "Total number of convergence policy runs by policy and outcome",
	}, []string{"policy", "outcome"})

	runDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{ //nolint:gochecknoglobals
		Name:    "converge_policy_duration_seconds",
		Help:    "Wall time of convergence policy runs by policy and outcome",
		Buckets: []float64{0.01, 0.05, 0.1, 0.2, 0.5, 1, 2, 5, 10, 30},
	}, []string{"policy", "outcome"})
)

func checkpointOutcome(cp *Checkpoint) string {
	switch {
	case cp.Err() != nil:
		return outcomeError
	case cp.Passed():
		return outcomePassed
	default:
		return outcomeFailed
	}
}
