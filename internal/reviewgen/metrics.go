package reviewgen

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	attemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviewseed_generation_attempts_total",
		Help: "Provider generation attempts by outcome",
	}, []string{"outcome"})

	unitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviewseed_units_total",
		Help: "Produced reviews by provenance",
	}, []string{"provenance"})

	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviewseed_runs_total",
		Help: "Finished generation runs by qualitative status",
	}, []string{"status"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "reviewseed_run_duration_seconds",
		Help:    "Wall time of a generation run",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})
)

func outcomeLabel(err *ClassifiedError) string {
	if err == nil {
		return "success"
	}
	return err.Kind.String()
}
