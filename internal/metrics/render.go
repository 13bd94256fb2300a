package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Commit outcomes.
const (
	CommitCommitted = "committed"
	CommitSkipped   = "skipped"
	CommitFailed    = "failed"
)

var (
	rendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ezapp",
			Subsystem: "pdf",
			Name:      "renders_total",
			Help:      "PDF renders by result.",
		},
		[]string{"result"},
	)

	renderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "ezapp",
			Subsystem: "pdf",
			Name:      "render_duration_seconds",
			Help:      "Time spent laying out and encoding one PDF.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
	)

	commitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ezapp",
			Subsystem: "git",
			Name:      "commits_total",
			Help:      "Version-control commits by outcome.",
		},
		[]string{"result"},
	)
)

// ObserveRender records one PDF render.
func ObserveRender(elapsed time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	rendersTotal.WithLabelValues(result).Inc()
	renderDuration.Observe(elapsed.Seconds())
}

// ObserveCommit records the outcome of one best-effort commit.
func ObserveCommit(result string) {
	commitsTotal.WithLabelValues(result).Inc()
}
