// Package metrics provides Prometheus instrumentation for the
// conversation pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stage outcomes recorded on the counter.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeDegraded = "degraded"
)

// Collector holds the pipeline metrics. Create one per process.
type Collector struct {
	stageDuration *prometheus.HistogramVec
	stageOutcomes *prometheus.CounterVec
}

// NewCollector registers and returns the pipeline metrics collector.
func NewCollector(namespace string, registerer prometheus.Registerer) *Collector {
	factory := promauto.With(registerer)

	return &Collector{
		stageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of each pipeline stage in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"stage"},
		),
		stageOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stage_outcomes_total",
				Help:      "Total number of pipeline stage completions by outcome",
			},
			[]string{"stage", "outcome"},
		),
	}
}

// ObserveStage records one stage completion. Safe on a nil collector so
// callers without metrics wired can skip the nil checks.
func (c *Collector) ObserveStage(stage string, duration time.Duration, outcome string) {
	if c == nil {
		return
	}
	c.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
	c.stageOutcomes.WithLabelValues(stage, outcome).Inc()
}
