package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WizardsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wizard_runs_started_total",
			Help: "Wizard runs started, by whether the trip is a day trip",
		},
		[]string{"day_trip"},
	)

	WizardCommands = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wizard_commands_total",
			Help: "Commands applied to wizard runs",
		},
		[]string{"command", "outcome"},
	)

	ValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wizard_validation_failures_total",
			Help: "Advance attempts rejected by validation",
		},
		[]string{"step"},
	)

	EnrichmentDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "enrichment_call_duration_seconds",
			Help:    "Duration of remote enrichment calls in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 45},
		},
		[]string{"action"},
	)

	EnrichmentFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichment_failures_total",
			Help: "Remote enrichment calls that failed",
		},
		[]string{"action"},
	)

	Submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submissions_total",
			Help: "Submission pipeline phases by outcome",
		},
		[]string{"phase", "outcome"},
	)
)

func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveEnrichment records one remote call started at start.
func ObserveEnrichment(action string, start time.Time, err error) {
	EnrichmentDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())
	if err != nil {
		EnrichmentFailures.WithLabelValues(action).Inc()
	}
}
