// Package metrics holds the prometheus collectors of the service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pricelist"

var (
	// schedulerRuns counts RunDue executions by trigger (sweeper, http, cli)
	schedulerRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scheduler_runs_total",
		Help:      "Total number of due change-set runs by trigger",
	}, []string{"trigger"})

	// changeSetsProcessed counts change-sets by result: applied, failed
	changeSetsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "changesets_processed_total",
		Help:      "Total number of change-sets processed by result",
	}, []string{"result"})

	// changeOutcomes counts individual price changes by reconcile outcome
	changeOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "change_outcomes_total",
		Help:      "Total number of replayed price changes by outcome",
	}, []string{"outcome"})

	applyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "changeset_apply_duration_seconds",
		Help:      "Time taken to apply one change-set",
		Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	pendingDue = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "changesets_due",
		Help:      "Pending change-sets whose activation day has been reached",
	})

	catalogConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_write_conflicts_total",
		Help:      "Catalog writes rejected by the version check",
	}, []string{"producer"})

	notificationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_failures_total",
		Help:      "Notifications that could not be delivered",
	})
)

// Recorder provides methods to record scheduler and catalog metrics
type Recorder struct{}

// NewRecorder creates a new metrics recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// RecordRun records a RunDue execution
func (r *Recorder) RecordRun(trigger string) {
	schedulerRuns.WithLabelValues(trigger).Inc()
}

// RecordChangeSet records the result of applying one change-set
func (r *Recorder) RecordChangeSet(duration time.Duration, success bool) {
	applyDuration.Observe(duration.Seconds())
	if success {
		changeSetsProcessed.WithLabelValues("applied").Inc()
	} else {
		changeSetsProcessed.WithLabelValues("failed").Inc()
	}
}

// RecordOutcome adds n changes with the given reconcile outcome
func (r *Recorder) RecordOutcome(outcome string, n int) {
	if n > 0 {
		changeOutcomes.WithLabelValues(outcome).Add(float64(n))
	}
}

// SetDue records the number of due change-sets
func (r *Recorder) SetDue(n int) {
	pendingDue.Set(float64(n))
}

// RecordConflict records a rejected catalog write
func (r *Recorder) RecordConflict(producer string) {
	catalogConflicts.WithLabelValues(producer).Inc()
}

// RecordNotificationFailure records a failed notification
func (r *Recorder) RecordNotificationFailure() {
	notificationFailures.Inc()
}
