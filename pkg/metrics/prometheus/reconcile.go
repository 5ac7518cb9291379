// Package prometheus implements the metrics interfaces on the process-wide
// Prometheus registry.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/musterio/muster/pkg/metrics"
)

// reconcileMetrics is the Prometheus implementation for reconciliation
// metrics.
type reconcileMetrics struct {
	runs           *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	membersAdded   *prometheus.CounterVec
	membersRemoved *prometheus.CounterVec
	rosterTargets  prometheus.Gauge
	rosterReloads  *prometheus.CounterVec
}

// NewReconcileMetrics creates a new Prometheus-backed reconciliation
// metrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called); all
// methods are safe to call on the nil result.
func NewReconcileMetrics() *reconcileMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &reconcileMetrics{
		runs: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "muster_reconcile_runs_total",
				Help: "Total reconciliation runs by group, trigger, and outcome",
			},
			[]string{"group", "trigger", "outcome"},
		),
		duration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "muster_reconcile_duration_seconds",
				Help:    "Duration of reconciliation runs by group",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"group"},
		),
		membersAdded: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "muster_members_added_total",
				Help: "Total members added by reconciliation, by group",
			},
			[]string{"group"},
		),
		membersRemoved: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "muster_members_removed_total",
				Help: "Total members removed by reconciliation, by group",
			},
			[]string{"group"},
		),
		rosterTargets: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "muster_roster_targets",
				Help: "Number of groups the loaded roster manages",
			},
		),
		rosterReloads: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "muster_roster_reloads_total",
				Help: "Total roster loads by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// RecordRun records one finished reconciliation run.
func (m *reconcileMetrics) RecordRun(group string, trigger string, duration time.Duration, outcome string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(group, trigger, outcome).Inc()
	m.duration.WithLabelValues(group).Observe(duration.Seconds())
}

// RecordMutations records how many members a run added and removed.
func (m *reconcileMetrics) RecordMutations(group string, added int, removed int) {
	if m == nil {
		return
	}
	if added > 0 {
		m.membersAdded.WithLabelValues(group).Add(float64(added))
	}
	if removed > 0 {
		m.membersRemoved.WithLabelValues(group).Add(float64(removed))
	}
}

// SetRosterTargets updates the roster target count.
func (m *reconcileMetrics) SetRosterTargets(count int) {
	if m == nil {
		return
	}
	m.rosterTargets.Set(float64(count))
}

// RecordRosterReload records a roster load.
func (m *reconcileMetrics) RecordRosterReload(outcome string) {
	if m == nil {
		return
	}
	m.rosterReloads.WithLabelValues(outcome).Inc()
}
