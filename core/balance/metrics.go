package balance

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	daysBalanced   prometheus.Counter
	daysUnbalanced prometheus.Counter
	changesTotal   *prometheus.CounterVec
	providersAdded prometheus.Counter
	passDuration   *prometheus.HistogramVec
)

// newCollectors creates new metric collectors.
func newCollectors() (prometheus.Counter, prometheus.Counter, *prometheus.CounterVec, prometheus.Counter, *prometheus.HistogramVec) {
	bal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "schedule_days_balanced_total",
			Help: "Number of days fully balanced",
		},
	)
	unbal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "schedule_days_unbalanced_total",
			Help: "Number of days flagged unbalanced after the exception ladder",
		},
	)
	changes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schedule_changes_total",
			Help: "Number of change records produced by the balancing engine",
		},
		[]string{"reason"},
	)
	added := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "schedule_providers_added_total",
			Help: "Number of provider rows introduced by the engine",
		},
	)
	dur := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "schedule_pass_duration_seconds",
			Help:    "Duration of engine passes per day",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"pass"},
	)
	return bal, unbal, changes, added, dur
}

func init() {
	daysBalanced, daysUnbalanced, changesTotal, providersAdded, passDuration = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers balancing metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(daysBalanced, daysUnbalanced, changesTotal, providersAdded, passDuration)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	daysBalanced, daysUnbalanced, changesTotal, providersAdded, passDuration = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
