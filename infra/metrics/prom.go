package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/carehours/carebalance/core/metrics"
)

// PromSink records run summaries in Prometheus metrics.
type PromSink struct {
	runs      *prometheus.CounterVec
	dayStatus *prometheus.CounterVec
	mean      prometheus.Gauge
	stddev    prometheus.Gauge
}

// NewPromSink registers run metrics on the provided Prometheus registerer.
// If reg is nil, the default registerer is used. If the collectors are already
// registered, the existing ones are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "balance_runs_total",
		Help: "Total number of balancing runs",
	}, []string{"clean"})
	dayStatus := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "balance_day_outcomes_total",
		Help: "Per-day balancing outcomes",
	}, []string{"balanced", "escalated"})
	mean := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "balance_provider_total_hours_mean",
		Help: "Mean active provider daily total over the last run",
	})
	stddev := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "balance_provider_total_hours_stddev",
		Help: "Standard deviation of active provider daily totals over the last run",
	})

	for _, c := range []prometheus.Collector{runs, dayStatus, mean, stddev} {
		if err := reg.Register(c); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				switch existing := are.ExistingCollector.(type) {
				case *prometheus.CounterVec:
					if c == runs {
						runs = existing
					} else {
						dayStatus = existing
					}
				case prometheus.Gauge:
					if c == mean {
						mean = existing
					} else {
						stddev = existing
					}
				}
			} else {
				return nil, err
			}
		}
	}
	return &PromSink{runs: runs, dayStatus: dayStatus, mean: mean, stddev: stddev}, nil
}

// RecordRunStats increments the run counter and publishes the distribution
// gauges.
func (s *PromSink) RecordRunStats(stats coremetrics.RunStats) error {
	clean := stats.DaysUnbalanced == 0 && stats.DataErrors == 0
	s.runs.WithLabelValues(strconv.FormatBool(clean)).Inc()
	s.mean.Set(stats.ProviderTotalMean)
	s.stddev.Set(stats.ProviderTotalStdDev)
	return nil
}

// RecordDayStats increments the per-day outcome counters.
func (s *PromSink) RecordDayStats(recs []coremetrics.DayStats) error {
	for _, r := range recs {
		s.dayStatus.WithLabelValues(strconv.FormatBool(r.Balanced), strconv.FormatBool(r.Escalated)).Inc()
	}
	return nil
}
