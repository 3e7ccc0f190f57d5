package metrics

import coremetrics "github.com/carehours/carebalance/core/metrics"

// MultiSink fanouts run statistics to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.RunSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.RunSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRunStats forwards the stats to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordRunStats(stats coremetrics.RunStats) error {
	for _, s := range m.Sinks {
		if err := s.RecordRunStats(stats); err != nil {
			return err
		}
	}
	return nil
}

// RecordDayStats forwards per-day stats when supported by the sink.
func (m *MultiSink) RecordDayStats(recs []coremetrics.DayStats) error {
	for _, s := range m.Sinks {
		if dr, ok := s.(coremetrics.DayRecorder); ok {
			if err := dr.RecordDayStats(recs); err != nil {
				return err
			}
		}
	}
	return nil
}
