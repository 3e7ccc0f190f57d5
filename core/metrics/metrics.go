package metrics

import "time"

// RunStats summarises one balancing run for observability purposes.
type RunStats struct {
	RunID           string
	Start           time.Time
	End             time.Time
	DaysProcessed   int
	DaysBalanced    int
	DaysUnbalanced  int
	DataErrors      int
	EntriesModified int
	ProvidersAdded  int

	// Distribution of active provider daily totals across the run, computed
	// with gonum/stat by the orchestrator.
	ProviderTotalMean   float64
	ProviderTotalStdDev float64
}

// DayStats captures the outcome of balancing a single day.
type DayStats struct {
	RunID      string
	Day        string
	Balanced   bool
	Changes    int
	Escalated  bool
	RecordedAt time.Time
}

// RunSink records run summaries.
type RunSink interface {
	RecordRunStats(stats RunStats) error
}

// DayRecorder records per-day outcomes. Implemented by sinks that can handle
// the extra cardinality.
type DayRecorder interface {
	RecordDayStats(stats []DayStats) error
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) RecordRunStats(RunStats) error { return nil }

func (NopSink) RecordDayStats([]DayStats) error { return nil }
