package changelog

import "sync"

// Tracker accumulates change records during engine passes. It is append-only:
// later passes touching the same cell add new records, prior ones are never
// rewritten or removed.
type Tracker struct {
	mu      sync.Mutex
	records []Record
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Add appends a record. Safe for concurrent use: per-day passes run on worker
// goroutines.
func (t *Tracker) Add(rec Record) {
	t.mu.Lock()
	t.records = append(t.records, rec)
	t.mu.Unlock()
}

// Records returns a copy of all records in chronological order.
func (t *Tracker) Records() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Record(nil), t.records...)
}

// Day returns the records for one day, preserving chronological order.
func (t *Tracker) Day(day string) []Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []Record
	for _, r := range t.records {
		if r.Day == day {
			out = append(out, r)
		}
	}
	return out
}

// Len returns the number of accumulated records.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}

// Summary aggregates counts by category and lists the unbalanced days.
type Summary struct {
	ByCategory     map[Category]int `json:"by_category"`
	UnbalancedDays []string         `json:"unbalanced_days"`
	Total          int              `json:"total"`
}

// Summarize builds the whole-run summary consumed by the export layer.
func (t *Tracker) Summarize() Summary {
	return Summarize(t.Records())
}

// Summarize aggregates an already ordered record slice. The orchestrator
// passes day-sorted records so the unbalanced-day listing is stable across
// runs even though per-day passes execute on worker goroutines.
func Summarize(records []Record) Summary {
	s := Summary{ByCategory: make(map[Category]int)}
	seen := make(map[string]struct{})
	for _, r := range records {
		s.ByCategory[r.Category]++
		s.Total++
		if r.Category == CategoryUnbalancedDay {
			if _, ok := seen[r.Day]; !ok {
				seen[r.Day] = struct{}{}
				s.UnbalancedDays = append(s.UnbalancedDays, r.Day)
			}
		}
	}
	return s
}
