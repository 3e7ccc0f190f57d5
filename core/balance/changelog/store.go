package changelog

import (
	"context"
	"time"
)

// Entry wraps a Record for persistence. The run identifier and timestamp live
// here rather than on the record itself so the engine output stays
// deterministic.
type Entry struct {
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`
	Record    Record    `json:"record"`
}

// Query defines filters for retrieving entries.
type Query struct {
	Start    time.Time
	End      time.Time
	RunID    string
	Day      string
	Provider string
	Category Category
}

// Store persists change log entries and supports querying.
type Store interface {
	Append(ctx context.Context, e Entry) error
	Query(ctx context.Context, q Query) ([]Entry, error)
	Close() error
}

func (q Query) matches(e Entry) bool {
	if !q.Start.IsZero() && e.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && e.Timestamp.After(q.End) {
		return false
	}
	if q.RunID != "" && e.RunID != q.RunID {
		return false
	}
	if q.Day != "" && e.Record.Day != q.Day {
		return false
	}
	if q.Provider != "" && e.Record.Provider != q.Provider {
		return false
	}
	if q.Category != "" && e.Record.Category != q.Category {
		return false
	}
	return true
}
