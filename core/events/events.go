package events

import "github.com/carehours/carebalance/core/balance/changelog"

// DayEvent is published when a day starts or finishes balancing.
// Action is one of "start", "balanced", "unbalanced", "data_error".
type DayEvent struct {
	Day    string
	Action string
	Err    error
}

// PassEvent is emitted when the engine runs one pass over a day.
// Pass is one of "cap_repair", "gap_fill", "oversight", "ladder".
type PassEvent struct {
	Day      string
	Pass     string
	Progress bool
}

// ChangeEvent carries one change record as it is produced.
type ChangeEvent struct {
	Record changelog.Record
}
