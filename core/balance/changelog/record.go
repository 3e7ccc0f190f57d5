package changelog

// Category classifies a change for the presentation layer. The core only ever
// emits the category; fill and font colors are owned by the export adapter.
type Category string

const (
	// CategoryUnbalancedDay marks a day the engine could not reconcile.
	CategoryUnbalancedDay Category = "unbalanced-day"
	// CategoryAddition marks an entry that moved from zero to a positive value.
	CategoryAddition Category = "new-or-zero-to-positive"
	// CategoryModification marks a reduced or otherwise modified non-zero entry.
	CategoryModification Category = "reduced-or-modified-nonzero"
	// CategoryNewProvider marks a provider row the engine introduced.
	CategoryNewProvider Category = "new-provider-name"
)

// Reason identifies the engine pass that produced a change.
type Reason string

const (
	ReasonCapRepair    Reason = "cap_repair"
	ReasonGapFill      Reason = "gap_fill"
	ReasonOversight    Reason = "oversight"
	ReasonLadderAdjust Reason = "ladder_adjust"
	ReasonCapEscalated Reason = "cap_escalated"
	ReasonSecondary    Reason = "secondary"
	ReasonUnbalanced   Reason = "unbalanced"
)

// Record captures one mutation made by the balancing engine. Records carry no
// timestamps so that two runs on identical input produce identical logs.
type Record struct {
	Day        string   `json:"day"`
	Provider   string   `json:"provider,omitempty"`
	Individual string   `json:"individual,omitempty"`
	Field      string   `json:"field"`
	Old        float64  `json:"old"`
	New        float64  `json:"new"`
	Reason     Reason   `json:"reason"`
	Category   Category `json:"category"`
}
