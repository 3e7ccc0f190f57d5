package model

import (
	"sort"
	"time"
)

// DateFormat is the canonical date layout used across the pipeline. It matches
// the MM/DD/YYYY headers found in the source workbooks.
const DateFormat = "01/02/2006"

// ProviderEntry holds the hours one provider supplies to each individual on a
// single day. Hours are keyed by individual identifier and may be fractional.
type ProviderEntry struct {
	Name  string             `json:"name"`
	Hours map[string]float64 `json:"hours"`
}

// Total returns the provider's daily total across all individuals.
func (p *ProviderEntry) Total() float64 {
	var sum float64
	for _, h := range p.Hours {
		sum += h
	}
	return sum
}

// Active reports whether the provider supplies any hours on this day.
// Placeholder rows with all-zero entries are not subject to the min/max
// constraints.
func (p *ProviderEntry) Active() bool {
	return p.Total() > 0
}

// ScheduleDay is the per-day provider/individual hours matrix. Rows keep the
// order in which providers appear in the source workbook; rows appended by the
// balancing engine keep insertion order after them.
type ScheduleDay struct {
	Date        time.Time        `json:"date"`
	Individuals []string         `json:"individuals"`
	Providers   []*ProviderEntry `json:"providers"`

	// EffectiveMax starts at the catalog base cap and may be escalated by the
	// exception ladder. Zero means "not yet initialised".
	EffectiveMax float64 `json:"effective_max"`
	// Unbalanced marks a day the engine gave up on. Once set no further
	// mutation is attempted.
	Unbalanced bool `json:"unbalanced"`
}

// DateString returns the canonical string form of the day's date.
func (d *ScheduleDay) DateString() string {
	return d.Date.Format(DateFormat)
}

// Provider returns the entry for the named provider, or nil.
func (d *ScheduleDay) Provider(name string) *ProviderEntry {
	for _, p := range d.Providers {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// ProviderTotal returns the daily total for the named provider. Absent
// providers total zero.
func (d *ScheduleDay) ProviderTotal(name string) float64 {
	if p := d.Provider(name); p != nil {
		return p.Total()
	}
	return 0
}

// IndividualTotal sums the hours allocated to one individual across all
// providers.
func (d *ScheduleDay) IndividualTotal(individual string) float64 {
	var sum float64
	for _, p := range d.Providers {
		sum += p.Hours[individual]
	}
	return sum
}

// Pending returns target minus the individual's allocated hours. Positive
// means under-allocated.
func (d *ScheduleDay) Pending(individual string, target float64) float64 {
	return target - d.IndividualTotal(individual)
}

// SetHours writes one cell of the matrix, creating the provider row when it
// does not exist yet. It returns the previous value and whether the cell
// actually changed, so callers can log exactly one change record per real
// mutation.
func (d *ScheduleDay) SetHours(provider, individual string, value float64) (old float64, changed bool) {
	p := d.Provider(provider)
	if p == nil {
		p = &ProviderEntry{Name: provider, Hours: make(map[string]float64)}
		for _, ind := range d.Individuals {
			p.Hours[ind] = 0
		}
		d.Providers = append(d.Providers, p)
	}
	old = p.Hours[individual]
	if old == value {
		return old, false
	}
	p.Hours[individual] = value
	return old, true
}

// SortedIndividuals returns the individual identifiers in ascending lexical
// order. The engine processes individuals in this order so repeated runs are
// deterministic.
func (d *ScheduleDay) SortedIndividuals() []string {
	out := append([]string(nil), d.Individuals...)
	sort.Strings(out)
	return out
}

// Clone returns a deep copy of the day. The orchestrator hands copies to
// worker goroutines in tests that compare before/after states.
func (d *ScheduleDay) Clone() *ScheduleDay {
	cp := &ScheduleDay{
		Date:         d.Date,
		Individuals:  append([]string(nil), d.Individuals...),
		EffectiveMax: d.EffectiveMax,
		Unbalanced:   d.Unbalanced,
	}
	cp.Providers = make([]*ProviderEntry, 0, len(d.Providers))
	for _, p := range d.Providers {
		hours := make(map[string]float64, len(p.Hours))
		for k, v := range p.Hours {
			hours[k] = v
		}
		cp.Providers = append(cp.Providers, &ProviderEntry{Name: p.Name, Hours: hours})
	}
	return cp
}

// Validate checks the day for malformed source data: no individuals, negative
// hours or duplicate provider rows. Violations are DataErrors scoped to this
// day; the caller skips the day and keeps processing the rest of the dataset.
func (d *ScheduleDay) Validate() error {
	if len(d.Individuals) == 0 {
		return &DataError{Day: d.DateString(), Reason: "no individuals"}
	}
	seen := make(map[string]struct{}, len(d.Providers))
	for _, p := range d.Providers {
		if _, dup := seen[p.Name]; dup {
			return &DataError{Day: d.DateString(), Provider: p.Name, Reason: "duplicate provider row"}
		}
		seen[p.Name] = struct{}{}
		for ind, h := range p.Hours {
			if h < 0 {
				return &DataError{Day: d.DateString(), Provider: p.Name, Individual: ind, Reason: "negative hours"}
			}
		}
	}
	return nil
}
