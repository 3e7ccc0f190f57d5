package balance

import (
	"math"

	"github.com/carehours/carebalance/core/model"
)

// hoursEpsilon absorbs float64 noise when comparing fractional hour values.
const hoursEpsilon = 1e-9

// ProviderStatus reports one provider's standing against the hour bounds.
type ProviderStatus struct {
	Total    float64
	OverCap  bool
	UnderMin bool
}

// Report enumerates constraint violations for one day. Pending is signed:
// positive means under-allocated, negative over-allocated, zero satisfied.
type Report struct {
	Providers map[string]ProviderStatus
	Pending   map[string]float64
}

// Satisfied reports whether every hard constraint holds.
func (r Report) Satisfied() bool {
	for _, p := range r.Providers {
		if p.OverCap || p.UnderMin {
			return false
		}
	}
	for _, pending := range r.Pending {
		if math.Abs(pending) > hoursEpsilon {
			return false
		}
	}
	return true
}

// effectiveMax returns the day's cap, falling back to the catalog base cap for
// days the engine has not touched yet.
func effectiveMax(day *model.ScheduleDay, cat *model.ProviderCatalog) float64 {
	if day.EffectiveMax > 0 {
		return day.EffectiveMax
	}
	return cat.MaxHours
}

// Evaluate computes the constraint report for a day. It is pure: no caching,
// no mutation, so re-running it after any change reflects the new state
// exactly.
func Evaluate(day *model.ScheduleDay, cat *model.ProviderCatalog) Report {
	max := effectiveMax(day, cat)
	rep := Report{
		Providers: make(map[string]ProviderStatus, len(day.Providers)),
		Pending:   make(map[string]float64, len(day.Individuals)),
	}
	for _, p := range day.Providers {
		total := p.Total()
		st := ProviderStatus{Total: total}
		if total > hoursEpsilon {
			st.OverCap = total > max+hoursEpsilon
			st.UnderMin = total < cat.MinHours-hoursEpsilon
		}
		rep.Providers[p.Name] = st
	}
	for _, ind := range day.Individuals {
		rep.Pending[ind] = day.Pending(ind, cat.DailyTarget)
	}
	return rep
}
