package balance

import (
	"math"
	"sort"
	"time"

	"github.com/carehours/carebalance/core/balance/changelog"
	"github.com/carehours/carebalance/core/model"
)

// OversightSweep enforces the weekly oversight rule across the whole dataset:
// every individual must have a qualifying entry (OversightHours from a
// designated oversight provider) in each trailing window of
// OversightWindowDays fully contained in the dataset. The sweep scans dates
// in order; its decision at day N depends on the injections made at days
// N-1..N-6, so it runs single-threaded after all per-day totals are stable.
// Each injection re-runs the per-day passes for the perturbed day.
func (e *Engine) OversightSweep(days []*model.ScheduleDay) {
	start := time.Now()
	defer func() { passDuration.WithLabelValues("oversight").Observe(time.Since(start).Seconds()) }()

	if len(days) == 0 {
		return
	}
	sorted := append([]*model.ScheduleDay(nil), days...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
	first := sorted[0].Date

	lastQualified := make(map[string]time.Time)
	for _, day := range sorted {
		for _, ind := range day.SortedIndividuals() {
			if e.hasOversight(day, ind) {
				lastQualified[ind] = day.Date
				continue
			}
			windowStart := day.Date.AddDate(0, 0, -(e.catalog.OversightWindowDays - 1))
			if windowStart.Before(first) {
				// Window extends past the dataset; nothing to enforce yet.
				continue
			}
			if last, ok := lastQualified[ind]; ok && !last.Before(windowStart) {
				continue
			}
			if day.Unbalanced {
				continue
			}
			if e.injectOversight(day, ind) {
				// The injection perturbs totals; repair the day again.
				e.BalanceDay(day)
			}
			// The repair may have reshuffled entries; only a surviving
			// qualifying entry closes the window.
			if e.hasOversight(day, ind) {
				lastQualified[ind] = day.Date
			} else {
				e.log.Warnf("%s: oversight entry for %s did not survive the follow-up repair", day.DateString(), ind)
			}
		}
	}
}

// hasOversight reports whether the day holds a qualifying oversight entry for
// the individual.
func (e *Engine) hasOversight(day *model.ScheduleDay, ind string) bool {
	for _, name := range e.catalog.Oversight {
		if p := day.Provider(name); p != nil && p.Hours[ind] >= e.catalog.OversightHours-hoursEpsilon {
			return true
		}
	}
	return false
}

// injectOversight adds or raises an oversight entry to the required hours.
// The first oversight provider (roster order) with room under the cap is
// preferred; when none fits, the first one is used and the follow-up per-day
// passes repair the overflow.
func (e *Engine) injectOversight(day *model.ScheduleDay, ind string) bool {
	required := e.catalog.OversightHours
	max := effectiveMax(day, e.catalog)

	target := ""
	for _, name := range e.catalog.Oversight {
		cur := 0.0
		total := 0.0
		if p := day.Provider(name); p != nil {
			cur = p.Hours[ind]
			total = p.Total()
		}
		if total-cur+required <= max+hoursEpsilon {
			target = name
			break
		}
	}
	if target == "" {
		target = e.catalog.Oversight[0]
	}
	cur := 0.0
	if p := day.Provider(target); p != nil {
		cur = p.Hours[ind]
	}
	if math.Abs(cur-required) <= hoursEpsilon {
		return false
	}
	e.log.Infof("%s: injecting %.0fh oversight entry for %s via %s", day.DateString(), required, ind, target)
	return e.setHours(day, target, ind, required, changelog.ReasonOversight)
}
