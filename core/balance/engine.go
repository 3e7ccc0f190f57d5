package balance

import (
	"math"
	"sort"
	"time"

	"github.com/carehours/carebalance/core/balance/changelog"
	"github.com/carehours/carebalance/core/events"
	"github.com/carehours/carebalance/core/logger"
	"github.com/carehours/carebalance/core/model"
	"github.com/carehours/carebalance/internal/eventbus"
)

// Engine mutates a day's table to satisfy the coverage constraints. Each day
// is processed independently through an ordered sequence of passes: cap
// repair, gap fill, then (driven by the orchestrator) the weekly oversight
// sweep and the exception ladder. The engine never raises a fatal error for
// an unbalanceable day; it degrades to the Unbalanced flag.
type Engine struct {
	catalog *model.ProviderCatalog
	tracker *changelog.Tracker
	log     logger.Logger
	bus     eventbus.EventBus
}

// NewEngine creates an engine. The tracker receives one record per mutation;
// bus may be nil.
func NewEngine(cat *model.ProviderCatalog, tracker *changelog.Tracker, log logger.Logger, bus eventbus.EventBus) *Engine {
	return &Engine{catalog: cat, tracker: tracker, log: log, bus: bus}
}

// Tracker exposes the change tracker backing this engine.
func (e *Engine) Tracker() *changelog.Tracker { return e.tracker }

func (e *Engine) record(rec changelog.Record) {
	e.tracker.Add(rec)
	changesTotal.WithLabelValues(string(rec.Reason)).Inc()
	if e.bus != nil {
		e.bus.Publish(events.ChangeEvent{Record: rec})
	}
}

// setHours writes one cell and emits the matching change records. A write
// that creates a provider row additionally emits a new-provider-name record.
// No-op writes produce no record at all.
func (e *Engine) setHours(day *model.ScheduleDay, provider, individual string, value float64, reason changelog.Reason) bool {
	isNew := day.Provider(provider) == nil
	old, changed := day.SetHours(provider, individual, value)
	if !changed {
		return false
	}
	if isNew {
		providersAdded.Inc()
		e.record(changelog.Record{
			Day:      day.DateString(),
			Provider: provider,
			Field:    "provider_row",
			Old:      0,
			New:      value,
			Reason:   reason,
			Category: changelog.CategoryNewProvider,
		})
	}
	cat := changelog.CategoryModification
	if old == 0 && value > 0 {
		cat = changelog.CategoryAddition
	}
	e.record(changelog.Record{
		Day:        day.DateString(),
		Provider:   provider,
		Individual: individual,
		Field:      "hours",
		Old:        old,
		New:        value,
		Reason:     reason,
		Category:   cat,
	})
	return true
}

func (e *Engine) publishPass(day *model.ScheduleDay, pass string, progress bool) {
	if e.bus != nil {
		e.bus.Publish(events.PassEvent{Day: day.DateString(), Pass: pass, Progress: progress})
	}
}

// BalanceDay runs the per-day passes (cap repair, then gap fill) until they
// stop making progress. It returns true when all hard constraints hold.
// Days already flagged unbalanced are left untouched.
func (e *Engine) BalanceDay(day *model.ScheduleDay) bool {
	if day.Unbalanced {
		return false
	}
	if day.EffectiveMax == 0 {
		day.EffectiveMax = e.catalog.MaxHours
	}
	for {
		if Evaluate(day, e.catalog).Satisfied() {
			return true
		}
		progress := e.capRepair(day)
		progress = e.gapFill(day) || progress
		if !progress {
			return Evaluate(day, e.catalog).Satisfied()
		}
	}
}

// capRepair reduces over-cap providers, highest-valued entries first. Excess
// is not redistributed here; the pending deficit it creates is closed by
// later passes. Providers are never reduced below the configured minimum.
func (e *Engine) capRepair(day *model.ScheduleDay) bool {
	start := time.Now()
	defer func() { passDuration.WithLabelValues("cap_repair").Observe(time.Since(start).Seconds()) }()

	max := effectiveMax(day, e.catalog)
	progress := false
	for _, p := range day.Providers {
		if !p.Active() {
			continue
		}
		total := p.Total()
		if total <= max+hoursEpsilon {
			continue
		}
		excess := total - max
		reducible := total - e.catalog.MinHours
		toCut := math.Min(excess, reducible)
		if excess > reducible+hoursEpsilon {
			e.log.Warnf("%s: provider %s excess %.2fh cannot be fully repaired without breaching the minimum",
				day.DateString(), p.Name, excess-reducible)
		}
		for toCut > hoursEpsilon {
			ind := e.cutTarget(day, p)
			if ind == "" {
				break
			}
			cut := math.Min(p.Hours[ind], toCut)
			if !e.setHours(day, p.Name, ind, p.Hours[ind]-cut, changelog.ReasonCapRepair) {
				break
			}
			toCut -= cut
			progress = true
		}
	}
	e.publishPass(day, "cap_repair", progress)
	return progress
}

// largestEntry returns the individual with the highest hour entry for the
// provider. Ties break toward the lexically smallest identifier so repeated
// runs are deterministic.
func largestEntry(p *model.ProviderEntry, individuals []string) string {
	best := ""
	var bestVal float64
	for _, ind := range individuals {
		if v := p.Hours[ind]; v > bestVal+hoursEpsilon {
			best, bestVal = ind, v
		}
	}
	return best
}

// cutTarget picks the entry a cap repair should reduce next. Qualifying
// oversight entries are spared so the weekly invariant survives the repair
// that follows an oversight injection; an over-cap oversight provider always
// has enough non-oversight hours to absorb the excess, so the fallback to the
// unguarded pick only triggers on degenerate hand-built days.
func (e *Engine) cutTarget(day *model.ScheduleDay, p *model.ProviderEntry) string {
	if !e.catalog.IsOversight(p.Name) {
		return largestEntry(p, day.SortedIndividuals())
	}
	best := ""
	var bestVal float64
	for _, ind := range day.SortedIndividuals() {
		v := p.Hours[ind]
		if math.Abs(v-e.catalog.OversightHours) <= hoursEpsilon {
			continue
		}
		if v > bestVal+hoursEpsilon {
			best, bestVal = ind, v
		}
	}
	if best == "" {
		return largestEntry(p, day.SortedIndividuals())
	}
	return best
}

// gapFill closes positive pending per individual, in ascending identifier
// order, by raising zero-hour supplemental rows and then introducing unused
// supplemental providers from the roster, in roster priority order.
func (e *Engine) gapFill(day *model.ScheduleDay) bool {
	start := time.Now()
	defer func() { passDuration.WithLabelValues("gap_fill").Observe(time.Since(start).Seconds()) }()

	max := effectiveMax(day, e.catalog)
	progress := false
	for _, ind := range day.SortedIndividuals() {
		pending := day.Pending(ind, e.catalog.DailyTarget)
		if pending <= hoursEpsilon {
			continue
		}
		// Existing zero-hour supplemental rows first.
		for _, name := range e.catalog.Supplemental {
			if pending <= hoursEpsilon {
				break
			}
			p := day.Provider(name)
			if p == nil || p.Hours[ind] != 0 {
				continue
			}
			room := max - p.Total()
			add := math.Min(pending, room)
			if add <= hoursEpsilon {
				continue
			}
			if e.setHours(day, name, ind, add, changelog.ReasonGapFill) {
				pending -= add
				progress = true
			}
		}
		// Then introduce roster providers not yet on the day. More than one
		// may be added when a single provider cannot absorb the full gap.
		for _, name := range e.catalog.Supplemental {
			if pending <= hoursEpsilon {
				break
			}
			if day.Provider(name) != nil {
				continue
			}
			add := math.Min(pending, max)
			if e.setHours(day, name, ind, add, changelog.ReasonGapFill) {
				pending -= add
				progress = true
			}
		}
	}
	e.publishPass(day, "gap_fill", progress)
	return progress
}

// Ladder runs the exception ladder for a day the earlier passes left
// unresolved: adjust non-zero entries, escalate the cap, inject secondary
// providers, and finally flag the day unbalanced. Once flagged no further
// mutation is attempted.
func (e *Engine) Ladder(day *model.ScheduleDay) bool {
	if day.Unbalanced {
		return false
	}
	start := time.Now()
	defer func() { passDuration.WithLabelValues("ladder").Observe(time.Since(start).Seconds()) }()

	if Evaluate(day, e.catalog).Satisfied() {
		return true
	}

	e.adjustNonzero(day)
	if Evaluate(day, e.catalog).Satisfied() {
		return true
	}

	if day.EffectiveMax < e.catalog.EscalatedMax {
		old := day.EffectiveMax
		day.EffectiveMax = e.catalog.EscalatedMax
		e.record(changelog.Record{
			Day:      day.DateString(),
			Field:    "effective_max",
			Old:      old,
			New:      day.EffectiveMax,
			Reason:   changelog.ReasonCapEscalated,
			Category: changelog.CategoryModification,
		})
		e.capRepair(day)
		e.gapFill(day)
		e.adjustNonzero(day)
		if Evaluate(day, e.catalog).Satisfied() {
			return true
		}
	}

	e.injectSecondary(day)
	if Evaluate(day, e.catalog).Satisfied() {
		return true
	}

	day.Unbalanced = true
	daysUnbalanced.Inc()
	e.record(changelog.Record{
		Day:      day.DateString(),
		Field:    "unbalanced",
		Old:      0,
		New:      1,
		Reason:   changelog.ReasonUnbalanced,
		Category: changelog.CategoryUnbalancedDay,
	})
	e.log.Warnf("%s: day flagged unbalanced after exception ladder", day.DateString())
	e.publishPass(day, "ladder", false)
	return false
}

// adjustNonzero is ladder step one: close gaps by adjusting existing non-zero
// entries. Increases prefer under-utilized supplemental providers, then any
// other provider. Reductions take the largest entries first, never drop an
// entry below the configured minimum (so never to zero), and spare qualifying
// oversight entries so the weekly invariant survives the repair.
func (e *Engine) adjustNonzero(day *model.ScheduleDay) bool {
	max := effectiveMax(day, e.catalog)
	progress := false
	for _, ind := range day.SortedIndividuals() {
		pending := day.Pending(ind, e.catalog.DailyTarget)
		if math.Abs(pending) <= hoursEpsilon {
			continue
		}
		if pending > 0 {
			for _, p := range e.adjustOrder(day) {
				if pending <= hoursEpsilon {
					break
				}
				cur := p.Hours[ind]
				if cur <= 0 {
					continue
				}
				room := max - p.Total()
				add := math.Min(pending, room)
				if add <= hoursEpsilon {
					continue
				}
				if e.setHours(day, p.Name, ind, cur+add, changelog.ReasonLadderAdjust) {
					pending -= add
					progress = true
				}
			}
			continue
		}
		for _, p := range e.reduceOrder(day, ind) {
			if -pending <= hoursEpsilon {
				break
			}
			cur := p.Hours[ind]
			if cur <= 0 {
				continue
			}
			if e.catalog.IsOversight(p.Name) && math.Abs(cur-e.catalog.OversightHours) <= hoursEpsilon {
				continue
			}
			reducible := cur - e.catalog.MinHours
			cut := math.Min(-pending, reducible)
			if cut <= hoursEpsilon {
				continue
			}
			if e.setHours(day, p.Name, ind, cur-cut, changelog.ReasonLadderAdjust) {
				pending += cut
				progress = true
			}
		}
	}
	return progress
}

// reduceOrder returns the day's providers sorted by descending hours for the
// individual, row order on ties.
func (e *Engine) reduceOrder(day *model.ScheduleDay, ind string) []*model.ProviderEntry {
	out := append([]*model.ProviderEntry(nil), day.Providers...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Hours[ind] > out[j].Hours[ind]+hoursEpsilon
	})
	return out
}

// adjustOrder returns the day's providers with supplemental rows first,
// ordered by ascending total (least utilized first, roster order on ties),
// followed by the remaining providers in row order.
func (e *Engine) adjustOrder(day *model.ScheduleDay) []*model.ProviderEntry {
	var supp, rest []*model.ProviderEntry
	rosterPos := make(map[string]int, len(e.catalog.Supplemental))
	for i, name := range e.catalog.Supplemental {
		rosterPos[name] = i
	}
	for _, p := range day.Providers {
		if e.catalog.IsSupplemental(p.Name) {
			supp = append(supp, p)
		} else {
			rest = append(rest, p)
		}
	}
	sort.SliceStable(supp, func(i, j int) bool {
		ti, tj := supp[i].Total(), supp[j].Total()
		if math.Abs(ti-tj) > hoursEpsilon {
			return ti < tj
		}
		return rosterPos[supp[i].Name] < rosterPos[supp[j].Name]
	})
	return append(supp, rest...)
}

// injectSecondary is the last ladder step before flagging: add configured
// secondary providers for the individuals they are restricted to.
func (e *Engine) injectSecondary(day *model.ScheduleDay) bool {
	max := effectiveMax(day, e.catalog)
	progress := false
	for _, ind := range day.SortedIndividuals() {
		pending := day.Pending(ind, e.catalog.DailyTarget)
		if pending <= hoursEpsilon {
			continue
		}
		for _, sec := range e.catalog.SecondariesFor(ind) {
			if pending <= hoursEpsilon {
				break
			}
			add := math.Min(pending, max)
			if p := day.Provider(sec.Name); p != nil {
				room := max - p.Total()
				add = math.Min(pending, room)
				if add <= hoursEpsilon {
					continue
				}
				add += p.Hours[ind]
			}
			if e.setHours(day, sec.Name, ind, add, changelog.ReasonSecondary) {
				pending = day.Pending(ind, e.catalog.DailyTarget)
				progress = true
			}
		}
	}
	return progress
}
