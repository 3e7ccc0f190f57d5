package balance

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/carehours/carebalance/core/balance/changelog"
	"github.com/carehours/carebalance/core/events"
	"github.com/carehours/carebalance/core/logger"
	"github.com/carehours/carebalance/core/metrics"
	"github.com/carehours/carebalance/core/model"
	"github.com/carehours/carebalance/internal/eventbus"
)

// RunResult aggregates the outcome of one balancing run.
type RunResult struct {
	RunID   string
	Days    []*model.ScheduleDay
	Records []changelog.Record
	Summary changelog.Summary
	Stats   metrics.RunStats
	// DataErrors lists the per-day errors that caused days to be skipped.
	DataErrors []error
}

// Orchestrator drives the engine over a consolidated dataset: per-day passes
// in parallel, then the sequential oversight sweep, then the exception ladder
// for any day still unresolved.
type Orchestrator struct {
	engine  *Engine
	catalog *model.ProviderCatalog
	log     logger.Logger
	bus     eventbus.EventBus
	sink    metrics.RunSink
	store   changelog.Store
	workers int
}

// NewOrchestrator creates an orchestrator. sink and store may be nil; workers
// below one defaults to four.
func NewOrchestrator(engine *Engine, cat *model.ProviderCatalog, log logger.Logger, bus eventbus.EventBus, sink metrics.RunSink, store changelog.Store, workers int) *Orchestrator {
	if workers < 1 {
		workers = 4
	}
	return &Orchestrator{engine: engine, catalog: cat, log: log, bus: bus, sink: sink, store: store, workers: workers}
}

// Run balances every day of the dataset and returns the annotated result.
// A ConfigurationError is fatal; DataErrors skip only the day they name.
func (o *Orchestrator) Run(ctx context.Context, days []*model.ScheduleDay) (*RunResult, error) {
	if err := o.catalog.Validate(); err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	startedAt := time.Now()

	sorted := append([]*model.ScheduleDay(nil), days...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	var valid []*model.ScheduleDay
	var dataErrs []error
	for _, day := range sorted {
		if err := day.Validate(); err != nil {
			var de *model.DataError
			if errors.As(err, &de) {
				o.log.Errorf("skipping day: %v", err)
				dataErrs = append(dataErrs, err)
				if o.bus != nil {
					o.bus.Publish(events.DayEvent{Day: day.DateString(), Action: "data_error", Err: err})
				}
				continue
			}
			return nil, err
		}
		valid = append(valid, day)
	}

	// Stage one: per-day passes, no cross-day dependency.
	o.parallel(valid, func(day *model.ScheduleDay) {
		if o.bus != nil {
			o.bus.Publish(events.DayEvent{Day: day.DateString(), Action: "start"})
		}
		o.engine.BalanceDay(day)
	})

	// Stage two: the oversight sweep reads and writes across day boundaries,
	// so it runs strictly after all per-day totals are stable.
	o.engine.OversightSweep(valid)

	// Stage three: exception ladder for whatever is still unresolved.
	o.parallel(valid, func(day *model.ScheduleDay) {
		if Evaluate(day, o.catalog).Satisfied() {
			return
		}
		o.engine.Ladder(day)
	})

	records := sortRecords(o.engine.Tracker().Records())
	res := &RunResult{
		RunID:      runID,
		Days:       sorted,
		Records:    records,
		Summary:    changelog.Summarize(records),
		DataErrors: dataErrs,
	}
	res.Stats = o.buildStats(runID, startedAt, valid, dataErrs, res.Records)

	for _, day := range valid {
		action := "balanced"
		if day.Unbalanced {
			action = "unbalanced"
		} else {
			daysBalanced.Inc()
		}
		if o.bus != nil {
			o.bus.Publish(events.DayEvent{Day: day.DateString(), Action: action})
		}
	}

	o.persist(ctx, runID, res)
	o.recordStats(res.Stats, valid, runID)
	o.log.Infof("run %s: %d days processed, %d balanced, %d unbalanced, %d changes",
		runID, res.Stats.DaysProcessed, res.Stats.DaysBalanced, res.Stats.DaysUnbalanced, len(res.Records))
	return res, nil
}

// sortRecords orders records by day date, keeping per-day emission order.
// Worker interleaving makes the raw tracker order vary between runs; after
// this sort two runs on identical input yield identical record slices.
func sortRecords(records []changelog.Record) []changelog.Record {
	sort.SliceStable(records, func(i, j int) bool {
		di, erri := time.Parse(model.DateFormat, records[i].Day)
		dj, errj := time.Parse(model.DateFormat, records[j].Day)
		if erri != nil || errj != nil {
			return records[i].Day < records[j].Day
		}
		return di.Before(dj)
	})
	return records
}

// parallel applies fn to each day on a bounded worker pool. Days are
// independent units at this stage, so ordering does not matter.
func (o *Orchestrator) parallel(days []*model.ScheduleDay, fn func(*model.ScheduleDay)) {
	sem := make(chan struct{}, o.workers)
	var wg sync.WaitGroup
	for _, day := range days {
		wg.Add(1)
		sem <- struct{}{}
		go func(d *model.ScheduleDay) {
			defer wg.Done()
			defer func() { <-sem }()
			fn(d)
		}(day)
	}
	wg.Wait()
}

func (o *Orchestrator) buildStats(runID string, start time.Time, valid []*model.ScheduleDay, dataErrs []error, records []changelog.Record) metrics.RunStats {
	stats := metrics.RunStats{
		RunID:         runID,
		Start:         start,
		End:           time.Now(),
		DaysProcessed: len(valid) + len(dataErrs),
		DataErrors:    len(dataErrs),
	}
	var totals []float64
	for _, day := range valid {
		if day.Unbalanced {
			stats.DaysUnbalanced++
		} else {
			stats.DaysBalanced++
		}
		for _, p := range day.Providers {
			if p.Active() {
				totals = append(totals, p.Total())
			}
		}
	}
	for _, rec := range records {
		switch rec.Category {
		case changelog.CategoryNewProvider:
			stats.ProvidersAdded++
		case changelog.CategoryAddition, changelog.CategoryModification:
			stats.EntriesModified++
		}
	}
	if len(totals) > 0 {
		stats.ProviderTotalMean = stat.Mean(totals, nil)
		stats.ProviderTotalStdDev = stat.StdDev(totals, nil)
	}
	return stats
}

func (o *Orchestrator) persist(ctx context.Context, runID string, res *RunResult) {
	if o.store == nil {
		return
	}
	now := time.Now()
	for _, rec := range res.Records {
		if err := o.store.Append(ctx, changelog.Entry{RunID: runID, Timestamp: now, Record: rec}); err != nil {
			o.log.Errorf("change log store: %v", err)
			return
		}
	}
}

func (o *Orchestrator) recordStats(stats metrics.RunStats, valid []*model.ScheduleDay, runID string) {
	if o.sink == nil {
		return
	}
	if err := o.sink.RecordRunStats(stats); err != nil {
		o.log.Errorf("metrics sink: %v", err)
	}
	if dr, ok := o.sink.(metrics.DayRecorder); ok {
		recs := make([]metrics.DayStats, 0, len(valid))
		for _, day := range valid {
			recs = append(recs, metrics.DayStats{
				RunID:      runID,
				Day:        day.DateString(),
				Balanced:   !day.Unbalanced,
				Changes:    len(o.engine.Tracker().Day(day.DateString())),
				Escalated:  day.EffectiveMax > o.catalog.MaxHours,
				RecordedAt: stats.End,
			})
		}
		if err := dr.RecordDayStats(recs); err != nil {
			o.log.Errorf("day metrics sink: %v", err)
		}
	}
}
