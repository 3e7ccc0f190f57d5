package app

import (
	"context"
	"fmt"

	"github.com/carehours/carebalance/config"
	"github.com/carehours/carebalance/core/balance"
	"github.com/carehours/carebalance/core/balance/changelog"
	coremetrics "github.com/carehours/carebalance/core/metrics"
	"github.com/carehours/carebalance/infra/logger"
	"github.com/carehours/carebalance/infra/metrics"
	"github.com/carehours/carebalance/infra/xlsx"
	"github.com/carehours/carebalance/internal/eventbus"
)

// Service wires the parser, balancing orchestrator and export writer.
type Service struct {
	cfg          *config.Config
	orchestrator *balance.Orchestrator
	parser       *xlsx.Parser
	writer       *xlsx.Writer
	store        changelog.Store
	bus          eventbus.EventBus
	log          logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	cat := cfg.Catalog.Catalog()

	var sinks []coremetrics.RunSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(nil)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sink := metrics.NewInfluxSinkWithFallback(cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken, cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket)
		sinks = append(sinks, sink)
	}
	var sink coremetrics.RunSink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	store, err := NewStore(cfg.ChangeLog)
	if err != nil {
		return nil, fmt.Errorf("change log store: %w", err)
	}

	bus := eventbus.New()
	tracker := changelog.NewTracker()
	engine := balance.NewEngine(cat, tracker, logger.New("engine"), bus)
	orch := balance.NewOrchestrator(engine, cat, logger.New("orchestrator"), bus, sink, store, cfg.Balance.Workers)

	return &Service{
		cfg:          cfg,
		orchestrator: orch,
		parser:       xlsx.NewParser(logger.New("parser")),
		writer:       xlsx.NewWriter(cat),
		store:        store,
		bus:          bus,
		log:          logg,
	}, nil
}

// NewStore builds the change log store selected by the configuration.
func NewStore(cfg config.ChangeLogConfig) (changelog.Store, error) {
	switch cfg.Backend {
	case "sqlite":
		return changelog.NewSQLiteStore(cfg.Path)
	default:
		return changelog.NewJSONLStore(cfg.Path)
	}
}

// Bus exposes the event bus for observers.
func (s *Service) Bus() eventbus.EventBus { return s.bus }

// Run parses the input workbook, balances every day and writes the annotated
// output workbook.
func (s *Service) Run(ctx context.Context, input, output string) (*balance.RunResult, error) {
	parsed, err := s.parser.ParseFile(input)
	if err != nil {
		return nil, fmt.Errorf("parse input: %w", err)
	}
	if s.cfg.Metrics.PrometheusEnabled && s.cfg.Metrics.PrometheusPort != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	res, err := s.orchestrator.Run(ctx, parsed.Days)
	if err != nil {
		return nil, err
	}
	if output != "" {
		if err := s.writer.WriteFile(output, res.Days, parsed.Individuals, res.Records); err != nil {
			return nil, fmt.Errorf("write output: %w", err)
		}
		s.log.Infof("wrote annotated workbook to %s", output)
	}
	return res, nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.bus != nil {
		s.bus.Close()
	}
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
