package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Catalog   CatalogConfig   `json:"catalog"`
	Balance   BalanceConfig   `json:"balance"`
	ChangeLog ChangeLogConfig `json:"changelog"`
	Metrics   MetricsConfig   `json:"metrics"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("CB_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "cb_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Catalog.SetDefaults()
	cfg.Balance.SetDefaults()
	cfg.ChangeLog.SetDefaults()
	if err := cfg.ChangeLog.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Catalog.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// BalanceConfig holds engine tuning knobs.
type BalanceConfig struct {
	// Workers bounds the per-day worker pool. Zero means the default of four.
	Workers int `json:"workers"`
}

// SetDefaults applies sane defaults.
func (c *BalanceConfig) SetDefaults() {
	if c.Workers == 0 {
		c.Workers = 4
	}
}

// MetricsConfig enables the observability sinks.
type MetricsConfig struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusPort    string `json:"prometheus_port"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}
