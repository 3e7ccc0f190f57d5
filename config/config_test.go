package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "config.yaml", "balance:\n  workers: 2\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Balance.Workers)
	assert.Equal(t, "jsonl", cfg.ChangeLog.Backend)
	assert.Equal(t, "changes.log", cfg.ChangeLog.Path)
	assert.Len(t, cfg.Catalog.Supplemental, 3)
	assert.Len(t, cfg.Catalog.Oversight, 2)
	assert.Equal(t, 2.0, cfg.Catalog.MinHours)
	assert.Equal(t, 16.0, cfg.Catalog.MaxHours)
	assert.Equal(t, 18.0, cfg.Catalog.EscalatedMax)
	assert.Equal(t, 24.0, cfg.Catalog.DailyTarget)
	assert.Equal(t, 8.0, cfg.Catalog.OversightHours)
	assert.Equal(t, 7, cfg.Catalog.OversightWindowDays)
}

func TestLoadYAMLOverrides(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
catalog:
  supplemental:
    - "Sonia Achieng, RN"
    - "Tabitha Wairimu, RN"
  oversight:
    - "Sonia Achieng, RN"
  max_hours: 12
  escalated_max: 14
changelog:
  backend: sqlite
  path: out.db
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sonia Achieng, RN", "Tabitha Wairimu, RN"}, cfg.Catalog.Supplemental)
	assert.Equal(t, []string{"Sonia Achieng, RN"}, cfg.Catalog.Oversight)
	assert.Equal(t, 12.0, cfg.Catalog.MaxHours)
	assert.Equal(t, "sqlite", cfg.ChangeLog.Backend)
	assert.Equal(t, "out.db", cfg.ChangeLog.Path)
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{"balance": {"workers": 6}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Balance.Workers)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CB_CHANGELOG__PATH", "env-changes.log")
	path := writeConfig(t, "config.yaml", "changelog:\n  backend: jsonl\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-changes.log", cfg.ChangeLog.Path)
}

func TestLoadUnsupportedFormat(t *testing.T) {
	path := writeConfig(t, "config.toml", "x = 1\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config format")
}

func TestLoadRejectsBadBackend(t *testing.T) {
	path := writeConfig(t, "config.yaml", "changelog:\n  backend: redis\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend")
}

func TestCatalogConversion(t *testing.T) {
	var c CatalogConfig
	c.SetDefaults()
	c.Secondary = []SecondaryConfig{{Name: "Vera Njoki, LPN", Individuals: []string{"OT"}}}
	cat := c.Catalog()
	require.NoError(t, cat.Validate())
	assert.True(t, cat.IsOversight(c.Supplemental[0]))
	require.Len(t, cat.Secondary, 1)
	assert.True(t, cat.Secondary[0].EligibleFor("OT"))
}
