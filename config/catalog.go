package config

import (
	"github.com/carehours/carebalance/core/model"
)

// SecondaryConfig declares one last-resort provider and the individuals it may
// supplement.
type SecondaryConfig struct {
	Name        string   `json:"name"`
	Individuals []string `json:"individuals"`
}

// CatalogConfig is the provider catalog as it appears in the configuration
// file. Defaults mirror the deployment this tool was first written for, but
// every field is overridable.
type CatalogConfig struct {
	Core         []string          `json:"core"`
	Supplemental []string          `json:"supplemental"`
	Oversight    []string          `json:"oversight"`
	Secondary    []SecondaryConfig `json:"secondary"`

	MinHours     float64 `json:"min_hours"`
	MaxHours     float64 `json:"max_hours"`
	EscalatedMax float64 `json:"escalated_max"`
	DailyTarget  float64 `json:"daily_target"`

	OversightHours      float64 `json:"oversight_hours"`
	OversightWindowDays int     `json:"oversight_window_days"`
}

// SetDefaults applies the standard roster and hour bounds.
func (c *CatalogConfig) SetDefaults() {
	if len(c.Supplemental) == 0 {
		c.Supplemental = []string{
			"Charles Sagini, RN/House Manager",
			"Josephine Sagini, RN/Program Manager",
			"Faith Murerwa, RN/House Supervisor",
		}
	}
	if len(c.Oversight) == 0 && len(c.Supplemental) >= 2 {
		c.Oversight = c.Supplemental[:2]
	}
	if len(c.Secondary) == 0 {
		c.Secondary = []SecondaryConfig{{Name: "Carolyn Porter, LPN", Individuals: []string{"OT"}}}
	}
	if c.MinHours == 0 {
		c.MinHours = 2
	}
	if c.MaxHours == 0 {
		c.MaxHours = 16
	}
	if c.EscalatedMax == 0 {
		c.EscalatedMax = 18
	}
	if c.DailyTarget == 0 {
		c.DailyTarget = 24
	}
	if c.OversightHours == 0 {
		c.OversightHours = 8
	}
	if c.OversightWindowDays == 0 {
		c.OversightWindowDays = 7
	}
}

// Validate delegates to the model catalog so the CLI fails fast on a catalog
// the engine could not run with.
func (c CatalogConfig) Validate() error {
	return c.Catalog().Validate()
}

// Catalog converts the configuration into the model type used by the engine.
func (c CatalogConfig) Catalog() *model.ProviderCatalog {
	cat := &model.ProviderCatalog{
		Core:                append([]string(nil), c.Core...),
		Supplemental:        append([]string(nil), c.Supplemental...),
		Oversight:           append([]string(nil), c.Oversight...),
		MinHours:            c.MinHours,
		MaxHours:            c.MaxHours,
		EscalatedMax:        c.EscalatedMax,
		DailyTarget:         c.DailyTarget,
		OversightHours:      c.OversightHours,
		OversightWindowDays: c.OversightWindowDays,
	}
	for _, s := range c.Secondary {
		cat.Secondary = append(cat.Secondary, model.SecondaryProvider{
			Name:        s.Name,
			Individuals: append([]string(nil), s.Individuals...),
		})
	}
	return cat
}
