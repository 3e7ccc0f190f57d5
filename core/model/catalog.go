package model

// SecondaryProvider is a last-resort provider restricted to the individuals it
// is configured for.
type SecondaryProvider struct {
	Name        string   `json:"name"`
	Individuals []string `json:"individuals"`
}

// EligibleFor reports whether the secondary provider may supplement the given
// individual.
func (s SecondaryProvider) EligibleFor(individual string) bool {
	for _, ind := range s.Individuals {
		if ind == individual {
			return true
		}
	}
	return false
}

// ProviderCatalog classifies provider names and carries the hour constraints.
// All values come from configuration; nothing here is hardcoded business data.
type ProviderCatalog struct {
	// Core providers appear in the source workbook and are never added by the
	// engine.
	Core []string `json:"core"`
	// Supplemental is the fixed roster used to fill coverage gaps, in priority
	// order.
	Supplemental []string `json:"supplemental"`
	// Oversight names the designated supervisory providers. Must be a subset
	// of Supplemental.
	Oversight []string `json:"oversight"`
	// Secondary providers are user supplied and restricted per individual.
	Secondary []SecondaryProvider `json:"secondary"`

	MinHours     float64 `json:"min_hours"`
	MaxHours     float64 `json:"max_hours"`
	EscalatedMax float64 `json:"escalated_max"`
	DailyTarget  float64 `json:"daily_target"`

	OversightHours      float64 `json:"oversight_hours"`
	OversightWindowDays int     `json:"oversight_window_days"`
}

// IsSupplemental reports whether the name belongs to the supplemental roster.
func (c *ProviderCatalog) IsSupplemental(name string) bool {
	for _, s := range c.Supplemental {
		if s == name {
			return true
		}
	}
	return false
}

// IsOversight reports whether the name is a designated oversight provider.
func (c *ProviderCatalog) IsOversight(name string) bool {
	for _, o := range c.Oversight {
		if o == name {
			return true
		}
	}
	return false
}

// SecondariesFor returns the secondary providers eligible for the individual,
// in configured order.
func (c *ProviderCatalog) SecondariesFor(individual string) []SecondaryProvider {
	var out []SecondaryProvider
	for _, s := range c.Secondary {
		if s.EligibleFor(individual) {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks that the catalog can support every balancing rule. The
// oversight invariant cannot be evaluated without oversight providers, so a
// missing roster is fatal for the run.
func (c *ProviderCatalog) Validate() error {
	if len(c.Supplemental) == 0 {
		return &ConfigurationError{Field: "supplemental", Reason: "at least one supplemental provider is required"}
	}
	if len(c.Oversight) == 0 {
		return &ConfigurationError{Field: "oversight", Reason: "at least one oversight provider is required"}
	}
	for _, o := range c.Oversight {
		if !c.IsSupplemental(o) {
			return &ConfigurationError{Field: "oversight", Reason: "oversight provider " + o + " is not in the supplemental roster"}
		}
	}
	if c.MinHours < 0 || c.MaxHours <= 0 || c.MinHours > c.MaxHours {
		return &ConfigurationError{Field: "min_hours/max_hours", Reason: "hour bounds must satisfy 0 <= min <= max"}
	}
	if c.EscalatedMax < c.MaxHours {
		return &ConfigurationError{Field: "escalated_max", Reason: "escalated cap must not be below the base cap"}
	}
	if c.DailyTarget <= 0 {
		return &ConfigurationError{Field: "daily_target", Reason: "daily target must be positive"}
	}
	if c.OversightHours <= 0 {
		return &ConfigurationError{Field: "oversight_hours", Reason: "oversight hours must be positive"}
	}
	if c.OversightWindowDays <= 0 {
		return &ConfigurationError{Field: "oversight_window_days", Reason: "oversight window must be positive"}
	}
	return nil
}
