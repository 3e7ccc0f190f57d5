package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCatalog() *ProviderCatalog {
	return &ProviderCatalog{
		Supplemental:        []string{"Sonia Achieng, RN", "Tabitha Wairimu, RN", "Umar Hassan, RN"},
		Oversight:           []string{"Sonia Achieng, RN", "Tabitha Wairimu, RN"},
		Secondary:           []SecondaryProvider{{Name: "Vera Njoki, LPN", Individuals: []string{"OT"}}},
		MinHours:            2,
		MaxHours:            16,
		EscalatedMax:        18,
		DailyTarget:         24,
		OversightHours:      8,
		OversightWindowDays: 7,
	}
}

func TestCatalogClassification(t *testing.T) {
	cat := validCatalog()
	assert.True(t, cat.IsSupplemental("Umar Hassan, RN"))
	assert.False(t, cat.IsSupplemental("Vera Njoki, LPN"))
	assert.True(t, cat.IsOversight("Sonia Achieng, RN"))
	assert.False(t, cat.IsOversight("Umar Hassan, RN"))
}

func TestSecondariesFor(t *testing.T) {
	cat := validCatalog()
	require.Len(t, cat.SecondariesFor("OT"), 1)
	assert.Empty(t, cat.SecondariesFor("DD"))
}

func TestCatalogValidate(t *testing.T) {
	require.NoError(t, validCatalog().Validate())

	cases := []struct {
		name   string
		mutate func(*ProviderCatalog)
		field  string
	}{
		{"no supplemental", func(c *ProviderCatalog) { c.Supplemental = nil }, "supplemental"},
		{"no oversight", func(c *ProviderCatalog) { c.Oversight = nil }, "oversight"},
		{"oversight outside roster", func(c *ProviderCatalog) { c.Oversight = []string{"Vera Njoki, LPN"} }, "oversight"},
		{"min above max", func(c *ProviderCatalog) { c.MinHours = 20 }, "min_hours/max_hours"},
		{"escalated below base", func(c *ProviderCatalog) { c.EscalatedMax = 10 }, "escalated_max"},
		{"zero target", func(c *ProviderCatalog) { c.DailyTarget = 0 }, "daily_target"},
		{"zero oversight hours", func(c *ProviderCatalog) { c.OversightHours = 0 }, "oversight_hours"},
		{"zero window", func(c *ProviderCatalog) { c.OversightWindowDays = 0 }, "oversight_window_days"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cat := validCatalog()
			tc.mutate(cat)
			err := cat.Validate()
			var ce *ConfigurationError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tc.field, ce.Field)
		})
	}
}
