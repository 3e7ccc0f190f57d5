package balance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateReportsViolations(t *testing.T) {
	cat := testCatalog()
	day := makeDay(t, "03/01/2025", []string{"DD"},
		row("Gloria Wanjiru", map[string]float64{"DD": 20}),
		row("Brian Otieno", map[string]float64{"DD": 1}),
		row("Cara Mwangi", map[string]float64{"DD": 0}),
	)

	rep := Evaluate(day, cat)
	assert.True(t, rep.Providers["Gloria Wanjiru"].OverCap)
	assert.True(t, rep.Providers["Brian Otieno"].UnderMin)
	// Inactive rows are exempt from the hour bounds.
	assert.False(t, rep.Providers["Cara Mwangi"].UnderMin)
	assert.InDelta(t, 3, rep.Pending["DD"], hoursEpsilon)
	assert.False(t, rep.Satisfied())
}

func TestEvaluateSatisfied(t *testing.T) {
	cat := testCatalog()
	day := makeDay(t, "03/01/2025", []string{"DD"},
		row("Gloria Wanjiru", map[string]float64{"DD": 16}),
		row("Brian Otieno", map[string]float64{"DD": 8}),
	)
	assert.True(t, Evaluate(day, cat).Satisfied())
}

func TestEvaluateFlagsOverAllocation(t *testing.T) {
	cat := testCatalog()
	day := makeDay(t, "03/01/2025", []string{"DD"},
		row("Gloria Wanjiru", map[string]float64{"DD": 16}),
		row("Brian Otieno", map[string]float64{"DD": 12}),
	)
	rep := Evaluate(day, cat)
	assert.InDelta(t, -4, rep.Pending["DD"], hoursEpsilon)
	assert.False(t, rep.Satisfied())
}

func TestEvaluateUsesEscalatedCap(t *testing.T) {
	cat := testCatalog()
	day := makeDay(t, "03/01/2025", []string{"DD"},
		row("Gloria Wanjiru", map[string]float64{"DD": 18}),
		row("Brian Otieno", map[string]float64{"DD": 6}),
	)
	assert.True(t, Evaluate(day, cat).Providers["Gloria Wanjiru"].OverCap)
	day.EffectiveMax = cat.EscalatedMax
	assert.False(t, Evaluate(day, cat).Providers["Gloria Wanjiru"].OverCap)
}

func TestEvaluateIsPure(t *testing.T) {
	cat := testCatalog()
	day := makeDay(t, "03/01/2025", []string{"DD"},
		row("Gloria Wanjiru", map[string]float64{"DD": 20}),
	)
	before := day.Clone()
	Evaluate(day, cat)
	assert.Equal(t, before, day.Clone())
}
