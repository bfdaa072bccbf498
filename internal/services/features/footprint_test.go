package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EcoTrack/internal/domain/models"
)

func TestCompute(t *testing.T) {
	p := models.CompanyProfile{
		TotalEmissions:   1000,
		Scope1:           500,
		Scope2:           300,
		Scope3:           200,
		Employees:        50,
		Revenue:          2_000_000,
		ReductionTarget:  30,
		CurrentReduction: 12.5,
	}
	m := Compute(p)

	assert.InDelta(t, 0.0005, m.CarbonIntensity, 1e-12)
	assert.Equal(t, 20.0, m.PerEmployee)
	assert.Equal(t, [3]float64{0.5, 0.3, 0.2}, m.ScopeShares)
	assert.Equal(t, 17.5, m.ReductionGap)
}

func TestCompute_ZeroDenominators(t *testing.T) {
	m := Compute(models.CompanyProfile{TotalEmissions: 10, CurrentReduction: 40, ReductionTarget: 30})
	assert.Equal(t, 0.0, m.CarbonIntensity)
	assert.Equal(t, 0.0, m.PerEmployee)
	assert.Equal(t, [3]float64{}, m.ScopeShares)
	assert.Equal(t, 0.0, m.ReductionGap, "target already exceeded")
}

func TestMonthlyTotals(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 12, 0, 0, 0, time.UTC) }
	in := []models.Sample{
		{Timestamp: day(2024, 3, 2), Emissions: 10},
		{Timestamp: day(2024, 1, 31), Emissions: 5},
		{Timestamp: day(2024, 3, 30), Emissions: 2.5},
		{Timestamp: day(2024, 1, 1), Emissions: 1},
		{Timestamp: day(2024, 2, 14), Emissions: -4},
	}

	got := MonthlyTotals(in)
	require.Len(t, got, 2)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), got[0].Timestamp)
	assert.Equal(t, 6.0, got[0].Emissions)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got[1].Timestamp)
	assert.Equal(t, 12.5, got[1].Emissions)

	assert.Empty(t, MonthlyTotals(nil))
}
