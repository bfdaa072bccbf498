// Package features derives footprint ratios from a company profile and
// rolls raw readings up into the monthly series the engine runs on.
package features

import (
	"math"
	"sort"
	"time"

	"EcoTrack/internal/domain/models"
	xutil "EcoTrack/pkg/util"
)

// CarbonIntensity is total emissions per unit of revenue, 0 when revenue is 0.
func CarbonIntensity(p models.CompanyProfile) float64 {
	return safeDiv(p.TotalEmissions, p.Revenue)
}

// PerEmployee is total emissions per employee, 0 when there are no employees.
func PerEmployee(p models.CompanyProfile) float64 {
	return safeDiv(p.TotalEmissions, float64(p.Employees))
}

// ScopeShares returns each scope as a fraction of the scope sum (all 0 when the sum is 0).
func ScopeShares(p models.CompanyProfile) [3]float64 {
	sum := p.Scope1 + p.Scope2 + p.Scope3
	return [3]float64{
		safeDiv(p.Scope1, sum),
		safeDiv(p.Scope2, sum),
		safeDiv(p.Scope3, sum),
	}
}

// ReductionGap is how many percentage points remain to reach the target.
func ReductionGap(p models.CompanyProfile) float64 {
	return math.Max(0, p.ReductionTarget-p.CurrentReduction)
}

// Compute bundles the profile ratios.
func Compute(p models.CompanyProfile) models.FootprintMetrics {
	return models.FootprintMetrics{
		CarbonIntensity: CarbonIntensity(p),
		PerEmployee:     PerEmployee(p),
		ScopeShares:     ScopeShares(p),
		ReductionGap:    ReductionGap(p),
	}
}

// MonthlyTotals sums samples per UTC calendar month. The result is ordered
// oldest first and each sample is stamped with its month start. Negative
// readings are ignored.
func MonthlyTotals(samples []models.Sample) []models.Sample {
	if len(samples) == 0 {
		return []models.Sample{}
	}

	totals := make(map[time.Time]float64)
	for _, s := range samples {
		if s.Emissions < 0 || math.IsNaN(s.Emissions) {
			continue
		}
		totals[xutil.MonthStart(s.Timestamp)] += s.Emissions
	}

	out := make([]models.Sample, 0, len(totals))
	for month, total := range totals {
		out = append(out, models.Sample{Timestamp: month, Emissions: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
