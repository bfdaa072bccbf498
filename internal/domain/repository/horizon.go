package repository

// Forecast horizons, in months.
const (
	HorizonNextMonth   = 1
	HorizonNextQuarter = 3
	HorizonNextYear    = 12
)

// StandardHorizons returns the horizons reported by default.
func StandardHorizons() []int {
	return []int{HorizonNextMonth, HorizonNextQuarter, HorizonNextYear}
}

// NormalizeHorizons drops non-positive and duplicate horizons, keeping order.
// An empty result falls back to StandardHorizons.
func NormalizeHorizons(hs []int) []int {
	out := make([]int, 0, len(hs))
	seen := make(map[int]struct{}, len(hs))
	for _, h := range hs {
		if h <= 0 {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	if len(out) == 0 {
		return StandardHorizons()
	}
	return out
}
