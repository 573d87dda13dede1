package comps

import (
	"math"
	"sort"

	"recovery-engine/internal/models"
)

// ComputeStats turns a list of observed sale prices into order statistics.
// The input is not mutated; the returned Prices slice is sorted ascending.
func ComputeStats(prices []float64) models.CompResult {
	if len(prices) == 0 {
		return models.CompResult{}
	}

	sorted := make([]float64, len(prices))
	copy(sorted, prices)
	sort.Float64s(sorted)

	n := len(sorted)

	var median float64
	if n%2 == 1 {
		median = sorted[n/2]
	} else {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	sum := 0.0
	for _, p := range sorted {
		sum += p
	}

	return models.CompResult{
		Median:    round2(median),
		Mean:      round2(sum / float64(n)),
		P25:       round2(percentile(sorted, 25)),
		P75:       round2(percentile(sorted, 75)),
		SoldCount: n,
		Prices:    sorted,
	}
}

// percentile interpolates linearly between order statistics. The input must
// be sorted ascending and non-empty.
func percentile(sorted []float64, pct float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	idx := pct / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*frac
}

// round2 rounds half-up at the cent boundary.
func round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
