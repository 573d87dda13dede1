package engine

import (
	"math"

	"recovery-engine/internal/comps"
	"recovery-engine/internal/models"
)

// Policy holds the externally supplied estimation and routing tunables.
type Policy struct {
	FeeRate               float64
	RecoveryThreshold     float64
	DefaultRecoveryRate   float64
	WholesaleRecoveryRate float64
}

// Estimate projects revenue and profit for a product that was actively
// queried. Recovery above 1.0 is valid: the item resells above its
// reference retail price.
func Estimate(p models.Product, comp models.CompResult, policy Policy) models.ProductResult {
	r := models.ProductResult{
		Product:    p,
		Median:     comp.Median,
		Mean:       comp.Mean,
		P25:        comp.P25,
		P75:        comp.P75,
		SoldCount:  comp.SoldCount,
		Confidence: comps.Classify(comp.SoldCount),
		Queried:    true,
	}
	fillFinancials(&r, comp.Median, policy)
	r.Routable = Routable(r, policy.RecoveryThreshold)
	return r
}

// EstimateDefaulted projects a product that was skipped by the per-run
// query budget or a cancelled batch. It carries the configured default
// recovery assumption in place of a measured median and is never routable.
func EstimateDefaulted(p models.Product, policy Policy) models.ProductResult {
	r := models.ProductResult{
		Product:    p,
		Confidence: models.ConfidenceLow,
		Queried:    false,
	}
	syntheticMedian := round2(p.UnitRetail * policy.DefaultRecoveryRate)
	fillFinancials(&r, syntheticMedian, policy)
	r.Median = syntheticMedian
	return r
}

// EstimateZeroed is the degraded-mode shape: comps were unavailable for the
// whole run, so every comp-derived field is zero and only the catalog
// fields carry information.
func EstimateZeroed(p models.Product) models.ProductResult {
	return models.ProductResult{
		Product:    p,
		Confidence: models.ConfidenceLow,
	}
}

func fillFinancials(r *models.ProductResult, median float64, policy Policy) {
	if median > 0 && r.UnitRetail > 0 {
		r.RecoveryPct = median / r.UnitRetail
	}
	revenue := median * float64(r.Quantity)
	fee := revenue * policy.FeeRate
	cost := r.UnitCost * float64(r.Quantity)

	r.EstimatedRevenue = round2(revenue)
	r.EstimatedProfit = round2(revenue - fee - cost)
}

func round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
