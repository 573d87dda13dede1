package engine

import "recovery-engine/internal/models"

// Routable decides whether a product goes to the direct-to-consumer
// marketplace channel. Everything else moves wholesale. Deterministic over
// already-computed fields: the product must have been actively queried, meet
// the recovery threshold, and carry better than low confidence.
func Routable(r models.ProductResult, threshold float64) bool {
	if !r.Queried {
		return false
	}
	if r.Confidence == models.ConfidenceLow {
		return false
	}
	return r.RecoveryPct >= threshold
}
