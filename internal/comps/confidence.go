package comps

import "recovery-engine/internal/models"

// Confidence tier boundaries by sample size.
const (
	highSampleFloor   = 20
	mediumSampleFloor = 5
)

// Classify maps a comp sample count to a confidence tier.
func Classify(sampleCount int) string {
	switch {
	case sampleCount >= highSampleFloor:
		return models.ConfidenceHigh
	case sampleCount >= mediumSampleFloor:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}
