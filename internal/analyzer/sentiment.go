package analyzer

import "github.com/zombar/reviewpulse/internal/models"

// Compound score cutoffs for labeling. Rollup queries bucket rows by label,
// so these values are part of the storage contract.
const (
	positiveThreshold = 0.05
	negativeThreshold = -0.05
)

// sentimentLabel maps a compound score onto its label. Values inside the
// open interval (-0.05, 0.05) are neutral; the boundaries are not.
func sentimentLabel(compound float64) string {
	switch {
	case compound >= positiveThreshold:
		return models.LabelPositive
	case compound <= negativeThreshold:
		return models.LabelNegative
	default:
		return models.LabelNeutral
	}
}
