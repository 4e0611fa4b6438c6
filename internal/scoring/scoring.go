// Package scoring implements the deterministic weighted-scoring engine.
//
// Both the orchestrator and any stream consumer re-deriving state from
// frames must use these functions so that rounding, tie-break, and category
// boundaries are bit-for-bit identical on both ends.
package scoring

import (
	"math"

	"github.com/leadlens/leadlens/internal/assess"
)

// Category labels for the fixed score boundaries.
const (
	CategoryCritical   = "Critical"
	CategoryPoor       = "Poor"
	CategoryAcceptable = "Acceptable"
	CategoryGood       = "Good"
	CategoryExcellent  = "Excellent"
)

// NeutralScore is the defined result when the total weight is zero.
const NeutralScore = 3.0

// WeightedAverage computes the overall score for a result set on the 0-5
// scale, rounded to one decimal place (half away from zero). A zero total
// weight yields the neutral midpoint.
func WeightedAverage(results []assess.CriterionResult) float64 {
	var sum, totalWeight float64
	for _, r := range results {
		sum += float64(r.Score) * r.Weight
		totalWeight += r.Weight
	}
	if totalWeight == 0 {
		return NeutralScore
	}
	scaled := sum / (5 * totalWeight) * 5
	return RoundHalfAway(scaled, 1)
}

// WeightedScore returns score x weight rounded to two decimals, the per-
// criterion figure carried in results.
func WeightedScore(score int, weight float64) float64 {
	return RoundHalfAway(float64(score)*weight, 2)
}

// RoundHalfAway rounds v to the given number of decimal places using
// round-half-away-from-zero semantics.
func RoundHalfAway(v float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(v*shift) / shift
}

// Categorize maps an overall score to its category label using half-open
// boundaries: [0,2) Critical, [2,3) Poor, [3,3.5) Acceptable, [3.5,4.5)
// Good, [4.5,∞) Excellent. The edges at exactly 2.0, 3.0, 3.5, and 4.5
// belong to the higher bucket.
func Categorize(score float64) string {
	switch {
	case score < 2:
		return CategoryCritical
	case score < 3:
		return CategoryPoor
	case score < 3.5:
		return CategoryAcceptable
	case score < 4.5:
		return CategoryGood
	default:
		return CategoryExcellent
	}
}
