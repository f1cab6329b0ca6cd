package scoring

import (
	"math"

	"store-auditor/internal/types"
)

// Category weights of the raw overall score
const (
	WeightTrust   = 0.25
	WeightUX      = 0.20
	WeightSEO     = 0.20
	WeightProduct = 0.20
	WeightEmail   = 0.10
	WeightAds     = 0.05
)

const (
	// OverallPenalty is subtracted from the raw overall score
	OverallPenalty = 25
	// OverallCeiling caps the displayed overall score and every adjusted category score
	OverallCeiling = 75
	// Adjusted category scores drop by at least MinReduction points or ReductionRate of the scaled score
	MinReduction  = 15
	ReductionRate = 0.2
)

// CategoryScores holds one score per category
type CategoryScores struct {
	Trust   int
	UX      int
	SEO     int
	Product int
	Email   int
	Ads     int
}

// Aggregation is the output of Aggregate
type Aggregation struct {
	RawOverall   int
	OverallScore int
	Adjusted     CategoryScores
}

// Aggregate combines category scores into the displayed overall score and re-derives
// adjusted category scores consistent with it.
func Aggregate(scores CategoryScores) Aggregation {
	weighted := float64(scores.Trust)*WeightTrust +
		float64(scores.UX)*WeightUX +
		float64(scores.SEO)*WeightSEO +
		float64(scores.Product)*WeightProduct +
		float64(scores.Email)*WeightEmail +
		float64(scores.Ads)*WeightAds
	raw := roundInt(weighted)
	overall := clamp(raw-OverallPenalty, 0, OverallCeiling)

	agg := Aggregation{RawOverall: raw, OverallScore: overall}

	// Scale each category by the same displayed/raw ratio, then apply the urgency reduction
	factor := agg.AdjustmentFactor()
	adjust := func(score int) int {
		scaled := roundInt(float64(score) * factor)
		reduction := max(MinReduction, roundInt(float64(scaled)*ReductionRate))
		return clamp(scaled-reduction, 0, OverallCeiling)
	}

	agg.Adjusted = CategoryScores{
		Trust:   adjust(scores.Trust),
		UX:      adjust(scores.UX),
		SEO:     adjust(scores.SEO),
		Product: adjust(scores.Product),
		Email:   adjust(scores.Email),
		Ads:     adjust(scores.Ads),
	}

	// Per-category bands hold after the adjustment too
	agg.Adjusted.UX = min(agg.Adjusted.UX, UXCeiling)
	agg.Adjusted.SEO = clamp(agg.Adjusted.SEO, SEOFloor, SEOCeiling)
	agg.Adjusted.Ads = min(agg.Adjusted.Ads, AdsCeiling)

	return agg
}

// AdjustmentFactor returns the ratio of the displayed overall score to the raw one.
// A zero raw score is treated as 1 so the factor is always defined.
func (a Aggregation) AdjustmentFactor() float64 {
	return float64(a.OverallScore) / math.Max(float64(a.RawOverall), 1)
}

// Get returns the score of the category with the given id
func (s CategoryScores) Get(id string) int {
	switch id {
	case types.CategoryTrust:
		return s.Trust
	case types.CategoryUX:
		return s.UX
	case types.CategorySEO:
		return s.SEO
	case types.CategoryProduct:
		return s.Product
	case types.CategoryEmail:
		return s.Email
	case types.CategoryAds:
		return s.Ads
	}
	return 0
}

// Set stores the score of the category with the given id
func (s *CategoryScores) Set(id string, score int) {
	switch id {
	case types.CategoryTrust:
		s.Trust = score
	case types.CategoryUX:
		s.UX = score
	case types.CategorySEO:
		s.SEO = score
	case types.CategoryProduct:
		s.Product = score
	case types.CategoryEmail:
		s.Email = score
	case types.CategoryAds:
		s.Ads = score
	}
}
