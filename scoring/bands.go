package scoring

import (
	"math"

	"store-auditor/internal/types"
)

// Score bands applied on top of the heuristic check scores
const (
	SEOFloor   = 30
	SEOCeiling = 50
	AdsCeiling = 50
	UXCeiling  = 50
	UXRawCap   = 90
	UXFactor   = 0.9
)

// ScoreChecks returns round((good*100 + warning*50) / total), clamped to [0,100]
func ScoreChecks(checks []types.Check) int {
	if len(checks) == 0 {
		return 0
	}
	points := 0
	for _, check := range checks {
		switch check.Status {
		case types.StatusGood:
			points += 100
		case types.StatusWarning:
			points += 50
		}
	}
	return clamp(roundInt(float64(points)/float64(len(checks))), 0, 100)
}

// StatusLabel maps a score to its display label
func StatusLabel(score int) string {
	switch {
	case score >= 80:
		return "Excellent"
	case score >= 70:
		return "Good"
	case score >= 50:
		return "Average"
	case score >= 30:
		return "Needs improvement"
	default:
		return "Critical"
	}
}

// ScaleUX caps the raw UX score at 90 and multiplies it by 0.9
func ScaleUX(raw int) int {
	return roundInt(float64(min(raw, UXRawCap)) * UXFactor)
}

// RemapSEO maps a raw 0..100 SEO score linearly onto [30,50]
func RemapSEO(raw int) int {
	raw = clamp(raw, 0, 100)
	return SEOFloor + roundInt(float64(raw*(SEOCeiling-SEOFloor))/100)
}

// CapAds caps the ads readiness score at 50
func CapAds(raw int) int {
	return min(raw, AdsCeiling)
}

func roundInt(f float64) int {
	return int(math.Round(f))
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
