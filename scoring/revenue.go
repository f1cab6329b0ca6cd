package scoring

import "store-auditor/internal/types"

// Revenue loss is estimated from a base monthly range scaled by how far the store is from a perfect score.
// A store scoring 0 loses LossScale times the base range; the share never drops below MinLossPercent.
const (
	// BaseMinLoss is the lower bound of the base monthly loss in dollars
	BaseMinLoss = 2000
	// BaseMaxLoss is the upper bound of the base monthly loss in dollars
	BaseMaxLoss = 5000
	// LossScale multiplies the base range before the loss percentage is applied
	LossScale = 10
	// MinLossPercent keeps even strong stores from reporting a negligible loss
	MinLossPercent = 25
)

// lossCause is one entry of the breakdown, tied to the category whose weakness causes it
type lossCause struct {
	category    string
	label       string
	description string
	colorTag    string
	weight      int // percent of (100 - adjusted score)
}

// causeTheme is not a category; it is driven by the theme fingerprint
const causeTheme = "theme"

// Causes in breakdown order

var lossCauses = []lossCause{
	{causeTheme, "Generic Free Theme", "Shoppers recognise the default template, which lowers perceived brand value and conversion.", "red", 25},
	{types.CategoryTrust, "Missing Trust Signals", "Visitors leave when reviews, policies and security cues are hard to find.", "orange", 35},
	{types.CategoryProduct, "Weak Product Pages", "Thin product pages without reviews or rich media fail to convince buyers.", "yellow", 30},
	{types.CategoryEmail, "No Email Capture", "Visitors who are not ready to buy are lost instead of being nurtured by email.", "purple", 20},
	{types.CategorySEO, "Poor SEO Visibility", "Weak metadata and missing product data reduce organic and shopping traffic.", "blue", 15},
	{types.CategoryAds, "Ads Tracking Gaps", "Without conversion tracking, ad spend cannot be optimised or retargeted.", "gray", 10},
}

// LossRange returns the monthly loss range for an overall score
func LossRange(overall int) (int, int) {
	lossPercent := max(MinLossPercent, 100-overall)
	return BaseMinLoss * LossScale * lossPercent / 100, BaseMaxLoss * LossScale * lossPercent / 100
}

// EstimateRevenueLoss converts the overall score into a monthly loss range with a cause breakdown.
// Breakdown percentages are rescaled proportionally when they add up to more than 100.
func EstimateRevenueLoss(overall int, adjusted CategoryScores, theme types.ThemeInfo) types.RevenueLoss {
	lossMin, lossMax := LossRange(overall)

	breakdown := []types.BreakdownItem{}
	sum := 0
	for _, cause := range lossCauses {
		// The theme cause only applies to free themes and follows the UX score
		var score int
		if cause.category == causeTheme {
			if !theme.IsFreeTheme {
				continue
			}
			score = adjusted.UX
		} else {
			score = adjusted.Get(cause.category)
		}

		percentage := roundInt(float64((100-score)*cause.weight) / 100)
		sum += percentage
		breakdown = append(breakdown, types.BreakdownItem{
			Label:       cause.label,
			Description: cause.description,
			Percentage:  percentage,
			ColorTag:    cause.colorTag,
		})
	}

	// Rescale so the breakdown never claims more than the whole loss
	if sum > 100 {
		for i := range breakdown {
			breakdown[i].Percentage = breakdown[i].Percentage * 100 / sum
		}
	}

	return types.RevenueLoss{
		Min:       lossMin,
		Max:       lossMax,
		Breakdown: breakdown,
	}
}
