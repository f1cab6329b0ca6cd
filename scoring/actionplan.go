package scoring

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"store-auditor/internal/types"
)

// Categories scoring below ActionThreshold get an action plan entry
const ActionThreshold = 60

type planStep struct {
	category     string
	action       string
	timeEstimate string
	icon         string
	lossShare    int // percent of the loss range attributed to this step
}

// Fixed order of the action plan; it is never re-sorted by magnitude
var planSteps = []planStep{
	{causeTheme, "Replace the free theme with a custom or premium design that reflects your brand", "2-4 weeks", "palette", 20},
	{types.CategoryTrust, "Add customer reviews, trust badges and clearly linked store policies", "1-2 days", "shield", 25},
	{types.CategoryProduct, "Enrich product pages with reviews, more images, specifications and a size guide", "1-2 weeks", "package", 20},
	{types.CategoryEmail, "Set up an email capture popup and automated welcome and abandoned-cart flows", "2-3 days", "mail", 15},
	{types.CategorySEO, "Fix title tags and meta descriptions and publish product structured data for Google Shopping", "1 week", "search", 10},
	{types.CategoryAds, "Install Meta and Google Ads pixels with purchase and add-to-cart conversion events", "1-2 days", "target", 10},
}

// Priority returns the impact tier for an adjusted category score
func Priority(score int) string {
	switch {
	case score < 30:
		return types.PriorityHigh
	case score < 50:
		return types.PriorityMedium
	default:
		return types.PriorityLow
	}
}

// BuildActionPlan emits one action per weak category, theme first when a free theme was detected
func BuildActionPlan(adjusted CategoryScores, theme types.ThemeInfo, loss types.RevenueLoss) []types.ActionItem {
	plan := []types.ActionItem{}
	for _, step := range planSteps {
		action := step.action
		priority := ""

		if step.category == causeTheme {
			if !theme.IsFreeTheme {
				continue
			}
			if name := theme.Name(); name != "" {
				action = fmt.Sprintf("Replace the free %s theme with a custom or premium design that reflects your brand", name)
			}
			priority = types.PriorityHigh
		} else {
			score := adjusted.Get(step.category)
			if score >= ActionThreshold {
				continue
			}
			priority = Priority(score)
		}

		plan = append(plan, types.ActionItem{
			Action:        action,
			Priority:      priority,
			TimeEstimate:  step.timeEstimate,
			RevenueImpact: RevenueImpact(loss, step.lossShare),
			Icon:          step.icon,
		})
	}
	return plan
}

// RevenueImpact formats share percent of the loss range, e.g. "$3,250 - $8,125/month"
func RevenueImpact(loss types.RevenueLoss, share int) string {
	return fmt.Sprintf("$%s - $%s/month",
		humanize.Comma(int64(loss.Min*share/100)),
		humanize.Comma(int64(loss.Max*share/100)))
}
