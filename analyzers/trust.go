package analyzers

import (
	"regexp"
	"strings"

	"store-auditor/internal/types"
	"store-auditor/scoring"
)

// TrustAnalyzer checks the signals that make a first-time visitor trust the store
type TrustAnalyzer struct {
	*BaseAnalyzer
}

const (
	itemReviews       = "Customer Reviews"
	itemTrustBadges   = "Trust Badges"
	itemContactInfo   = "Contact Information"
	itemPolicyPages   = "Store Policies"
	itemSocialProof   = "Social Proof"
	itemSecurity      = "Security Badges"
	itemReturnPolicy  = "Return Policy"
	itemShippingInfo  = "Shipping Information"
	itemGuarantee     = "Money-Back Guarantee"
	itemCustomerCount = "Customer Count"
)

var (
	policyLinkPattern    = regexp.MustCompile(`(polic|privacy|terms|refund|return|shipping-policy|legal|imprint)`)
	socialLinkPattern    = regexp.MustCompile(`(facebook\.com|instagram\.com|twitter\.com|//x\.com|tiktok\.com|pinterest\.|youtube\.com|linkedin\.com)`)
	contactLinkPattern   = regexp.MustCompile(`(contact|support|help|customer-service)`)
	returnLinkPattern    = regexp.MustCompile(`return`)
	shippingLinkPattern  = regexp.MustCompile(`shipping|delivery`)
	customerCountPattern = regexp.MustCompile(`\d[\d,.]*\s*(k|m)?\+?\s*(happy |satisfied |loyal |verified )?(customers|orders|sold|reviews|clients|buyers|shoppers)`)
)

var reviewSelectors = []string{
	"[class*='review']", "[id*='review']", "[class*='rating']", "[class*='testimonial']",
	".spr-badge", ".jdgm-widget", ".yotpo", ".stamped-badge", ".loox-rating", ".okeReviews", "[data-rating]",
}

var trustBadgeSelectors = []string{
	"img[alt*='trust']", "img[alt*='Trust']", "img[alt*='badge']", "img[alt*='Badge']",
	"img[alt*='secure']", "img[alt*='Secure']", "img[alt*='verified']", "img[alt*='Verified']",
	"img[src*='trust']", "img[src*='badge']", "[class*='trust-badge']", "[class*='trust_badge']",
	"[class*='trustbadge']", "[class*='badges']",
}

// ID returns the category id
func (a *TrustAnalyzer) ID() string {
	return types.CategoryTrust
}

// Analyze runs the trust checks
func (a *TrustAnalyzer) Analyze(in Input) types.CategoryResult {
	page := in.Page
	text := page.Text()
	lower := page.LowerHTML()

	checks := []types.Check{
		a.checkReviews(in),
		a.checkTrustBadges(in),
		a.checkContact(in),
	}

	// Policy pages
	policies := uniquePaths(anchorsMatching(page, policyLinkPattern))
	checks = append(checks, tiered(itemPolicyPages, policies, 3, 1,
		"%d policy pages linked (privacy, terms, refunds)",
		"Only %d policy page linked; add privacy, terms and refund policies",
		"%d policy pages linked; shoppers cannot find your store policies"))

	// Social profiles
	social := uniquePaths(anchorsMatching(page, socialLinkPattern))
	checks = append(checks, tiered(itemSocialProof, social, 2, 1,
		"Linked to %d social profiles",
		"Only %d social profile linked",
		"%d social profiles linked; no social proof visible"))

	// Security badges or secure checkout messaging
	switch {
	case containsAny(text, "ssl secure", "ssl encrypt", "secure checkout", "secure payment", "256-bit", "encrypted") ||
		containsAny(lower, "nortonseal", "norton secured", "mcafeesecure", "trustedsite", "sectigo"):
		checks = append(checks, good(itemSecurity, "Security and secure checkout messaging is visible"))
	case strings.HasPrefix(page.URL, "https://"):
		checks = append(checks, warning(itemSecurity, "Site uses HTTPS but shows no security badges or secure checkout messaging"))
	default:
		checks = append(checks, critical(itemSecurity, "No HTTPS and no security messaging found"))
	}

	// Returns
	switch {
	case len(anchorsMatching(page, returnLinkPattern)) > 0 || (strings.Contains(text, "return") && containsAny(text, "days", "policy", "free returns")):
		checks = append(checks, good(itemReturnPolicy, "Return policy is linked or described"))
	case strings.Contains(text, "refund"):
		checks = append(checks, warning(itemReturnPolicy, "Refunds are mentioned but no clear return policy is visible"))
	default:
		checks = append(checks, critical(itemReturnPolicy, "No return policy found"))
	}

	// Shipping
	switch {
	case containsAny(text, "free shipping", "free delivery") || len(anchorsMatching(page, shippingLinkPattern)) > 0:
		checks = append(checks, good(itemShippingInfo, "Shipping information is visible"))
	case containsAny(text, "shipping", "delivery", "ships"):
		checks = append(checks, warning(itemShippingInfo, "Shipping is mentioned but costs and times are unclear"))
	default:
		checks = append(checks, critical(itemShippingInfo, "No shipping information found"))
	}

	// Guarantees
	switch {
	case containsAny(text, "money-back", "money back", "satisfaction guarantee", "guaranteed", "risk-free", "risk free"):
		checks = append(checks, good(itemGuarantee, "A guarantee is offered"))
	case containsAny(text, "guarantee", "warranty"):
		checks = append(checks, warning(itemGuarantee, "Warranty or guarantee mentioned without a clear promise"))
	default:
		checks = append(checks, critical(itemGuarantee, "No money-back or satisfaction guarantee found"))
	}

	// Social proof by numbers, e.g. "10,000+ happy customers"
	switch {
	case customerCountPattern.MatchString(text):
		checks = append(checks, good(itemCustomerCount, "Customer or sales volume is highlighted (%s)", customerCountPattern.FindString(text)))
	case containsAny(text, "best seller", "bestseller", "best-seller", "trending", "popular"):
		checks = append(checks, warning(itemCustomerCount, "Popularity hinted but no customer or order numbers shown"))
	default:
		checks = append(checks, critical(itemCustomerCount, "No customer count or sales volume mentioned"))
	}

	score := scoring.ScoreChecks(checks)
	impact, recommendation := trustNarrative(checks)
	return newResult(types.CategoryTrust, "Trust Signals", checks, score, impact, recommendation)
}

func (a *TrustAnalyzer) checkReviews(in Input) types.Check {
	page := in.Page
	if hasAnySelector(page, reviewSelectors...) {
		return good(itemReviews, "Customer reviews or ratings are displayed")
	}
	if containsAny(page.Text(), "review", "testimonial", "what our customers say") {
		return warning(itemReviews, "Reviews are mentioned but no review widget was found")
	}
	return critical(itemReviews, "No customer reviews found on the page")
}

func (a *TrustAnalyzer) checkTrustBadges(in Input) types.Check {
	page := in.Page
	if hasAnySelector(page, trustBadgeSelectors...) {
		return good(itemTrustBadges, "Trust badges are displayed")
	}
	if containsAny(page.Text(), "secure checkout", "trusted by", "verified") {
		return warning(itemTrustBadges, "Trust is claimed in text but no badge images are shown")
	}
	return critical(itemTrustBadges, "No trust badges found")
}

func (a *TrustAnalyzer) checkContact(in Input) types.Check {
	page := in.Page
	direct := page.Has("a[href^='mailto:'], a[href^='tel:']")
	contactPage := len(anchorsMatching(page, contactLinkPattern)) > 0
	switch {
	case direct && contactPage:
		return good(itemContactInfo, "Contact page and direct email or phone are available")
	case direct || contactPage:
		return warning(itemContactInfo, "Only limited contact options are visible")
	default:
		return critical(itemContactInfo, "No contact information found")
	}
}

func trustNarrative(checks []types.Check) (string, string) {
	reviews := findCheck(checks, itemReviews)
	criticals := countStatus(checks, types.StatusCritical)

	switch {
	case reviews.Status == types.StatusCritical:
		return "Without visible customer reviews most first-time visitors hesitate to buy, and many leave for a store that shows social proof.",
			"Install a reviews app, import existing reviews and show star ratings on the homepage and product pages."
	case criticals >= 3:
		return "Several basic trust signals are missing, which makes the store look unestablished to new visitors.",
			"Add trust badges, link your policies in the footer and highlight guarantees and customer numbers."
	case criticals > 0:
		return "A few trust gaps remain that can cost sales from cautious shoppers.",
			"Close the remaining trust gaps listed above, starting with the critical ones."
	default:
		return "Trust signals are in place, but they can be made more prominent near the buy button.",
			"Move reviews, guarantees and badges closer to the add to cart button."
	}
}
