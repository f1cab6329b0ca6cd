package analyzers

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"store-auditor/document"
	"store-auditor/internal/types"
	"store-auditor/scoring"
)

// AdsAnalyzer checks whether the store can run and measure paid ads
type AdsAnalyzer struct {
	*BaseAnalyzer
}

const (
	itemMetaPixel        = "Meta Pixel"
	itemGoogleTag        = "Google Ads Tag"
	itemTikTokPixel      = "TikTok Pixel"
	itemPinterestTag     = "Pinterest Tag"
	itemPurchaseEvent    = "Purchase Event"
	itemAddToCartEvent   = "Add to Cart Event"
	itemViewContentEvent = "View Content Event"
	itemRetargeting      = "Retargeting Coverage"
	itemServerSide       = "Server-Side Tracking"
	itemCheckoutTracking = "Checkout Tracking"
	itemLandingPage      = "Landing Page Readiness"
	itemUTMHandling      = "UTM Parameter Handling"
)

type adNetwork struct {
	name       string
	signatures []string
}

var (
	metaPixel    = adNetwork{"Meta", []string{"connect.facebook.net", "fbq(", "fbevents.js", "facebook-pixel"}}
	googleTag    = adNetwork{"Google", []string{"googletagmanager.com", "gtag(", "google-analytics.com", "googleadservices.com", "googlesyndication.com"}}
	tiktokPixel  = adNetwork{"TikTok", []string{"analytics.tiktok.com", "ttq.load", "ttq.track"}}
	pinterestTag = adNetwork{"Pinterest", []string{"pintrk", "s.pinimg.com/ct"}}
)

// Every network counted toward retargeting coverage
var adNetworks = []adNetwork{
	metaPixel,
	googleTag,
	tiktokPixel,
	pinterestTag,
	{"Snapchat", []string{"sc-static.net", "snaptr("}},
	{"X", []string{"static.ads-twitter.com", "twq("}},
	{"LinkedIn", []string{"snap.licdn.com", "_linkedin_partner_id"}},
	{"Microsoft Ads", []string{"bat.bing.com"}},
	{"Criteo", []string{"criteo.net", "criteo_q"}},
	{"Reddit", []string{"redditstatic.com/ads", "rdt("}},
}

var (
	purchaseEventPattern    = regexp.MustCompile(`\b(purchase|checkout_completed|completepayment)\b`)
	addToCartEventPattern   = regexp.MustCompile(`\b(addtocart|add_to_cart|product_added_to_cart)\b`)
	viewContentEventPattern = regexp.MustCompile(`\b(viewcontent|view_item|product_viewed|pagevisit)\b`)
)

func (n adNetwork) detected(scripts string) bool {
	return containsAny(scripts, n.signatures...)
}

// DetectAdNetworks returns the ad networks whose tags appear in the script sources and bodies
func DetectAdNetworks(scripts string) []string {
	var found []string
	for _, network := range adNetworks {
		if network.detected(scripts) {
			found = append(found, network.name)
		}
	}
	return found
}

// ID returns the category id
func (a *AdsAnalyzer) ID() string {
	return types.CategoryAds
}

// Analyze runs the ads readiness checks and caps the score
func (a *AdsAnalyzer) Analyze(in Input) types.CategoryResult {
	page := in.Page
	scripts := scriptSources(page)

	checks := []types.Check{
		networkCheck(itemMetaPixel, metaPixel, scripts, types.StatusCritical),
		networkCheck(itemGoogleTag, googleTag, scripts, types.StatusCritical),
		networkCheck(itemTikTokPixel, tiktokPixel, scripts, types.StatusWarning),
		networkCheck(itemPinterestTag, pinterestTag, scripts, types.StatusWarning),
	}

	// Conversion events
	if purchaseEventPattern.MatchString(scripts) {
		checks = append(checks, good(itemPurchaseEvent, "Purchase conversion events are tracked"))
	} else {
		checks = append(checks, critical(itemPurchaseEvent, "No purchase conversion event found; ad platforms cannot optimize for sales"))
	}
	if addToCartEventPattern.MatchString(scripts) {
		checks = append(checks, good(itemAddToCartEvent, "Add to cart events are tracked"))
	} else {
		checks = append(checks, critical(itemAddToCartEvent, "No add to cart event found"))
	}
	if viewContentEventPattern.MatchString(scripts) {
		checks = append(checks, good(itemViewContentEvent, "Product view events are tracked"))
	} else {
		checks = append(checks, warning(itemViewContentEvent, "No product view event found"))
	}

	// Retargeting coverage
	networks := DetectAdNetworks(scripts)
	switch {
	case len(networks) >= 4:
		checks = append(checks, good(itemRetargeting, "Retargeting audiences are built on %d networks (%s)", len(networks), strings.Join(networks, ", ")))
	case len(networks) >= 2:
		checks = append(checks, warning(itemRetargeting, "Retargeting audiences are built on %d networks (%s)", len(networks), strings.Join(networks, ", ")))
	default:
		checks = append(checks, critical(itemRetargeting, "Retargeting audiences are built on %d networks", len(networks)))
	}

	// Neither can be confirmed from storefront markup
	checks = append(checks,
		warning(itemServerSide, "Server-side conversion tracking cannot be verified from the storefront; browser-only pixels miss many conversions"),
		warning(itemCheckoutTracking, "Checkout steps cannot be verified from the storefront; make sure checkout events reach every ad platform"),
	)

	// Landing page and campaign attribution
	checks = append(checks, checkLandingPage(page))

	if strings.Contains(scripts, "utm_") || strings.Contains(page.LowerHTML(), "utm_source") {
		checks = append(checks, good(itemUTMHandling, "UTM parameters are captured"))
	} else {
		checks = append(checks, warning(itemUTMHandling, "No UTM parameter handling found; campaign attribution may be lost"))
	}

	score := scoring.CapAds(scoring.ScoreChecks(checks))
	impact, recommendation := adsNarrative(checks)
	return newResult(types.CategoryAds, "Ads Readiness", checks, score, impact, recommendation)
}

func networkCheck(item string, network adNetwork, scripts string, missing types.CheckStatus) types.Check {
	if network.detected(scripts) {
		return good(item, "%s tag is installed", network.name)
	}
	if missing == types.StatusCritical {
		return critical(item, "No %s tag found; ads on %s cannot be measured or retargeted", network.name, network.name)
	}
	return warning(item, "No %s tag found", network.name)
}

// scriptSources returns the lowercased src attributes and inline bodies of every script
func scriptSources(page *document.Page) string {
	var b strings.Builder
	page.Find("script").Each(func(_ int, s *goquery.Selection) {
		b.WriteString(strings.ToLower(s.AttrOr("src", "")))
		b.WriteByte('\n')
		b.WriteString(strings.ToLower(s.Text()))
		b.WriteByte('\n')
	})
	return b.String()
}

func checkLandingPage(page *document.Page) types.Check {
	hero := page.Find("[class*='hero'], [class*='banner'], [class*='landing'], [class*='slideshow']")
	if hero.Length() == 0 {
		return critical(itemLandingPage, "No hero or landing section for ad traffic to land on")
	}
	if hero.Find("a[href], button").Length() > 0 {
		return good(itemLandingPage, "Hero section has a clear call to action for ad traffic")
	}
	return warning(itemLandingPage, "Hero section has no call to action")
}

func adsNarrative(checks []types.Check) (string, string) {
	meta := findCheck(checks, itemMetaPixel)
	google := findCheck(checks, itemGoogleTag)
	purchase := findCheck(checks, itemPurchaseEvent)
	switch {
	case meta.Status == types.StatusCritical && google.Status == types.StatusCritical:
		return "Without Meta and Google tags every ad dollar is spent blind, with no conversion data and no retargeting.",
			"Install the Meta Pixel and Google Ads tag through your platform's native integrations."
	case purchase.Status == types.StatusCritical:
		return "Pixels are installed but purchases are not reported, so ad platforms cannot optimize for sales.",
			"Enable purchase and add to cart events on every installed pixel."
	default:
		return "Ad tracking is partly in place, but gaps still limit attribution and retargeting.",
			"Add server-side conversion tracking and expand retargeting to more networks."
	}
}
