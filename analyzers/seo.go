package analyzers

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"store-auditor/internal/types"
	"store-auditor/scoring"
)

// SEOAnalyzer checks search and shopping visibility
type SEOAnalyzer struct {
	*BaseAnalyzer
}

const (
	itemTitleTag        = "Title Tag"
	itemMetaDescription = "Meta Description"
	itemH1              = "H1 Heading"
	itemH2              = "H2 Headings"
	itemImageAlt        = "Image Alt Text"
	itemStructuredData  = "Structured Data"
	itemCanonical       = "Canonical URL"
	itemOpenGraph       = "Open Graph Tags"
	itemMerchantCenter  = "Google Merchant Center"
	itemSearchConsole   = "Search Console Verification"
)

var merchantFeedKeywords = []string{
	"merchant center", "google shopping", "merchant_center", "merchantcenter", "shopping feed", "product feed",
	"google-product-category", "google_product_category", "gtin", "product-feed", "/feeds/products", "products.xml",
}

// ID returns the category id
func (a *SEOAnalyzer) ID() string {
	return types.CategorySEO
}

// Analyze runs the SEO checks and remaps the score into the SEO band
func (a *SEOAnalyzer) Analyze(in Input) types.CategoryResult {
	page := in.Page
	blocks := a.structuredData(page)

	// A missing title or description leaves the value empty, which the checks report
	title, err := page.ExtractText("head title")
	if err != nil || title == "" {
		title, _ = page.ExtractText("title")
	}
	description, _ := page.ExtractAttribute("meta[name='description']", "content")
	description = strings.TrimSpace(description)

	checks := []types.Check{}

	switch {
	case len(title) >= 30:
		checks = append(checks, good(itemTitleTag, "Title tag is %d characters long", len(title)))
	case len(title) > 0:
		checks = append(checks, warning(itemTitleTag, "Title tag is only %d characters; aim for 30 to 60", len(title)))
	default:
		checks = append(checks, critical(itemTitleTag, "No title tag found"))
	}

	switch {
	case len(description) >= 120:
		checks = append(checks, good(itemMetaDescription, "Meta description is %d characters long", len(description)))
	case len(description) > 0:
		checks = append(checks, warning(itemMetaDescription, "Meta description is only %d characters; aim for 120 to 160", len(description)))
	default:
		checks = append(checks, critical(itemMetaDescription, "No meta description found"))
	}

	// Headings
	switch h1 := page.Count("h1"); {
	case h1 == 1:
		checks = append(checks, good(itemH1, "Exactly one H1 heading"))
	case h1 > 1:
		checks = append(checks, warning(itemH1, "%d H1 headings found; use exactly one", h1))
	default:
		checks = append(checks, critical(itemH1, "No H1 heading found"))
	}

	checks = append(checks, tiered(itemH2, page.Count("h2"), 3, 1,
		"%d H2 headings structure the content",
		"Only %d H2 heading found",
		"%d H2 headings found"))

	// Image alt text
	checks = append(checks, checkImageAlt(page.Find("img")))

	// JSON-LD or microdata
	switch {
	case len(blocks) > 0:
		checks = append(checks, good(itemStructuredData, "%d structured data blocks found", len(blocks)))
	case page.Has("[itemscope], [itemtype*='schema.org']"):
		checks = append(checks, warning(itemStructuredData, "Only microdata found; add JSON-LD structured data"))
	default:
		checks = append(checks, critical(itemStructuredData, "No structured data found"))
	}

	// Canonical and social sharing tags
	if page.Has("link[rel='canonical']") {
		checks = append(checks, good(itemCanonical, "Canonical URL is set"))
	} else {
		checks = append(checks, warning(itemCanonical, "No canonical URL; duplicate pages may compete in search"))
	}

	switch og := page.Count("meta[property^='og:']"); {
	case og >= 3:
		checks = append(checks, good(itemOpenGraph, "%d Open Graph tags found", og))
	case og > 0:
		checks = append(checks, warning(itemOpenGraph, "Only %d Open Graph tags found", og))
	default:
		checks = append(checks, warning(itemOpenGraph, "No Open Graph tags; shared links will look plain"))
	}

	// Google Shopping readiness
	checks = append(checks, checkMerchantCenter(page.LowerHTML(), blocks))

	if page.Has("meta[name='google-site-verification']") || strings.Contains(page.LowerHTML(), "google-site-verification") {
		checks = append(checks, good(itemSearchConsole, "Google Search Console verification found"))
	} else {
		checks = append(checks, warning(itemSearchConsole, "No Google Search Console verification found"))
	}

	score := scoring.RemapSEO(scoring.ScoreChecks(checks))
	impact, recommendation := seoNarrative(checks)
	return newResult(types.CategorySEO, "SEO", checks, score, impact, recommendation)
}

func checkImageAlt(images *goquery.Selection) types.Check {
	total := images.Length()
	if total == 0 {
		return warning(itemImageAlt, "No images found")
	}
	withAlt := images.FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.TrimSpace(s.AttrOr("alt", "")) != ""
	}).Length()

	coverage := percent(withAlt, total)
	switch {
	case coverage >= 80:
		return good(itemImageAlt, "%d%% of images have alt text", coverage)
	case coverage >= 50:
		return warning(itemImageAlt, "%d%% of images have alt text", coverage)
	default:
		return critical(itemImageAlt, "Only %d%% of images have alt text", coverage)
	}
}

// checkMerchantCenter looks for product schema and feed signals that Google Shopping relies on
func checkMerchantCenter(lower string, blocks []interface{}) types.Check {
	signals := []string{}
	for _, block := range blocks {
		if hasSchemaType(block, "Product", "Offer", "ProductGroup") {
			signals = append(signals, "product schema")
			break
		}
	}
	if found := matchingNeedles(lower, merchantFeedKeywords...); len(found) > 0 {
		signals = append(signals, found[0])
	}

	switch len(signals) {
	case 0:
		return critical(itemMerchantCenter, "No product schema or feed signals; products will not show in Google Shopping")
	case 1:
		return warning(itemMerchantCenter, "Only partial Google Shopping signals found (%s)", signals[0])
	default:
		return good(itemMerchantCenter, "Google Shopping signals found (%s)", strings.Join(signals, ", "))
	}
}

func seoNarrative(checks []types.Check) (string, string) {
	merchant := findCheck(checks, itemMerchantCenter)
	meta := findCheck(checks, itemMetaDescription)
	switch {
	case merchant.Status == types.StatusCritical:
		return "Without product structured data your products cannot appear in Google Shopping results, which is free high-intent traffic.",
			"Publish Product schema with price, availability and ratings and connect a Google Merchant Center feed."
	case meta.Status != types.StatusGood:
		return "Weak titles and descriptions lower click-through from search results.",
			"Write unique titles and 120 to 160 character meta descriptions for the homepage and key collections."
	default:
		return "The SEO basics are present, but search visibility can still grow.",
			"Expand structured data and improve image alt text and heading structure."
	}
}
