package fingerprint

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"store-auditor/document"
	"store-auditor/internal/types"
)

// Indicators records which store signals were found on a page
type Indicators struct {
	Platform   bool
	DOM        bool
	Keywords   bool
	Currency   bool
	TextualCue bool
}

// Any reports whether at least one primary indicator was found
func (i Indicators) Any() bool {
	return i.Platform || i.DOM || i.Keywords || i.Currency
}

var storeSelectors = []string{
	"[class*='cart']", "[id*='cart']", "form[action*='cart']", "a[href*='/cart']",
	"[class*='product']", "[id*='product']", "[data-product-id]", "[itemtype*='schema.org/Product']",
	"[class*='price']", "[itemprop='price']", "[class*='add-to-cart']", "[class*='checkout']",
}

var (
	storeKeywordPattern = regexp.MustCompile(`\b(shop|shopping|buy|cart|checkout|products?|add to cart|add to bag|basket|collections?)\b`)
	currencyPattern     = regexp.MustCompile(`([$€£¥₹]\s?\d{1,3}([.,]\d{3})*([.,]\d{2})?)|(\d+([.,]\d{2})\s?(usd|eur|gbp|cad|aud|inr|kr|zł|chf))|(\b(rs\.?|inr|usd|eur|gbp)\s?\d+)`)
	lenientCuePattern   = regexp.MustCompile(`\b(price|prices|order|orders|sale|sales|shipping|delivery|payment|discount|offer|store|sell|wishlist|catalog|catalogue|bestsellers?|new arrivals|in stock|free returns)\b`)
)

// Detect computes the store indicators of page
func Detect(page *document.Page, pageURL string) Indicators {
	var indicators Indicators

	indicators.Platform = DetectPlatform(page, pageURL) != PlatformUnknown

	for _, selector := range storeSelectors {
		if page.Has(selector) {
			indicators.DOM = true
			break
		}
	}

	linkText := strings.Builder{}
	for _, anchor := range page.Anchors() {
		linkText.WriteString(strings.ToLower(anchor.Text))
		linkText.WriteByte(' ')
		linkText.WriteString(strings.ReplaceAll(anchor.Path, "/", " "))
		linkText.WriteByte(' ')
	}
	urlText := ""
	if parsed, err := url.Parse(pageURL); err == nil {
		urlText = strings.ToLower(parsed.Hostname() + " " + strings.ReplaceAll(parsed.Path, "/", " "))
		urlText = strings.NewReplacer(".", " ", "-", " ").Replace(urlText)
	}
	indicators.Keywords = storeKeywordPattern.MatchString(linkText.String()) ||
		storeKeywordPattern.MatchString(page.Text()) ||
		storeKeywordPattern.MatchString(urlText)

	indicators.Currency = currencyPattern.MatchString(page.Text())

	if !indicators.Any() {
		indicators.TextualCue = lenientCuePattern.MatchString(page.Text()) ||
			lenientCuePattern.MatchString(strings.ToLower(page.Find("title").Text()))
	}

	return indicators
}

// AssertIsStore returns ErrNotAStore unless the page is plausibly a storefront.
// A page without any primary indicator still passes when the broader textual cues match.
func AssertIsStore(page *document.Page, pageURL string) error {
	indicators := Detect(page, pageURL)
	if indicators.Any() || indicators.TextualCue {
		return nil
	}
	return fmt.Errorf("%w: no platform, cart, price or product signals on %s", types.ErrNotAStore, pageURL)
}
