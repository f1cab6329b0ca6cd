package fingerprint

import (
	"net/url"
	"strings"

	"store-auditor/document"
	"store-auditor/internal/types"
)

// Platform names reported in StoreInfo.Platform
const (
	PlatformShopify     = "Shopify"
	PlatformWooCommerce = "WooCommerce"
	PlatformUnknown     = "Unknown"
)

// Platform is the signature set of one commerce platform
type Platform struct {
	Name string
	// Substrings of the lowercased markup
	Markers []string
	// Host suffixes of the store URL
	HostSuffixes []string
	// Selectors for platform specific data attributes
	Selectors []string
}

// Platforms is the ordered list of known commerce platforms; the first match wins
var Platforms = []Platform{
	{
		Name:         PlatformShopify,
		Markers:      []string{"cdn.shopify.com", "shopify.theme", "shopify-section", "window.shopify", "myshopify.com", "shopify-payment-button"},
		HostSuffixes: []string{".myshopify.com"},
		Selectors:    []string{"[data-shopify]", "[id^='shopify-section']"},
	},
	{
		Name:      PlatformWooCommerce,
		Markers:   []string{"woocommerce", "wp-content/plugins/woocommerce", "wc-block", "wc_add_to_cart_params"},
		Selectors: []string{"body.woocommerce", ".woocommerce-loop-product__title"},
	},
	{
		Name:         "BigCommerce",
		Markers:      []string{"bigcommerce", "cdn11.bigcommerce.com", "stencil-utils"},
		HostSuffixes: []string{".mybigcommerce.com"},
	},
	{
		Name:      "Magento",
		Markers:   []string{"mage/cookies", "data-mage-init", "magento", "/static/version"},
		Selectors: []string{"[data-mage-init]"},
	},
	{
		Name:         "Wix",
		Markers:      []string{"static.wixstatic.com", "wix-ecommerce", "x-wix-"},
		HostSuffixes: []string{".wixsite.com"},
	},
	{
		Name:         "Squarespace",
		Markers:      []string{"static1.squarespace.com", "squarespace-commerce", "sqs-add-to-cart"},
		HostSuffixes: []string{".squarespace.com"},
	},
	{
		Name:    "PrestaShop",
		Markers: []string{"prestashop", "/modules/ps_shoppingcart"},
	},
	{
		Name:    "OpenCart",
		Markers: []string{"index.php?route=product", "catalog/view/theme", "opencart"},
	},
	{
		Name:    "Salesforce Commerce Cloud",
		Markers: []string{"demandware.static", "demandware.store"},
	},
	{
		Name:         "Ecwid",
		Markers:      []string{"app.ecwid.com", "ecwid-shopping-cart"},
		HostSuffixes: []string{".company.site"},
	},
}

// Result is the output of Identify
type Result struct {
	Platform  string
	ThemeInfo types.ThemeInfo
}

// Identify detects the commerce platform and, for Shopify stores, whether a free theme is used
func Identify(page *document.Page, pageURL string) Result {
	platform := DetectPlatform(page, pageURL)
	result := Result{Platform: platform}
	if platform == PlatformShopify {
		result.ThemeInfo = DetectTheme(page)
	}
	return result
}

// DetectPlatform matches the page against the known platform signatures
func DetectPlatform(page *document.Page, pageURL string) string {
	host := ""
	if parsed, err := url.Parse(pageURL); err == nil {
		host = strings.ToLower(parsed.Hostname())
	}

	for _, platform := range Platforms {
		if matchesPlatform(page, host, platform) {
			return platform.Name
		}
	}
	return PlatformUnknown
}

func matchesPlatform(page *document.Page, host string, platform Platform) bool {
	for _, suffix := range platform.HostSuffixes {
		if host != "" && strings.HasSuffix(host, suffix) {
			return true
		}
	}
	lower := page.LowerHTML()
	for _, marker := range platform.Markers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	for _, selector := range platform.Selectors {
		if page.Has(selector) {
			return true
		}
	}
	return false
}
