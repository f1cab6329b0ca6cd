package retriever

import "strings"

// Only markup shorter than this is considered for the error page heuristic
const errorPageMaxLength = 5000

var errorPhrases = []string{
	"404",
	"page not found",
	"not found",
	"access denied",
	"forbidden",
	"proxy error",
	"bad gateway",
	"gateway timeout",
	"service unavailable",
	"internal server error",
	"too many requests",
	"rate limit",
	"request blocked",
	"attention required",
	"enable javascript and cookies",
}

var storeSignals = []string{
	"checkout",
	"add to cart",
	"add-to-cart",
	"add to bag",
	"shopping cart",
	"cdn.shopify.com",
	"woocommerce",
	"/products/",
}

// IsErrorPage reports whether markup looks like an error page served by a proxy or the origin.
// Short markup with an error phrase counts, unless it also carries store page signals.
func IsErrorPage(markup string) bool {
	if len(markup) >= errorPageMaxLength {
		return false
	}
	lower := strings.ToLower(markup)
	if !containsAny(lower, errorPhrases) {
		return false
	}
	return !containsAny(lower, storeSignals)
}

func containsAny(s string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}
