package fingerprint

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"store-auditor/document"
	"store-auditor/internal/types"
)

// Free themes published in the Shopify theme store
var FreeThemes = []string{
	"dawn", "refresh", "sense", "craft", "crave", "studio", "taste", "origin", "colorblock", "ride",
	"spotlight", "publisher", "trade", "horizon", "debut", "brooklyn", "minimal", "narrative", "simple",
	"supply", "venture", "boundless", "express",
}

// Theme store ids of the free themes, as exposed by Shopify.theme.theme_store_id
var FreeThemeStoreIDs = map[string]string{
	"380":  "minimal",
	"578":  "simple",
	"679":  "supply",
	"730":  "brooklyn",
	"766":  "boundless",
	"775":  "venture",
	"796":  "debut",
	"829":  "narrative",
	"885":  "express",
	"887":  "dawn",
	"1356": "sense",
	"1363": "crave",
	"1368": "craft",
	"1431": "studio",
	"1434": "taste",
	"1499": "colorblock",
	"1500": "ride",
	"1567": "refresh",
	"1841": "origin",
	"1864": "publisher",
	"1891": "spotlight",
}

// Signatures of premium theme vendors, matched against the whole markup
var PremiumSignatures = []string{
	"pixelunion", "pixel union", "outofthesandbox", "out of the sandbox", "archetypethemes",
	"archetype themes", "maestrooo", "cleancanvas", "clean canvas", "krownthemes", "krown themes",
	"fluorescent.co", "groupthought", "switchthemes", "presidio creative", "the4.co", "halothemes",
}

// Well known paid themes, matched against extracted theme names only
var PremiumThemes = []string{
	"prestige", "impulse", "turbo", "empire", "warehouse", "symmetry", "focal", "motion",
	"streamline", "broadcast", "booster", "pipeline", "parallax", "kalles", "wokiee", "ella",
}

// Class name patterns that only the free Online Store 2.0 and legacy free themes emit
var freeThemeClassPatterns = []string{
	".product-card-wrapper",
	".header__heading-link",
	".quick-add__submit",
	".grid-view-item__link",
	".site-header__logo-link",
}

var (
	themeObjectPattern = regexp.MustCompile(`(?i)shopify\.theme\s*=\s*\{[^}]*?"name"\s*:\s*"([^"]+)"`)
	themeIDPattern     = regexp.MustCompile(`(?i)"theme_store_id"\s*:\s*(\d+)`)
	themeNamePattern   = regexp.MustCompile(`(?i)["']?theme[_-]?name["']?\s*[:=]\s*["']([^"']+)["']`)
	themePathPattern   = regexp.MustCompile(`(?i)/themes/([a-z0-9_-]+)/`)
)

const (
	sourceMeta      = "meta"
	sourceScript    = "script"
	sourceAssetPath = "asset path"
)

// themeCandidate is a theme name together with the place it was found
type themeCandidate struct {
	name   string
	source string
}

// DetectTheme decides whether the storefront runs a free theme.
// It never guesses: when nothing matches the result has no name and no confidence.
func DetectTheme(page *document.Page) types.ThemeInfo {
	candidates := themeCandidates(page)
	if isPremium(page.LowerHTML(), candidates) {
		return types.ThemeInfo{}
	}

	for _, candidate := range candidates {
		name := strings.ToLower(strings.TrimSpace(candidate.name))
		for _, free := range FreeThemes {
			if name == free {
				if candidate.source == sourceAssetPath {
					return freeTheme(free, types.ConfidenceMedium)
				}
				return freeTheme(free, types.ConfidenceHigh)
			}
		}
		for _, free := range FreeThemes {
			if containsWord(name, free) {
				return freeTheme(free, types.ConfidenceMedium)
			}
		}
	}

	for _, pattern := range freeThemeClassPatterns {
		if page.Has(pattern) {
			confidence := types.ConfidenceMedium
			return types.ThemeInfo{IsFreeTheme: true, Confidence: &confidence}
		}
	}

	return types.ThemeInfo{}
}

func isPremium(lower string, candidates []themeCandidate) bool {
	for _, signature := range PremiumSignatures {
		if containsWord(lower, signature) {
			return true
		}
	}
	for _, candidate := range candidates {
		name := strings.ToLower(candidate.name)
		for _, premium := range PremiumThemes {
			if containsWord(name, premium) {
				return true
			}
		}
	}
	return false
}

func themeCandidates(page *document.Page) []themeCandidate {
	var candidates []themeCandidate

	for _, selector := range []string{"meta[name='theme-name']", "meta[name='shopify-theme']", "meta[property='theme:name']"} {
		if content, err := page.ExtractAttribute(selector, "content"); err == nil && content != "" {
			candidates = append(candidates, themeCandidate{name: content, source: sourceMeta})
		}
	}

	page.Find("script").Each(func(_ int, s *goquery.Selection) {
		text := s.Text()
		if m := themeObjectPattern.FindStringSubmatch(text); m != nil {
			candidates = append(candidates, themeCandidate{name: m[1], source: sourceScript})
		}
		if m := themeNamePattern.FindStringSubmatch(text); m != nil {
			candidates = append(candidates, themeCandidate{name: m[1], source: sourceScript})
		}
	})

	// A renamed theme still carries the id it was installed from
	if name, ok := FreeThemeStoreIDs[ThemeStoreID(page)]; ok {
		candidates = append(candidates, themeCandidate{name: name, source: sourceScript})
	}

	for _, m := range themePathPattern.FindAllStringSubmatch(page.HTML, -1) {
		candidates = append(candidates, themeCandidate{name: m[1], source: sourceAssetPath})
	}

	return candidates
}

// ThemeStoreID returns the Shopify theme store id when the page exposes one
func ThemeStoreID(page *document.Page) string {
	if m := themeIDPattern.FindStringSubmatch(page.HTML); m != nil {
		return m[1]
	}
	return ""
}

func freeTheme(name, confidence string) types.ThemeInfo {
	display := strings.ToUpper(name[:1]) + name[1:]
	return types.ThemeInfo{IsFreeTheme: true, ThemeName: &display, Confidence: &confidence}
}

// containsWord reports whether needle occurs in s delimited by non-alphanumeric characters
func containsWord(s, needle string) bool {
	for offset := 0; ; {
		i := strings.Index(s[offset:], needle)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(needle)
		if (start == 0 || !isWordByte(s[start-1])) && (end == len(s) || !isWordByte(s[end])) {
			return true
		}
		offset = start + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
