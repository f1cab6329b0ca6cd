package analyzers

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antzucaro/matchr"
	"store-auditor/document"
	"store-auditor/internal/types"
	"store-auditor/scoring"
)

// UXAnalyzer checks the structure and usability of the storefront
type UXAnalyzer struct {
	*BaseAnalyzer
}

// MinUXFindings is the least number of non-good checks a UX result carries
const MinUXFindings = 4

const (
	itemTheme          = "Theme Design"
	itemNavigation     = "Navigation"
	itemViewport       = "Mobile Viewport"
	itemCallsToAction  = "Calls to Action"
	itemMainLandmark   = "Main Content Area"
	itemSearch         = "Search"
	itemBreadcrumbs    = "Breadcrumbs"
	itemFooterLinks    = "Footer Links"
	itemMobileMenu     = "Mobile Menu"
	itemLazyLoading    = "Image Lazy Loading"
	itemAccessibleText = "Alt Text and ARIA Labels"
	itemHeadings       = "Heading Structure"
	itemFormLabels     = "Form Labels"
	itemSkipLink       = "Skip to Content Link"
	itemLandmarks      = "Page Landmarks"
	itemExternalLinks  = "External Link Safety"
	itemSections       = "Content Sections"
)

var (
	collectionPathPattern = regexp.MustCompile(`^/(collections|products)(/|$)`)
	ctaPattern            = regexp.MustCompile(`\b(shop now|shop the|buy now|buy|add to cart|add to bag|order now|get started|subscribe|sign up|discover|explore|view collection|view all|learn more)\b`)
)

// Labels that tell a shopper nothing about what is behind a link
var genericNavLabels = []string{
	"home", "shop", "shop all", "all", "all products", "products", "menu", "more", "catalog", "collections", "store", "view all",
}

const genericLabelSimilarity = 0.93

// NavLink is a navigation link with its classification
type NavLink struct {
	document.Anchor
	Collection bool
	Generic    bool
}

// Navigation summarizes the navigation menus of a page
type Navigation struct {
	Present bool
	Links   []NavLink
}

// CollectionLinks returns the number of nav links that lead to a collection or product
func (n Navigation) CollectionLinks() int {
	count := 0
	for _, link := range n.Links {
		if link.Collection {
			count++
		}
	}
	return count
}

// DescriptiveCollectionLinks returns the number of collection links with a descriptive label
func (n Navigation) DescriptiveCollectionLinks() int {
	count := 0
	for _, link := range n.Links {
		if link.Collection && !link.Generic {
			count++
		}
	}
	return count
}

// ClassifyNavigation collects the links inside nav, header and role=navigation elements
func ClassifyNavigation(page *document.Page) Navigation {
	nav := Navigation{Present: page.Has("nav, header, [role='navigation']")}

	base, _ := url.Parse(page.URL)
	baseHost := ""
	if base != nil {
		baseHost = strings.TrimPrefix(strings.ToLower(base.Hostname()), "www.")
	}

	page.Find("nav a[href], header a[href], [role='navigation'] a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		label := strings.TrimSpace(s.Text())
		if label == "" {
			label = s.AttrOr("aria-label", "")
		}
		anchor := document.NewAnchor(base, strings.Join(strings.Fields(label), " "), href)

		sameHost := anchor.Host == "" || baseHost == "" || strings.TrimPrefix(anchor.Host, "www.") == baseHost
		nav.Links = append(nav.Links, NavLink{
			Anchor:     anchor,
			Collection: sameHost && collectionPathPattern.MatchString(anchor.Path),
			Generic:    IsGenericLabel(anchor.Text),
		})
	})
	return nav
}

// IsGenericLabel reports whether a link label is empty or close to a generic label such as "Shop" or "Products"
func IsGenericLabel(label string) bool {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return true
	}
	for _, generic := range genericNavLabels {
		if label == generic {
			return true
		}
		if len(label) >= 4 && matchr.JaroWinkler(label, generic, false) >= genericLabelSimilarity {
			return true
		}
	}
	return false
}

// ID returns the category id
func (a *UXAnalyzer) ID() string {
	return types.CategoryUX
}

// Analyze runs the UX checks, applies the findings floor and scales the score
func (a *UXAnalyzer) Analyze(in Input) types.CategoryResult {
	page := in.Page

	checks := []types.Check{
		checkTheme(in.Theme),
		checkNavigation(ClassifyNavigation(page)),
		checkViewport(page),
		tiered(itemCallsToAction, countCallsToAction(page), 3, 1,
			"%d clear calls to action found",
			"Only %d call to action found",
			"%d calls to action; visitors are not told what to do next"),
		checkMainLandmark(page),
		checkSearch(page),
		checkBreadcrumbs(page),
		tiered(itemFooterLinks, page.Count("footer a[href]"), 10, 3,
			"Footer has %d helpful links",
			"Footer has only %d links",
			"Footer has %d links; shoppers expect policies and help links there"),
		checkMobileMenu(page),
		checkLazyLoading(page),
		checkAccessibleText(page),
		tiered(itemHeadings, page.Count("h1, h2, h3, h4, h5, h6"), 5, 2,
			"%d headings structure the page",
			"Only %d headings structure the page",
			"%d headings found; the page has no scannable structure"),
		checkFormLabels(page),
		checkSkipLink(page),
		checkLandmarks(page),
		checkExternalLinks(page),
		checkSections(page),
	}

	checks = EnforceFindingFloor(checks)

	score := scoring.ScaleUX(scoring.ScoreChecks(checks))
	impact, recommendation := uxNarrative(in.Theme, checks)
	result := newResult(types.CategoryUX, "UX & Structure", checks, score, impact, recommendation)

	theme := in.Theme
	result.ThemeInfo = &theme
	return result
}

// EnforceFindingFloor returns a copy of checks in which good checks are demoted to warning,
// starting from the end of the list, until at least MinUXFindings checks are not good
func EnforceFindingFloor(checks []types.Check) []types.Check {
	out := make([]types.Check, len(checks))
	copy(out, checks)

	nonGood := len(out) - countStatus(out, types.StatusGood)
	for i := len(out) - 1; i >= 0 && nonGood < MinUXFindings; i-- {
		if out[i].Status != types.StatusGood {
			continue
		}
		out[i].Status = types.StatusWarning
		out[i].Details += " but there is room for improvement"
		nonGood++
	}
	return out
}

func checkTheme(theme types.ThemeInfo) types.Check {
	if !theme.IsFreeTheme {
		return good(itemTheme, "No free theme detected")
	}
	if name := theme.Name(); name != "" {
		return critical(itemTheme, "The free %s theme is in use; the store looks like thousands of others", name)
	}
	return critical(itemTheme, "A free theme is in use; the store looks like thousands of others")
}

func checkNavigation(nav Navigation) types.Check {
	collections := nav.CollectionLinks()
	descriptive := nav.DescriptiveCollectionLinks()
	switch {
	case collections >= 3 && descriptive >= 2:
		return good(itemNavigation, "Navigation links to %d collections with descriptive labels", collections)
	case collections >= 1:
		return warning(itemNavigation, "Navigation links to %d collections, %d with descriptive labels", collections, descriptive)
	case nav.Present:
		return critical(itemNavigation, "Navigation has %d links but none lead to a collection or product", len(nav.Links))
	default:
		return critical(itemNavigation, "No navigation menu found")
	}
}

func checkViewport(page *document.Page) types.Check {
	viewport := page.Find("meta[name='viewport']")
	switch {
	case viewport.Length() == 0:
		return critical(itemViewport, "No viewport meta tag; the page will not scale on phones")
	case strings.Contains(strings.ToLower(viewport.AttrOr("content", "")), "width=device-width"):
		return good(itemViewport, "Viewport is set for mobile devices")
	default:
		return warning(itemViewport, "Viewport meta tag does not use width=device-width")
	}
}

func countCallsToAction(page *document.Page) int {
	count := 0
	page.Find("button, a, input[type='submit']").Each(func(_ int, s *goquery.Selection) {
		label := strings.ToLower(strings.TrimSpace(s.Text()))
		if label == "" {
			label = strings.ToLower(s.AttrOr("value", ""))
		}
		if ctaPattern.MatchString(label) {
			count++
		}
	})
	return count
}

func checkMainLandmark(page *document.Page) types.Check {
	switch {
	case page.Has("main, [role='main']"):
		return good(itemMainLandmark, "Page content is wrapped in a main landmark")
	case page.Has("#main, #MainContent, #content, #main-content"):
		return warning(itemMainLandmark, "Main content has an id but no main element")
	default:
		return critical(itemMainLandmark, "No main content landmark found")
	}
}

func checkSearch(page *document.Page) types.Check {
	switch {
	case page.Has("form[action*='search'], input[type='search'], input[name='q'], [role='search']"):
		return good(itemSearch, "Search is available")
	case page.Has("a[href*='/search'], [class*='search']"):
		return warning(itemSearch, "Search is linked but no search field is visible")
	default:
		return critical(itemSearch, "No search found; shoppers cannot look for products directly")
	}
}

func checkBreadcrumbs(page *document.Page) types.Check {
	if page.Has("[class*='breadcrumb'], [id*='breadcrumb'], [itemtype*='BreadcrumbList'], nav[aria-label='Breadcrumb'], nav[aria-label='breadcrumbs']") ||
		strings.Contains(page.LowerHTML(), "breadcrumblist") {
		return good(itemBreadcrumbs, "Breadcrumbs help shoppers find their way back")
	}
	return warning(itemBreadcrumbs, "No breadcrumbs found")
}

func checkMobileMenu(page *document.Page) types.Check {
	if page.Has("[class*='mobile-menu'], [class*='mobile-nav'], [class*='hamburger'], [class*='menu-toggle'], [class*='menu-drawer'], [class*='nav-toggle'], [aria-controls*='menu'], [aria-controls*='Drawer']") {
		return good(itemMobileMenu, "A mobile menu toggle is available")
	}
	return critical(itemMobileMenu, "No mobile menu found")
}

func checkLazyLoading(page *document.Page) types.Check {
	total, lazy := 0, 0
	page.Find("img").Each(func(_ int, s *goquery.Selection) {
		total++
		_, dataSrc := s.Attr("data-src")
		if strings.EqualFold(s.AttrOr("loading", ""), "lazy") || dataSrc || strings.Contains(s.AttrOr("class", ""), "lazy") {
			lazy++
		}
	})
	switch {
	case total == 0:
		return warning(itemLazyLoading, "No images found")
	case lazy*2 >= total:
		return good(itemLazyLoading, "%d of %d images load lazily", lazy, total)
	case lazy > 0:
		return warning(itemLazyLoading, "Only %d of %d images load lazily", lazy, total)
	default:
		return critical(itemLazyLoading, "None of the %d images load lazily", total)
	}
}

func checkAccessibleText(page *document.Page) types.Check {
	total, labelled := 0, 0
	page.Find("img").Each(func(_ int, s *goquery.Selection) {
		total++
		if _, ok := s.Attr("alt"); ok {
			labelled++
		}
	})
	page.Find("button").Each(func(_ int, s *goquery.Selection) {
		total++
		if strings.TrimSpace(s.Text()) != "" || s.AttrOr("aria-label", "") != "" || s.AttrOr("aria-labelledby", "") != "" {
			labelled++
		}
	})
	if total == 0 {
		return warning(itemAccessibleText, "No images or buttons to label")
	}

	coverage := percent(labelled, total)
	switch {
	case coverage >= 90:
		return good(itemAccessibleText, "%d%% of images and buttons have accessible labels", coverage)
	case coverage >= 60:
		return warning(itemAccessibleText, "%d%% of images and buttons have accessible labels", coverage)
	default:
		return critical(itemAccessibleText, "Only %d%% of images and buttons have accessible labels", coverage)
	}
}

func checkFormLabels(page *document.Page) types.Check {
	labelFor := map[string]bool{}
	page.Find("label[for]").Each(func(_ int, s *goquery.Selection) {
		labelFor[s.AttrOr("for", "")] = true
	})

	total, labelled := 0, 0
	page.Find("input, select, textarea").Each(func(_ int, s *goquery.Selection) {
		switch strings.ToLower(s.AttrOr("type", "")) {
		case "hidden", "submit", "button", "image", "reset":
			return
		}
		total++
		id := s.AttrOr("id", "")
		if (id != "" && labelFor[id]) || s.AttrOr("aria-label", "") != "" || s.AttrOr("aria-labelledby", "") != "" ||
			s.ParentsFiltered("label").Length() > 0 {
			labelled++
		}
	})
	if total == 0 {
		return good(itemFormLabels, "No form fields need labels")
	}

	coverage := percent(labelled, total)
	switch {
	case coverage >= 80:
		return good(itemFormLabels, "%d of %d form fields are labelled", labelled, total)
	case coverage >= 50:
		return warning(itemFormLabels, "%d of %d form fields are labelled", labelled, total)
	default:
		return critical(itemFormLabels, "Only %d of %d form fields are labelled", labelled, total)
	}
}

func checkSkipLink(page *document.Page) types.Check {
	if page.Has("a[href='#main'], a[href='#MainContent'], a[href='#content'], a[href='#main-content'], a[class*='skip']") {
		return good(itemSkipLink, "A skip to content link is available for keyboard users")
	}
	return warning(itemSkipLink, "No skip to content link for keyboard users")
}

func checkLandmarks(page *document.Page) types.Check {
	found := 0
	for _, selector := range []string{
		"header, [role='banner']",
		"nav, [role='navigation']",
		"main, [role='main']",
		"footer, [role='contentinfo']",
	} {
		if page.Has(selector) {
			found++
		}
	}
	switch {
	case found == 4:
		return good(itemLandmarks, "Header, navigation, main and footer landmarks are present")
	case found == 3:
		return warning(itemLandmarks, "%d of 4 page landmarks are present", found)
	default:
		return critical(itemLandmarks, "Only %d of 4 page landmarks are present", found)
	}
}

func checkExternalLinks(page *document.Page) types.Check {
	total, unsafe := 0, 0
	page.Find("a[target='_blank']").Each(func(_ int, s *goquery.Selection) {
		total++
		rel := strings.ToLower(s.AttrOr("rel", ""))
		if !strings.Contains(rel, "noopener") && !strings.Contains(rel, "noreferrer") {
			unsafe++
		}
	})
	switch {
	case unsafe == 0:
		return good(itemExternalLinks, "Links opening new tabs use rel=noopener")
	case unsafe*2 <= total:
		return warning(itemExternalLinks, "%d of %d links opening new tabs lack rel=noopener", unsafe, total)
	default:
		return critical(itemExternalLinks, "%d of %d links opening new tabs lack rel=noopener", unsafe, total)
	}
}

func checkSections(page *document.Page) types.Check {
	sections := page.Count("section, [class*='shopify-section']")
	switch {
	case sections >= 4:
		return good(itemSections, "Homepage has %d content sections", sections)
	case sections == 3:
		return warning(itemSections, "Homepage has only 3 content sections")
	default:
		return critical(itemSections, "Homepage has %d content sections; it feels empty", sections)
	}
}

func uxNarrative(theme types.ThemeInfo, checks []types.Check) (string, string) {
	nav := findCheck(checks, itemNavigation)
	switch {
	case theme.IsFreeTheme:
		return "A free theme makes the store look like thousands of others and signals a low-budget brand to shoppers.",
			"Move to a premium or custom theme and tailor the homepage sections to your products."
	case nav.Status == types.StatusCritical:
		return "Shoppers cannot reach your collections from the menu, so many leave before they find a product.",
			"Add descriptive collection links such as product categories to the main navigation."
	case countStatus(checks, types.StatusCritical) >= 3:
		return "Several structural issues make the store harder to browse, especially on mobile.",
			"Fix the critical items above, starting with mobile navigation and search."
	default:
		return "The store structure is reasonable, but small usability gaps still cost conversions.",
			"Work through the warnings above to polish navigation, accessibility and mobile browsing."
	}
}
