package analyzers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"store-auditor/document"
	"store-auditor/internal/types"
	"store-auditor/scoring"
)

// Input is what every analyzer reads. It is shared by concurrently running analyzers and must not be modified.
type Input struct {
	Page     *document.Page
	Platform string
	Theme    types.ThemeInfo
}

// Analyzer produces one category of the audit report
type Analyzer interface {
	// ID returns the category id
	ID() string

	// Analyze runs the category checks over the input
	Analyze(in Input) types.CategoryResult
}

// BaseAnalyzer provides the logger and helpers shared by the category analyzers
type BaseAnalyzer struct {
	logger types.Logger
}

// NewBaseAnalyzer creates a new base analyzer
func NewBaseAnalyzer(logger types.Logger) *BaseAnalyzer {
	return &BaseAnalyzer{logger: logger}
}

func (a *BaseAnalyzer) warnf(format string, args ...interface{}) {
	if a.logger != nil {
		a.logger.Warnf(format, args...)
	}
}

// All returns the six category analyzers in report order
func All(logger types.Logger) []Analyzer {
	base := NewBaseAnalyzer(logger)
	return []Analyzer{
		&TrustAnalyzer{base},
		&UXAnalyzer{base},
		&ProductAnalyzer{base},
		&SEOAnalyzer{base},
		&EmailAnalyzer{base},
		&AdsAnalyzer{base},
	}
}

func good(item, details string, args ...interface{}) types.Check {
	return types.Check{Item: item, Status: types.StatusGood, Details: fmt.Sprintf(details, args...)}
}

func warning(item, details string, args ...interface{}) types.Check {
	return types.Check{Item: item, Status: types.StatusWarning, Details: fmt.Sprintf(details, args...)}
}

func critical(item, details string, args ...interface{}) types.Check {
	return types.Check{Item: item, Status: types.StatusCritical, Details: fmt.Sprintf(details, args...)}
}

// tiered returns good when n >= goodAt, warning when n >= warnAt, otherwise critical
func tiered(item string, n, goodAt, warnAt int, goodDetails, warnDetails, critDetails string) types.Check {
	switch {
	case n >= goodAt:
		return good(item, goodDetails, n)
	case n >= warnAt:
		return warning(item, warnDetails, n)
	default:
		return critical(item, critDetails, n)
	}
}

func newResult(id, title string, checks []types.Check, score int, impact, recommendation string) types.CategoryResult {
	return types.CategoryResult{
		ID:             id,
		Title:          title,
		Score:          score,
		Status:         scoring.StatusLabel(score),
		Checks:         checks,
		Impact:         impact,
		Recommendation: recommendation,
	}
}

func countStatus(checks []types.Check, status types.CheckStatus) int {
	n := 0
	for _, check := range checks {
		if check.Status == status {
			n++
		}
	}
	return n
}

func findCheck(checks []types.Check, item string) types.Check {
	for _, check := range checks {
		if check.Item == item {
			return check
		}
	}
	return types.Check{}
}

func containsAny(s string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}

// matchingNeedles returns the needles found in s, in needle order
func matchingNeedles(s string, needles ...string) []string {
	var found []string
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			found = append(found, needle)
		}
	}
	return found
}

// hasAnySelector reports whether any of the selectors matches
func hasAnySelector(page *document.Page, selectors ...string) bool {
	return page.Has(joinSelectors(selectors))
}

func joinSelectors(selectors []string) string {
	return strings.Join(selectors, ", ")
}

// lowerText returns the lowercased visible text of a selection
func lowerText(s *goquery.Selection) string {
	return strings.ToLower(document.GetText(s.Nodes...))
}

func anchorsMatching(page *document.Page, pattern *regexp.Regexp) []document.Anchor {
	var matched []document.Anchor
	for _, anchor := range page.Anchors() {
		if pattern.MatchString(anchor.Path) || pattern.MatchString(strings.ToLower(anchor.Href)) {
			matched = append(matched, anchor)
		}
	}
	return matched
}

func uniquePaths(anchors []document.Anchor) int {
	seen := map[string]bool{}
	for _, anchor := range anchors {
		key := anchor.Host + anchor.Path
		if key == "" {
			key = anchor.Href
		}
		seen[key] = true
	}
	return len(seen)
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return part * 100 / total
}
