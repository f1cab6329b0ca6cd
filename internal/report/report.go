package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"
	"store-auditor/analyzers"
	"store-auditor/internal/types"
)

// Format is an output format for rendered reports
type Format string

const (
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
)

// ParseFormat validates a format name
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatJSON, FormatYAML, FormatTable:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q (expected json, yaml or table)", name)
	}
}

// Render writes the report to w in the given format
func Render(w io.Writer, report *types.AuditReport, format Format) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(report); err != nil {
			return fmt.Errorf("failed to encode report as JSON: %w", err)
		}
		return nil
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(report); err != nil {
			return fmt.Errorf("failed to encode report as YAML: %w", err)
		}
		return encoder.Close()
	case FormatTable:
		return renderTables(w, report)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	t.SetTitle(title)
	return t
}

func renderTables(w io.Writer, report *types.AuditReport) error {
	info := report.StoreInfo
	summary := newTable(w, "Store Audit")
	summary.AppendRow(table.Row{"Store", info.URL})
	summary.AppendRow(table.Row{"Platform", info.Platform})
	if info.ThemeName != "" {
		summary.AppendRow(table.Row{"Theme", info.ThemeName})
	}
	summary.AppendRow(table.Row{"Audit date", info.AuditDate})
	summary.AppendRow(table.Row{"Overall score", fmt.Sprintf("%d (%s)", report.OverallScore, report.Status)})
	summary.AppendRow(table.Row{"Estimated loss", fmt.Sprintf("$%s - $%s/month",
		humanize.Comma(int64(report.RevenueLoss.Min)), humanize.Comma(int64(report.RevenueLoss.Max)))})
	summary.Render()

	categories := newTable(w, "Categories")
	categories.AppendHeader(table.Row{"Category", "Score", "Status", "Good", "Warning", "Critical"})
	for _, category := range report.Categories {
		good, warn, crit := statusCounts(category.Checks)
		categories.AppendRow(table.Row{category.Title, category.Score, category.Status, good, warn, crit})
	}
	categories.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	categories.Render()

	checks := newTable(w, "Findings")
	checks.AppendHeader(table.Row{"Category", "Check", "Status", "Details"})
	for _, category := range report.Categories {
		for _, check := range category.Checks {
			if check.Status == types.StatusGood {
				continue
			}
			checks.AppendRow(table.Row{category.Title, check.Item, string(check.Status), check.Details})
		}
	}
	checks.SetColumnConfigs([]table.ColumnConfig{{Number: 4, WidthMax: 70}})
	checks.Render()

	breakdown := newTable(w, "Revenue Loss Breakdown")
	breakdown.AppendHeader(table.Row{"Cause", "Share"})
	for _, item := range report.RevenueLoss.Breakdown {
		breakdown.AppendRow(table.Row{item.Label, fmt.Sprintf("%d%%", item.Percentage)})
	}
	breakdown.Render()

	if len(report.ActionPlan) > 0 {
		plan := newTable(w, "Action Plan")
		plan.AppendHeader(table.Row{"#", "Action", "Priority", "Time", "Revenue Impact"})
		for i, item := range report.ActionPlan {
			plan.AppendRow(table.Row{i + 1, item.Action, item.Priority, item.TimeEstimate, item.RevenueImpact})
		}
		plan.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: 60}})
		plan.Render()
	}
	return nil
}

func statusCounts(checks []types.Check) (int, int, int) {
	var good, warn, crit int
	for _, check := range checks {
		switch check.Status {
		case types.StatusGood:
			good++
		case types.StatusWarning:
			warn++
		case types.StatusCritical:
			crit++
		}
	}
	return good, warn, crit
}

// RenderNavigation writes how each navigation link was classified
func RenderNavigation(w io.Writer, nav analyzers.Navigation) {
	t := newTable(w, "Navigation Links")
	t.AppendHeader(table.Row{"Label", "Path", "Collection", "Label Type"})
	for _, link := range nav.Links {
		kind := "descriptive"
		if link.Generic {
			kind = "generic"
		}
		path := link.Path
		if path == "" {
			path = link.Href
		}
		t.AppendRow(table.Row{link.Text, path, yesNo(link.Collection), kind})
	}
	t.AppendFooter(table.Row{"Total", len(nav.Links),
		fmt.Sprintf("%d collection", nav.CollectionLinks()),
		fmt.Sprintf("%d descriptive", nav.DescriptiveCollectionLinks())})
	t.Render()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
