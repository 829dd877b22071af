package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rotisserie/eris"

	"github.com/sells-group/benchmark-cli/internal/model"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// WriteTable prints a human-readable summary of the report.
func WriteTable(w io.Writer, r *model.BenchmarkReport) error {
	if r == nil {
		return eris.New("export: report is nil")
	}

	name := r.CompanyName
	if name == "" {
		name = r.CompanyID
	}
	lines := []string{
		titleStyle.Render(fmt.Sprintf("%s vs %s v%s", name, r.TemplateID, r.TemplateVersion)),
		mutedStyle.Render(fmt.Sprintf("%d of %d metrics eligible, overall confidence %s",
			r.EligibleMetricCount, r.TotalMetricCount, r.OverallConfidence)),
		"",
		render("Metric", "Expected", "Observed", "Variance", "Confidence").
			Rows(metricRows(r.Metrics)...).String(),
		"",
		render("System", "Tier", "Status", "Observed", "Confidence").
			Rows(systemRows(r.Systems)...).String(),
		"",
		render("Role", "Expected", "Staff FTE", "MSP", "Variance").
			Rows(staffingRows(r.Staffing)...).String(),
	}
	if len(r.Considerations) > 0 {
		lines = append(lines, "", titleStyle.Render(fmt.Sprintf("Considerations (%s)", r.DealLens)))
		for _, c := range r.Considerations {
			lines = append(lines, fmt.Sprintf("  [%s] %s: %s", c.Status, c.ID, c.Text))
		}
	}

	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return eris.Wrap(err, "export: write table")
		}
	}
	return nil
}

func render(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func metricRows(ms []model.MetricComparison) [][]string {
	out := make([][]string, 0, len(ms))
	for _, m := range ms {
		variance := string(m.Variance)
		if !m.Eligible {
			variance = "n/a: " + m.IneligibleReason
		}
		out = append(out, []string{
			m.Label,
			fmt.Sprintf("%s - %s", text(m.ExpectedLow), text(m.ExpectedHigh)),
			m.ObservedDisplay,
			variance,
			string(m.Confidence),
		})
	}
	return out
}

func systemRows(ss []model.SystemComparison) [][]string {
	out := make([][]string, 0, len(ss))
	for _, s := range ss {
		observed := s.ObservedName
		if s.ObservedVendor != "" {
			observed = fmt.Sprintf("%s (%s)", s.ObservedName, s.ObservedVendor)
		}
		out = append(out, []string{s.Category, string(s.Criticality), string(s.Status), observed, string(s.Confidence)})
	}
	return out
}

func staffingRows(ss []model.StaffingComparison) [][]string {
	out := make([][]string, 0, len(ss))
	for _, s := range ss {
		out = append(out, []string{
			s.Label,
			s.ExpectedLabel,
			text(s.ObservedFTE),
			text(s.MSPEquivalent),
			string(s.Variance),
		})
	}
	return out
}

// SummaryLine condenses system and staffing counts into one line.
func SummaryLine(r *model.BenchmarkReport) string {
	sys := r.SystemSummary()
	staff := r.StaffingSummary()

	keys := make([]string, 0, len(staff))
	for k := range staff {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	line := fmt.Sprintf("systems: %d found, %d partial, %d not found", sys.Total.Found, sys.Total.Partial, sys.Total.NotFound)
	if len(keys) > 0 {
		line += "; staffing:"
		for _, k := range keys {
			line += fmt.Sprintf(" %s=%d", k, staff[model.StaffingVariance(k)])
		}
	}
	return line
}
