// Package export renders a benchmark report as a workbook, CSV, or a
// terminal table. All writers share the same column layouts.
package export

import (
	"strconv"
	"strings"

	"github.com/sells-group/benchmark-cli/internal/model"
)

var metricHeader = []string{
	"Metric", "Label", "Unit", "Expected Low", "Expected Typical", "Expected High",
	"Observed", "Observed Display", "Variance", "Eligible", "Ineligibility Reason",
	"Confidence", "Computation", "Sources",
}

var systemHeader = []string{
	"Category", "Description", "Criticality", "Status", "Match Tier",
	"Observed Name", "Observed Vendor", "Inventory Item", "Confidence", "Notes",
}

var staffingHeader = []string{
	"Category", "Label", "Expected", "Observed Count", "Observed FTE",
	"MSP Equivalent", "Total FTE", "Variance", "MSP Coverage", "Notes",
}

// metricRecord returns one row per metric. Numeric cells stay typed so the
// workbook keeps them as numbers.
func metricRecord(m model.MetricComparison) []any {
	var computation, sources string
	if m.Provenance != nil {
		computation = m.Provenance.Computation
		sources = strings.Join(append(append([]string{}, m.Provenance.SourceFactIDs...), m.Provenance.SourceDocuments...), ", ")
	}
	var observed any = ""
	if m.Observed != nil {
		observed = *m.Observed
	}
	return []any{
		m.MetricID, m.Label, m.Unit, m.ExpectedLow, m.ExpectedTypical, m.ExpectedHigh,
		observed, m.ObservedDisplay, string(m.Variance), m.Eligible, m.IneligibleReason,
		string(m.Confidence), computation, sources,
	}
}

func systemRecord(s model.SystemComparison) []any {
	return []any{
		s.Category, s.Description, string(s.Criticality), string(s.Status), string(s.MatchTier),
		s.ObservedName, s.ObservedVendor, s.InventoryItemID, string(s.Confidence), s.Notes,
	}
}

func staffingRecord(s model.StaffingComparison) []any {
	return []any{
		s.Category, s.Label, s.ExpectedLabel, s.ObservedCount, s.ObservedFTE,
		s.MSPEquivalent, s.TotalFTE, string(s.Variance), s.MSPCoverageNote, s.Notes,
	}
}

// text renders a cell value for CSV and the terminal.
func text(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

func texts(vals []any) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = text(v)
	}
	return out
}
