package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/benchmark-cli/internal/model"
)

func f64(v float64) *float64 { return &v }

func sampleReport() *model.BenchmarkReport {
	return &model.BenchmarkReport{
		CompanyID:       "acme",
		CompanyName:     "Acme Mutual",
		TemplateID:      "insurance_pc",
		TemplateVersion: "2.1",
		Metrics: []model.MetricComparison{
			{
				MetricID: "it_spend_pct_revenue", Label: "IT spend % revenue",
				ExpectedLow: 3, ExpectedTypical: 4.5, ExpectedHigh: 6, Unit: "%",
				Observed: f64(4.21), ObservedDisplay: "4.21%",
				Variance: model.VarianceWithinRange, Eligible: true, Confidence: model.ConfidenceHigh,
				Provenance: &model.Provenance{
					Computation:     "it_budget / revenue * 100",
					SourceFactIDs:   []string{"F-010"},
					SourceDocuments: []string{"budget.xlsx"},
				},
			},
			{
				MetricID: "it_staff_pct_employees", Label: "IT staff % employees",
				ExpectedLow: 3, ExpectedTypical: 4, ExpectedHigh: 5, Unit: "%",
				ObservedDisplay: "N/A", Eligible: false,
				IneligibleReason: "employee count is zero", Confidence: model.ConfidenceLow,
			},
		},
		Systems: []model.SystemComparison{
			{Category: "policy_administration", Criticality: model.CriticalityCritical, Status: model.MatchFound,
				MatchTier: model.TierExact, ObservedName: "Guidewire PolicyCenter", ObservedVendor: "Guidewire",
				Confidence: model.ConfidenceHigh},
			{Category: "reinsurance_management", Criticality: model.CriticalityCommon, Status: model.MatchNotFound,
				MatchTier: model.TierNone, Confidence: model.ConfidenceLow},
		},
		Staffing: []model.StaffingComparison{
			{Category: "infrastructure", Label: "Infrastructure", ExpectedLabel: "2-4",
				ObservedCount: 1, ObservedFTE: 1, MSPEquivalent: 1.5, TotalFTE: 2.5, Variance: model.StaffingMatch},
			{Category: "security", Label: "Security", ExpectedLabel: "1", Variance: model.StaffingNone},
		},
		EligibleMetricCount: 1,
		TotalMetricCount:    2,
		OverallConfidence:   model.ConfidenceHigh,
		DealLens:            "growth",
		Considerations: []model.Consideration{
			{ID: "scalability", Text: "Assess core platform scalability.", Status: model.EvidenceFound},
		},
		IsDeterministic: true,
		ComputedAt:      time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleReport()))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, f.Sheets, 3)
	assert.Equal(t, SheetMetrics, f.Sheets[0].Name)
	assert.Equal(t, SheetSystems, f.Sheets[1].Name)
	assert.Equal(t, SheetStaffing, f.Sheets[2].Name)

	metrics := f.Sheet[SheetMetrics]
	require.Len(t, metrics.Rows, 3)
	assert.Equal(t, "Metric", metrics.Rows[0].Cells[0].String())
	assert.Equal(t, "it_spend_pct_revenue", metrics.Rows[1].Cells[0].String())
	assert.Equal(t, "4.21%", metrics.Rows[1].Cells[7].String())
	assert.Equal(t, "F-010, budget.xlsx", metrics.Rows[1].Cells[13].String())
	assert.Equal(t, "employee count is zero", metrics.Rows[2].Cells[10].String())

	systems := f.Sheet[SheetSystems]
	require.Len(t, systems.Rows, 3)
	assert.Equal(t, "not_found", systems.Rows[2].Cells[3].String())

	staffing := f.Sheet[SheetStaffing]
	require.Len(t, staffing.Rows, 3)
	assert.Equal(t, "2-4", staffing.Rows[1].Cells[2].String())
}

func TestWriteXLSX_NilReport(t *testing.T) {
	err := WriteXLSX(&bytes.Buffer{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "report is nil")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleReport()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, metricHeader, records[0])
	assert.Equal(t, []string{
		"it_spend_pct_revenue", "IT spend % revenue", "%", "3", "4.5", "6",
		"4.21", "4.21%", "within_range", "true", "",
		"high", "it_budget / revenue * 100", "F-010, budget.xlsx",
	}, records[1])
	assert.Equal(t, "", records[2][6], "ineligible rows have no observed value")
	assert.Equal(t, "false", records[2][9])
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "Acme Mutual vs insurance_pc v2.1")
	assert.Contains(t, out, "1 of 2 metrics eligible, overall confidence high")
	assert.Contains(t, out, "within_range")
	assert.Contains(t, out, "n/a: employee count is zero")
	assert.Contains(t, out, "Guidewire PolicyCenter (Guidewire)")
	assert.Contains(t, out, "Considerations (growth)")
	assert.Contains(t, out, "[evidence_found] scalability")
}

func TestSummaryLine(t *testing.T) {
	t.Parallel()

	got := SummaryLine(sampleReport())
	assert.Equal(t, "systems: 1 found, 0 partial, 1 not found; staffing: match=1 none=1", got)
}

func TestText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		want string
	}{
		{"x", "x"},
		{4.5, "4.5"},
		{3.0, "3"},
		{7, "7"},
		{true, "true"},
		{nil, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, text(tt.in))
	}
}
