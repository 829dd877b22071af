package store

import (
	"time"

	"github.com/sells-group/benchmark-cli/internal/model"
)

func f64(v float64) *float64 { return &v }

func sampleReport(companyID string) *model.BenchmarkReport {
	return &model.BenchmarkReport{
		CompanyID:       companyID,
		CompanyName:     "Acme Mutual",
		TemplateID:      "insurance_pc",
		TemplateVersion: "2.1",
		Metrics: []model.MetricComparison{
			{
				MetricID:        "it_budget_pct_revenue",
				Label:           "IT budget as % of revenue",
				ExpectedLow:     3,
				ExpectedTypical: 4.5,
				ExpectedHigh:    6,
				Unit:            "%",
				Observed:        f64(4.21),
				ObservedDisplay: "4.21%",
				Variance:        model.VarianceWithinRange,
				Eligible:        true,
				Confidence:      model.ConfidenceHigh,
			},
			{
				MetricID:         "it_headcount_ratio",
				Label:            "IT headcount ratio",
				ExpectedLow:      3,
				ExpectedTypical:  4,
				ExpectedHigh:     5,
				Unit:             "%",
				ObservedDisplay:  "N/A",
				Eligible:         false,
				IneligibleReason: "IT headcount not available",
				Confidence:       model.ConfidenceLow,
			},
		},
		EligibleMetricCount: 1,
		TotalMetricCount:    2,
		OverallConfidence:   model.ConfidenceHigh,
		Considerations:      []model.Consideration{},
		IsDeterministic:     true,
		ComputedAt:          time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}
}
