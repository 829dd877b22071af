package benchmark

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/benchmark-cli/internal/model"
	"github.com/sells-group/benchmark-cli/internal/template"
)

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func f64(v float64) *float64 { return &v }

func docField(v any, docs ...string) *model.ProfileField {
	return &model.ProfileField{
		Value:           v,
		Confidence:      model.ConfidenceHigh,
		Provenance:      model.ProvenanceDocument,
		SourceDocuments: docs,
	}
}

func insuranceTemplate() *template.Template {
	return &template.Template{
		ID:          "insurance_pc",
		Version:     "2024.1",
		Industry:    "insurance",
		SubIndustry: "property_casualty",
		Metrics: []template.ExpectedMetric{
			{Key: "it_spend_pct_revenue", Label: "IT spend % of revenue", Low: 3.0, Typical: 4.5, High: 6.5, Unit: "%", Source: "IT spend survey 2024"},
			{Key: "it_staff_pct_employees", Label: "IT staff % of employees", Low: 4, Typical: 6, High: 9, Unit: "%"},
			{Key: "it_spend_per_employee", Label: "IT spend per employee", Low: 8000, Typical: 12000, High: 18000, Unit: "USD"},
			{Key: "revenue_per_employee", Label: "Revenue per employee", Low: 150000, Typical: 250000, High: 400000, Unit: "USD"},
			{Key: "applications_per_100_employees", Label: "Applications per 100 employees", Low: 5, Typical: 10, High: 20, Unit: "apps"},
		},
		Systems: template.ExpectedSystems{
			Critical: []template.ExpectedSystem{
				{Category: "policy_administration", Description: "Policy administration", CommonVendors: []string{"Duck Creek", "Guidewire", "Majesco"}},
				{Category: "claims_management", Description: "Claims management", CommonVendors: []string{"Guidewire", "Snapsheet"}},
			},
			Common: []template.ExpectedSystem{
				{Category: "reinsurance_management", CommonVendors: []string{"SAP FS-RI"}},
			},
			GeneralEnterprise: []template.ExpectedSystem{
				{Category: "identity_management", CommonVendors: []string{"Ping Identity", "CyberArk"}},
				{Category: "email", CommonVendors: []string{"Microsoft 365", "Google Workspace"}},
			},
		},
		Organization: template.ExpectedOrganization{
			Roles: []template.ExpectedRole{
				{Category: "leadership", Label: "IT leadership", Count: f64(1), Titles: []string{"CIO", "IT Director"}},
				{Category: "infrastructure", Label: "Infrastructure", Low: f64(2), High: f64(4), Titles: []string{"Network Engineer", "Systems Administrator"}},
				{Category: "service_desk", Label: "Service desk", Low: f64(2), High: f64(3)},
				{Category: "security", Label: "Security", Low: f64(1), High: f64(2)},
			},
			OutsourcingPatterns: []string{"Service desk is commonly outsourced"},
		},
		DealLenses: map[string][]template.Consideration{
			"growth": {
				{ID: "core_scale", Title: "Core platform scale", Text: "Confirm the policy platform can absorb premium growth.", RelatedSystems: []string{"policy_administration"}},
				{ID: "data_strategy", Text: "Assess data and analytics maturity.", Keywords: []string{"data warehouse"}},
				{ID: "digital", Text: "Review digital distribution.", Keywords: []string{"agent portal"}},
			},
			"carve_out": {
				{ID: "tsa", Text: "Identify shared services needing a TSA.", Keywords: []string{"shared service"}},
			},
		},
	}
}

func fullSnapshot() *model.Snapshot {
	half := 0.5
	return &model.Snapshot{
		CompanyID: "acme-insurance",
		Profile: model.CompanyProfile{
			Name:          "Acme Insurance",
			Revenue:       docField(190_000_000, "10-K 2024.pdf"),
			EmployeeCount: docField(850, "HR census.xlsx"),
			ITHeadcount:   docField(42, "IT org chart.pdf"),
			ITBudget: &model.ProfileField{
				Value:           8_000_000,
				Confidence:      model.ConfidenceHigh,
				Provenance:      model.ProvenanceUserSpecified,
				SourceDocuments: []string{"IT budget FY24.xlsx"},
				SourceFactIDs:   []string{"F-010"},
			},
		},
		Classification: model.IndustryClassification{PrimaryIndustry: "insurance", SubIndustry: "property_casualty"},
		Facts: []model.Fact{
			{ID: "F-020", Category: "data", Item: "Snowflake data warehouse rollout", SourceDocument: "IT strategy.pptx"},
			{ID: "F-003", Category: "applications", Item: "Guidewire upgrade planned"},
		},
		Inventory: []model.InventoryItem{
			{ID: "INV-3", Name: "Exchange Online", Vendor: "Microsoft", SourceDocument: "App inventory.xlsx"},
			{ID: "INV-1", Name: "Duck Creek Policy", Vendor: "Duck Creek Technologies", Provenance: model.ProvenanceDocument, SourceDocument: "App inventory.xlsx"},
			{ID: "INV-2", Name: "Okta Workforce Identity", SourceDocument: "App inventory.xlsx"},
			{ID: "INV-4", Name: "Reinsurance Ledger", Provenance: model.ProvenanceInferred},
		},
		Organization: &model.Organization{
			Staff: []model.StaffMember{
				{ID: "S-2", Name: "Bo Lindqvist", Role: "Senior Network Engineer"},
				{ID: "S-1", Name: "Ana Ruiz", Role: "CIO", Category: "Leadership"},
				{ID: "S-3", Name: "Chen Wu", Role: "Systems Administrator", FTE: &half},
				{ID: "S-4", Name: "Dee Okafor", Role: "Developer", Category: "applications"},
			},
			MSPs: []model.MSPRelationship{
				{ID: "M-1", Vendor: "HelpCo", Services: []string{"service_desk"}, FTEEquivalent: 2.5, Dependency: model.DependencyPrimary},
				{ID: "M-2", Vendor: "SecureOps", Services: []string{"security", "infrastructure"}, FTEEquivalent: 2, Dependency: model.DependencySupplemental},
			},
		},
		DealLens: "growth",
	}
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	e, err := New(DefaultConfig(), opts...)
	require.NoError(t, err)
	return e
}

func metricByID(t *testing.T, r *model.BenchmarkReport, id string) model.MetricComparison {
	t.Helper()
	for _, m := range r.Metrics {
		if m.MetricID == id {
			return m
		}
	}
	t.Fatalf("metric %s not in report", id)
	return model.MetricComparison{}
}

func systemByCategory(t *testing.T, r *model.BenchmarkReport, cat string) model.SystemComparison {
	t.Helper()
	for _, s := range r.Systems {
		if s.Category == cat {
			return s
		}
	}
	t.Fatalf("system %s not in report", cat)
	return model.SystemComparison{}
}

func roleByCategory(t *testing.T, rows []model.StaffingComparison, cat string) model.StaffingComparison {
	t.Helper()
	for _, s := range rows {
		if s.Category == cat {
			return s
		}
	}
	t.Fatalf("role %s not in rows", cat)
	return model.StaffingComparison{}
}
