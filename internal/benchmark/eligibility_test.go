package benchmark

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/benchmark-cli/internal/model"
)

func TestCheckEligibility(t *testing.T) {
	t.Parallel()

	cat := DefaultCatalog()
	spendPct, ok := cat.Lookup("it_spend_pct_revenue")
	require.True(t, ok)

	tests := []struct {
		name       string
		profile    *model.CompanyProfile
		wantOK     bool
		wantReason string
	}{
		{
			name:    "all present",
			profile: &model.CompanyProfile{ITBudget: docField(8e6), Revenue: docField(190e6)},
			wantOK:  true,
		},
		{
			name:       "revenue missing",
			profile:    &model.CompanyProfile{ITBudget: docField(8e6)},
			wantReason: "revenue not available",
		},
		{
			name:       "revenue null value",
			profile:    &model.CompanyProfile{ITBudget: docField(8e6), Revenue: &model.ProfileField{}},
			wantReason: "revenue not available",
		},
		{
			name:       "revenue zero",
			profile:    &model.CompanyProfile{ITBudget: docField(8e6), Revenue: docField(0)},
			wantReason: "revenue is zero",
		},
		{
			name:       "revenue negative",
			profile:    &model.CompanyProfile{ITBudget: docField(8e6), Revenue: docField(-5.0)},
			wantReason: "revenue is negative",
		},
		{
			name:       "revenue wrong type",
			profile:    &model.CompanyProfile{ITBudget: docField(8e6), Revenue: docField("190M")},
			wantReason: "revenue has invalid type string",
		},
		{
			name:       "revenue not finite",
			profile:    &model.CompanyProfile{ITBudget: docField(8e6), Revenue: docField(math.Inf(1))},
			wantReason: "revenue is not a finite number",
		},
		{
			name:       "both missing reported in order",
			profile:    &model.CompanyProfile{},
			wantReason: "IT budget not available; revenue not available",
		},
		{
			name:       "nil profile",
			profile:    nil,
			wantReason: "IT budget not available; revenue not available",
		},
		{
			name:    "json number",
			profile: &model.CompanyProfile{ITBudget: docField(json.Number("8000000")), Revenue: docField(json.Number("190000000"))},
			wantOK:  true,
		},
		{
			name:    "integer types",
			profile: &model.CompanyProfile{ITBudget: docField(int64(8_000_000)), Revenue: docField(uint32(190_000_000))},
			wantOK:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckEligibility(spendPct, tt.profile, nil)
			assert.Equal(t, tt.wantOK, got.Eligible)
			assert.Equal(t, tt.wantReason, got.Reason)
			if tt.wantOK {
				assert.Greater(t, got.Inputs.Values[model.FieldRevenue], 0.0)
			}
		})
	}
}

func TestCheckEligibilityInventory(t *testing.T) {
	t.Parallel()

	def, ok := DefaultCatalog().Lookup("applications_per_100_employees")
	require.True(t, ok)
	profile := &model.CompanyProfile{EmployeeCount: docField(200)}

	got := CheckEligibility(def, profile, nil)
	assert.False(t, got.Eligible)
	assert.Equal(t, "inventory not available", got.Reason)

	got = CheckEligibility(def, profile, []model.InventoryItem{{ID: "a"}, {ID: "b"}})
	assert.True(t, got.Eligible)
	assert.Equal(t, 2, got.Inputs.InventoryCount)
}

func TestZeroEmployeeCountGatesEveryPerEmployeeMetric(t *testing.T) {
	t.Parallel()

	profile := &model.CompanyProfile{
		Revenue:       docField(190e6),
		ITBudget:      docField(8e6),
		ITHeadcount:   docField(10),
		EmployeeCount: docField(0),
	}
	inventory := []model.InventoryItem{{ID: "a"}}

	cat := DefaultCatalog()
	for _, key := range cat.Keys() {
		def, _ := cat.Lookup(key)
		usesEmployees := false
		for _, r := range def.Requires {
			if r == model.FieldEmployeeCount {
				usesEmployees = true
			}
		}
		got := CheckEligibility(def, profile, inventory)
		if usesEmployees {
			assert.False(t, got.Eligible, key)
			assert.Contains(t, got.Reason, "employee count is zero", key)
		} else {
			assert.True(t, got.Eligible, key)
		}
	}
}

// Eligibility depends only on the fields a metric declares.
func TestEligibilityMonotonicity(t *testing.T) {
	t.Parallel()

	base := &model.CompanyProfile{
		Revenue:  docField(190e6),
		ITBudget: docField(8e6),
	}
	variants := []*model.CompanyProfile{
		{Revenue: base.Revenue, ITBudget: base.ITBudget, EmployeeCount: docField(0)},
		{Revenue: base.Revenue, ITBudget: base.ITBudget, EmployeeCount: docField("lots")},
		{Revenue: base.Revenue, ITBudget: base.ITBudget, ITHeadcount: docField(-3), Geography: docField("US")},
		{Name: "Other Co", Revenue: base.Revenue, ITBudget: base.ITBudget},
	}

	def, _ := DefaultCatalog().Lookup("it_spend_pct_revenue")
	require.True(t, CheckEligibility(def, base, nil).Eligible)
	for i, p := range variants {
		assert.True(t, CheckEligibility(def, p, nil).Eligible, "variant %d", i)
	}
}

func TestEvaluateComputationFaults(t *testing.T) {
	t.Parallel()

	profile := &model.CompanyProfile{Revenue: docField(100.0)}
	tests := []struct {
		name    string
		compute func(Inputs) (float64, error)
	}{
		{"panic", func(Inputs) (float64, error) { panic("boom") }},
		{"error", func(Inputs) (float64, error) { return 0, assert.AnError }},
		{"nan", func(Inputs) (float64, error) { return math.NaN(), nil }},
		{"inf", func(Inputs) (float64, error) { return math.Inf(-1), nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := MetricDef{Key: "x", Requires: []string{model.FieldRevenue}, Compute: tt.compute}
			out := evaluate(def, profile, nil)
			assert.Equal(t, outcomeFailed, out.kind)
			assert.Equal(t, "computation error", out.reason)
		})
	}

	ok := evaluate(MetricDef{
		Key:      "ok",
		Requires: []string{model.FieldRevenue},
		Compute:  func(in Inputs) (float64, error) { return in.Values[model.FieldRevenue] * 2, nil },
	}, profile, nil)
	assert.Equal(t, outcomeComputed, ok.kind)
	assert.InDelta(t, 200.0, ok.value, 1e-9)
}

func TestCatalogKeys(t *testing.T) {
	t.Parallel()

	keys := DefaultCatalog().Keys()
	assert.Equal(t, []string{
		"applications_per_100_employees",
		"employees_per_it_fte",
		"it_spend_pct_revenue",
		"it_spend_per_employee",
		"it_spend_per_it_fte",
		"it_staff_pct_employees",
		"revenue_per_employee",
	}, keys)
}
