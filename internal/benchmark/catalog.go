package benchmark

import (
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sells-group/benchmark-cli/internal/model"
)

// Inputs are the gate-validated values a metric formula runs on.
type Inputs struct {
	Values         map[string]float64 // required profile fields, all > 0
	InventoryCount int
}

// MetricDef declares how to compute one metric and what it needs.
type MetricDef struct {
	Key           string
	Requires      []string // profile field keys, checked in order
	UsesInventory bool
	Formula       string
	Compute       func(in Inputs) (float64, error)
}

// Catalog maps template metric keys to their definitions.
type Catalog struct {
	defs map[string]MetricDef
}

// NewCatalog builds a catalog from defs. Later definitions replace earlier
// ones with the same key.
func NewCatalog(defs ...MetricDef) *Catalog {
	c := &Catalog{defs: make(map[string]MetricDef, len(defs))}
	for _, d := range defs {
		c.defs[d.Key] = d
	}
	return c
}

// Lookup returns the definition for key.
func (c *Catalog) Lookup(key string) (MetricDef, bool) {
	d, ok := c.defs[key]
	return d, ok
}

// Keys returns all metric keys, sorted.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.defs))
	for k := range c.defs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ratio builds a metric computing num / den * scale.
func ratio(key, num, den string, scale float64, formula string) MetricDef {
	return MetricDef{
		Key:      key,
		Requires: []string{num, den},
		Formula:  formula,
		Compute: func(in Inputs) (float64, error) {
			d, ok := in.Values[den]
			if !ok || d == 0 {
				return 0, eris.Errorf("benchmark: %s: zero denominator %s", key, den)
			}
			return in.Values[num] / d * scale, nil
		},
	}
}

// DefaultCatalog returns the built-in metric definitions.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		ratio("it_spend_pct_revenue", model.FieldITBudget, model.FieldRevenue, 100,
			"it_budget / revenue * 100"),
		ratio("it_staff_pct_employees", model.FieldITHeadcount, model.FieldEmployeeCount, 100,
			"it_headcount / employee_count * 100"),
		ratio("it_spend_per_employee", model.FieldITBudget, model.FieldEmployeeCount, 1,
			"it_budget / employee_count"),
		ratio("it_spend_per_it_fte", model.FieldITBudget, model.FieldITHeadcount, 1,
			"it_budget / it_headcount"),
		ratio("employees_per_it_fte", model.FieldEmployeeCount, model.FieldITHeadcount, 1,
			"employee_count / it_headcount"),
		ratio("revenue_per_employee", model.FieldRevenue, model.FieldEmployeeCount, 1,
			"revenue / employee_count"),
		MetricDef{
			Key:           "applications_per_100_employees",
			Requires:      []string{model.FieldEmployeeCount},
			UsesInventory: true,
			Formula:       "inventory_items / employee_count * 100",
			Compute: func(in Inputs) (float64, error) {
				emp := in.Values[model.FieldEmployeeCount]
				if emp == 0 {
					return 0, eris.New("benchmark: applications_per_100_employees: zero employee_count")
				}
				return float64(in.InventoryCount) / emp * 100, nil
			},
		},
	)
}
