package benchmark

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/sells-group/benchmark-cli/internal/model"
)

// Eligibility is the gate's verdict for one metric.
type Eligibility struct {
	Eligible bool
	Reason   string
	Inputs   Inputs
}

// CheckEligibility decides whether def can be computed from the profile and
// inventory. Every required field must be present, numeric, finite and
// strictly positive; all failures are reported, in declared order.
func CheckEligibility(def MetricDef, profile *model.CompanyProfile, inventory []model.InventoryItem) Eligibility {
	var reasons []string
	values := make(map[string]float64, len(def.Requires))

	for _, key := range def.Requires {
		label := model.FieldLabel(key)
		f := profile.Field(key)
		if f.IsNull() {
			reasons = append(reasons, label+" not available")
			continue
		}
		v, ok := numericValue(f.Value)
		switch {
		case !ok:
			reasons = append(reasons, fmt.Sprintf("%s has invalid type %T", label, f.Value))
		case math.IsNaN(v) || math.IsInf(v, 0):
			reasons = append(reasons, label+" is not a finite number")
		case v == 0:
			reasons = append(reasons, label+" is zero")
		case v < 0:
			reasons = append(reasons, label+" is negative")
		default:
			values[key] = v
		}
	}
	if def.UsesInventory && len(inventory) == 0 {
		reasons = append(reasons, "inventory not available")
	}

	if len(reasons) > 0 {
		return Eligibility{Reason: strings.Join(reasons, "; ")}
	}
	return Eligibility{
		Eligible: true,
		Inputs:   Inputs{Values: values, InventoryCount: len(inventory)},
	}
}

// numericValue converts the numeric types a decoded profile may carry.
// Strings and other types are rejected.
func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
