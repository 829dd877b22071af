package benchmark

import (
	"fmt"
	"math"

	"github.com/sells-group/benchmark-cli/internal/model"
)

// bandEpsilon absorbs float error so a distance of exactly 10% or 30% lands
// in the less severe band.
const bandEpsilon = 1e-9

// Bands holds the relative distance thresholds for variance classification.
type Bands struct {
	Near float64 // low_end / high_end up to this fraction
	Far  float64 // below_range / above_range up to this fraction
}

// ClassifyVariance places observed against [low, high]. Distance outside the
// range is measured relative to the violated bound; a zero bound falls back
// to the range width, then to 1.
func ClassifyVariance(observed, low, high float64, b Bands) model.VarianceCategory {
	if math.IsNaN(observed) || math.IsInf(observed, 0) {
		return model.VarianceInsufficientData
	}

	switch {
	case observed >= low && observed <= high:
		return model.VarianceWithinRange
	case observed < low:
		d := (low - observed) / boundScale(low, high)
		switch {
		case d <= b.Near+bandEpsilon:
			return model.VarianceLowEnd
		case d <= b.Far+bandEpsilon:
			return model.VarianceBelowRange
		default:
			return model.VarianceFarBelow
		}
	default:
		d := (observed - high) / boundScale(high, low)
		switch {
		case d <= b.Near+bandEpsilon:
			return model.VarianceHighEnd
		case d <= b.Far+bandEpsilon:
			return model.VarianceAboveRange
		default:
			return model.VarianceFarAbove
		}
	}
}

func boundScale(bound, other float64) float64 {
	if s := math.Abs(bound); s > 0 {
		return s
	}
	if w := math.Abs(other - bound); w > 0 {
		return w
	}
	return 1
}

// FormatObserved renders a metric value for display in its unit.
func FormatObserved(v float64, unit string) string {
	switch unit {
	case "%", "percent":
		return fmt.Sprintf("%.2f%%", v)
	case "USD", "usd", "$":
		return FormatCurrency(v)
	case "":
		return fmt.Sprintf("%.2f", v)
	}
	return fmt.Sprintf("%.2f %s", v, unit)
}

// FormatCurrency formats a dollar amount as $1.2B, $8.0M, $9.4K or $950.
func FormatCurrency(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	switch {
	case v >= 1_000_000_000:
		return fmt.Sprintf("%s$%.1fB", sign, v/1_000_000_000)
	case v >= 1_000_000:
		return fmt.Sprintf("%s$%.1fM", sign, v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("%s$%.1fK", sign, v/1_000)
	default:
		return fmt.Sprintf("%s$%.0f", sign, v)
	}
}
