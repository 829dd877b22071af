package benchmark

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/benchmark-cli/internal/config"
	"github.com/sells-group/benchmark-cli/internal/model"
)

// DefaultConfig returns the engine defaults.
func DefaultConfig() config.BenchmarkConfig {
	return config.BenchmarkConfig{
		// Variance bands, as a fraction of the violated bound.
		NearBandPct: 0.10,
		FarBandPct:  0.30,

		// System matcher partial tier.
		PartialMatchThreshold: 0.5,

		// MSP FTE weighting by dependency level.
		MSPWeights: DefaultMSPWeights(),
	}
}

// DefaultMSPWeights returns full weight for primary and partial dependency
// and half weight for supplemental.
func DefaultMSPWeights() map[string]float64 {
	return map[string]float64{
		string(model.DependencyPrimary):      1.0,
		string(model.DependencyPartial):      1.0,
		string(model.DependencySupplemental): 0.5,
	}
}

// ValidateConfig checks engine settings and returns every problem found.
func ValidateConfig(c config.BenchmarkConfig) error {
	var errs []string

	if c.NearBandPct <= 0 {
		errs = append(errs, "near_band_pct must be > 0")
	}
	if c.FarBandPct <= c.NearBandPct {
		errs = append(errs, "far_band_pct must be > near_band_pct")
	}
	if c.PartialMatchThreshold <= 0 || c.PartialMatchThreshold > 1 {
		errs = append(errs, "partial_match_threshold must be in (0, 1]")
	}

	keys := make([]string, 0, len(c.MSPWeights))
	for k := range c.MSPWeights {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		w := c.MSPWeights[k]
		if w < 0 || w > 1 {
			errs = append(errs, fmt.Sprintf("msp_weights.%s must be in [0, 1], got %g", k, w))
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("benchmark: invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}
