package benchmark

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/benchmark-cli/internal/model"
	"github.com/sells-group/benchmark-cli/internal/template"
)

const reasonComputationError = "computation error"

// outcomeKind tags the result of evaluating one metric.
type outcomeKind int

const (
	outcomeComputed outcomeKind = iota
	outcomeIneligible
	outcomeFailed
)

// metricOutcome is the explicit result of the gate plus the formula.
type metricOutcome struct {
	kind   outcomeKind
	value  float64
	reason string
	inputs Inputs
}

// evaluate runs the gate and, if eligible, the formula. Formula errors,
// panics and non-finite results become outcomeFailed.
func evaluate(def MetricDef, profile *model.CompanyProfile, inventory []model.InventoryItem) (out metricOutcome) {
	elig := CheckEligibility(def, profile, inventory)
	if !elig.Eligible {
		return metricOutcome{kind: outcomeIneligible, reason: elig.Reason}
	}

	defer func() {
		if r := recover(); r != nil {
			zap.L().Warn("benchmark: metric computation panicked",
				zap.String("metric", def.Key),
				zap.Any("panic", r),
			)
			out = metricOutcome{kind: outcomeFailed, reason: reasonComputationError}
		}
	}()

	v, err := def.Compute(elig.Inputs)
	if err != nil {
		zap.L().Warn("benchmark: metric computation failed", zap.String("metric", def.Key), zap.Error(err))
		return metricOutcome{kind: outcomeFailed, reason: reasonComputationError}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		zap.L().Warn("benchmark: metric computation not finite", zap.String("metric", def.Key))
		return metricOutcome{kind: outcomeFailed, reason: reasonComputationError}
	}
	return metricOutcome{kind: outcomeComputed, value: v, inputs: elig.Inputs}
}

// compareMetric builds the comparison row for one template metric.
func (e *Engine) compareMetric(em template.ExpectedMetric, tpl *template.Template, profile *model.CompanyProfile, inventory []model.InventoryItem) model.MetricComparison {
	row := model.MetricComparison{
		MetricID:        em.Key,
		Label:           em.Label,
		ExpectedLow:     em.Low,
		ExpectedTypical: em.Typical,
		ExpectedHigh:    em.High,
		Unit:            em.Unit,
		ObservedDisplay: "N/A",
		Confidence:      model.ConfidenceLow,
	}

	def, ok := e.catalog.Lookup(em.Key)
	if !ok {
		row.IneligibleReason = "no computation defined for metric " + em.Key
		return row
	}

	out := evaluate(def, profile, inventory)
	if out.kind != outcomeComputed {
		row.IneligibleReason = out.reason
		return row
	}

	evidence := make([]Evidence, 0, len(def.Requires)+1)
	for _, key := range def.Requires {
		evidence = append(evidence, fieldEvidence(key, profile.Field(key)))
	}
	if def.UsesInventory {
		evidence = append(evidence, inventoryEvidence(inventory))
	}
	cal := Calibrate(model.ConfidenceHigh, evidence)

	v := out.value
	row.Observed = &v
	row.ObservedDisplay = FormatObserved(v, em.Unit)
	row.Variance = ClassifyVariance(v, em.Low, em.High, e.bands)
	row.Eligible = true
	row.Confidence = cal.Confidence
	row.Provenance = &model.Provenance{
		ExpectedSource:      expectedSource(em, tpl),
		TemplateID:          tpl.ID,
		TemplateVersion:     tpl.Version,
		Computation:         describeComputation(def, out.inputs, v),
		SourceFactIDs:       cal.FactIDs,
		SourceDocuments:     cal.Documents,
		ConfidenceRationale: cal.Rationale,
	}
	return row
}

func expectedSource(em template.ExpectedMetric, tpl *template.Template) string {
	if em.Source != "" {
		return em.Source
	}
	return fmt.Sprintf("Industry template %s v%s", tpl.ID, tpl.Version)
}

// describeComputation renders the formula with its inputs, e.g.
// "it_budget / revenue * 100 where it_budget=8000000, revenue=190000000 = 4.2105".
func describeComputation(def MetricDef, in Inputs, v float64) string {
	parts := make([]string, 0, len(def.Requires)+1)
	for _, key := range def.Requires {
		parts = append(parts, key+"="+strconv.FormatFloat(in.Values[key], 'f', -1, 64))
	}
	if def.UsesInventory {
		parts = append(parts, "inventory_items="+strconv.Itoa(in.InventoryCount))
	}
	return fmt.Sprintf("%s where %s = %s", def.Formula, strings.Join(parts, ", "), strconv.FormatFloat(v, 'f', 4, 64))
}
