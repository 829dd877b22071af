// Package benchmark compares a company snapshot against an industry
// reference template and produces a fully sourced BenchmarkReport.
package benchmark

import (
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/benchmark-cli/internal/config"
	"github.com/sells-group/benchmark-cli/internal/model"
	"github.com/sells-group/benchmark-cli/internal/template"
)

// Engine runs comparisons. It holds only configuration, so one Engine may
// serve concurrent Compare calls.
type Engine struct {
	bands    Bands
	catalog  *Catalog
	matcher  *Matcher
	staffing *StaffingComparator
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used for ComputedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithCatalog replaces the built-in metric catalog.
func WithCatalog(c *Catalog) Option {
	return func(e *Engine) { e.catalog = c }
}

// WithAliases replaces the built-in system alias table.
func WithAliases(aliases map[string][]string) Option {
	return func(e *Engine) { e.matcher.aliases = aliases }
}

// New creates an engine from cfg. A nil MSP weight table uses the defaults.
func New(cfg config.BenchmarkConfig, opts ...Option) (*Engine, error) {
	if cfg.MSPWeights == nil {
		cfg.MSPWeights = DefaultMSPWeights()
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	e := &Engine{
		bands:    Bands{Near: cfg.NearBandPct, Far: cfg.FarBandPct},
		catalog:  DefaultCatalog(),
		matcher:  NewMatcher(cfg.PartialMatchThreshold, nil),
		staffing: NewStaffingComparator(cfg.MSPWeights),
		now:      time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// Compare benchmarks the snapshot against tpl. Incomplete data never fails:
// every template metric, system and role gets a row. Only a missing template
// is an error. Inputs are not modified.
func (e *Engine) Compare(in *model.Snapshot, tpl *template.Template) (*model.BenchmarkReport, error) {
	if tpl == nil {
		return nil, eris.New("benchmark: template is required")
	}
	if in == nil {
		in = &model.Snapshot{}
	}

	inventory := append([]model.InventoryItem(nil), in.Inventory...)
	sort.SliceStable(inventory, func(i, j int) bool { return inventory[i].ID < inventory[j].ID })

	metrics := make([]model.MetricComparison, 0, len(tpl.Metrics))
	eligible := 0
	for _, em := range tpl.Metrics {
		row := e.compareMetric(em, tpl, &in.Profile, inventory)
		if row.Eligible {
			eligible++
		}
		metrics = append(metrics, row)
	}

	cands := prepareCandidates(inventory)
	expected := tpl.Systems.All()
	systems := make([]model.SystemComparison, 0, len(expected))
	for _, sys := range expected {
		systems = append(systems, e.matcher.Match(sys, cands))
	}

	staffing := e.staffing.Compare(in.Organization, tpl.Organization)

	report := &model.BenchmarkReport{
		CompanyID:           in.CompanyID,
		CompanyName:         in.Profile.Name,
		TemplateID:          tpl.ID,
		TemplateVersion:     tpl.Version,
		Metrics:             metrics,
		Systems:             systems,
		Staffing:            staffing,
		EligibleMetricCount: eligible,
		TotalMetricCount:    len(metrics),
		OverallConfidence:   OverallConfidence(metrics),
		DealLens:            in.DealLens,
		Considerations:      considerations(tpl, in.DealLens, cands, in.Facts, systems),
		IsDeterministic:     true,
		ComputedAt:          e.now().UTC(),
	}

	zap.L().Debug("benchmark: comparison complete",
		zap.String("company_id", in.CompanyID),
		zap.String("template", tpl.ID),
		zap.Int("eligible_metrics", eligible),
		zap.Int("total_metrics", len(metrics)),
		zap.Int("systems", len(systems)),
		zap.Int("roles", len(staffing)),
		zap.String("overall_confidence", string(report.OverallConfidence)),
	)

	return report, nil
}
