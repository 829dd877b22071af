// Package pipeline wires template resolution, the comparison engine and
// report persistence into single and batch runs.
package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/benchmark-cli/internal/benchmark"
	"github.com/sells-group/benchmark-cli/internal/model"
	"github.com/sells-group/benchmark-cli/internal/resilience"
	"github.com/sells-group/benchmark-cli/internal/snapshot"
	"github.com/sells-group/benchmark-cli/internal/store"
	"github.com/sells-group/benchmark-cli/internal/template"
)

// Pipeline runs comparisons. The store is optional; without one, runs that
// ask to save fail.
type Pipeline struct {
	engine    *benchmark.Engine
	templates *template.Cache
	store     store.Store
	retry     resilience.RetryConfig
}

// New creates a Pipeline. st may be nil.
func New(engine *benchmark.Engine, templates *template.Cache, st store.Store) *Pipeline {
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("store.save_report")
	return &Pipeline{engine: engine, templates: templates, store: st, retry: retry}
}

// WithSaveRetry replaces the retry policy used for transient store errors.
func (p *Pipeline) WithSaveRetry(cfg resilience.RetryConfig) *Pipeline {
	if cfg.OnRetry == nil {
		cfg.OnRetry = resilience.RetryLogger("store.save_report")
	}
	p.retry = cfg
	return p
}

// Templates returns the template cache the pipeline resolves against.
func (p *Pipeline) Templates() *template.Cache { return p.templates }

// Store returns the configured store, or nil.
func (p *Pipeline) Store() store.Store { return p.store }

// RunOptions tune a single run.
type RunOptions struct {
	DealLens string // overrides the snapshot's lens when set
	Save     bool
}

// Result is the outcome of one run.
type Result struct {
	Report    *model.BenchmarkReport `json:"report"`
	MatchedOn string                 `json:"matched_on"`
	ReportID  string                 `json:"report_id,omitempty"`
	Duration  time.Duration          `json:"duration_ns"`
}

// Run resolves the template for snap, compares, and optionally saves.
func (p *Pipeline) Run(ctx context.Context, snap *model.Snapshot, opts RunOptions) (*Result, error) {
	if snap == nil {
		return nil, eris.New("pipeline: snapshot is nil")
	}
	if opts.Save && p.store == nil {
		return nil, eris.New("pipeline: save requested but no store configured")
	}
	start := time.Now()

	in := *snap
	if opts.DealLens != "" {
		in.DealLens = opts.DealLens
	}

	res, err := p.templates.ForSnapshot(ctx, &in)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: resolve template for %s", in.CompanyID)
	}

	report, err := p.engine.Compare(&in, res.Template)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: compare %s", in.CompanyID)
	}

	out := &Result{Report: report, MatchedOn: res.MatchedOn}
	if opts.Save {
		rec, err := resilience.DoVal(ctx, p.retry, func(ctx context.Context) (*store.StoredReport, error) {
			return p.store.SaveReport(ctx, report)
		})
		if err != nil {
			return nil, eris.Wrapf(err, "pipeline: save report for %s", in.CompanyID)
		}
		out.ReportID = rec.ID
	}
	out.Duration = time.Since(start)

	zap.L().Info("pipeline: comparison complete",
		zap.String("company", in.CompanyID),
		zap.String("template", report.TemplateID),
		zap.String("matched_on", res.MatchedOn),
		zap.Int("eligible_metrics", report.EligibleMetricCount),
		zap.String("overall_confidence", string(report.OverallConfidence)),
		zap.String("report_id", out.ReportID),
	)
	return out, nil
}

// BatchItem is the outcome for one snapshot file.
type BatchItem struct {
	Path   string  `json:"path"`
	Result *Result `json:"result,omitempty"`
	Err    error   `json:"-"`
}

// BatchSummary collects batch outcomes in input order.
type BatchSummary struct {
	Items     []BatchItem `json:"items"`
	Succeeded int64       `json:"succeeded"`
	Failed    int64       `json:"failed"`
}

// RunBatch loads and compares each snapshot file with at most concurrency
// runs in flight. Individual failures are recorded, not returned.
func (p *Pipeline) RunBatch(ctx context.Context, paths []string, concurrency int, opts RunOptions) (*BatchSummary, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	items := make([]BatchItem, len(paths))

	zap.L().Info("pipeline: processing batch",
		zap.Int("snapshots", len(paths)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed atomic.Int64

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			items[i].Path = path
			log := zap.L().With(zap.String("snapshot", path))

			if err := gctx.Err(); err != nil {
				items[i].Err = err
				failed.Add(1)
				return nil
			}

			snap, err := snapshot.LoadFile(path)
			if err != nil {
				items[i].Err = err
				failed.Add(1)
				log.Error("pipeline: load snapshot failed", zap.Error(err))
				return nil
			}

			res, err := p.Run(gctx, snap, opts)
			if err != nil {
				items[i].Err = err
				failed.Add(1)
				log.Error("pipeline: comparison failed", zap.Error(err))
				return nil
			}

			items[i].Result = res
			succeeded.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "pipeline: batch")
	}

	summary := &BatchSummary{Items: items, Succeeded: succeeded.Load(), Failed: failed.Load()}
	zap.L().Info("pipeline: batch complete",
		zap.Int64("succeeded", summary.Succeeded),
		zap.Int64("failed", summary.Failed),
	)
	if err := ctx.Err(); err != nil {
		return summary, eris.Wrap(err, "pipeline: batch interrupted")
	}
	return summary, nil
}
