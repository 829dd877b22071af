package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/benchmark-cli/internal/benchmark"
	"github.com/sells-group/benchmark-cli/internal/pipeline"
	"github.com/sells-group/benchmark-cli/internal/resilience"
	"github.com/sells-group/benchmark-cli/internal/store"
	"github.com/sells-group/benchmark-cli/internal/template"
)

// pipelineEnv holds what the compare/batch/serve commands share.
type pipelineEnv struct {
	Store     store.Store // nil unless requested
	Templates *template.Cache
	Pipeline  *pipeline.Pipeline
}

// Close releases resources held by the environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initTemplates builds the template cache over the configured directory.
func initTemplates() (*template.Cache, error) {
	if err := cfg.Validate("templates"); err != nil {
		return nil, err
	}
	return template.NewCache(template.DirSource{Dir: cfg.Templates.Dir}, cfg.Templates.DefaultID), nil
}

// initStore opens and migrates the configured report store.
func initStore(ctx context.Context) (store.Store, error) {
	if err := cfg.Validate("store"); err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	return st, nil
}

// initPipeline builds the engine, template cache and, when withStore is
// set, the report store. Callers should defer env.Close().
func initPipeline(ctx context.Context, withStore bool) (*pipelineEnv, error) {
	engine, err := benchmark.New(cfg.Benchmark)
	if err != nil {
		return nil, err
	}

	cache, err := initTemplates()
	if err != nil {
		return nil, err
	}

	env := &pipelineEnv{Templates: cache}
	if withStore {
		st, err := initStore(ctx)
		if err != nil {
			return nil, err
		}
		env.Store = st
	}
	env.Pipeline = pipeline.New(engine, cache, env.Store)
	if withStore {
		retry := resilience.DefaultRetryConfig()
		retry.MaxAttempts = cfg.Store.RetryAttempts
		retry.InitialBackoff = time.Duration(cfg.Store.RetryBackoffMs) * time.Millisecond
		env.Pipeline.WithSaveRetry(retry)
	}
	return env, nil
}
