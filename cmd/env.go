package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lien-cli/internal/classify"
	"github.com/sells-group/lien-cli/internal/dedupe"
	"github.com/sells-group/lien-cli/internal/pipeline"
	"github.com/sells-group/lien-cli/internal/resilience"
	"github.com/sells-group/lien-cli/internal/sheet"
	"github.com/sells-group/lien-cli/internal/site"
	"github.com/sells-group/lien-cli/internal/store"
)

// runEnv holds everything the run and serve commands share.
type runEnv struct {
	Sites    *site.Registry
	Pipeline *pipeline.Pipeline
	Sheet    *sheet.Workbook
	Store    store.Store // nil when store.driver is none
	Keys     *dedupe.CachedSource
	Retry    resilience.RetryConfig

	pipelineOpts pipeline.Options
}

// Close releases resources held by the environment.
func (e *runEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

type envOptions struct {
	mode       string
	sitesPath  string
	outputPath string
	maxResults int
}

// initRunEnv loads sites, opens the workbook and store, and builds the
// pipeline. Callers should defer env.Close().
func initRunEnv(ctx context.Context, opts envOptions) (*runEnv, error) {
	if opts.sitesPath != "" {
		cfg.Sites.Path = opts.sitesPath
	}
	if opts.outputPath != "" {
		cfg.Output.Path = opts.outputPath
	}
	if opts.maxResults > 0 {
		cfg.Pipeline.MaxResults = opts.maxResults
	}
	if err := cfg.Validate(opts.mode); err != nil {
		return nil, err
	}

	reg, err := site.Load(cfg.Sites.Path)
	if err != nil {
		return nil, err
	}
	mode, err := classify.ParseMatchMode(cfg.Pipeline.KeywordMatch)
	if err != nil {
		return nil, err
	}

	retry := resilience.FromRetryConfig(cfg.Retry.MaxAttempts, cfg.Retry.InitialBackoffMs, cfg.Retry.MaxBackoffMs)
	wb := sheet.New(sheet.Options{
		Path:      cfg.Output.Path,
		LiensTab:  cfg.Output.LiensTab,
		ErrorsTab: cfg.Output.ErrorsTab,
		AuditTab:  cfg.Output.AuditTab,
		Retry:     retry,
	})

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	sources := []dedupe.KeySource{wb}
	if st != nil {
		sources = append(sources, st)
	}
	keys := dedupe.NewCachedSource(dedupe.KeySourceFunc(func(ctx context.Context) ([]string, error) {
		var all []string
		for _, src := range sources {
			k, err := src.Keys(ctx)
			if err != nil {
				return nil, err
			}
			all = append(all, k...)
		}
		return all, nil
	}), time.Duration(cfg.KeyCache.TTLSecs)*time.Second)

	popts := pipeline.Options{
		Concurrency: cfg.Pipeline.Concurrency,
		MaxResults:  cfg.Pipeline.MaxResults,
		MatchMode:   mode,
	}
	return &runEnv{
		Sites:        reg,
		Pipeline:     pipeline.New(reg, popts),
		Sheet:        wb,
		Store:        st,
		Keys:         keys,
		Retry:        retry,
		pipelineOpts: popts,
	}, nil
}

// withMaxResults returns a copy of e whose pipeline truncates each site to
// n extractions. Non-positive n returns e unchanged.
func (e *runEnv) withMaxResults(n int) *runEnv {
	if n <= 0 || n == e.pipelineOpts.MaxResults {
		return e
	}
	cp := *e
	cp.pipelineOpts.MaxResults = n
	cp.Pipeline = pipeline.New(e.Sites, cp.pipelineOpts)
	return &cp
}

// execute runs one request end to end: load previously written keys, run
// the pipeline, and unless dryRun persist rows, keys, and the run summary.
func (e *runEnv) execute(ctx context.Context, req pipeline.Request, dryRun bool) (*pipeline.Result, error) {
	var runID string
	if e.Store != nil && !dryRun {
		run, err := e.Store.CreateRun(ctx, req.Sites)
		if err != nil {
			return nil, eris.Wrap(err, "create run")
		}
		runID = run.ID
	}

	res, err := e.run(ctx, req, runID, dryRun)
	if err != nil && runID != "" {
		if ferr := e.Store.FailRun(context.WithoutCancel(ctx), runID, err.Error()); ferr != nil {
			zap.L().Error("record failed run", zap.String("run_id", runID), zap.Error(ferr))
		}
	}
	return res, err
}

func (e *runEnv) run(ctx context.Context, req pipeline.Request, runID string, dryRun bool) (*pipeline.Result, error) {
	existing, err := e.Keys.Keys(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "load previously written keys")
	}

	res, err := e.Pipeline.Run(ctx, req, dedupe.NewKeySet(existing...))
	if err != nil {
		return nil, err
	}
	res.Summary.RunID = runID
	if dryRun {
		return res, nil
	}

	if err := e.Sheet.Append(ctx, sheet.Batch{Records: res.Records, Summary: res.Summary}); err != nil {
		e.Keys.Invalidate()
		return nil, eris.Wrap(err, "write sheet")
	}

	written := make([]string, 0, len(res.Records))
	for _, r := range res.Records {
		written = append(written, r.DedupeKey)
	}
	e.Keys.Add(written...)

	if e.Store != nil {
		err := resilience.Do(ctx, e.Retry, func(ctx context.Context) error {
			_, err := e.Store.AddKeys(ctx, runID, written)
			return err
		})
		if err != nil {
			return nil, eris.Wrap(err, "persist dedupe keys")
		}
		if err := e.Store.CompleteRun(ctx, runID, &res.Summary); err != nil {
			return nil, eris.Wrap(err, "complete run")
		}
	}
	return res, nil
}
