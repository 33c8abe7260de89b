// Package pipeline runs raw filing extractions through normalization,
// classification, scoring, assembly, and duplicate suppression.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/lien-cli/internal/assemble"
	"github.com/sells-group/lien-cli/internal/classify"
	"github.com/sells-group/lien-cli/internal/dedupe"
	"github.com/sells-group/lien-cli/internal/model"
	"github.com/sells-group/lien-cli/internal/normalize"
	"github.com/sells-group/lien-cli/internal/score"
	"github.com/sells-group/lien-cli/internal/site"
)

// Options tunes a pipeline.
type Options struct {
	// Concurrency caps records processed in parallel. Zero means 1.
	Concurrency int
	// MaxResults truncates each site's extractions. Zero means unlimited.
	MaxResults int
	// MatchMode selects how business keywords are matched.
	MatchMode classify.MatchMode
}

// Request is one run's input.
type Request struct {
	// Sites limits the run to these site ids, in this order. Empty means
	// every site that appears in Extractions, in order of first appearance.
	Sites []string
	// Extractions in discovery order.
	Extractions []model.RawExtraction
}

// Result is the outcome of a run. Records are accepted rows in discovery
// order; Duplicates are the rows dropped by the key set.
type Result struct {
	Records    []model.LienRecord
	Duplicates []model.LienRecord
	Summary    model.RunSummary
}

// Pipeline is safe to reuse across runs; per-run state lives in the KeySet
// passed to Run.
type Pipeline struct {
	sites *site.Registry
	opts  Options
	now   func() time.Time
}

// New creates a Pipeline over a site registry.
func New(sites *site.Registry, opts Options) *Pipeline {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.MatchMode == "" {
		opts.MatchMode = classify.MatchSubstring
	}
	return &Pipeline{sites: sites, opts: opts, now: time.Now}
}

type job struct {
	site site.Config
	kw   classify.KeywordSet
	raw  model.RawExtraction
}

// Run processes req against keys. Unknown site ids fail the run before any
// record is touched; everything else is absorbed into confidence scores and
// duplicate counts. A nil keys starts from an empty set.
func (p *Pipeline) Run(ctx context.Context, req Request, keys *dedupe.KeySet) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "pipeline: run not started")
	}
	started := p.now().UTC()
	if keys == nil {
		keys = dedupe.NewKeySet()
	}

	plan, sites, err := p.plan(req)
	if err != nil {
		return nil, err
	}

	records := make([]model.LienRecord, len(plan))
	var g errgroup.Group
	g.SetLimit(p.opts.Concurrency)
	for i, j := range plan {
		g.Go(func() error {
			records[i] = process(j)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "pipeline: process records")
	}

	// Acceptance is sequential in discovery order; first-seen wins.
	bySite := make(map[string]*model.SiteSummary, len(sites))
	for _, s := range sites {
		bySite[s.SiteID] = s
	}
	res := &Result{}
	for i, r := range records {
		sum := bySite[plan[i].site.ID]
		if !keys.Offer(r.DedupeKey) {
			sum.DuplicatesSkipped++
			res.Duplicates = append(res.Duplicates, r)
			zap.L().Debug("pipeline: duplicate dropped",
				zap.String("site_id", r.SiteID),
				zap.String("key", r.DedupeKey),
				zap.String("source_ref", r.SourceRef),
			)
			continue
		}
		sum.RecordsWritten++
		sum.Tiers[r.Confidence.Tier]++
		res.Records = append(res.Records, r)
		if score.NeedsReview(r.Confidence.Tier) {
			zap.L().Info("pipeline: record routed to review",
				zap.String("site_id", r.SiteID),
				zap.String("key", r.DedupeKey),
				zap.String("tier", string(r.Confidence.Tier)),
				zap.Float64("confidence", r.Confidence.Aggregate),
				zap.Strings("flags", r.Confidence.Flags),
			)
		}
	}

	res.Summary = buildSummary(sites, started, p.now().UTC())
	zap.L().Info("pipeline: run complete",
		zap.Int("found", res.Summary.RecordsFound),
		zap.Int("written", res.Summary.RecordsWritten),
		zap.Int("duplicates", res.Summary.DuplicatesSkipped),
	)
	return res, nil
}

// plan resolves sites, checks every extraction's site id, and truncates each
// site to MaxResults. Site summaries come back in run order.
func (p *Pipeline) plan(req Request) ([]job, []*model.SiteSummary, error) {
	for _, raw := range req.Extractions {
		if _, err := p.sites.Get(raw.SiteID); err != nil {
			return nil, nil, err
		}
	}

	ids := req.Sites
	if len(ids) == 0 {
		ids = siteIDsInOrder(req.Extractions)
	}
	configs, err := p.sites.Resolve(ids)
	if err != nil {
		return nil, nil, err
	}

	bySite := make(map[string][]model.RawExtraction, len(configs))
	for _, raw := range req.Extractions {
		bySite[raw.SiteID] = append(bySite[raw.SiteID], raw)
	}

	seen := make(map[string]bool, len(configs))
	var summaries []*model.SiteSummary
	var plan []job
	for _, c := range configs {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		sum := &model.SiteSummary{SiteID: c.ID, SiteName: c.Name, Tiers: map[model.Tier]int{}}
		summaries = append(summaries, sum)

		extractions := bySite[c.ID]
		if p.opts.MaxResults > 0 && len(extractions) > p.opts.MaxResults {
			zap.L().Info("pipeline: truncating site extractions",
				zap.String("site_id", c.ID),
				zap.Int("found", len(extractions)),
				zap.Int("max_results", p.opts.MaxResults),
			)
			extractions = extractions[:p.opts.MaxResults]
		}
		sum.RecordsFound = len(extractions)

		kw := classify.ForSite(c, p.opts.MatchMode)
		for _, raw := range extractions {
			plan = append(plan, job{site: c, kw: kw, raw: raw})
		}
		delete(bySite, c.ID)
	}

	for id, skipped := range bySite {
		zap.L().Warn("pipeline: extractions for unrequested site ignored",
			zap.String("site_id", id),
			zap.Int("count", len(skipped)),
		)
	}
	return plan, summaries, nil
}

// process is pure: it only reads its job.
func process(j job) model.LienRecord {
	nf := normalize.Extraction(j.raw)
	c := classify.Classify(nf.Debtor, j.raw.Hints, j.kw)
	conf := score.Score(nf, c, j.site)
	return assemble.Record(j.raw, nf, c, conf, j.site)
}

func siteIDsInOrder(extractions []model.RawExtraction) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, raw := range extractions {
		if !seen[raw.SiteID] {
			seen[raw.SiteID] = true
			ids = append(ids, raw.SiteID)
		}
	}
	return ids
}

func buildSummary(sites []*model.SiteSummary, started, finished time.Time) model.RunSummary {
	rs := model.RunSummary{StartedAt: started, FinishedAt: finished}
	for _, s := range sites {
		rs.RecordsFound += s.RecordsFound
		rs.RecordsWritten += s.RecordsWritten
		rs.DuplicatesSkipped += s.DuplicatesSkipped
		rs.Sites = append(rs.Sites, *s)
	}
	return rs
}
