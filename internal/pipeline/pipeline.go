// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline wires search, dedup, enrichment, and persistence into a
// single run: find candidate papers, drop the ones the store already has,
// analyze the rest, and create one page per survivor.
package pipeline

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-scout/internal/arxiv"
	"github.com/pdiddy/paper-scout/internal/enrich"
	"github.com/pdiddy/paper-scout/internal/notion"
	"github.com/pdiddy/paper-scout/pkg/types"
)

// Searcher returns recent papers matching a query.
type Searcher interface {
	Search(ctx context.Context, query string, cfg types.SearchConfig) ([]types.PaperRecord, error)
}

// Enricher produces the structured analysis for one paper.
type Enricher interface {
	Analyze(ctx context.Context, paper types.PaperRecord) (types.Analysis, error)
}

// Store is the persistence surface the pipeline touches: the dedup index
// read at startup and page creation for each new paper.
type Store interface {
	LoadIndex(ctx context.Context) (*notion.Index, error)
	CreatePage(ctx context.Context, paper types.PaperRecord, analysis types.Analysis) error
}

// Pipeline runs one search-dedup-enrich-persist cycle.
type Pipeline struct {
	Store    Store
	Searcher Searcher
	Enricher Enricher
	Config   types.PipelineConfig

	log *zap.Logger
}

// New assembles a pipeline. A nil logger disables logging.
func New(store Store, searcher Searcher, enricher Enricher, cfg types.PipelineConfig, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		Store:    store,
		Searcher: searcher,
		Enricher: enricher,
		Config:   cfg,
		log:      log,
	}
}

// Run executes one full cycle and returns its counters. Index load and
// search failures are fatal and returned; per-paper enrichment and write
// failures are logged, counted in the result, and never abort the run.
// Returned counters are valid even when err is non-nil.
func (p *Pipeline) Run(ctx context.Context) (types.RunResult, error) {
	result := types.RunResult{RunID: uuid.NewString()}
	log := p.log.With(zap.String("run_id", result.RunID))

	log.Info("pipeline: starting run",
		zap.Strings("keywords", p.Config.Search.Keywords),
		zap.Int("lookback_days", p.Config.Search.LookbackDays),
	)

	query := arxiv.BuildQuery(p.Config.Search.Keywords)
	if query == "" {
		return result, eris.New("pipeline: no keywords configured")
	}

	// The index comes first so a broken store credential fails the run
	// before any model quota is spent.
	index, err := p.Store.LoadIndex(ctx)
	if err != nil {
		return result, eris.Wrap(err, "pipeline: load index")
	}
	log.Info("pipeline: index loaded", zap.Int("rows", index.Rows()))

	papers, err := p.Searcher.Search(ctx, query, p.Config.Search)
	if err != nil {
		return result, eris.Wrap(err, "pipeline: search")
	}
	result.Found = len(papers)
	log.Info("pipeline: search complete", zap.Int("found", result.Found))

	for _, paper := range papers {
		if ctx.Err() != nil {
			return result, eris.Wrap(ctx.Err(), "pipeline: run interrupted")
		}
		plog := log.With(zap.String("paper", paper.Identifier))

		// Dedup before enrichment; known papers must not spend quota.
		if index.Contains(paper) {
			result.Duplicates++
			plog.Info("pipeline: skipping known paper", zap.String("title", paper.Title))
			continue
		}

		analysis, err := p.Enricher.Analyze(ctx, paper)
		if err != nil {
			result.EnrichmentSkips++
			var quota *enrich.QuotaExhaustedError
			if errors.As(err, &quota) {
				plog.Warn("pipeline: all model quota exhausted, skipping paper")
			} else {
				plog.Warn("pipeline: enrichment failed, skipping paper", zap.Error(err))
			}
			continue
		}
		result.Enriched++
		if analysis.Degraded {
			result.Degraded++
			plog.Warn("pipeline: model output unusable, persisting degraded record",
				zap.String("backend", analysis.Backend))
		}

		if err := p.Store.CreatePage(ctx, paper, analysis); err != nil {
			result.WriteFailures++
			plog.Warn("pipeline: write failed", zap.Error(err))
			continue
		}
		result.Persisted++
		index.Add(paper)
		plog.Info("pipeline: paper persisted",
			zap.String("verdict", string(analysis.Verdict)),
			zap.String("backend", analysis.Backend),
		)
	}

	log.Info("pipeline: run complete",
		zap.Int("found", result.Found),
		zap.Int("duplicates", result.Duplicates),
		zap.Int("enriched", result.Enriched),
		zap.Int("degraded", result.Degraded),
		zap.Int("enrichment_skips", result.EnrichmentSkips),
		zap.Int("write_failures", result.WriteFailures),
		zap.Int("persisted", result.Persisted),
	)
	return result, nil
}
