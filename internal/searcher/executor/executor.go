// Package executor answers queries against the loaded final index. The index
// is held behind an atomic pointer so a reload swaps it without blocking
// in-flight queries.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/searcher/spell"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/tracing"
)

type SearchResult struct {
	Query      string             `json:"query"`
	Terms      []string           `json:"terms"`
	Corrected  bool               `json:"corrected"`
	TotalHits  int                `json:"total_hits"`
	Results    []ranker.ScoredDoc `json:"results"`
	Generation uint64             `json:"generation"`
	Latency    time.Duration      `json:"-"`
	LatencyMS  float64            `json:"latency_ms"`
}

type snapshot struct {
	idx        *index.FinalIndex
	corrector  *spell.Corrector
	generation uint64
	loadedAt   time.Time
}

type Executor struct {
	state      atomic.Pointer[snapshot]
	generation atomic.Uint64
	cfg        config.SearchConfig
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// New serves queries from idx. m may be nil.
func New(idx *index.FinalIndex, cfg config.SearchConfig, m *metrics.Metrics) *Executor {
	e := &Executor{
		cfg:     cfg,
		metrics: m,
		logger:  slog.Default().With("component", "query-executor"),
	}
	e.Swap(idx)
	return e
}

// Open loads the final index at path. A missing index file is not an error:
// the executor starts empty and every query reports no results. A corrupt
// file is returned as ErrCorruptIndex.
func Open(path string, cfg config.SearchConfig, m *metrics.Metrics) (*Executor, error) {
	idx, err := loadIndex(path)
	if err != nil {
		return nil, err
	}
	return New(idx, cfg, m), nil
}

// Reload replaces the served index with the file at path. On failure the
// current index keeps serving.
func (e *Executor) Reload(path string) error {
	idx, err := loadIndex(path)
	if err != nil {
		return fmt.Errorf("reloading index: %w", err)
	}
	e.Swap(idx)
	return nil
}

// Swap atomically installs idx as the served index.
func (e *Executor) Swap(idx *index.FinalIndex) {
	if idx == nil {
		idx = index.Empty()
	}
	s := &snapshot{
		idx:        idx,
		generation: e.generation.Add(1),
		loadedAt:   time.Now(),
	}
	if e.cfg.SpellCorrection {
		s.corrector = spell.NewCorrector(idx.Vocabulary(), e.cfg.PhraseCutoff, e.cfg.TermCutoff)
	}
	e.state.Store(s)
	e.metrics.IndexLoaded(idx.NumTerms())
	e.logger.Info("index installed",
		"generation", s.generation,
		"terms", idx.NumTerms(),
		"documents", idx.DocCount(),
	)
}

// Index returns the currently served index.
func (e *Executor) Index() *index.FinalIndex {
	return e.state.Load().idx
}

// Generation increases every time a new index is installed.
func (e *Executor) Generation() uint64 {
	return e.state.Load().generation
}

// Limit clamps a requested result count to the configured bounds.
func (e *Executor) Limit(requested int) int {
	if requested <= 0 {
		return e.cfg.DefaultLimit
	}
	if e.cfg.MaxResults > 0 && requested > e.cfg.MaxResults {
		return e.cfg.MaxResults
	}
	return requested
}

// Search parses query and executes it.
func (e *Executor) Search(ctx context.Context, query string, limit int) (*SearchResult, error) {
	_, span := tracing.StartChildSpan(ctx, "parse")
	plan := parser.Parse(query)
	span.End()
	return e.Execute(ctx, plan, limit)
}

// Execute spell-corrects and ranks plan. An empty plan or an empty index
// yields a result with no hits.
func (e *Executor) Execute(ctx context.Context, plan *parser.QueryPlan, limit int) (*SearchResult, error) {
	start := time.Now()
	s := e.state.Load()
	limit = e.Limit(limit)

	result := &SearchResult{
		Query:      plan.RawQuery,
		Terms:      plan.Terms,
		Results:    []ranker.ScoredDoc{},
		Generation: s.generation,
	}
	if plan.Empty() || s.idx.NumTerms() == 0 {
		result.finish(start)
		return result, nil
	}

	if s.corrector != nil {
		_, span := tracing.StartChildSpan(ctx, "spell")
		fixed := s.corrector.Correct(plan.Terms)
		span.SetAttr("corrected", fixed.Corrected)
		span.End()
		if fixed.Corrected {
			e.logger.Debug("query corrected", "terms", plan.Terms, "corrected", fixed.Terms)
			plan = plan.WithTerms(fixed.Terms)
			result.Terms = fixed.Terms
			result.Corrected = true
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrTimeout, err)
	}

	_, span := tracing.StartChildSpan(ctx, "rank")
	ranking := ranker.Rank(s.idx, plan.Terms, ranker.RankParams{
		ApplyQueryIDF: e.cfg.ApplyQueryIDF,
		Limit:         limit,
	})
	span.SetAttr("candidates", ranking.TotalHits)
	span.End()

	result.Results = ranking.Results
	result.TotalHits = ranking.TotalHits
	result.finish(start)
	e.logger.Debug("query executed",
		"query", plan.RawQuery,
		"terms", plan.Terms,
		"candidates", ranking.TotalHits,
		"results", len(ranking.Results),
		"latency", result.Latency,
	)
	return result, nil
}

func (r *SearchResult) finish(start time.Time) {
	r.Latency = time.Since(start)
	r.LatencyMS = float64(r.Latency.Microseconds()) / 1000
}

func loadIndex(path string) (*index.FinalIndex, error) {
	idx, err := segment.ReadFinal(path)
	if errors.Is(err, apperrors.ErrIndexNotFound) {
		slog.Default().With("component", "query-executor").
			Warn("final index not found, serving empty index", "path", path)
		return index.Empty(), nil
	}
	if err != nil {
		return nil, err
	}
	return idx, nil
}
