// Package build runs a complete indexing invocation: a fresh corpus pass that
// emits partial index files, followed by the merge into the final index.
package build

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/merge"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/shard"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/tracing"
)

type Options struct {
	CorpusDir string
	Indexer   config.IndexerConfig
	// MergeOnly skips the corpus pass and merges the partial files already
	// present in Indexer.PartialDir.
	MergeOnly bool
	Recorder  indexer.Recorder
	Metrics   *metrics.Metrics
	// Run is created when nil.
	Run *indexer.RunContext
}

// Summary reports what a build did.
type Summary struct {
	RunID      string        `json:"run_id"`
	Scanned    int64         `json:"scanned"`
	Indexed    int64         `json:"indexed"`
	Duplicates int64         `json:"duplicates"`
	Skipped    int64         `json:"skipped"`
	Partials   int           `json:"partials"`
	Terms      int           `json:"terms"`
	Documents  int           `json:"documents"`
	FinalPath  string        `json:"final_path"`
	Duration   time.Duration `json:"duration"`
}

// Run executes one build. Partial files flushed before a failure stay on disk
// so a later MergeOnly run can reuse them.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	run := opts.Run
	if run == nil {
		run = indexer.NewRunContext()
	}
	logger := slog.Default().With("component", "build", "run_id", run.ID.String())
	ctx, span := tracing.StartSpan(ctx, "index.build", run.ID.String())
	defer func() {
		span.End()
		span.Log(logger)
	}()

	sum := &Summary{RunID: run.ID.String(), FinalPath: opts.Indexer.FinalIndexPath}
	if !opts.MergeOnly {
		if err := scan(ctx, opts, run, logger); err != nil {
			return nil, err
		}
		sum.Scanned = run.Stats.Scanned.Load()
		sum.Indexed = run.Stats.Indexed.Load()
		sum.Duplicates = run.Stats.Duplicates.Load()
		sum.Skipped = run.Stats.Skipped.Load()
	}

	mctx, mspan := tracing.StartChildSpan(ctx, "merge")
	_, res, err := merge.Run(mctx, merge.Options{
		PartialDir:  opts.Indexer.PartialDir,
		FinalPath:   opts.Indexer.FinalIndexPath,
		Concurrency: opts.Indexer.MergeConcurrency,
		Metrics:     opts.Metrics,
	})
	if err != nil {
		mspan.End()
		return nil, fmt.Errorf("merging partial indexes: %w", err)
	}
	mspan.SetAttr("terms", res.Terms)
	mspan.End()

	sum.Partials = res.Partials
	sum.Terms = res.Terms
	sum.Documents = res.Documents
	sum.Duration = time.Since(run.Started)
	logger.Info("build complete",
		"scanned", sum.Scanned,
		"indexed", sum.Indexed,
		"duplicates", sum.Duplicates,
		"skipped", sum.Skipped,
		"partials", sum.Partials,
		"terms", sum.Terms,
		"documents", sum.Documents,
		"duration", sum.Duration.Round(time.Millisecond).String(),
	)
	return sum, nil
}

func scan(ctx context.Context, opts Options, run *indexer.RunContext, logger *slog.Logger) error {
	ctx, span := tracing.StartChildSpan(ctx, "scan")
	defer span.End()

	removed, err := segment.RemovePartials(opts.Indexer.PartialDir)
	if err != nil {
		return err
	}
	if removed > 0 {
		logger.Info("removed stale partial indexes", "count", removed, "dir", opts.Indexer.PartialDir)
	}
	if total, err := corpus.Count(opts.CorpusDir); err == nil {
		logger.Info("indexing corpus", "dir", opts.CorpusDir, "records", total, "workers", opts.Indexer.Workers)
	}

	if opts.Indexer.Workers > 1 {
		router, err := shard.NewRouter(opts.Indexer, opts.Indexer.Workers, run, opts.Recorder, opts.Metrics)
		if err != nil {
			return err
		}
		if err := router.Run(ctx, opts.CorpusDir); err != nil {
			return fmt.Errorf("indexing corpus: %w", err)
		}
	} else {
		p := indexer.NewPipeline(run, indexer.NewBuilder(opts.Indexer, run.Seq, opts.Metrics), opts.Recorder, opts.Metrics)
		if err := corpus.Walk(ctx, opts.CorpusDir, func(e corpus.Entry) error {
			return p.Process(ctx, e)
		}); err != nil {
			return fmt.Errorf("indexing corpus: %w", err)
		}
		if err := p.Flush(ctx); err != nil {
			return fmt.Errorf("flushing final batch: %w", err)
		}
	}
	span.SetAttr("indexed", run.Stats.Indexed.Load())
	span.SetAttr("partials", run.Seq.Issued())
	return nil
}
