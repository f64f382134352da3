// Package shard spreads an indexing run across independent workers. Each
// worker owns its own Builder and Pipeline; all workers share the run's
// dedup set and partial index sequence, and flush after BatchSize indexed
// documents of their own.
package shard

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/urlnorm"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/metrics"
)

type worker struct {
	id       int
	pipeline *indexer.Pipeline
	in       chan corpus.Entry
}

// Router dispatches corpus entries to workers by a hash of the canonical URL.
type Router struct {
	workers []*worker
	logger  *slog.Logger
}

// NewRouter creates numWorkers pipelines sharing run.
func NewRouter(cfg config.IndexerConfig, numWorkers int, run *indexer.RunContext, rec indexer.Recorder, m *metrics.Metrics) (*Router, error) {
	if numWorkers < 1 {
		return nil, fmt.Errorf("shard router needs at least one worker, got %d", numWorkers)
	}
	r := &Router{
		workers: make([]*worker, numWorkers),
		logger:  slog.Default().With("component", "shard-router"),
	}
	for i := range r.workers {
		builder := indexer.NewBuilder(cfg, run.Seq, m)
		r.workers[i] = &worker{
			id:       i,
			pipeline: indexer.NewPipeline(run, builder, rec, m),
			in:       make(chan corpus.Entry, 64),
		}
	}
	r.logger.Info("shard router ready", "workers", numWorkers)
	return r, nil
}

// Route returns the worker index responsible for entry.
func (r *Router) Route(entry corpus.Entry) int {
	key := entry.Path
	if canonical, err := urlnorm.Normalize(entry.Record.URL); err == nil {
		key = canonical
	}
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(r.workers)))
}

// NumWorkers returns the number of workers managed by this router.
func (r *Router) NumWorkers() int {
	return len(r.workers)
}

// Run walks the corpus at dir, feeding every worker, and flushes each
// worker's remainder once the walk is done. The first worker error cancels
// the run.
func (r *Router) Run(ctx context.Context, dir string) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, w := range r.workers {
		g.Go(func() error {
			for entry := range w.in {
				if err := w.pipeline.Process(gctx, entry); err != nil {
					r.logger.Error("worker failed", "worker", w.id, "error", err)
					return fmt.Errorf("worker %d: %w", w.id, err)
				}
			}
			if err := gctx.Err(); err != nil {
				return err
			}
			return w.pipeline.Flush(gctx)
		})
	}
	g.Go(func() error {
		defer r.closeAll()
		return corpus.Walk(gctx, dir, func(entry corpus.Entry) error {
			w := r.workers[r.Route(entry)]
			select {
			case w.in <- entry:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	})
	return g.Wait()
}

func (r *Router) closeAll() {
	for _, w := range r.workers {
		close(w.in)
	}
}
