// Command indexer builds the inverted index: it scans the corpus directory,
// flushes partial index files in batches, merges them into the final TF-IDF
// index and prints a build summary.
//
// Usage:
//
//	go run ./cmd/indexer [-config configs/development.yaml] [-corpus DEV] [-merge-only]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/build"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults only when empty)")
	corpusDir := flag.String("corpus", "", "corpus directory, overrides corpus.dir")
	mergeOnly := flag.Bool("merge-only", false, "merge existing partial indexes without scanning the corpus")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *corpusDir != "" {
		cfg.Corpus.Dir = *corpusDir
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting indexer",
		"corpus", cfg.Corpus.Dir,
		"batch_size", cfg.Indexer.BatchSize,
		"workers", cfg.Indexer.Workers,
		"merge_only", *mergeOnly,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(nil)
		shutdown := metrics.StartServer(cfg.Metrics.Port, nil)
		defer shutdown(context.Background())
	}

	run := indexer.NewRunContext()
	opts := build.Options{
		CorpusDir: cfg.Corpus.Dir,
		Indexer:   cfg.Indexer,
		MergeOnly: *mergeOnly,
		Metrics:   m,
		Run:       run,
	}

	if cfg.Postgres.Enabled {
		db, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			slog.Warn("postgres unavailable, document catalog disabled", "error", err)
		} else {
			defer db.Close()
			cat := catalog.New(db.DB, run.ID.String())
			if err := cat.EnsureSchema(ctx); err != nil {
				slog.Error("catalog schema setup failed", "error", err)
				os.Exit(1)
			}
			opts.Recorder = cat
			slog.Info("document catalog enabled", "database", cfg.Postgres.Database)
		}
	}

	summary, err := build.Run(ctx, opts)
	if err != nil {
		if errors.Is(err, apperrors.ErrCorruptIndex) {
			slog.Error("corrupt index file", "error", err)
		} else {
			slog.Error("indexing failed", "error", err)
		}
		os.Exit(1)
	}

	fmt.Printf("\nIndexing completed!\n")
	fmt.Printf("Indexed %d unique documents.\n", summary.Indexed)
	fmt.Printf("Skipped %d duplicates and %d unreadable records.\n", summary.Duplicates, summary.Skipped)
	fmt.Printf("Saved %d partial index files.\n", summary.Partials)
	fmt.Printf("Final index: %s (%d terms, %d documents)\n", summary.FinalPath, summary.Terms, summary.Documents)

	if cfg.Kafka.Enabled {
		notifyIndexComplete(ctx, cfg.Kafka, summary)
	}
}

// notifyIndexComplete tells running searchers to reload the final index.
func notifyIndexComplete(ctx context.Context, cfg config.KafkaConfig, summary *build.Summary) {
	producer := kafka.NewProducer(cfg, cfg.Topics.IndexComplete)
	defer producer.Close()

	event := analytics.IndexCompleteEvent{
		Type:       analytics.EventIndexBuilt,
		RunID:      summary.RunID,
		FinalPath:  summary.FinalPath,
		Terms:      summary.Terms,
		Documents:  summary.Documents,
		Partials:   summary.Partials,
		DurationMs: summary.Duration.Milliseconds(),
		Timestamp:  time.Now().UTC(),
	}
	err := resilience.Retry(ctx, "index-complete-publish", resilience.RetryConfig{MaxAttempts: 3}, func() error {
		return producer.Publish(ctx, kafka.Event{Key: summary.RunID, Value: event})
	})
	if err != nil {
		slog.Warn("index complete notification failed", "topic", cfg.Topics.IndexComplete, "error", err)
		return
	}
	slog.Info("index complete notification published", "topic", cfg.Topics.IndexComplete)
}
