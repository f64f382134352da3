// Command analytics reports on the final index and optionally serves search
// analytics.
//
// Without flags it prints the number of unique terms and unique documents in
// the final index. With -serve it consumes search events from Kafka,
// aggregates them in memory (latency percentiles, cache hit rate, top and
// zero-result queries) and exposes GET /api/v1/analytics. Snapshots are saved
// to PostgreSQL when it is enabled.
//
// Usage:
//
//	go run ./cmd/analytics [-config configs/development.yaml] [-index final_inverted_index.json] [-serve]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/analytics/aggregator"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults only when empty)")
	indexPath := flag.String("index", "", "final index file, overrides indexer.finalIndexPath")
	asJSON := flag.Bool("json", false, "print the index report as JSON")
	serve := flag.Bool("serve", false, "run the analytics aggregation service")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *indexPath != "" {
		cfg.Indexer.FinalIndexPath = *indexPath
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if *serve {
		if err := runServer(cfg); err != nil {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	report, err := analytics.Report(cfg.Indexer.FinalIndexPath)
	switch {
	case errors.Is(err, apperrors.ErrIndexNotFound):
		fmt.Fprintf(os.Stderr, "Error: final index %s not found. Run the indexer first.\n", cfg.Indexer.FinalIndexPath)
		os.Exit(1)
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(report)
	} else {
		err = report.WriteText(os.Stdout)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: writing report: %v\n", err)
		os.Exit(1)
	}
}

func runServer(cfg *config.Config) error {
	slog.Info("starting analytics service", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	agg := analytics.NewAggregator()
	checker := health.NewChecker()

	if cfg.Kafka.Enabled {
		consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents, analytics.HandleEvent(agg))
		go func() {
			if err := consumer.Start(ctx); err != nil {
				slog.Error("analytics consumer error", "error", err)
			}
		}()
		slog.Info("analytics consumer started", "topic", cfg.Kafka.Topics.AnalyticsEvents)
	} else {
		slog.Warn("kafka disabled, no search events will be aggregated")
	}

	if cfg.Postgres.Enabled {
		db, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			slog.Warn("postgres unavailable, snapshots disabled", "error", err)
		} else {
			defer db.Close()
			store := aggregator.NewStore(db)
			if err := store.EnsureSchema(ctx); err != nil {
				return err
			}
			if last, err := store.LatestSnapshot(ctx); err != nil {
				slog.Warn("loading latest snapshot failed", "error", err)
			} else if last != nil {
				slog.Info("previous snapshot found", "total_searches", last.TotalSearches)
			}
			store.StartPeriodicSave(ctx, agg, time.Minute)
			checker.Register("postgres", health.Optional(db.DB.PingContext))
		}
	}

	analyticsHandler := analytics.NewHandler(agg)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/analytics", analyticsHandler.Stats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("analytics service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	slog.Info("analytics service stopped")
	return nil
}
