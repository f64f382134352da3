// Command searcher answers queries against the final index.
//
// By default it runs an interactive loop reading one query per line until
// "exit". -q answers a single query and exits. -serve starts the HTTP search
// service with caching, analytics, health probes and index reload on
// index-complete events.
//
// Usage:
//
//	go run ./cmd/searcher [-config configs/development.yaml] [-q "query"] [-serve]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/searcher/repl"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults only when empty)")
	query := flag.String("q", "", "answer a single query and exit")
	serve := flag.Bool("serve", false, "run the HTTP search service")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if *serve {
		m = metrics.New(nil)
	}

	exec, err := executor.Open(cfg.Indexer.FinalIndexPath, cfg.Search, m)
	if err != nil {
		if errors.Is(err, apperrors.ErrCorruptIndex) {
			slog.Error("corrupt final index", "path", cfg.Indexer.FinalIndexPath, "error", err)
		} else {
			slog.Error("failed to load final index", "error", err)
		}
		os.Exit(1)
	}

	switch {
	case *serve:
		if err := runServer(ctx, cfg, exec, m); err != nil {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	case *query != "":
		if err := repl.Answer(ctx, os.Stdout, exec, *query, cfg.Search.DefaultLimit); err != nil {
			slog.Error("search failed", "error", err)
			os.Exit(1)
		}
	default:
		if err := repl.Run(ctx, os.Stdin, os.Stdout, exec, cfg.Search.DefaultLimit); err != nil {
			slog.Error("interactive search failed", "error", err)
			os.Exit(1)
		}
	}
}

func runServer(ctx context.Context, cfg *config.Config, exec *executor.Executor, m *metrics.Metrics) error {
	slog.Info("starting search service", "port", cfg.Server.Port, "index", cfg.Indexer.FinalIndexPath)

	var queryCache *cache.QueryCache
	var redisClient *pkgredis.Client
	if cfg.Redis.Enabled {
		client, err := pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, search caching disabled", "error", err)
		} else {
			redisClient = client
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis, m)
			slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	aggregator := analytics.NewAggregator()
	var publisher analytics.Publisher
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
		defer producer.Close()
		publisher = producer

		reload := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.IndexComplete, handleIndexComplete(exec, queryCache, cfg.Indexer.FinalIndexPath))
		go func() {
			if err := reload.Start(ctx); err != nil {
				slog.Error("index reload consumer error", "error", err)
			}
		}()
		slog.Info("index reload consumer started", "topic", cfg.Kafka.Topics.IndexComplete)
	}
	collector := analytics.NewCollector(publisher, aggregator, 10000)
	collector.Start(ctx)
	defer collector.Close()

	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		idx := exec.Index()
		if idx.NumTerms() == 0 {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "index is empty"}
		}
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("generation %d, %d terms", exec.Generation(), idx.NumTerms()),
		}
	})
	if redisClient != nil {
		checker.Register("redis", health.Optional(redisClient.Ping))
	}

	h := handler.New(exec, queryCache, collector, m)
	analyticsH := analytics.NewHandler(aggregator)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /api/v1/analytics", analyticsH.Stats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())
	mux.Handle("GET /metrics", metrics.Handler())

	if cfg.Postgres.Enabled {
		db, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			slog.Warn("postgres unavailable, document catalog disabled", "error", err)
		} else {
			defer db.Close()
			catalogH := catalog.NewHandler(catalog.New(db.DB, ""))
			mux.HandleFunc("GET /api/v1/documents", catalogH.GetDocument)
			mux.HandleFunc("GET /api/v1/documents/stats", catalogH.Stats)
			checker.Register("postgres", health.Optional(db.DB.PingContext))
		}
	}

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.Metrics(m)(chain)
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

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	slog.Info("search service stopped")
	return nil
}

// handleIndexComplete reloads the final index named by the event, falling
// back to the configured path, and drops cached results of the old index.
func handleIndexComplete(exec *executor.Executor, queryCache *cache.QueryCache, defaultPath string) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[analytics.IndexCompleteEvent](value)
		if err != nil {
			slog.Error("undecodable index complete event", "error", err)
			return nil
		}
		path := event.FinalPath
		if path == "" {
			path = defaultPath
		}
		if err := exec.Reload(path); err != nil {
			return err
		}
		slog.Info("index reloaded", "run_id", event.RunID, "path", path, "generation", exec.Generation())
		if queryCache != nil {
			if err := queryCache.Invalidate(ctx); err != nil {
				slog.Warn("cache invalidation after reload failed", "error", err)
			}
		}
		return nil
	}
}
