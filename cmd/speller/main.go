// Command speller serves fuzzy dictionary lookups over HTTP and the internal
// RPC protocol.
//
// The dictionary is loaded at startup from a word file or a PostgreSQL
// column. Words can be added at runtime through POST /api/v1/words, the
// Speller.AddWords RPC or the word-updates Kafka topic. Best-match results
// are cached in Redis when one is configured, and lookup events are batched
// onto Kafka and aggregated for GET /api/v1/analytics.
//
// Usage:
//
//	go run ./cmd/speller [-config configs/development.yaml] [-env .env]
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
	"time"

	"github.com/justinas/alice"

	"github.com/Adithya-Monish-Kumar-K/fastspell/internal/analytics"
	snapshots "github.com/Adithya-Monish-Kumar-K/fastspell/internal/analytics/aggregator"
	"github.com/Adithya-Monish-Kumar-K/fastspell/internal/auth"
	"github.com/Adithya-Monish-Kumar-K/fastspell/internal/auth/ratelimit"
	"github.com/Adithya-Monish-Kumar-K/fastspell/internal/speller"
	"github.com/Adithya-Monish-Kumar-K/fastspell/internal/speller/cache"
	"github.com/Adithya-Monish-Kumar-K/fastspell/internal/speller/handler"
	"github.com/Adithya-Monish-Kumar-K/fastspell/internal/speller/rpcapi"
	"github.com/Adithya-Monish-Kumar-K/fastspell/internal/speller/source"
	"github.com/Adithya-Monish-Kumar-K/fastspell/internal/speller/updates"
	"github.com/Adithya-Monish-Kumar-K/fastspell/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/fastspell/pkg/grpc"
	"github.com/Adithya-Monish-Kumar-K/fastspell/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/fastspell/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/fastspell/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/fastspell/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/fastspell/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/fastspell/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/fastspell/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/fastspell/pkg/resilience"
	"github.com/Adithya-Monish-Kumar-K/fastspell/pkg/tracing"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	envFile := flag.String("env", ".env", "optional env file applied before the config")
	flag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load env file: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting speller service",
		"port", cfg.Server.Port,
		"dictionary_source", cfg.Dictionary.Source,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(nil)
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

	checker := health.NewChecker()

	// Dictionary.
	var db *postgres.Client
	if cfg.Dictionary.Source == "postgres" {
		db, err = postgres.New(cfg.Postgres)
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	}
	src, persister := buildSource(cfg.Dictionary, db)
	if persister != nil {
		if err := persister.EnsureTable(ctx); err != nil {
			slog.Error("failed to prepare word table", "error", err)
			os.Exit(1)
		}
		checker.Register("postgres", health.PingCheck(persister.Ping, false))
	}

	engine := speller.NewEngine(cfg.Dictionary.DefaultDistance, m)
	checker.Register("dictionary", health.PingCheck(engine.Ping, true))
	err = resilience.WithTimeout(ctx, cfg.Dictionary.LoadTimeout, "dictionary load", func(ctx context.Context) error {
		return engine.Load(ctx, src)
	})
	if err != nil {
		slog.Error("failed to load dictionary", "source", src.Name(), "error", err)
		os.Exit(1)
	}

	// Match cache.
	var matchCache *cache.MatchCache
	if cfg.Redis.Addr != "" {
		redisClient, err := pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, match caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			breaker := resilience.NewCircuitBreaker("redis", resilience.CircuitBreakerConfig{
				OnStateChange: func(name string, from, to resilience.State) {
					m.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
				},
			})
			matchCache = cache.New(redisClient, cfg.Redis.CacheTTL, breaker)
			checker.Register("redis", health.PingCheck(redisClient.Ping, false))
			slog.Info("match cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	// Analytics.
	kafkaEnabled := len(cfg.Kafka.Brokers) > 0
	agg := analytics.NewAggregator(cfg.Analytics.TopN)
	var collector *analytics.Collector
	if kafkaEnabled && cfg.Analytics.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.LookupEvents)
		defer producer.Close()

		collector = analytics.NewCollector(producer, cfg.Analytics.BufferSize, cfg.Analytics.FlushInterval)
		collector.OnPublish = func(n int, err error) {
			status := "ok"
			switch {
			case errors.Is(err, analytics.ErrDropped):
				status = "dropped"
			case err != nil:
				status = "error"
			}
			m.EventsPublishedTotal.WithLabelValues(status).Add(float64(n))
		}
		collector.Start(ctx)
		defer collector.Close()

		if db != nil {
			store := snapshots.NewStore(db)
			if err := store.EnsureTable(ctx); err != nil {
				slog.Warn("could not prepare analytics snapshot table", "error", err)
			}
			if snap, err := store.LatestSnapshot(ctx); err != nil {
				slog.Warn("could not restore analytics snapshot", "error", err)
			} else if snap != nil {
				agg.Restore(*snap)
			}
			store.StartPeriodicSave(ctx, agg, cfg.Analytics.SnapshotInterval)
		}

		lookups := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.LookupEvents, analytics.HandleEvent(agg))
		go func() {
			if err := lookups.Start(ctx); err != nil {
				slog.Error("lookup events consumer error", "error", err)
			}
		}()
		slog.Info("analytics enabled", "topic", cfg.Kafka.Topics.LookupEvents)
	}

	opts := speller.Options{
		Cache:     matchCache,
		Collector: collector,
		Metrics:   m,
	}
	if persister != nil {
		opts.Persister = persister
	}
	svc := speller.NewService(engine, opts)

	// Word updates.
	if kafkaEnabled {
		wordUpdates := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.WordUpdates, updates.Handler(svc))
		go func() {
			if err := wordUpdates.Start(ctx); err != nil {
				slog.Error("word updates consumer error", "error", err)
			}
		}()
		slog.Info("word updates enabled", "topic", cfg.Kafka.Topics.WordUpdates)
	}

	// RPC.
	if cfg.RPC.Enabled {
		rpcServer := grpc.NewServer()
		rpcapi.Register(rpcServer, svc, cfg.Server.RequestTimeout)
		go func() {
			if err := rpcServer.Serve(cfg.RPC.Addr); err != nil {
				slog.Error("rpc server error", "error", err)
			}
		}()
		defer rpcServer.Stop()
	}

	// HTTP.
	mux := http.NewServeMux()
	handler.New(svc).Register(mux, auth.AdminToken(cfg.Server.AdminToken))
	mux.HandleFunc("GET /api/v1/analytics", analytics.NewHandler(agg).Stats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var limiter *ratelimit.Limiter
	if cfg.Server.RateLimit > 0 {
		limiter = ratelimit.New(cfg.Server.RateLimit, cfg.Server.RateWindow)
		go limiter.Run(ctx, 5*time.Minute)
	}
	tracer := tracing.NewTracer(cfg.Tracing.Enabled, cfg.Tracing.SampleRate, slog.Default())

	chain := alice.New(
		middleware.Recover,
		middleware.RequestID,
		middleware.Trace(tracer),
		middleware.Metrics(m),
		auth.RateLimit(limiter),
		middleware.Timeout(cfg.Server.RequestTimeout),
	).Then(mux)

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

	slog.Info("speller service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("speller service stopped")
}

// buildSource picks the word source for cfg. The returned Postgres source
// is also where runtime additions are persisted; it is nil for the other
// sources.
func buildSource(cfg config.DictionaryConfig, db *postgres.Client) (source.Source, *source.Postgres) {
	switch cfg.Source {
	case "postgres":
		pg := source.NewPostgres(db, cfg.Table, cfg.Column)
		return pg, pg
	case "none":
		return source.Static{Label: "none"}, nil
	default:
		return source.File{Path: cfg.Path}, nil
	}
}
