package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/internal/auth/apikey"
	"github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/internal/index"
	"github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/internal/server/handler"
	authmw "github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/internal/server/middleware"
	memorystore "github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/internal/store/memory"
	redisstore "github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/internal/store/redis"
	"github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/internal/suggest"
	"github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/pkg/resilience"
)

// store is the full backend surface the service needs: the index operations
// plus connection lifecycle.
type store interface {
	index.Store
	Ping(ctx context.Context) error
	Close() error
}

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting typeahead service", "port", cfg.Server.Port, "backend", cfg.Index.Backend)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	indexer := index.New(st,
		index.WithKeyPrefix(cfg.Index.KeyPrefix),
		index.WithMetadataKey(cfg.Index.MetadataKey),
	)

	var cache *suggest.Cache
	if cfg.Suggest.CacheTTL > 0 {
		cache = suggest.New(indexer, cfg.Suggest.CacheTTL)
		slog.Info("suggest cache enabled", "ttl", cfg.Suggest.CacheTTL)
	}

	var collector *analytics.Collector
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.AnalyticsTopic)
		defer producer.Close()
		collector = analytics.NewCollector(producer, 0)
		collector.Start(ctx)
		defer collector.Close()
		slog.Info("analytics enabled", "topic", cfg.Kafka.AnalyticsTopic)
	}

	var pg *postgres.Client
	var validator *apikey.Validator
	if cfg.Auth.Enabled {
		pg, err = postgres.New(cfg.Postgres)
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		validator = apikey.NewValidator(pg)
		slog.Info("api key auth enabled")
	}

	checker := health.NewChecker()
	checker.Register("store", func(ctx context.Context) health.ComponentHealth {
		if err := st.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	if pg != nil {
		checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
			if err := pg.Ping(ctx); err != nil {
				return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

	h := handler.New(indexer, cache, collector, m, cfg.Suggest.DefaultLimit, cfg.Suggest.MaxLimit)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/index", h.Index)
	mux.HandleFunc("DELETE /api/v1/index", h.Delete)
	mux.HandleFunc("GET /api/v1/suggest", h.Suggest)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	if validator != nil {
		chain = authmw.Auth(validator)(chain)
	}
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
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

	slog.Info("typeahead service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("typeahead service stopped")
}

// openStore builds the configured store backend. Redis connections are
// retried with backoff so the service survives a store that comes up a few
// seconds after it.
func openStore(ctx context.Context, cfg *config.Config) (store, error) {
	switch cfg.Index.Backend {
	case "memory":
		slog.Warn("using in-memory store, data will not survive restarts")
		return memorystore.New(), nil
	default:
		var st *redisstore.Store
		err := resilience.Retry(ctx, "redis-connect", resilience.RetryConfig{}, func() error {
			var err error
			st, err = redisstore.New(cfg.Redis)
			return err
		})
		if err != nil {
			return nil, err
		}
		slog.Info("connected to redis", "addr", cfg.Redis.Addr)
		return st, nil
	}
}
