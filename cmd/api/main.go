// Package main implements the carsearch API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/usedlot/carsearch/engine/detail"
	"github.com/usedlot/carsearch/engine/domain"
	"github.com/usedlot/carsearch/engine/keyword"
	"github.com/usedlot/carsearch/engine/match"
	"github.com/usedlot/carsearch/engine/search"
	"github.com/usedlot/carsearch/pkg/cache"
	"github.com/usedlot/carsearch/pkg/metrics"
	"github.com/usedlot/carsearch/pkg/natsutil"
	"github.com/usedlot/carsearch/pkg/offerup"
	"github.com/usedlot/carsearch/pkg/resilience"
	"github.com/usedlot/carsearch/pkg/server"

	goredis "github.com/redis/go-redis/v9"
)

// SearchEventSubject is the NATS subject search audit events publish to.
const SearchEventSubject = "carsearch.search.completed"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	root := &cobra.Command{
		Use:   "carsearch-api",
		Short: "Relevance-filtered used-car search API",
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(logger)
		},
	}

	flags := serve.Flags()
	flags.String("addr", ":8080", "listen address")
	flags.String("offerup-url", "https://api.offerup.example", "marketplace API base URL")
	flags.String("cache-backend", "memory", "detail cache backend (memory or redis)")
	flags.String("redis-addr", "localhost:6379", "redis address for the redis cache backend")
	flags.Duration("cache-ttl", cache.DefaultTTL, "detail cache TTL")
	flags.String("nats-url", "", "NATS URL for search events (empty disables publishing)")
	flags.String("cors-origin", "*", "CORS allowed origin")
	flags.Int("workers", 8, "concurrent listing evaluations per search")

	viper.SetEnvPrefix("CARSEARCH")
	viper.AutomaticEnv()
	if err := viper.BindPFlags(flags); err != nil {
		logger.Error("bind flags", "err", err)
		os.Exit(1)
	}

	root.AddCommand(serve)
	if err := root.Execute(); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := metrics.New()

	client := offerup.NewClient(viper.GetString("offerup-url"), offerup.ClientOpts{
		Logger: logger,
	})

	detailCache, err := buildCache(logger)
	if err != nil {
		return err
	}

	resolver := detail.NewResolver(client, detail.Options{
		Cache:   detailCache,
		Breaker: resilience.NewBreaker(resilience.DefaultBreakerOpts),
		Logger:  logger,
		Metrics: registry,
	})

	evaluator := match.NewEvaluator(resolver, logger)

	var sink search.EventSink
	if natsURL := viper.GetString("nats-url"); natsURL != "" {
		nc, err := nats.Connect(natsURL, nats.Name("carsearch-api"))
		if err != nil {
			return fmt.Errorf("nats connect: %w", err)
		}
		defer nc.Drain()
		sink = &natsSink{nc: nc, logger: logger}
		logger.Info("search event publishing enabled", "subject", SearchEventSubject)
	}

	svc := search.New(client, keyword.NewVocabExtractor(), evaluator, search.Options{
		Workers: viper.GetInt("workers"),
		Logger:  logger,
		Metrics: registry,
		Sink:    sink,
	})

	addr := viper.GetString("addr")
	srv := server.NewHTTPServer(addr, svc, server.Options{
		Details:    client,
		Logger:     logger,
		Registry:   registry,
		CORSOrigin: viper.GetString("cors-origin"),
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

// buildCache selects the detail cache backend from configuration.
func buildCache(logger *slog.Logger) (detail.Cache, error) {
	ttl := viper.GetDuration("cache-ttl")
	switch backend := viper.GetString("cache-backend"); backend {
	case "redis":
		rdb := goredis.NewClient(&goredis.Options{Addr: viper.GetString("redis-addr")})
		return cache.NewRedis[*domain.VehicleAttributes](rdb, "carsearch:detail", ttl, logger), nil
	case "memory":
		return cache.NewTTL[*domain.VehicleAttributes](ttl), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", backend)
	}
}

// natsSink publishes search events to NATS. Publish failures are logged,
// never surfaced to the search caller.
type natsSink struct {
	nc     *nats.Conn
	logger *slog.Logger
}

func (s *natsSink) SearchCompleted(ctx context.Context, ev search.Event) {
	if err := natsutil.Publish(ctx, s.nc, SearchEventSubject, ev); err != nil {
		s.logger.Warn("failed to publish search event", "err", err)
	}
}
