package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mxaddress/internal/address/catalog"
	"mxaddress/internal/address/geo"
	"mxaddress/internal/address/handler"
	"mxaddress/internal/address/metrics"
	"mxaddress/internal/address/service"
	"mxaddress/internal/address/streetcache"
	"mxaddress/internal/platform/config"
	"mxaddress/internal/platform/httpserver"
	"mxaddress/internal/platform/logger"
	"mxaddress/internal/platform/redis"
	"mxaddress/pkg/platform/middleware/request"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal/address.
func main() {
	cfg, err := config.FromEnv()
	if err == nil {
		err = cfg.Validate()
	}
	log := logger.New(cfg.Server.LogLevel, cfg.Server.LogFormat)
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	m := metrics.New(prometheus.DefaultRegisterer)

	enc, err := catalog.ParseEncoding(cfg.Catalog.Encoding)
	if err != nil {
		return err
	}
	index := catalog.New(catalog.SourceForPath(cfg.Catalog.Path, enc), catalog.WithLogger(log))
	// The catalog is required reference data: refuse to start without it.
	if err := index.Load(ctx); err != nil {
		return err
	}
	stats := index.Stats()
	m.SetCatalogSize(stats.Keys, stats.Entries)

	streets := geo.New(geo.Config{
		NominatimURL:      cfg.Geo.NominatimURL,
		OverpassEndpoints: cfg.Geo.OverpassEndpoints,
		UserAgent:         cfg.Geo.UserAgent,
		Timeout:           cfg.Geo.Timeout,
		Retries:           cfg.Geo.Retries,
		MaxCandidates:     cfg.Geo.MaxCandidates,
		NominatimRate:     cfg.Geo.NominatimRate,
	}, geo.WithLogger(log), geo.WithMetrics(m))

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithSeed(cfg.Resolver.Seed),
	}
	redisClient, err := redis.New(ctx, cfg.Redis)
	switch {
	case errors.Is(err, redis.ErrNotConfigured):
		log.Info("using in-memory street cache")
	case err != nil:
		return err
	default:
		defer redisClient.Close()
		opts = append(opts, service.WithStreetCache(streetcache.NewRedisCache(redisClient.Client, cfg.Redis.StreetTTL)))
		log.Info("using redis street cache", "ttl", cfg.Redis.StreetTTL)
	}

	svc, err := service.New(streets, index, streets, opts...)
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(request.RequestID)
	r.Use(request.RequestTime)
	r.Use(request.Logger(log))
	handler.New(svc, index, log, cfg.Resolver.Timeout).Register(r)
	r.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Server.Addr, r, cfg.Resolver.Timeout)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting mxaddress", "addr", cfg.Server.Addr, "catalog_keys", stats.Keys)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
