package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/sellerpulse/sellerpulse-backend/api/routes"
	"github.com/sellerpulse/sellerpulse-backend/internal/abc"
	"github.com/sellerpulse/sellerpulse-backend/internal/abc/enrich"
	"github.com/sellerpulse/sellerpulse-backend/internal/abc/export"
	"github.com/sellerpulse/sellerpulse-backend/pkg/config"
	"github.com/sellerpulse/sellerpulse-backend/pkg/logger"
	"github.com/sellerpulse/sellerpulse-backend/pkg/marketplace"
	"github.com/sellerpulse/sellerpulse-backend/pkg/metrics"
	"github.com/sellerpulse/sellerpulse-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	upstreamMetrics := metrics.NewUpstreamMetrics(registry)

	marketplaceClient, err := marketplace.NewClient(cfg.Marketplace, logg, upstreamMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create marketplace client", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	var advertiserCache enrich.AdvertiserCache = enrich.NewMemoryAdvertiserCache(cfg.Ads.CacheTTL)
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		advertiserCache = enrich.NewRedisAdvertiserCache(redisClient, cfg.Ads.CacheTTL)
	}

	enricher, err := enrich.New(enrich.Params{
		API:     marketplaceClient,
		Cache:   advertiserCache,
		Ads:     cfg.Ads,
		Tuning:  cfg.Enrichment,
		Logger:  logg,
		Metrics: upstreamMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create enricher", err)
		os.Exit(1)
	}

	abcService, err := abc.NewService(abc.ServiceParams{
		Source:        marketplaceClient,
		Enricher:      enricher,
		Logger:        logg,
		OrderPageSize: cfg.Marketplace.OrderPageSize,
		MaxPageSize:   cfg.Enrichment.MaxPageSize,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create classification service", err)
		os.Exit(1)
	}

	exportAssembler, err := export.NewAssembler(abcService)
	if err != nil {
		logg.Error(context.Background(), "failed to create export assembler", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	var redisPinger redis.Pinger
	if redisClient != nil {
		redisPinger = redisClient
	}

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, redisPinger, registry, abcService, exportAssembler),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
