package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/catalogsearch/internal/config"
	dbRedis "github.com/kailas-cloud/catalogsearch/internal/db/redis"
	logpkg "github.com/kailas-cloud/catalogsearch/internal/logger"
	"github.com/kailas-cloud/catalogsearch/internal/metrics"
	"github.com/kailas-cloud/catalogsearch/internal/repository/snapshot"
	"github.com/kailas-cloud/catalogsearch/internal/scheduler"
	"github.com/kailas-cloud/catalogsearch/internal/transport/catalogapi"
	chiTransport "github.com/kailas-cloud/catalogsearch/internal/transport/chi"
	cataloguc "github.com/kailas-cloud/catalogsearch/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/catalogsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/catalogsearch/internal/usecase/search"
	"github.com/kailas-cloud/catalogsearch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting catalogsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("catalog_url", cfg.Catalog.BaseURL),
		zap.Bool("persistence", cfg.Database.Enabled()),
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	metrics.RegisterSearchMetrics()

	fetcher, err := catalogapi.New(&catalogapi.Config{
		BaseURL:       cfg.Catalog.BaseURL,
		ProductsPath:  cfg.Catalog.ProductsPath,
		BundlingsPath: cfg.Catalog.BundlingsPath,
		APIKey:        cfg.Catalog.APIKey,
		Timeout:       time.Duration(cfg.Catalog.TimeoutSec) * time.Second,
		MaxPages:      cfg.Catalog.MaxPages,
		Logger:        logger,
	})
	if err != nil {
		logger.Fatal("Failed to create catalog API client", zap.Error(err))
	}

	cacheOpts := []cataloguc.Option{cataloguc.WithLogger(logger)}

	// Pass nil interface (not typed nil pointer!) when persistence is disabled.
	var pinger healthuc.DBPinger
	if cfg.Database.Enabled() {
		// valkey and redis speak the same protocol; both go through rueidis.
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Username: cfg.Database.Username,
			Password: cfg.Database.Password,
			DB:       cfg.Database.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		logger.Info("Connected to database", zap.String("driver", cfg.Database.Driver))

		snapshots := snapshot.New(store, cfg.Cache.KeyPrefix,
			time.Duration(cfg.Cache.SnapshotTTLSec)*time.Second, logger)
		cacheOpts = append(cacheOpts, cataloguc.WithStore(snapshots))
		pinger = store
	}

	cache := cataloguc.New(fetcher, time.Duration(cfg.Cache.TTLSec)*time.Second, cacheOpts...)

	// Warm in the background so the listener comes up even when upstream is slow.
	go func() {
		if err := cache.Warm(ctx); err != nil {
			logger.Warn("Initial catalog load failed", zap.Error(err))
		}
	}()

	var sched *scheduler.Scheduler
	if cfg.Cache.RefreshIntervalSec > 0 {
		sched = scheduler.New(cache,
			time.Duration(cfg.Cache.RefreshIntervalSec)*time.Second,
			time.Duration(cfg.Cache.RefreshTimeoutSec)*time.Second,
			logger)
		if err := sched.Start(ctx); err != nil {
			logger.Fatal("Failed to start refresh scheduler", zap.Error(err))
		}
	}

	engine := searchuc.NewEngine(searchuc.Tuning{
		Weights: searchuc.Weights{
			Name:        cfg.Search.Weights.Name,
			Category:    cfg.Search.Weights.Category,
			Brand:       cfg.Search.Weights.Brand,
			Description: cfg.Search.Weights.Description,
		},
		MinScore:    cfg.Search.MinScore,
		FuzzyBudget: cfg.Search.FuzzyBudget,
		TieEpsilon:  cfg.Search.TieEpsilon,
		Locale:      language.MustParse(cfg.Search.Locale),
	})
	searchSvc := searchuc.New(cache, engine)
	healthSvc := healthuc.New(pinger, cache)

	refreshLimit := rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.Cache.ManualRefreshPerMin)), 1)
	server := chiTransport.NewServer(searchSvc, cache, healthSvc, refreshLimit)

	r := newRouter(logger, cfg.Auth.APIKeys, server)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	if sched != nil {
		sched.Stop()
	}
	stop()

	logger.Info("Server stopped gracefully")
}
