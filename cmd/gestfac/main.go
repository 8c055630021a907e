package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gestfac/gestfac/internal/analytics"
	analytichttp "github.com/gestfac/gestfac/internal/analytics/http"
	"github.com/gestfac/gestfac/internal/app"
	"github.com/gestfac/gestfac/internal/contracts"
	"github.com/gestfac/gestfac/internal/finance"
	"github.com/gestfac/gestfac/internal/observability"
	"github.com/gestfac/gestfac/internal/platform/cache"
	"github.com/gestfac/gestfac/internal/platform/db"
	"github.com/gestfac/gestfac/internal/receivables"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	var redisClient *redis.Client
	if client, err := cache.New(ctx, cfg.RedisAddr); err != nil {
		logger.Warn("redis unavailable, dashboards run uncached", slog.Any("error", err))
	} else {
		redisClient = client
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	contractRepo := contracts.NewRepository(pool)
	contractService := contracts.NewService(contractRepo)

	financeRepo := finance.NewRepository(pool)
	financeService := finance.NewService(financeRepo)

	receivableRepo := receivables.NewRepository(pool)
	receivableService := receivables.NewService(receivableRepo)

	dashboardCache := analytics.NewCache(redisClient, cfg.CacheTTL)
	analyticsService := analytics.NewService(contractService, financeService, financeService, receivableRepo, dashboardCache)
	if err := dashboardCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}

	bump := func() {
		bumpCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := analyticsService.Bump(bumpCtx); err != nil {
			logger.Warn("dashboard cache bump", slog.Any("error", err))
		}
	}

	metrics := observability.NewMetrics()
	analyticsService.OnBuild(metrics.CountDashboardBuild)

	contractsHandler := contracts.NewHandler(logger, contractService, bump)
	financeHandler := finance.NewHandler(logger, financeService, bump)
	receivablesHandler := receivables.NewHandler(logger, receivableService, bump)
	analyticsHandler := analytichttp.NewHandler(logger, analyticsService)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		ContractsHandler:   contractsHandler,
		FinanceHandler:     financeHandler,
		ReceivablesHandler: receivablesHandler,
		AnalyticsHandler:   analyticsHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
