package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/gestfac/gestfac/internal/analytics"
	"github.com/gestfac/gestfac/internal/app"
	"github.com/gestfac/gestfac/internal/contracts"
	"github.com/gestfac/gestfac/internal/finance"
	"github.com/gestfac/gestfac/internal/platform/cache"
	"github.com/gestfac/gestfac/internal/platform/db"
	"github.com/gestfac/gestfac/internal/receivables"
	"github.com/gestfac/gestfac/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	var redisClient *redis.Client
	if client, err := cache.New(ctx, cfg.RedisAddr); err != nil {
		logger.Warn("redis cache unavailable", slog.Any("error", err))
	} else {
		redisClient = client
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	contractService := contracts.NewService(contracts.NewRepository(pool))
	financeService := finance.NewService(finance.NewRepository(pool))
	receivableRepo := receivables.NewRepository(pool)
	receivableService := receivables.NewService(receivableRepo)

	dashboardCache := analytics.NewCache(redisClient, cfg.CacheTTL)
	analyticsService := analytics.NewService(contractService, financeService, financeService, receivableRepo, dashboardCache)

	warmupJob := jobs.NewDashboardWarmupJob(analyticsService, logger)
	overdueJob := jobs.NewOverdueScanJob(receivableService, dashboardCache, logger)

	warmupTask, err := jobs.NewDashboardWarmupTask(jobs.DashboardWarmupPayload{})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}
	overdueTask, err := jobs.NewOverdueScanTask()
	if err != nil {
		logger.Error("build overdue scan task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskDashboardWarmup, Handler: warmupJob.Handle},
			{Type: jobs.TaskOverdueScan, Handler: overdueJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "*/15 * * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 * * * *", Task: overdueTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
