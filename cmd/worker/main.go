package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/varejo-erp/varejo-erp/internal/app"
	jobmetrics "github.com/varejo-erp/varejo-erp/internal/jobs"
	"github.com/varejo-erp/varejo-erp/internal/observability"
	"github.com/varejo-erp/varejo-erp/internal/payterms"
	"github.com/varejo-erp/varejo-erp/internal/platform/cache"
	"github.com/varejo-erp/varejo-erp/internal/platform/db"
	"github.com/varejo-erp/varejo-erp/jobs"
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
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable", slog.Any("error", err))
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	jobMetrics := jobmetrics.NewMetrics(metrics.Registerer())

	paytermsRepo := payterms.NewRepository(pool)
	conditionCache := payterms.NewCachedSource(paytermsRepo, redisClient, cfg.ConditionCacheTTL, logger)

	overdueScanner := jobs.NewOverdueScanner(pool, metrics, jobMetrics, logger)
	warmer := jobs.NewPaytermsWarmer(paytermsRepo, conditionCache, jobMetrics, logger)

	overdueTask, err := jobs.NewOverdueScanTask(time.Now())
	if err != nil {
		logger.Error("build overdue scan task", slog.Any("error", err))
		os.Exit(1)
	}
	warmupTask, err := jobs.NewPaytermsWarmupTask(time.Now())
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskOverdueScan, Handler: overdueScanner.Handle},
			{Type: jobs.TaskPaytermsWarmup, Handler: warmer.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 1 * * *", Task: overdueTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "15 1 * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
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
