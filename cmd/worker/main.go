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

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rxcatalog/rxcatalog/internal/app"
	jobmetrics "github.com/rxcatalog/rxcatalog/internal/jobs"
	"github.com/rxcatalog/rxcatalog/internal/platform/cache"
	"github.com/rxcatalog/rxcatalog/jobs"
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
	if cfg.RedisAddr == "" {
		logger.Error("worker requires REDIS_ADDR")
		os.Exit(1)
	}

	queueOpts, err := cache.QueueOptions(cfg.RedisAddr)
	if err != nil {
		logger.Error("parse REDIS_ADDR", slog.Any("error", err))
		os.Exit(1)
	}

	catalog, err := app.OpenCatalog(ctx, cfg, logger)
	if err != nil {
		logger.Error("open catalog", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := catalog.Close(); err != nil {
			logger.Warn("close catalog", slog.Any("error", err))
		}
	}()

	repairJob := jobs.NewRepairStatusJob(catalog.Service, logger, jobmetrics.NewMetrics(nil))
	repairTask, err := jobs.NewRepairStatusTask(jobs.RepairStatusPayload{Source: "cron"})
	if err != nil {
		logger.Error("build repair task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: queueOpts,
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskRepairStatus, Handler: repairJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.RepairCron, Task: repairTask},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if cfg.WorkerMetricsAddr != "" {
		metricsServer := &http.Server{
			Addr:              cfg.WorkerMetricsAddr,
			Handler:           promhttp.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("worker metrics server", slog.Any("error", err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsServer.Shutdown(shutdownCtx)
		}()
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
