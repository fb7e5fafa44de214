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

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/rxcatalog/rxcatalog/internal/app"
	"github.com/rxcatalog/rxcatalog/internal/labelscan"
	"github.com/rxcatalog/rxcatalog/internal/observability"
	"github.com/rxcatalog/rxcatalog/internal/platform/cache"
	"github.com/rxcatalog/rxcatalog/internal/sku"
	"github.com/rxcatalog/rxcatalog/internal/uploads"
	"github.com/rxcatalog/rxcatalog/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping server startup")
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

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	catalog, err := app.OpenCatalog(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := catalog.Close(); err != nil {
			logger.Warn("close catalog", slog.Any("error", err))
		}
	}()

	engine, err := app.NewOCREngine(cfg)
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics()
	scanner := labelscan.NewService(engine, logger,
		labelscan.WithMetrics(labelscan.NewMetrics(metrics.Registerer())),
		labelscan.WithTimeout(cfg.OCRTimeout))

	var inspector *asynq.Inspector
	if cfg.RedisAddr != "" {
		queueOpts, err := cache.QueueOptions(cfg.RedisAddr)
		if err != nil {
			return err
		}
		inspector = asynq.NewInspector(queueOpts)
		defer func() {
			if err := inspector.Close(); err != nil {
				logger.Warn("inspector close", slog.Any("error", err))
			}
		}()
	}

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SKUHandler:       sku.NewHandler(logger, catalog.Service),
		LabelScanHandler: labelscan.NewHandler(logger, scanner, cfg.UploadMaxBytes),
		UploadsHandler:   uploads.NewHandler(logger, uploads.NewStore(cfg.UploadDir), cfg.UploadMaxBytes),
		JobHandler:       jobs.NewHandler(inspector, logger),
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           router,
		ReadTimeout:       cfg.AppReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server",
			slog.String("addr", cfg.AppAddr),
			slog.String("ocr_engine", engine.Name()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
