package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/rxcatalog/rxcatalog/internal/ocr"
	"github.com/rxcatalog/rxcatalog/internal/platform/cache"
	"github.com/rxcatalog/rxcatalog/internal/platform/db"
	"github.com/rxcatalog/rxcatalog/internal/sku"
)

// Catalog bundles the SKU service with the connections backing it.
type Catalog struct {
	Service *sku.Service
	Redis   *redis.Client
	closers []func() error
}

// OpenCatalog connects the configured store, migrates it and attaches the
// Redis read cache when REDIS_ADDR is set.
func OpenCatalog(ctx context.Context, cfg *Config, logger *slog.Logger) (*Catalog, error) {
	if cfg == nil {
		return nil, errors.New("app: config required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Catalog{}

	var repo sku.Repository
	switch cfg.StoreDriver {
	case StorePostgres:
		pool, err := db.OpenPostgres(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: cfg.PGMaxConns})
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, func() error { pool.Close(); return nil })
		repo = sku.NewPostgresRepository(pool)
	case StoreSQLite, "":
		conn, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, conn.Close)
		repo = sku.NewSQLiteRepository(conn)
	default:
		return nil, fmt.Errorf("app: unsupported store driver %q", cfg.StoreDriver)
	}
	if err := repo.Migrate(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("app: migrate %s store: %w", cfg.StoreDriver, err)
	}

	client, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, serving without cache", slog.Any("error", err))
		client = nil
	}
	if client != nil {
		c.Redis = client
		c.closers = append(c.closers, client.Close)
	}

	c.Service = sku.NewService(repo, sku.NewCache(client, cfg.CacheTTL), logger)
	logger.Info("catalog ready",
		slog.String("store", cfg.StoreDriver),
		slog.Bool("cache", client != nil))
	return c, nil
}

// Close releases every connection opened by OpenCatalog, newest first.
func (c *Catalog) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// NewOCREngine builds the engine selected by OCR_ENGINE.
func NewOCREngine(cfg *Config) (ocr.Engine, error) {
	if cfg == nil {
		return nil, errors.New("app: config required")
	}
	return ocr.New(ocr.Config{
		Engine:        cfg.OCREngine,
		Languages:     cfg.OCRLanguages,
		TesseractPath: cfg.TesseractPath,
	})
}
