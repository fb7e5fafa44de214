// Package db opens the relational stores backing the SKU registry.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolOptions tunes the Postgres pool. Zero values keep pgx defaults.
type PoolOptions struct {
	MaxConns    int32
	PingTimeout time.Duration
}

// OpenPostgres creates a pool for the catalog database and pings it.
func OpenPostgres(ctx context.Context, dsn string, opts PoolOptions) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("platform/db: parse dsn: %w", err)
	}
	config.MaxConnIdleTime = 5 * time.Minute
	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("platform/db: open pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("platform/db: ping %s: %w", config.ConnConfig.Host, err)
	}
	return pool, nil
}
