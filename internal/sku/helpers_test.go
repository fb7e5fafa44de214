package sku

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/rxcatalog/rxcatalog/internal/platform/db"
)

func newSQLiteRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	ctx := context.Background()
	conn, err := db.OpenSQLite(ctx, filepath.Join(t.TempDir(), "skus.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	repo := NewSQLiteRepository(conn)
	require.NoError(t, repo.Migrate(ctx))
	return repo
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), mr
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleSKU(ndc, name string) SKU {
	return SKU{
		NDC:          ndc,
		Name:         name,
		Manufacturer: "Generic Pharma",
		DosageForm:   "tablet",
		Strength:     "10mg",
		PackageSize:  "30 tablets",
		Status:       StatusDraft,
	}
}

func strPtr(s string) *string { return &s }
