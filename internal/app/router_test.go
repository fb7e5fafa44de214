package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxcatalog/rxcatalog/internal/observability"
	"github.com/rxcatalog/rxcatalog/internal/platform/db"
	"github.com/rxcatalog/rxcatalog/internal/sku"
	"github.com/rxcatalog/rxcatalog/internal/uploads"
	"github.com/rxcatalog/rxcatalog/jobs"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	conn, err := db.OpenSQLite(ctx, filepath.Join(t.TempDir(), "router.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	repo := sku.NewSQLiteRepository(conn)
	require.NoError(t, repo.Migrate(ctx))

	cfg := &Config{AppEnv: "test", CORSOrigins: []string{"http://localhost:4200"}, RateLimitPerMinute: 1000}
	return NewRouter(RouterParams{
		Logger:         logger,
		Config:         cfg,
		SKUHandler:     sku.NewHandler(logger, sku.NewService(repo, nil, logger)),
		UploadsHandler: uploads.NewHandler(logger, uploads.NewStore(t.TempDir()), 1<<20),
		JobHandler:     jobs.NewHandler(nil, logger),
		Metrics:        observability.NewMetrics(),
	})
}

func TestHealthz(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/skus", nil)
	req.Header.Set("Origin", "http://localhost:4200")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, "http://localhost:4200", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://evil.example")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestAPIRoundTripAndMetrics(t *testing.T) {
	router := newTestRouter(t)

	body, err := json.Marshal(map[string]string{
		"ndc": "0049-4900-66", "name": "Zoloft", "manufacturer": "Pfizer",
		"dosage_form": "tablet", "strength": "50 mg", "package_size": "30 tablets",
	})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/skus", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/skus?name=zol", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var page struct {
		Items []map[string]any `json:"items"`
		Total int              `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Total)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), `rxcatalog_http_requests_total{code="201",method="POST",route="/api/skus"} 1`), rr.Body.String())
}

func TestUploadsAreServed(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/uploads/missing.png", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
