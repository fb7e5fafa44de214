package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/rxcatalog/rxcatalog/internal/labelscan"
	"github.com/rxcatalog/rxcatalog/internal/observability"
	"github.com/rxcatalog/rxcatalog/internal/sku"
	"github.com/rxcatalog/rxcatalog/internal/uploads"
	"github.com/rxcatalog/rxcatalog/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	SKUHandler       *sku.Handler
	LabelScanHandler *labelscan.Handler
	UploadsHandler   *uploads.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with rxcatalog defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		if params.SKUHandler != nil {
			params.SKUHandler.MountRoutes(r)
		}
		if params.LabelScanHandler != nil {
			params.LabelScanHandler.MountRoutes(r)
		}
		if params.UploadsHandler != nil {
			params.UploadsHandler.MountRoutes(r)
		}
	})
	if params.UploadsHandler != nil {
		r.Handle(uploads.URLPrefix+"*", uploadCacheHandler(params.UploadsHandler.FileServer()))
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}

// uploadCacheHandler marks stored uploads as immutable; names are unique per upload.
func uploadCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
		next.ServeHTTP(w, r)
	})
}
