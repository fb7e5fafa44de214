package uploads

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rxcatalog/rxcatalog/internal/platform/httpx"
)

// Handler accepts and serves uploaded images.
type Handler struct {
	logger   *slog.Logger
	store    *Store
	maxBytes int64
}

// NewHandler builds an uploads handler.
func NewHandler(logger *slog.Logger, store *Store, maxBytes int64) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, store: store, maxBytes: maxBytes}
}

// MountRoutes registers the upload endpoint.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/upload", h.upload)
}

// FileServer serves stored files; mount it at URLPrefix.
func (h *Handler) FileServer() http.Handler {
	return http.StripPrefix(URLPrefix, http.FileServer(http.Dir(h.store.Dir())))
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	data, filename, err := httpx.ReadFormFile(w, r, "file", h.maxBytes)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	name, err := h.store.Save(r.Context(), filename, data)
	if err != nil {
		h.logger.Error("store upload", slog.String("filename", filename), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("upload stored", slog.String("file", name), slog.Int("bytes", len(data)))
	httpx.JSON(w, http.StatusOK, map[string]string{"imageUrl": URL(name)})
}
