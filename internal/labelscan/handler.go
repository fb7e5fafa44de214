package labelscan

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rxcatalog/rxcatalog/internal/extraction"
	"github.com/rxcatalog/rxcatalog/internal/platform/httpx"
)

type scanResponse struct {
	Success       bool              `json:"success"`
	ExtractedText string            `json:"extracted_text"`
	SKUData       extraction.Fields `json:"sku_data"`
	Confidence    float64           `json:"confidence"`
}

// Handler exposes the OCR extraction endpoint.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	maxBytes int64
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, maxBytes int64) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, maxBytes: maxBytes}
}

// MountRoutes registers the extraction endpoint.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/extract-ocr", h.extract)
}

func (h *Handler) extract(w http.ResponseWriter, r *http.Request) {
	image, filename, err := httpx.ReadFormFile(w, r, "file", h.maxBytes)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	res, err := h.service.Scan(r.Context(), image)
	if err != nil {
		h.logger.Warn("extract ocr", slog.String("file", filename), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, scanResponse{
		Success:       true,
		ExtractedText: res.Text,
		SKUData:       res.Fields,
		Confidence:    res.Confidence,
	})
}
