package sku

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rxcatalog/rxcatalog/internal/platform/httpx"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler exposes the SKU JSON API.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	req, err := parseSearch(r.URL.Query())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	page, err := h.service.Search(r.Context(), req)
	if err != nil {
		h.fail(w, r, "search skus", err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) duplicates(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.Duplicates(r.Context())
	if err != nil {
		h.fail(w, r, "find duplicates", err)
		return
	}
	httpx.JSON(w, http.StatusOK, groups)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	req, err := parseSearch(r.URL.Query())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	records, err := h.service.All(r.Context(), req)
	if err != nil {
		h.fail(w, r, "export skus", err)
		return
	}
	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, records); err != nil {
		h.fail(w, r, "export skus", err)
		return
	}
	name := fmt.Sprintf("skus-%s.xlsx", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rec, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get sku", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	rec, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.fail(w, r, "create sku", err)
		return
	}
	w.Header().Set("Location", "/api/skus/"+strconv.FormatInt(rec.ID, 10))
	httpx.JSON(w, http.StatusCreated, rec)
}

func (h *Handler) replace(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	rec, err := h.service.Replace(r.Context(), id, req)
	if err != nil {
		h.fail(w, r, "replace sku", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) patch(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req PatchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	rec, err := h.service.Patch(r.Context(), id, req)
	if err != nil {
		h.fail(w, r, "patch sku", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.fail(w, r, "delete sku", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "SKU deleted successfully"})
}

// fail logs server-side failures and writes the mapped problem response.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if h.logger != nil {
		h.logger.Warn(op, slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func parseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, httpx.FieldErrors{"id": "id must be a positive integer"}
	}
	return id, nil
}

func parseSearch(q url.Values) (SearchRequest, error) {
	req := SearchRequest{
		NDC:          q.Get("ndc"),
		Name:         q.Get("name"),
		Manufacturer: q.Get("manufacturer"),
		Status:       Status(q.Get("status")),
		PageSize:     DefaultPageSize,
	}
	bad := httpx.FieldErrors{}
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			bad["page"] = "page must be an integer"
		}
		req.Page = n
	}
	if raw := q.Get("pageSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			bad["pageSize"] = "pageSize must be an integer"
		}
		req.PageSize = n
	}
	if len(bad) > 0 {
		return SearchRequest{}, bad
	}
	return req, nil
}
