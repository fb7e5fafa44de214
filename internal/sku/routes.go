package sku

import "github.com/go-chi/chi/v5"

// MountRoutes registers the SKU endpoints under the caller's prefix.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/skus", h.list)
	r.Post("/skus", h.create)
	r.Get("/skus/duplicates", h.duplicates)
	r.Get("/skus/export.xlsx", h.export)
	r.Get("/skus/{id}", h.get)
	r.Put("/skus/{id}", h.replace)
	r.Patch("/skus/{id}", h.patch)
	r.Delete("/skus/{id}", h.delete)
}
