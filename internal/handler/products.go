package handler

import (
	"net/http"

	"github.com/dibasaye/finance-manager/internal/service"
)

// CreateProduct handles product creation
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input service.ProductInput
	if !h.decode(w, r, &input) {
		return
	}
	product, err := h.service.CreateProduct(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, product)
}

// ListProducts handles the product listing; supports ?type= and ?active=true
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	productType := r.URL.Query().Get("type")
	activeOnly := r.URL.Query().Get("active") == "true"
	products, err := h.service.ListProducts(r.Context(), productType, activeOnly)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, products)
}

// GetProduct handles the product detail view
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, product)
}

// UpdateProduct handles product edits
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var input service.ProductInput
	if !h.decode(w, r, &input) {
		return
	}
	product, err := h.service.UpdateProduct(r.Context(), id, input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, product)
}
