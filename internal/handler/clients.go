package handler

import (
	"net/http"

	"github.com/dibasaye/finance-manager/internal/service"
)

// CreateClient handles client registration
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var input service.ClientInput
	if !h.decode(w, r, &input) {
		return
	}
	client, err := h.service.CreateClient(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, client)
}

// ListClients handles the client listing
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.service.ListClients(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, clients)
}

// GetClient handles the client detail view, including the client's credits
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	client, credits, err := h.service.GetClient(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"client": client, "credits": credits})
}

// UpdateClient handles client edits
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var input service.ClientInput
	if !h.decode(w, r, &input) {
		return
	}
	client, err := h.service.UpdateClient(r.Context(), id, input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, client)
}

// DeleteClient handles client deletion (administrator only)
func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteClient(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusNoContent, nil)
}

// ClientScore handles the credit score view of a client
func (h *Handler) ClientScore(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if _, _, err := h.service.GetClient(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	score, err := h.service.ClientCreditScore(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"client_id": id, "score": score})
}
