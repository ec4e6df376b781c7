package handler

import (
	"net/http"

	"github.com/dibasaye/finance-manager/internal/service"
)

// SimulateLoan handles what-if loan computations
func (h *Handler) SimulateLoan(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ProductID      int64   `json:"product_id"`
		Amount         float64 `json:"amount"`
		DurationMonths int     `json:"duration_months"`
	}
	if !h.decode(w, r, &input) {
		return
	}
	simulation, err := h.service.SimulateLoan(r.Context(), input.ProductID, input.Amount, input.DurationMonths)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, simulation)
}

// ApplyForCredit handles credit applications
func (h *Handler) ApplyForCredit(w http.ResponseWriter, r *http.Request) {
	var input service.CreditApplication
	if !h.decode(w, r, &input) {
		return
	}
	credit, err := h.service.ApplyForCredit(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, credit)
}

// ListCredits handles the credit listing; supports ?status=
func (h *Handler) ListCredits(w http.ResponseWriter, r *http.Request) {
	credits, err := h.service.ListCredits(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, credits)
}

// GetCredit handles the credit detail view with schedule and payments
func (h *Handler) GetCredit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	detail, err := h.service.GetCredit(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, detail)
}

// ApproveCredit handles the pending -> approved transition
func (h *Handler) ApproveCredit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	credit, err := h.service.ApproveCredit(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, credit)
}

// RejectCredit handles the pending -> rejected transition
func (h *Handler) RejectCredit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var input struct {
		Reason string `json:"reason"`
	}
	if !h.decode(w, r, &input) {
		return
	}
	credit, err := h.service.RejectCredit(r.Context(), id, input.Reason)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, credit)
}

// DisburseCredit handles the approved -> active transition and schedule
// generation
func (h *Handler) DisburseCredit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	credit, err := h.service.DisburseCredit(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, credit)
}

// RecordPayment handles payments against an active credit
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var input service.PaymentInput
	if !h.decode(w, r, &input) {
		return
	}
	credit, err := h.service.RecordPayment(r.Context(), id, input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, credit)
}
