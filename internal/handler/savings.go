package handler

import (
	"context"
	"net/http"

	"github.com/dibasaye/finance-manager/internal/models"
	"github.com/dibasaye/finance-manager/internal/service"
)

// OpenSavingsAccount handles savings account opening
func (h *Handler) OpenSavingsAccount(w http.ResponseWriter, r *http.Request) {
	var input service.OpenSavingsInput
	if !h.decode(w, r, &input) {
		return
	}
	account, err := h.service.OpenSavingsAccount(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, account)
}

// ListSavingsAccounts handles the savings account listing
func (h *Handler) ListSavingsAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.ListSavingsAccounts(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, accounts)
}

// GetSavingsAccount handles the account detail view with its ledger
func (h *Handler) GetSavingsAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	detail, err := h.service.GetSavingsAccount(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, detail)
}

// Deposit handles deposits into a savings account
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.moveSavings(w, r, h.service.Deposit)
}

// Withdraw handles withdrawals from a savings account
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.moveSavings(w, r, h.service.Withdraw)
}

func (h *Handler) moveSavings(w http.ResponseWriter, r *http.Request, op func(context.Context, int64, service.SavingsMovement) (*models.SavingsAccount, error)) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var input service.SavingsMovement
	if !h.decode(w, r, &input) {
		return
	}
	account, err := op(r.Context(), id, input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, account)
}

// ApplySavingsInterest handles manual interest posting on one account
func (h *Handler) ApplySavingsInterest(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	interest, err := h.service.ApplySavingsInterest(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"account_id": id, "interest": interest})
}

// CloseSavingsAccount handles account closure
func (h *Handler) CloseSavingsAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	account, err := h.service.CloseSavingsAccount(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, account)
}
