package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/dibasaye/finance-manager/internal/service"
)

// Handler exposes the service over HTTP
type Handler struct {
	service *service.Service
	log     *logrus.Logger
}

// NewHandler initializes a new handler
func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{service: svc, log: log}
}

// RegisterRoutes mounts all routes on the router. Everything under /api
// except login requires authentication; registration is an administrator
// operation and sits behind the auth middleware like the rest.
func (h *Handler) RegisterRoutes(router *mux.Router, auth func(http.Handler) http.Handler) {
	router.HandleFunc("/api/auth/login", h.Login).Methods(http.MethodPost)
	router.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(auth)

	api.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost)

	api.HandleFunc("/clients", h.CreateClient).Methods(http.MethodPost)
	api.HandleFunc("/clients", h.ListClients).Methods(http.MethodGet)
	api.HandleFunc("/clients/{id}", h.GetClient).Methods(http.MethodGet)
	api.HandleFunc("/clients/{id}", h.UpdateClient).Methods(http.MethodPut)
	api.HandleFunc("/clients/{id}", h.DeleteClient).Methods(http.MethodDelete)
	api.HandleFunc("/clients/{id}/score", h.ClientScore).Methods(http.MethodGet)

	api.HandleFunc("/products", h.CreateProduct).Methods(http.MethodPost)
	api.HandleFunc("/products", h.ListProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", h.GetProduct).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", h.UpdateProduct).Methods(http.MethodPut)

	api.HandleFunc("/credits/simulate", h.SimulateLoan).Methods(http.MethodPost)
	api.HandleFunc("/credits", h.ApplyForCredit).Methods(http.MethodPost)
	api.HandleFunc("/credits", h.ListCredits).Methods(http.MethodGet)
	api.HandleFunc("/credits/{id}", h.GetCredit).Methods(http.MethodGet)
	api.HandleFunc("/credits/{id}/approve", h.ApproveCredit).Methods(http.MethodPost)
	api.HandleFunc("/credits/{id}/reject", h.RejectCredit).Methods(http.MethodPost)
	api.HandleFunc("/credits/{id}/disburse", h.DisburseCredit).Methods(http.MethodPost)
	api.HandleFunc("/credits/{id}/payments", h.RecordPayment).Methods(http.MethodPost)

	api.HandleFunc("/savings", h.OpenSavingsAccount).Methods(http.MethodPost)
	api.HandleFunc("/savings", h.ListSavingsAccounts).Methods(http.MethodGet)
	api.HandleFunc("/savings/{id}", h.GetSavingsAccount).Methods(http.MethodGet)
	api.HandleFunc("/savings/{id}/deposit", h.Deposit).Methods(http.MethodPost)
	api.HandleFunc("/savings/{id}/withdraw", h.Withdraw).Methods(http.MethodPost)
	api.HandleFunc("/savings/{id}/interest", h.ApplySavingsInterest).Methods(http.MethodPost)
	api.HandleFunc("/savings/{id}/close", h.CloseSavingsAccount).Methods(http.MethodPost)

	api.HandleFunc("/notifications", h.ListNotifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{id}/read", h.MarkNotificationRead).Methods(http.MethodPost)
	api.HandleFunc("/notifications/read-all", h.MarkAllNotificationsRead).Methods(http.MethodPost)

	api.HandleFunc("/dashboard", h.Dashboard).Methods(http.MethodGet)
	api.HandleFunc("/audit", h.ListAuditLogs).Methods(http.MethodGet)
	api.HandleFunc("/rates/reference", h.ReferenceRate).Methods(http.MethodGet)
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			h.log.WithError(err).Error("failed to encode response")
		}
	}
}

// respondError maps service error kinds to HTTP statuses.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, service.ErrInsufficientBalance):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		h.log.WithError(err).Error("request failed")
		h.respondJSON(w, status, map[string]string{"error": "internal server error"})
		return
	}
	h.respondJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}
