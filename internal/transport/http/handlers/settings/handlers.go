package settingshandler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"p9ify/internal/domain/audit"
	"p9ify/internal/domain/payroll"
	"p9ify/internal/domain/settings"
	"p9ify/internal/transport/http/api"
	"p9ify/internal/transport/http/middleware"
	"p9ify/internal/transport/http/shared"
)

type Handler struct {
	Service *settings.Service
	Audit   *audit.Service
}

func NewHandler(service *settings.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/settings", h.handleGet)
	r.Put("/settings", h.handleSave)
	r.Post("/settings/rates/reset", h.handleResetRates)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	current, err := h.Service.Get(r.Context())
	if err != nil {
		fail(w, err, requestID)
		return
	}
	api.Success(w, current, requestID)
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload settings.Input
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	saved, err := h.Service.Save(r.Context(), payload)
	if err != nil {
		fail(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.Audit, audit.ActionSettingsSave, "settings", "", payload)
	api.Success(w, saved, requestID)
}

func (h *Handler) handleResetRates(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	reset, err := h.Service.ResetRates(r.Context())
	if err != nil {
		fail(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.Audit, audit.ActionRatesReset, "settings", "", nil)
	api.Success(w, reset, requestID)
}

func fail(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, settings.ErrInvalidEmployerPIN):
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "pin", Reason: err.Error()}})
	case errors.Is(err, payroll.ErrInvalidAmount):
		api.FailWithDetails(w, http.StatusBadRequest, "validation_error", "payload validation failed", map[string]string{"rates": err.Error()}, requestID)
	default:
		slog.Error("settings request failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "settings_failed", "settings request failed", requestID)
	}
}
