package authhandler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"p9ify/internal/domain/auth"
	"p9ify/internal/transport/http/api"
	"p9ify/internal/transport/http/middleware"
	"p9ify/internal/transport/http/shared"
)

type Handler struct {
	Service *auth.Service
}

func NewHandler(service *auth.Service) *Handler {
	return &Handler{Service: service}
}

type tokenRequest struct {
	Password string `json:"password"`
	MFACode  string `json:"mfaCode"`
}

type mfaCodeRequest struct {
	Code string `json:"code"`
}

// RegisterRoutes mounts the public token route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/token", h.handleToken)
}

// RegisterMFARoutes mounts second-factor management; callers mount it
// behind RequireAuth.
func (h *Handler) RegisterMFARoutes(r chi.Router) {
	r.Route("/auth/mfa", func(r chi.Router) {
		r.Get("/", h.handleMFAStatus)
		r.Post("/setup", h.handleMFASetup)
		r.Post("/enable", h.handleMFAEnable)
		r.Post("/disable", h.handleMFADisable)
	})
}

func (h *Handler) handleToken(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload tokenRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	validator := shared.NewValidator()
	validator.Required("password", payload.Password, "is required")
	if validator.Reject(w, requestID) {
		return
	}

	token, err := h.Service.Login(r.Context(), payload.Password, payload.MFACode)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrInvalidMFACode) {
			slog.Warn("token request rejected", "requestId", requestID, "err", err)
		}
		fail(w, err, requestID)
		return
	}
	api.Success(w, token, requestID)
}

func (h *Handler) handleMFAStatus(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	status, err := h.Service.MFAStatus(r.Context())
	if err != nil {
		fail(w, err, requestID)
		return
	}
	api.Success(w, status, requestID)
}

func (h *Handler) handleMFASetup(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	setup, err := h.Service.SetupMFA(r.Context())
	if err != nil {
		fail(w, err, requestID)
		return
	}
	slog.Info("mfa secret issued", "requestId", requestID)
	api.Success(w, setup, requestID)
}

func (h *Handler) handleMFAEnable(w http.ResponseWriter, r *http.Request) {
	h.toggleMFA(w, r, true)
}

func (h *Handler) handleMFADisable(w http.ResponseWriter, r *http.Request) {
	h.toggleMFA(w, r, false)
}

func (h *Handler) toggleMFA(w http.ResponseWriter, r *http.Request, enable bool) {
	requestID := middleware.GetRequestID(r.Context())
	var payload mfaCodeRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	validator := shared.NewValidator()
	validator.Required("code", payload.Code, "is required")
	if validator.Reject(w, requestID) {
		return
	}

	var err error
	if enable {
		err = h.Service.EnableMFA(r.Context(), payload.Code)
	} else {
		err = h.Service.DisableMFA(r.Context(), payload.Code)
	}
	if err != nil {
		fail(w, err, requestID)
		return
	}
	api.Success(w, auth.MFAStatus{Enabled: enable}, requestID)
}

func fail(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, auth.ErrAuthDisabled):
		api.Fail(w, http.StatusNotFound, "auth_disabled", "authentication is not configured", requestID)
	case errors.Is(err, auth.ErrInvalidCredentials):
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
	case errors.Is(err, auth.ErrMFARequired):
		api.Fail(w, http.StatusUnauthorized, "mfa_required", "mfa code required", requestID)
	case errors.Is(err, auth.ErrInvalidMFACode):
		api.Fail(w, http.StatusUnauthorized, "mfa_invalid", "invalid mfa code", requestID)
	case errors.Is(err, auth.ErrMFAUnavailable):
		api.Fail(w, http.StatusBadRequest, "mfa_unavailable", "mfa requires an encryption key", requestID)
	case errors.Is(err, auth.ErrMFANotSetUp):
		api.Fail(w, http.StatusBadRequest, "mfa_missing", "mfa setup required", requestID)
	default:
		slog.Error("auth request failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "auth_failed", "authentication request failed", requestID)
	}
}
