package audithandler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"p9ify/internal/domain/audit"
	"p9ify/internal/transport/http/api"
	"p9ify/internal/transport/http/middleware"
	"p9ify/internal/transport/http/shared"
)

type Handler struct {
	Service *audit.Service
}

func NewHandler(service *audit.Service) *Handler {
	return &Handler{Service: service}
}

type listResponse struct {
	Items  []audit.Event `json:"items"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/audit", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	validator := shared.NewValidator()
	page := validator.Pagination(r, 50, 200)
	if validator.Reject(w, requestID) {
		return
	}
	filter := audit.Filter{
		Action:     r.URL.Query().Get("action"),
		EntityType: r.URL.Query().Get("entityType"),
	}
	events, total, err := h.Service.List(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		slog.Error("audit list failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "audit_failed", "failed to list audit events", requestID)
		return
	}
	api.Success(w, listResponse{Items: events, Total: total, Limit: page.Limit, Offset: page.Offset}, requestID)
}
