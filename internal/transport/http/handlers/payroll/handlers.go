package payrollhandler

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"p9ify/internal/domain/payroll"
	"p9ify/internal/platform/metrics"
	"p9ify/internal/reports"
	"p9ify/internal/transport/http/api"
	"p9ify/internal/transport/http/middleware"
	"p9ify/internal/transport/http/shared"
)

type Handler struct {
	Service *payroll.Service
	Metrics *metrics.Collector
}

func NewHandler(service *payroll.Service, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, Metrics: collector}
}

// calculateRequest previews one month. Rates, when present, replace the
// stored configuration for this calculation only.
type calculateRequest struct {
	payroll.Input
	Rates *payroll.RatesInput `json:"rates,omitempty"`
}

type recordResponse struct {
	Key  string         `json:"key"`
	Data payroll.Result `json:"data"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.Post("/calculate", h.handleCalculate)
		r.Get("/{year}/{month}", h.handleMonth)
		r.Get("/{year}/{month}/register.csv", h.handleRegisterCSV)
		r.Get("/{year}/{month}/{employeeID}", h.handleGet)
		r.Put("/{year}/{month}/{employeeID}", h.handleRecord)
		r.Delete("/{year}/{month}/{employeeID}", h.handleDelete)
	})
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload calculateRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if validateInput(w, payload.Input, requestID) {
		return
	}
	result, err := h.Service.Preview(r.Context(), payload.Input, payload.Rates)
	if err != nil {
		fail(w, err, requestID)
		return
	}
	h.Metrics.PayrollComputed()
	api.Success(w, result, requestID)
}

func (h *Handler) handleMonth(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	validator := shared.NewValidator()
	year := validator.Year("year", chi.URLParam(r, "year"))
	month := validator.Month("month", chi.URLParam(r, "month"))
	if validator.Reject(w, requestID) {
		return
	}
	sheet, err := h.Service.ListMonth(r.Context(), year, month)
	if err != nil {
		fail(w, err, requestID)
		return
	}
	api.Success(w, sheet, requestID)
}

func (h *Handler) handleRegisterCSV(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	validator := shared.NewValidator()
	year := validator.Year("year", chi.URLParam(r, "year"))
	month := validator.Month("month", chi.URLParam(r, "month"))
	if validator.Reject(w, requestID) {
		return
	}
	sheet, err := h.Service.ListMonth(r.Context(), year, month)
	if err != nil {
		fail(w, err, requestID)
		return
	}
	var buf bytes.Buffer
	if err := reports.WriteRegisterCSV(&buf, sheet); err != nil {
		slog.Error("register csv write failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to export register", requestID)
		return
	}
	h.Metrics.DocumentRendered()
	api.Attachment(w, "text/csv", fmt.Sprintf("payroll-register-%s-%d.csv", month, year), buf.Bytes())
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	validator := shared.NewValidator()
	key := shared.PayrollKey(r, validator)
	if validator.Reject(w, requestID) {
		return
	}
	result, err := h.Service.Get(r.Context(), key)
	if err != nil {
		fail(w, err, requestID)
		return
	}
	api.Success(w, recordResponse{Key: key.String(), Data: result}, requestID)
}

func (h *Handler) handleRecord(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	validator := shared.NewValidator()
	key := shared.PayrollKey(r, validator)
	if validator.Reject(w, requestID) {
		return
	}
	var payload payroll.Input
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if validateInput(w, payload, requestID) {
		return
	}
	result, err := h.Service.Record(r.Context(), key, payload)
	if err != nil {
		fail(w, err, requestID)
		return
	}
	h.Metrics.PayrollComputed()
	api.Success(w, recordResponse{Key: key.String(), Data: result}, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	validator := shared.NewValidator()
	key := shared.PayrollKey(r, validator)
	if validator.Reject(w, requestID) {
		return
	}
	if err := h.Service.Delete(r.Context(), key); err != nil {
		fail(w, err, requestID)
		return
	}
	api.Success(w, map[string]string{"key": key.String()}, requestID)
}

func validateInput(w http.ResponseWriter, in payroll.Input, requestID string) bool {
	validator := shared.NewValidator()
	validator.NonNegative("basic", in.Basic)
	for field, value := range map[string]*float64{"nssf": in.SuppliedNSSF, "benefits": in.Benefits, "quarters": in.Quarters} {
		if value != nil {
			validator.NonNegative(field, *value)
		}
	}
	return validator.Reject(w, requestID)
}

func fail(w http.ResponseWriter, err error, requestID string) {
	var amountErr *payroll.AmountError
	switch {
	case errors.As(err, &amountErr):
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: amountErr.Field, Reason: "must be a non-negative number"}})
	case errors.Is(err, payroll.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
	case errors.Is(err, payroll.ErrRecordNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "payroll record not found", requestID)
	case errors.Is(err, payroll.ErrInvalidKey), errors.Is(err, payroll.ErrInvalidMonth), errors.Is(err, payroll.ErrInvalidYear):
		api.Fail(w, http.StatusBadRequest, "invalid_period", err.Error(), requestID)
	case errors.Is(err, payroll.ErrInvalidAmount), errors.Is(err, payroll.ErrInvalidBands):
		api.Fail(w, http.StatusBadRequest, "invalid_rates", err.Error(), requestID)
	default:
		slog.Error("payroll request failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "payroll_failed", "payroll request failed", requestID)
	}
}
