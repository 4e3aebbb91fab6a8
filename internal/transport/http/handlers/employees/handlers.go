package employeeshandler

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"p9ify/internal/domain/audit"
	"p9ify/internal/domain/employees"
	"p9ify/internal/domain/payroll"
	"p9ify/internal/reports"
	"p9ify/internal/transport/http/api"
	"p9ify/internal/transport/http/middleware"
	"p9ify/internal/transport/http/shared"
)

type Handler struct {
	Employees *employees.Service
	Payroll   *payroll.Service
	Audit     *audit.Service
}

func NewHandler(people *employees.Service, payrolls *payroll.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Employees: people, Payroll: payrolls, Audit: auditSvc}
}

type listResponse struct {
	Items  []employees.Employee `json:"items"`
	Total  int                  `json:"total"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
}

type deleteResponse struct {
	ID              string `json:"id"`
	PayrollsRemoved int    `json:"payrollsRemoved"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/export.csv", h.handleExportCSV)
		r.Get("/{employeeID}", h.handleGet)
		r.Put("/{employeeID}", h.handleUpdate)
		r.Delete("/{employeeID}", h.handleDelete)
		r.Get("/{employeeID}/history", h.handleHistory)
		r.Get("/{employeeID}/export", h.handleExport)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	validator := shared.NewValidator()
	page := validator.Pagination(r, employees.DefaultListLimit, employees.MaxListLimit)
	if validator.Reject(w, requestID) {
		return
	}
	items, total, err := h.Employees.List(r.Context(), page.Limit, page.Offset)
	if err != nil {
		slog.Error("employee list failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "employees_failed", "failed to list employees", requestID)
		return
	}
	api.Success(w, listResponse{Items: items, Total: total, Limit: page.Limit, Offset: page.Offset}, requestID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload employees.CreateInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	created, err := h.Employees.Create(r.Context(), payload)
	if err != nil {
		fail(w, err, requestID)
		return
	}
	api.Created(w, created, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	employee, err := h.Employees.Get(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		fail(w, err, requestID)
		return
	}
	api.Success(w, employee, requestID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload employees.UpdateInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	updated, err := h.Employees.Update(r.Context(), chi.URLParam(r, "employeeID"), payload)
	if err != nil {
		fail(w, err, requestID)
		return
	}
	api.Success(w, updated, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id := chi.URLParam(r, "employeeID")
	removed, err := h.Employees.Delete(r.Context(), id)
	if err != nil {
		fail(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.Audit, audit.ActionEmployeeDelete, "employee", id, map[string]int{"payrollsRemoved": removed})
	api.Success(w, deleteResponse{ID: id, PayrollsRemoved: removed}, requestID)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	history, err := h.Payroll.History(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		fail(w, err, requestID)
		return
	}
	api.Success(w, history, requestID)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	export, err := h.Payroll.Export(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		fail(w, err, requestID)
		return
	}
	api.Success(w, export, requestID)
}

func (h *Handler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	people, err := h.Employees.All(r.Context())
	if err != nil {
		slog.Error("employee export failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to export employees", requestID)
		return
	}
	var buf bytes.Buffer
	if err := reports.WriteEmployeesCSV(&buf, people); err != nil {
		slog.Error("employee csv write failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to export employees", requestID)
		return
	}
	name := "employees-" + time.Now().UTC().Format("2006-01-02") + ".csv"
	api.Attachment(w, "text/csv", name, buf.Bytes())
}

func fail(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, employees.ErrNotFound), errors.Is(err, payroll.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", requestID)
	case errors.Is(err, employees.ErrNameRequired):
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "name", Reason: err.Error()}})
	case errors.Is(err, employees.ErrPINRequired), errors.Is(err, employees.ErrInvalidPIN):
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "pin", Reason: err.Error()}})
	case errors.Is(err, employees.ErrInvalidNationalID):
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "nationalId", Reason: err.Error()}})
	default:
		slog.Error("employee request failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "employees_failed", "employee request failed", requestID)
	}
}
