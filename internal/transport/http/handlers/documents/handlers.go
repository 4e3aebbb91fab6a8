package documentshandler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"p9ify/internal/domain/employees"
	"p9ify/internal/domain/payroll"
	"p9ify/internal/domain/settings"
	"p9ify/internal/platform/jobs"
	"p9ify/internal/platform/metrics"
	"p9ify/internal/reports"
	"p9ify/internal/transport/http/api"
	"p9ify/internal/transport/http/middleware"
	"p9ify/internal/transport/http/shared"
)

const (
	contentTypePDF = "application/pdf"
	contentTypeCSV = "text/csv"
)

type Handler struct {
	Payroll   *payroll.Service
	Employees *employees.Service
	Settings  *settings.Service
	Archive   *reports.Archive
	Jobs      *jobs.Service
	Metrics   *metrics.Collector
	now       func() time.Time
}

func NewHandler(payrolls *payroll.Service, people *employees.Service, settingsSvc *settings.Service, archive *reports.Archive, jobsSvc *jobs.Service, collector *metrics.Collector) *Handler {
	return &Handler{
		Payroll:   payrolls,
		Employees: people,
		Settings:  settingsSvc,
		Archive:   archive,
		Jobs:      jobsSvc,
		Metrics:   collector,
		now:       time.Now,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/payslips", h.handleListPayslips)
	r.Get("/payslips/{year}/{month}/{employeeID}/pdf", h.handlePayslipPDF)
	r.Route("/p9/{employeeID}/{year}", func(r chi.Router) {
		r.Get("/", h.handleP9)
		r.Get("/pdf", h.handleP9PDF)
		r.Get("/csv", h.handleP9CSV)
	})
}

func (h *Handler) handleListPayslips(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	filter := payroll.PayslipFilter{EmployeeID: strings.TrimSpace(r.URL.Query().Get("employeeId"))}
	if raw := r.URL.Query().Get("year"); raw != "" {
		validator := shared.NewValidator()
		filter.Year = validator.Year("year", raw)
		if validator.Reject(w, requestID) {
			return
		}
	}
	items, err := h.Payroll.ListPayslips(r.Context(), filter)
	if err != nil {
		fail(w, err, requestID)
		return
	}
	api.Success(w, items, requestID)
}

func (h *Handler) handlePayslipPDF(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	validator := shared.NewValidator()
	key := shared.PayrollKey(r, validator)
	if validator.Reject(w, requestID) {
		return
	}
	result, err := h.Payroll.Get(r.Context(), key)
	if err != nil {
		fail(w, err, requestID)
		return
	}
	employee, err := h.Employees.Get(r.Context(), key.EmployeeID)
	if err != nil {
		fail(w, err, requestID)
		return
	}
	employer, err := h.Settings.Get(r.Context())
	if err != nil {
		fail(w, err, requestID)
		return
	}

	slip := reports.Payslip{Employer: employer, Employee: employee, Key: key, Result: result, GeneratedAt: h.now()}
	var buf bytes.Buffer
	if err := reports.RenderPayslipPDF(&buf, slip); err != nil {
		slog.Error("payslip render failed", "key", key.String(), "err", err)
		api.Fail(w, http.StatusInternalServerError, "render_failed", "failed to render payslip", requestID)
		return
	}
	h.Metrics.DocumentRendered()
	h.archive("payslips/"+strconv.Itoa(key.Year), slip.FileName(), contentTypePDF, buf.Bytes())
	api.Attachment(w, contentTypePDF, slip.FileName(), buf.Bytes())
}

func (h *Handler) handleP9(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	card, ok := h.loadCard(w, r, requestID)
	if !ok {
		return
	}
	api.Success(w, card.Card, requestID)
}

func (h *Handler) handleP9PDF(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	card, ok := h.loadCard(w, r, requestID)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := reports.RenderP9PDF(&buf, card); err != nil {
		slog.Error("p9 render failed", "employeeId", card.Employee.ID, "year", card.Card.Year, "err", err)
		api.Fail(w, http.StatusInternalServerError, "render_failed", "failed to render P9", requestID)
		return
	}
	h.Metrics.DocumentRendered()
	h.archive("p9/"+strconv.Itoa(card.Card.Year), card.FileName("pdf"), contentTypePDF, buf.Bytes())
	api.Attachment(w, contentTypePDF, card.FileName("pdf"), buf.Bytes())
}

func (h *Handler) handleP9CSV(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	card, ok := h.loadCard(w, r, requestID)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := reports.WriteP9CSV(&buf, card); err != nil {
		slog.Error("p9 csv write failed", "employeeId", card.Employee.ID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "render_failed", "failed to export P9", requestID)
		return
	}
	h.Metrics.DocumentRendered()
	api.Attachment(w, contentTypeCSV, card.FileName("csv"), buf.Bytes())
}

func (h *Handler) loadCard(w http.ResponseWriter, r *http.Request, requestID string) (reports.P9Card, bool) {
	validator := shared.NewValidator()
	year := validator.Year("year", chi.URLParam(r, "year"))
	employeeID := strings.TrimSpace(chi.URLParam(r, "employeeID"))
	validator.Required("employeeID", employeeID, "is required")
	if validator.Reject(w, requestID) {
		return reports.P9Card{}, false
	}
	annual, err := h.Payroll.P9(r.Context(), employeeID, year)
	if err != nil {
		fail(w, err, requestID)
		return reports.P9Card{}, false
	}
	employee, err := h.Employees.Get(r.Context(), employeeID)
	if err != nil {
		fail(w, err, requestID)
		return reports.P9Card{}, false
	}
	employer, err := h.Settings.Get(r.Context())
	if err != nil {
		fail(w, err, requestID)
		return reports.P9Card{}, false
	}
	return reports.P9Card{Employer: employer, Employee: employee, Card: annual, GeneratedAt: h.now()}, true
}

// archive hands a rendered document to the background worker. The
// response never waits on the archive.
func (h *Handler) archive(dir, name, contentType string, data []byte) {
	if h.Archive == nil || h.Jobs == nil {
		return
	}
	h.Jobs.Enqueue(jobs.JobArchiveDocument, func(ctx context.Context) (any, error) {
		return h.Archive.Save(ctx, dir, name, contentType, data)
	})
}

func fail(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, payroll.ErrEmployeeNotFound), errors.Is(err, employees.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
	case errors.Is(err, payroll.ErrRecordNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "payroll record not found", requestID)
	case errors.Is(err, payroll.ErrInvalidKey), errors.Is(err, payroll.ErrInvalidYear), errors.Is(err, payroll.ErrInvalidMonth):
		api.Fail(w, http.StatusBadRequest, "invalid_period", err.Error(), requestID)
	default:
		slog.Error("document request failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "documents_failed", "document request failed", requestID)
	}
}
