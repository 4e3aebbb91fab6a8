package datahandler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"p9ify/internal/domain/audit"
	"p9ify/internal/domain/backup"
	"p9ify/internal/platform/metrics"
	"p9ify/internal/transport/http/api"
	"p9ify/internal/transport/http/middleware"
	"p9ify/internal/transport/http/shared"
)

type Handler struct {
	Service *backup.Service
	Audit   *audit.Service
	Metrics *metrics.Collector
}

func NewHandler(service *backup.Service, auditSvc *audit.Service, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, Audit: auditSvc, Metrics: collector}
}

type integrityResponse struct {
	Valid  bool           `json:"valid"`
	Issues []backup.Issue `json:"issues"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/data", func(r chi.Router) {
		r.Get("/export", h.handleExport)
		r.Post("/import", h.handleImport)
		r.Get("/integrity", h.handleIntegrity)
		r.Post("/integrity/repair", h.handleRepair)
		r.Get("/backups", h.handleListBackups)
		r.Post("/backups", h.handleCreateBackup)
		r.Post("/backups/{backupID}/restore", h.handleRestoreBackup)
		r.Delete("/backups/{backupID}", h.handleDeleteBackup)
		r.Delete("/", h.handleClear)
	})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	snapshot, err := h.Service.Export(r.Context())
	if err != nil {
		fail(w, err, requestID)
		return
	}
	body, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		fail(w, err, requestID)
		return
	}
	name := "p9ify-backup-" + time.Now().UTC().Format("2006-01-02") + ".json"
	api.Attachment(w, "application/json", name, body)
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		api.Fail(w, http.StatusRequestEntityTooLarge, "invalid_payload", "backup file could not be read", requestID)
		return
	}
	counts, err := h.Service.Import(r.Context(), raw)
	if err != nil {
		fail(w, err, requestID)
		return
	}
	slog.Info("data imported", "employees", counts.Employees, "payrolls", counts.Payrolls, "requestId", requestID)
	shared.RecordAudit(r, h.Audit, audit.ActionDataImport, "data", "", counts)
	api.Success(w, counts, requestID)
}

func (h *Handler) handleIntegrity(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	issues, err := h.Service.Validate(r.Context())
	if err != nil {
		fail(w, err, requestID)
		return
	}
	if issues == nil {
		issues = []backup.Issue{}
	}
	api.Success(w, integrityResponse{Valid: len(issues) == 0, Issues: issues}, requestID)
}

func (h *Handler) handleRepair(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	fixed, err := h.Service.Repair(r.Context())
	if err != nil {
		fail(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.Audit, audit.ActionDataRepair, "data", "", map[string]int{"fixed": fixed})
	api.Success(w, map[string]int{"fixed": fixed}, requestID)
}

func (h *Handler) handleListBackups(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	items, err := h.Service.List(r.Context())
	if err != nil {
		fail(w, err, requestID)
		return
	}
	api.Success(w, items, requestID)
}

func (h *Handler) handleCreateBackup(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	info, err := h.Service.Create(r.Context())
	if err != nil {
		fail(w, err, requestID)
		return
	}
	h.Metrics.BackupCreated()
	api.Created(w, info, requestID)
}

func (h *Handler) handleRestoreBackup(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	info, err := h.Service.Restore(r.Context(), chi.URLParam(r, "backupID"))
	if err != nil {
		fail(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.Audit, audit.ActionBackupRestore, "backup", info.ID, info.Summary)
	api.Success(w, info, requestID)
}

func (h *Handler) handleDeleteBackup(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id := chi.URLParam(r, "backupID")
	if err := h.Service.Delete(r.Context(), id); err != nil {
		fail(w, err, requestID)
		return
	}
	shared.RecordAudit(r, h.Audit, audit.ActionBackupDelete, "backup", id, nil)
	api.Success(w, map[string]string{"id": id}, requestID)
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	if err := h.Service.ClearAll(r.Context()); err != nil {
		fail(w, err, requestID)
		return
	}
	slog.Warn("all data cleared", "requestId", requestID)
	shared.RecordAudit(r, h.Audit, audit.ActionDataClear, "data", "", nil)
	api.Success(w, map[string]bool{"cleared": true}, requestID)
}

func fail(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, backup.ErrInvalidBackup):
		api.Fail(w, http.StatusBadRequest, "invalid_backup", err.Error(), requestID)
	case errors.Is(err, backup.ErrBackupNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "backup not found", requestID)
	case errors.Is(err, backup.ErrBackupLocked):
		api.Fail(w, http.StatusConflict, "backup_locked", err.Error(), requestID)
	default:
		slog.Error("data request failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "data_failed", "data request failed", requestID)
	}
}
