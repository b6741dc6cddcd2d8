package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/propertyops/compliance-docs/constants"
	"github.com/propertyops/compliance-docs/internal/export"
	"github.com/propertyops/compliance-docs/internal/pipeline"
	"github.com/propertyops/compliance-docs/internal/repository"
	"github.com/propertyops/compliance-docs/internal/taxonomy"
)

// Handler exposes the document pipeline over HTTP JSON.
type Handler struct {
	orch   *pipeline.Orchestrator
	queue  pipeline.Enqueuer
	export *export.Service
	logger *slog.Logger
}

func NewHandler(orch *pipeline.Orchestrator, queue pipeline.Enqueuer, exportSvc *export.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{orch: orch, queue: queue, export: exportSvc, logger: logger}
}

// UploadDocument accepts a multipart upload (building_id + file), stores
// it and queues the pipeline. The response returns immediately with the
// queued document; extraction happens in the background.
func (h *Handler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > constants.MaxUploadBytes {
		h.respondError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadBytes)

	if err := r.ParseMultipartForm(constants.MaxUploadBytes); err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			h.respondError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		h.respondError(w, http.StatusBadRequest, "invalid form data")
		return
	}

	buildingID, err := uuid.Parse(r.FormValue("building_id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "building_id must be a valid uuid")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if _, ok := constants.AllowedMIMETypes[mimeType]; !ok {
		h.respondError(w, http.StatusUnsupportedMediaType, "unsupported content type "+mimeType)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to read file")
		return
	}
	if len(data) == 0 {
		h.respondError(w, http.StatusBadRequest, "uploaded file is empty")
		return
	}

	doc, err := h.orch.Submit(r.Context(), buildingID, header.Filename, mimeType, data)
	if err != nil {
		h.logger.Error("upload submit failed", "filename", header.Filename, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to store document")
		return
	}
	h.queue.Enqueue(doc.ID)

	h.respondJSON(w, http.StatusCreated, doc)
}

// GetStatus returns the job read model: status, page progress, confidence
// aggregate and the pages flagged for manual attention.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "document id must be a valid uuid")
		return
	}

	st, err := h.orch.Tracker().Status(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "document not found")
			return
		}
		h.logger.Error("status lookup failed", "document_id", id, "error", err)
		h.respondError(w, http.StatusInternalServerError, "status lookup failed")
		return
	}
	h.respondJSON(w, http.StatusOK, st)
}

// ListAssets returns the canonical compliance taxonomy.
func (h *Handler) ListAssets(w http.ResponseWriter, _ *http.Request) {
	h.respondJSON(w, http.StatusOK, taxonomy.ListAssets())
}

// ExportRegister streams the building's compliance register as XLSX.
func (h *Handler) ExportRegister(w http.ResponseWriter, r *http.Request) {
	buildingID, err := uuid.Parse(mux.Vars(r)["building_id"])
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "building_id must be a valid uuid")
		return
	}

	data, err := h.export.ExportRegisterXLSX(r.Context(), buildingID)
	if err != nil {
		h.logger.Error("register export failed", "building_id", buildingID, "error", err)
		h.respondError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="compliance-register.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", "error", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.logger.Warn("request error", "status", status, "error", message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
