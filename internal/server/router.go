package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires the API routes.
func NewRouter(h *Handler) http.Handler {
	r := mux.NewRouter()
	r.Use(recoveryMiddleware(h.logger))
	r.Use(loggingMiddleware(h.logger))

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	api.HandleFunc("/documents", h.UploadDocument).Methods(http.MethodPost)
	api.HandleFunc("/documents/{id}/status", h.GetStatus).Methods(http.MethodGet)
	api.HandleFunc("/assets", h.ListAssets).Methods(http.MethodGet)
	api.HandleFunc("/buildings/{building_id}/register.xlsx", h.ExportRegister).Methods(http.MethodGet)
	api.HandleFunc("/export/compliance.xlsx", h.ExportRegister).
		Queries("building_id", "{building_id}").Methods(http.MethodGet)

	return r
}
