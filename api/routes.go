package api

import (
	"net/http"

	"DepreciationRecon/api/runs"

	"github.com/gorilla/mux"
)

func NewRouter(h *runs.Handler) *mux.Router {
	router := mux.NewRouter()
	router.Use(auditRequests)

	router.HandleFunc("/health", HealthHandler).Methods(http.MethodGet)

	recon := router.PathPrefix("/recon").Subrouter()
	recon.HandleFunc("/runs", h.CreateRun).Methods(http.MethodPost)
	recon.HandleFunc("/runs/{id}", h.GetRun).Methods(http.MethodGet)
	recon.HandleFunc("/runs/{id}/report.pdf", h.DownloadPDF).Methods(http.MethodGet)
	recon.HandleFunc("/runs/{id}/report.xlsx", h.DownloadXLSX).Methods(http.MethodGet)
	recon.HandleFunc("/runs/{id}/summary.html", h.Summary).Methods(http.MethodGet)
	if h.Progress != nil {
		recon.HandleFunc("/progress", h.Progress.HandleSSE).Methods(http.MethodGet)
	}

	router.NotFoundHandler = auditRequests(http.HandlerFunc(NotFoundHandler))
	router.MethodNotAllowedHandler = http.HandlerFunc(MethodNotAllowedHandler)
	return router
}
