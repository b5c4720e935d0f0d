package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Cases
	mux.Handle("POST /api/v1/cases/init", chain(http.HandlerFunc(h.InitCase)))
	mux.Handle("GET /api/v1/cases", chain(http.HandlerFunc(h.ListCases)))
	mux.Handle("GET /api/v1/cases/{id}", chain(http.HandlerFunc(h.GetCase)))
	mux.Handle("DELETE /api/v1/cases/{id}", chain(http.HandlerFunc(h.DeleteCase)))
	mux.Handle("POST /api/v1/cases/{id}/steps/{stepKey}", chain(http.HandlerFunc(h.SaveStep)))
	mux.Handle("PUT /api/v1/cases/{id}/status", chain(http.HandlerFunc(h.SetStatus)))

	// Orchestrator
	mux.Handle("POST /api/v1/cases/{id}/orchestrate", chain(http.HandlerFunc(h.Orchestrate)))
	mux.Handle("GET /api/v1/cases/{id}/plan", chain(http.HandlerFunc(h.GetPlan)))

	// Events
	mux.Handle("GET /api/v1/cases/{id}/events", chain(http.HandlerFunc(h.ListEvents)))
	mux.Handle("GET /api/v1/cases/{id}/events/stream", chain(http.HandlerFunc(h.StreamEvents)))
}
