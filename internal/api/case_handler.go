package api

import (
	"encoding/json"
	"net/http"

	"github.com/shaiso/Caseflow/internal/domain"
)

// InitCase — идемпотентное создание или получение дела по номеру заявки.
// POST /api/v1/cases/init
func (h *Handler) InitCase(w http.ResponseWriter, r *http.Request) {
	var req InitCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if req.ApplicationNumber == "" {
		BadRequest(w, "applicationNumber is required")
		return
	}

	c := h.store.InitOrGet(r.Context(), req.ApplicationNumber, req.Seed, req.CaseID)
	Success(w, c)
}

// ListCases возвращает все дела в памяти.
// GET /api/v1/cases
func (h *Handler) ListCases(w http.ResponseWriter, r *http.Request) {
	cases := h.store.Cases()
	List(w, cases, len(cases))
}

// GetCase возвращает дело по id.
// GET /api/v1/cases/{id}
func (h *Handler) GetCase(w http.ResponseWriter, r *http.Request) {
	c, ok := h.store.Get(r.Context(), r.PathValue("id"))
	if !ok {
		NotFound(w, "case not found")
		return
	}
	Success(w, c)
}

// DeleteCase удаляет дело вместе со снапшотом и подписчиками.
// DELETE /api/v1/cases/{id}
func (h *Handler) DeleteCase(w http.ResponseWriter, r *http.Request) {
	if !h.store.Delete(r.Context(), r.PathValue("id")) {
		NotFound(w, "case not found")
		return
	}
	NoContent(w)
}

// SaveStep сохраняет payload шага кандидата и двигает курсор мастера.
// POST /api/v1/cases/{id}/steps/{stepKey}
func (h *Handler) SaveStep(w http.ResponseWriter, r *http.Request) {
	var req SaveStepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if req.Payload == nil {
		req.Payload = map[string]any{}
	}

	c, ok := h.store.SaveStep(r.Context(), r.PathValue("id"), r.PathValue("stepKey"), req.Payload, req.NextStepIndex)
	if !ok {
		NotFound(w, "case not found")
		return
	}
	Success(w, c)
}

// SetStatus меняет статус жизненного цикла дела.
// PUT /api/v1/cases/{id}/status
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	status := domain.CaseStatus(req.Status)
	if !validStatuses[status] {
		BadRequest(w, "unknown status: "+req.Status)
		return
	}

	caseID := r.PathValue("id")
	if _, ok := h.store.Get(r.Context(), caseID); !ok {
		NotFound(w, "case not found")
		return
	}

	h.store.SetStatus(r.Context(), caseID, status)
	c, _ := h.store.Get(r.Context(), caseID)
	Success(w, c)
}
