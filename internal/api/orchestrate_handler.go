package api

import (
	"encoding/json"
	"io"
	"net/http"
)

// Orchestrate запускает прогон оркестратора по делу.
// POST /api/v1/cases/{id}/orchestrate
//
// Тело запроса опционально. Параллельный запуск по одному делу
// отклоняется с 409.
func (h *Handler) Orchestrate(w http.ResponseWriter, r *http.Request) {
	var req OrchestrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		BadRequest(w, "invalid request body")
		return
	}

	res, err := h.orch.Run(r.Context(), r.PathValue("id"), req.Notes)
	if HandleRunError(w, h.logger, err) {
		return
	}

	Success(w, OrchestrateResponse{
		Plan:    res.Plan,
		Outputs: res.Outputs,
	})
}

// GetPlan возвращает сохранённый план последнего прогона.
// GET /api/v1/cases/{id}/plan
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	c, ok := h.store.Get(r.Context(), r.PathValue("id"))
	if !ok {
		NotFound(w, "case not found")
		return
	}

	out := c.Output("orchestrator")
	if out == nil {
		NotFound(w, "case has no orchestrator plan yet")
		return
	}
	Success(w, out.DataMap("plan"))
}
