package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ListEvents возвращает catch-up окно событий дела.
// GET /api/v1/cases/{id}/events
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	caseID := r.PathValue("id")
	if _, ok := h.store.Get(r.Context(), caseID); !ok {
		NotFound(w, "case not found")
		return
	}

	events := h.store.Recent(r.Context(), caseID)
	List(w, events, len(events))
}

// StreamEvents — SSE-стрим событий дела.
// GET /api/v1/cases/{id}/events/stream
//
// Сначала отдаётся catch-up окно (последние события лога), затем живой
// поток. Доставка best-effort: медленный клиент теряет события, а не
// тормозит эмиссию.
func (h *Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	caseID := r.PathValue("id")

	flusher, ok := w.(http.Flusher)
	if !ok {
		Error(w, http.StatusInternalServerError, ErrCodeInternalError, "streaming unsupported")
		return
	}

	ch, ok := h.store.Subscribe(r.Context(), caseID)
	if !ok {
		NotFound(w, "case not found")
		return
	}
	defer h.store.Unsubscribe(caseID, ch)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// Catch-up: история до подписки. События, эмитнутые между Subscribe
	// и этим снимком, могут прийти дважды — клиенты дедуплицируют по ts.
	for _, evt := range h.store.Recent(r.Context(), caseID) {
		writeSSE(w, evt)
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case evt, open := <-ch:
			if !open {
				// Дело удалено.
				return
			}
			writeSSE(w, evt)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, evt any) {
	blob, err := json.Marshal(evt)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", blob)
}
