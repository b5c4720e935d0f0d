package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shaiso/Caseflow/internal/agents"
	"github.com/shaiso/Caseflow/internal/config"
	"github.com/shaiso/Caseflow/internal/domain"
	"github.com/shaiso/Caseflow/internal/orchestrator"
	"github.com/shaiso/Caseflow/internal/repo"
	"github.com/shaiso/Caseflow/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.CaseStore) {
	t.Helper()

	s := store.New(store.Config{Snapshots: repo.NewMemorySnapshots()})
	policy := config.Default().Policy
	registry := agents.NewRegistry(
		agents.NewCompliance(policy),
		agents.NewLogistics(policy),
		agents.NewHRIS(repo.NewMemoryEmployees()),
		agents.NewWorkplace(repo.NewMemoryAssignments()),
		agents.NewIT(policy),
	)
	h := NewHandler(Config{
		Store:        s,
		Orchestrator: orchestrator.New(s, registry, slog.Default()),
		Logger:       slog.Default(),
	})

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, s
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	blob, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(blob))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeData(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func initCase(t *testing.T, srv *httptest.Server, appNum string) domain.Case {
	t.Helper()
	resp := postJSON(t, srv.URL+"/api/v1/cases/init", InitCaseRequest{
		ApplicationNumber: appNum,
		Seed: domain.Seed{
			CandidateName: "Ayesha Khan",
			Role:          "Staff Nurse",
			WorkLocation:  "Dubai, AE",
			Nationality:   "PK",
			StartDate:     time.Now().UTC().AddDate(0, 0, 90).Format("2006-01-02"),
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("init case: status %d", resp.StatusCode)
	}
	var c domain.Case
	decodeData(t, resp, &c)
	return c
}

func TestInitCaseIdempotent(t *testing.T) {
	srv, _ := newTestServer(t)

	first := initCase(t, srv, "APP-1001")
	second := initCase(t, srv, "APP-1001")

	if first.CaseID != second.CaseID {
		t.Errorf("caseId changed on re-init: %q vs %q", first.CaseID, second.CaseID)
	}
}

func TestInitCaseRequiresApplicationNumber(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/cases/init", InitCaseRequest{})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGetCaseNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/cases/CASE-MISSING")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestSaveStepAndGet(t *testing.T) {
	srv, _ := newTestServer(t)
	c := initCase(t, srv, "APP-1002")

	next := 2
	resp := postJSON(t, fmt.Sprintf("%s/api/v1/cases/%s/steps/identity_contact", srv.URL, c.CaseID),
		SaveStepRequest{
			Payload:       map[string]any{"email": "ayesha@example.com"},
			NextStepIndex: &next,
		})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save step: status %d", resp.StatusCode)
	}
	var updated domain.Case
	decodeData(t, resp, &updated)

	if !updated.HasCompletedStep("identity_contact") {
		t.Error("step not recorded as completed")
	}
	if updated.CurrentStepIndex != 2 {
		t.Errorf("currentStepIndex = %d, want 2", updated.CurrentStepIndex)
	}
}

func TestOrchestrateEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	c := initCase(t, srv, "APP-1003")

	resp := postJSON(t, fmt.Sprintf("%s/api/v1/cases/%s/orchestrate", srv.URL, c.CaseID),
		OrchestrateRequest{Notes: "expedite"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("orchestrate: status %d", resp.StatusCode)
	}
	var out OrchestrateResponse
	decodeData(t, resp, &out)

	if out.Plan.CaseID != c.CaseID {
		t.Errorf("plan caseId = %q, want %q", out.Plan.CaseID, c.CaseID)
	}
	if len(out.Plan.NextActions) != 4 {
		t.Errorf("next actions = %d, want 4", len(out.Plan.NextActions))
	}

	// План после прогона доступен отдельным endpoint'ом.
	planResp, err := http.Get(fmt.Sprintf("%s/api/v1/cases/%s/plan", srv.URL, c.CaseID))
	if err != nil {
		t.Fatalf("GET plan: %v", err)
	}
	if planResp.StatusCode != http.StatusOK {
		t.Fatalf("get plan: status %d", planResp.StatusCode)
	}
	var plan map[string]any
	decodeData(t, planResp, &plan)
	if plan["caseId"] != c.CaseID {
		t.Errorf("stored plan caseId = %v, want %q", plan["caseId"], c.CaseID)
	}
}

func TestOrchestrateNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/cases/CASE-MISSING/orchestrate", OrchestrateRequest{})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestSetStatusValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	c := initCase(t, srv, "APP-1004")

	req, _ := http.NewRequest(http.MethodPut,
		fmt.Sprintf("%s/api/v1/cases/%s/status", srv.URL, c.CaseID),
		strings.NewReader(`{"status":"BOGUS"}`))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT status: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodPut,
		fmt.Sprintf("%s/api/v1/cases/%s/status", srv.URL, c.CaseID),
		strings.NewReader(`{"status":"SUBMITTED"}`))
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT status: %v", err)
	}
	var updated domain.Case
	decodeData(t, resp, &updated)
	if updated.Status != domain.CaseStatusSubmitted {
		t.Errorf("case status = %s, want SUBMITTED", updated.Status)
	}
}

func TestDeleteCase(t *testing.T) {
	srv, _ := newTestServer(t)
	c := initCase(t, srv, "APP-1005")

	req, _ := http.NewRequest(http.MethodDelete,
		fmt.Sprintf("%s/api/v1/cases/%s", srv.URL, c.CaseID), nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}

	// Повторное удаление — 404.
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", resp.StatusCode)
	}
}

func TestListEvents(t *testing.T) {
	srv, _ := newTestServer(t)
	c := initCase(t, srv, "APP-1006")

	resp, err := http.Get(fmt.Sprintf("%s/api/v1/cases/%s/events", srv.URL, c.CaseID))
	if err != nil {
		t.Fatalf("GET events: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var events []domain.Event
	decodeData(t, resp, &events)

	if len(events) == 0 {
		t.Fatal("no events after init")
	}
	if events[0].Type != domain.EventCaseCreated {
		t.Errorf("events[0].Type = %s, want %s", events[0].Type, domain.EventCaseCreated)
	}
}

func TestStreamEventsCatchUp(t *testing.T) {
	srv, s := newTestServer(t)
	c := initCase(t, srv, "APP-1007")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/api/v1/cases/%s/events/stream", srv.URL, c.CaseID), nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET stream: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q, want text/event-stream", ct)
	}

	// Живое событие поверх catch-up.
	s.Emit(ctx, c.CaseID, domain.EventStatusChanged, map[string]any{"status": "SUBMITTED"})

	buf := make([]byte, 4096)
	var seen strings.Builder
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			seen.Write(buf[:n])
			if strings.Contains(seen.String(), string(domain.EventCaseCreated)) &&
				strings.Contains(seen.String(), string(domain.EventStatusChanged)) {
				return
			}
		}
		if err != nil {
			break
		}
	}
	t.Fatalf("stream did not deliver catch-up and live events; got: %s", seen.String())
}
