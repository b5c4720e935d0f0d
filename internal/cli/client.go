package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// CaseResponse — дело из API.
type CaseResponse struct {
	CaseID            string                    `json:"caseId"`
	ApplicationNumber string                    `json:"applicationNumber"`
	CandidateName     string                    `json:"candidateName"`
	Status            string                    `json:"status"`
	RiskStatus        string                    `json:"riskStatus"`
	CurrentStepIndex  int                       `json:"currentStepIndex"`
	CompletedSteps    []string                  `json:"completedSteps"`
	Steps             map[string]map[string]any `json:"steps"`
	Seed              map[string]any            `json:"seed"`
	AgentOutputs      map[string]map[string]any `json:"agentOutputs"`
	CreatedAt         string                    `json:"createdAt"`
	UpdatedAt         string                    `json:"updatedAt"`
}

// EventResponse — событие из API.
type EventResponse struct {
	Timestamp string         `json:"ts"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload"`
}

// PlanResponse — план оркестратора из API.
type PlanResponse struct {
	CaseID         string            `json:"caseId"`
	OverallStatus  string            `json:"overallStatus"`
	Conflicts      []map[string]any  `json:"conflicts"`
	Decision       map[string]any    `json:"decision"`
	NextActions    []map[string]any  `json:"nextActions"`
	AgentSummaries map[string]string `json:"agentSummaries"`
	Day1Readiness  map[string]any    `json:"day1Readiness"`
}

// OrchestrateResult — итог прогона оркестратора из API.
type OrchestrateResult struct {
	Plan    PlanResponse              `json:"plan"`
	Outputs map[string]map[string]any `json:"outputs"`
}

// --- Request types ---

// InitCaseRequest — идемпотентное создание/получение дела.
type InitCaseRequest struct {
	ApplicationNumber string         `json:"applicationNumber"`
	CaseID            string         `json:"caseId,omitempty"`
	Seed              map[string]any `json:"seed,omitempty"`
}

// SaveStepRequest — сохранение шага кандидата.
type SaveStepRequest struct {
	Payload       map[string]any `json:"payload"`
	NextStepIndex *int           `json:"nextStepIndex,omitempty"`
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для Caseflow API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ListCases возвращает все дела.
func (c *Client) ListCases() ([]CaseResponse, error) {
	var cases []CaseResponse
	err := c.list("/api/v1/cases", &cases)
	return cases, err
}

// InitCase идемпотентно создаёт или возвращает дело по номеру заявки.
func (c *Client) InitCase(req InitCaseRequest) (*CaseResponse, error) {
	var cs CaseResponse
	err := c.post("/api/v1/cases/init", req, &cs)
	return &cs, err
}

// GetCase возвращает дело по ID.
func (c *Client) GetCase(id string) (*CaseResponse, error) {
	var cs CaseResponse
	err := c.get("/api/v1/cases/"+id, &cs)
	return &cs, err
}

// DeleteCase удаляет дело.
func (c *Client) DeleteCase(id string) error {
	return c.delete("/api/v1/cases/" + id)
}

// SaveStep сохраняет шаг кандидата.
func (c *Client) SaveStep(id, stepKey string, req SaveStepRequest) (*CaseResponse, error) {
	var cs CaseResponse
	err := c.post("/api/v1/cases/"+id+"/steps/"+stepKey, req, &cs)
	return &cs, err
}

// SetStatus меняет статус дела.
func (c *Client) SetStatus(id, status string) (*CaseResponse, error) {
	var cs CaseResponse
	body := map[string]string{"status": status}
	err := c.put("/api/v1/cases/"+id+"/status", body, &cs)
	return &cs, err
}

// Orchestrate запускает прогон оркестратора.
func (c *Client) Orchestrate(id, notes string) (*OrchestrateResult, error) {
	var res OrchestrateResult
	body := map[string]string{"notes": notes}
	err := c.post("/api/v1/cases/"+id+"/orchestrate", body, &res)
	return &res, err
}

// GetPlan возвращает план последнего прогона.
func (c *Client) GetPlan(id string) (*PlanResponse, error) {
	var plan PlanResponse
	err := c.get("/api/v1/cases/"+id+"/plan", &plan)
	return &plan, err
}

// ListEvents возвращает последние события дела.
func (c *Client) ListEvents(id string) ([]EventResponse, error) {
	var events []EventResponse
	err := c.list("/api/v1/cases/"+id+"/events", &events)
	return events, err
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) put(path string, body any, result any) error {
	return c.doData(http.MethodPut, path, body, result)
}

func (c *Client) delete(path string) error {
	resp, err := c.do(http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkError(resp)
}

func (c *Client) list(path string, result any) error {
	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
