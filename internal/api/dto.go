package api

import (
	"github.com/shaiso/Caseflow/internal/domain"
)

// Case DTOs

// InitCaseRequest — запрос идемпотентного создания/получения дела.
type InitCaseRequest struct {
	// ApplicationNumber — номер заявки (обязателен).
	ApplicationNumber string `json:"applicationNumber"`

	// CaseID — стабильный идентификатор дела (опционально; промоутит
	// временный id существующего дела).
	CaseID string `json:"caseId,omitempty"`

	// Seed — исходные данные дела (опционально; домерживается).
	Seed domain.Seed `json:"seed"`
}

// SaveStepRequest — запрос сохранения шага кандидата.
type SaveStepRequest struct {
	// Payload — данные шага, схема принадлежит шагу.
	Payload map[string]any `json:"payload"`

	// NextStepIndex — новая позиция курсора мастера (опционально).
	NextStepIndex *int `json:"nextStepIndex,omitempty"`
}

// SetStatusRequest — запрос смены статуса дела.
type SetStatusRequest struct {
	Status string `json:"status"`
}

// Orchestrator DTOs

// OrchestrateRequest — запрос запуска оркестратора.
type OrchestrateRequest struct {
	// Notes — свободный текст оператора, передаётся агентам.
	Notes string `json:"notes,omitempty"`
}

// OrchestrateResponse — ответ с итогами прогона.
type OrchestrateResponse struct {
	Plan    domain.Plan                   `json:"plan"`
	Outputs map[string]*domain.StepResult `json:"outputs"`
}

// validStatuses — допустимые значения статуса в SetStatusRequest.
var validStatuses = map[domain.CaseStatus]bool{
	domain.CaseStatusDraft:                true,
	domain.CaseStatusNegotiationPending:   true,
	domain.CaseStatusOnHoldHR:             true,
	domain.CaseStatusSubmitted:            true,
	domain.CaseStatusOnboardingInProgress: true,
	domain.CaseStatusReadyDay1:            true,
}
