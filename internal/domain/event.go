package domain

import "time"

// EventType — тип события. Словарь типов append-only: новые типы
// добавлять можно, форму payload существующих менять нельзя.
type EventType string

// Системные события и события шагов кандидата.
const (
	EventCaseCreated   EventType = "system.case_created"
	EventCaseDeleted   EventType = "system.case_deleted"
	EventStatusChanged EventType = "system.status_changed"
	EventRiskChanged   EventType = "system.risk_changed"
	EventStepSaved     EventType = "ui.step_saved"
)

// События оркестратора.
const (
	EventOrchestratorStart    EventType = "agent.orchestrator_start"
	EventOrchestratorConflict EventType = "agent.orchestrator_conflict"
	EventOrchestratorDone     EventType = "agent.orchestrator_done"
)

// AgentStart возвращает тип события запуска агента (agent.<name>_start).
func AgentStart(agent string) EventType {
	return EventType("agent." + agent + "_start")
}

// AgentDone возвращает тип события завершения агента (agent.<name>_done).
func AgentDone(agent string) EventType {
	return EventType("agent." + agent + "_done")
}

// AgentSkipped возвращает тип события пропуска агента (agent.<name>_skipped).
func AgentSkipped(agent string) EventType {
	return EventType("agent." + agent + "_skipped")
}

// Event — запись в событийном логе дела.
//
// Лог per-case, ограниченный (старые записи вытесняются), доставка
// подписчикам best-effort. Это observability-лог, не durable-очередь.
type Event struct {
	// Timestamp — время эмиссии.
	Timestamp time.Time `json:"ts"`

	// Type — тип события (dotted string).
	Type EventType `json:"type"`

	// Payload — произвольные данные события.
	Payload map[string]any `json:"payload"`
}
