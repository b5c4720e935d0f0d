package domain

import (
	"encoding/json"
	"time"
)

// Case — дело онбординга одного кандидата.
//
// Case — долгоживущая запись, которая проходит через последовательные
// шаги кандидата (steps) и параллельные/последовательные шаги агентов
// (AgentOutputs). Инварианты:
//   - один Case на один ApplicationNumber;
//   - CaseID после промоушена на стабильный id больше не меняется;
//   - выход шага перезаписывается только его собственным агентом.
type Case struct {
	// CaseID — идентификатор дела. Может начинаться как временный
	// и один раз промоутиться на стабильный (см. CaseStore.InitOrGet).
	CaseID string `json:"caseId"`

	// ApplicationNumber — номер заявки, по которому кандидат заходит в систему.
	ApplicationNumber string `json:"applicationNumber"`

	// CandidateName — имя кандидата (копия из seed для удобства).
	CandidateName string `json:"candidateName"`

	// Status — статус жизненного цикла.
	Status CaseStatus `json:"status"`

	// RiskStatus — оценка риска по итогам последнего прогона.
	RiskStatus RiskStatus `json:"riskStatus"`

	// CurrentStepIndex — курсор мастера шагов кандидата.
	CurrentStepIndex int `json:"currentStepIndex"`

	// CompletedSteps — упорядоченный журнал завершённых шагов кандидата.
	CompletedSteps []string `json:"completedSteps"`

	// Steps — произвольные payload'ы шагов кандидата (step key → payload).
	// Схема payload'а принадлежит шагу, не типизируем её статически.
	Steps map[string]map[string]any `json:"steps"`

	// Seed — исходные данные дела (роль, локация, дата старта и т.д.).
	Seed Seed `json:"seed"`

	// AgentOutputs — результаты агентов (имя агента → StepResult).
	AgentOutputs map[string]*StepResult `json:"agentOutputs"`

	// CreatedAt / UpdatedAt — метки времени.
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewCase создаёт новое дело со статусом DRAFT.
func NewCase(caseID, applicationNumber string, seed Seed) *Case {
	now := time.Now().UTC()
	name := seed.CandidateName
	if name == "" {
		name = "Candidate"
	}
	return &Case{
		CaseID:            caseID,
		ApplicationNumber: applicationNumber,
		CandidateName:     name,
		Status:            CaseStatusDraft,
		RiskStatus:        RiskStatusNone,
		CompletedSteps:    []string{},
		Steps:             make(map[string]map[string]any),
		Seed:              seed,
		AgentOutputs:      make(map[string]*StepResult),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// Output возвращает результат агента по имени (nil, если ещё не было).
func (c *Case) Output(agent string) *StepResult {
	if c.AgentOutputs == nil {
		return nil
	}
	return c.AgentOutputs[agent]
}

// HasCompletedStep проверяет, есть ли шаг в журнале завершённых.
func (c *Case) HasCompletedStep(stepKey string) bool {
	for _, s := range c.CompletedSteps {
		if s == stepKey {
			return true
		}
	}
	return false
}

// Touch обновляет метку времени изменения.
func (c *Case) Touch() {
	c.UpdatedAt = time.Now().UTC()
}

// Clone возвращает глубокую копию дела.
//
// Копия делается через JSON — это одновременно проверка контракта
// персистентности: состояние дела обязано сериализоваться без потерь.
func (c *Case) Clone() *Case {
	blob, err := json.Marshal(c)
	if err != nil {
		// Case состоит из JSON-совместимых типов; сюда попасть нельзя.
		panic("domain: case not serializable: " + err.Error())
	}
	var out Case
	if err := json.Unmarshal(blob, &out); err != nil {
		panic("domain: case not round-trippable: " + err.Error())
	}
	return &out
}

// Seed — исходные данные дела, задаваемые при создании и дополняемые позже.
//
// Merge не затирает уже известные поля пустыми значениями.
type Seed struct {
	CandidateName string         `json:"candidateName,omitempty"`
	Role          string         `json:"role,omitempty"`
	WorkLocation  string         `json:"workLocation,omitempty"`
	Nationality   string         `json:"nationality,omitempty"`
	StartDate     string         `json:"startDate,omitempty"`
	Department    string         `json:"department,omitempty"`
	PersonalEmail string         `json:"personalEmail,omitempty"`
	Compensation  map[string]any `json:"compensation,omitempty"`
	PriorNotes    string         `json:"priorNotes,omitempty"`
}

// IsZero проверяет, что seed пустой.
func (s Seed) IsZero() bool {
	return s.CandidateName == "" && s.Role == "" && s.WorkLocation == "" &&
		s.Nationality == "" && s.StartDate == "" && s.Department == "" &&
		s.PersonalEmail == "" && len(s.Compensation) == 0 && s.PriorNotes == ""
}

// Merge дополняет seed непустыми полями из other.
func (s *Seed) Merge(other Seed) {
	if other.CandidateName != "" {
		s.CandidateName = other.CandidateName
	}
	if other.Role != "" {
		s.Role = other.Role
	}
	if other.WorkLocation != "" {
		s.WorkLocation = other.WorkLocation
	}
	if other.Nationality != "" {
		s.Nationality = other.Nationality
	}
	if other.StartDate != "" {
		s.StartDate = other.StartDate
	}
	if other.Department != "" {
		s.Department = other.Department
	}
	if other.PersonalEmail != "" {
		s.PersonalEmail = other.PersonalEmail
	}
	if len(other.Compensation) > 0 {
		s.Compensation = other.Compensation
	}
	if other.PriorNotes != "" {
		s.PriorNotes = other.PriorNotes
	}
}
