package domain

// Conflict — обнаруженная несовместимость расписания или ресурсов.
type Conflict struct {
	// Type — тип конфликта (например, VISA_BEFORE_START_RISK).
	Type string `json:"type"`

	// Severity — серьёзность от 1 до 10.
	Severity int `json:"severity"`

	// Message — человекочитаемое описание.
	Message string `json:"message"`

	// SuggestedResolution — предлагаемое действие.
	SuggestedResolution string `json:"suggestedResolution"`
}

// Decision — решение оркестратора по итогам проверки конфликтов.
type Decision struct {
	// PrimaryRecommendation — главная рекомендация (PROCEED, EXPEDITE_VISA, ...).
	PrimaryRecommendation string `json:"primaryRecommendation"`

	// Options — меню альтернатив для данного семейства конфликтов.
	Options []string `json:"options"`

	// Impact — описание влияния на готовность к первому дню.
	Impact string `json:"impact"`

	// Rationale — обоснование выбора рекомендации.
	Rationale string `json:"rationale"`
}

// NextAction — следующий шаг для конкретной стороны процесса.
type NextAction struct {
	Owner  string `json:"owner"`
	Action string `json:"action"`
}

// Readiness — сводка готовности к первому дню: ключевые идентификаторы
// и ресурсы, произведённые агентами.
type Readiness struct {
	EmployeeID    string           `json:"employeeId,omitempty"`
	ITTickets     []any            `json:"itTickets"`
	DeviceRequest map[string]any   `json:"deviceRequest"`
	Seating       map[string]any   `json:"seating"`
	Equipment     map[string]any   `json:"workplaceEquipment"`
}

// Plan — итоговый агрегированный план оркестратора.
type Plan struct {
	CaseID         string            `json:"caseId"`
	OverallStatus  OverallStatus     `json:"overallStatus"`
	Conflicts      []Conflict        `json:"conflicts"`
	Decision       Decision          `json:"decision"`
	NextActions    []NextAction      `json:"nextActions"`
	AgentSummaries map[string]string `json:"agentSummaries"`
	Day1Readiness  Readiness         `json:"day1Readiness"`
}
