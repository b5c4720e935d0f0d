package domain

import "encoding/json"

// StepResult — результат работы одного агента.
//
// Data — schema-less словарь: его форма принадлежит агенту.
// Потребители (оркестратор, детектор конфликтов) читают Data
// через типизированные аксессоры ниже, не пытаясь статически
// описать объединение всех возможных форм.
type StepResult struct {
	// Agent — имя агента, породившего результат.
	Agent string `json:"agent"`

	// Summary — человекочитаемое резюме.
	Summary string `json:"summary"`

	// Risks — список рисков в свободной форме.
	Risks []string `json:"risks"`

	// Actions — типизированные записи о действиях агента.
	Actions []Action `json:"actions"`

	// Data — структурированный JSON-совместимый payload.
	Data map[string]any `json:"data"`
}

// Clone возвращает глубокую копию результата.
func (r *StepResult) Clone() *StepResult {
	if r == nil {
		return nil
	}
	blob, err := json.Marshal(r)
	if err != nil {
		panic("domain: step result not serializable: " + err.Error())
	}
	var out StepResult
	if err := json.Unmarshal(blob, &out); err != nil {
		panic("domain: step result not round-trippable: " + err.Error())
	}
	return &out
}

// DataString возвращает строковое поле Data по пути ключей.
func (r *StepResult) DataString(path ...string) string {
	v, _ := r.DataField(path...).(string)
	return v
}

// DataInt возвращает числовое поле Data по пути ключей.
// После JSON round-trip числа приходят как float64 — учитываем это.
func (r *StepResult) DataInt(path ...string) int {
	switch v := r.DataField(path...).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0
		}
		return int(n)
	default:
		return 0
	}
}

// DataMap возвращает вложенный словарь Data по пути ключей.
func (r *StepResult) DataMap(path ...string) map[string]any {
	v, _ := r.DataField(path...).(map[string]any)
	return v
}

// DataList возвращает список Data по пути ключей.
func (r *StepResult) DataList(path ...string) []any {
	v, _ := r.DataField(path...).([]any)
	return v
}

// DataField возвращает произвольное поле Data по пути ключей.
// Возвращает nil, если путь не существует или результат nil.
func (r *StepResult) DataField(path ...string) any {
	if r == nil || r.Data == nil || len(path) == 0 {
		return nil
	}
	var cur any = r.Data
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = m[key]
		if !ok {
			return nil
		}
	}
	return cur
}

// Action — типизированная запись о действии агента.
//
// Дискриминант — поле "type"; остальные поля зависят от типа.
type Action map[string]any

// NewAction создаёт Action с заданным типом и полями.
func NewAction(actionType string, fields map[string]any) Action {
	a := Action{"type": actionType}
	for k, v := range fields {
		a[k] = v
	}
	return a
}

// Type возвращает дискриминант действия ("" если отсутствует).
func (a Action) Type() string {
	t, _ := a["type"].(string)
	return t
}
