package agents

import (
	"context"
	"fmt"

	"github.com/shaiso/Caseflow/internal/domain"
)

// Имена агентов. Под этими ключами результаты лежат в Case.AgentOutputs.
const (
	NameCompliance = "compliance"
	NameLogistics  = "logistics"
	NameHRIS       = "hris"
	NameWorkplace  = "workplace"
	NameIT         = "it"
)

// Agent — исполнитель одного шага онбординга.
//
// c — снапшот дела (агент его не мутирует; все изменения состояния
// идут через CaseStore со стороны оркестратора). notes — свободный
// текст оператора. Ошибка означает невосстановимый сбой прогона.
type Agent interface {
	Name() string
	Run(ctx context.Context, c *domain.Case, notes string) (*domain.StepResult, error)
}

// EmployeeDirectory — хранилище записей сотрудников для HRIS-агента.
// ByCase возвращает (nil, nil), если записи нет.
type EmployeeDirectory interface {
	ByCase(ctx context.Context, caseID string) (*domain.EmployeeRecord, error)
	Create(ctx context.Context, rec *domain.EmployeeRecord) error
}

// AssignmentStore — хранилище назначений рабочих мест для workplace-агента.
// ByCase возвращает (nil, nil), если назначения нет.
type AssignmentStore interface {
	ByCase(ctx context.Context, caseID string) (*domain.WorkplaceAssignment, error)
	Save(ctx context.Context, a *domain.WorkplaceAssignment) error
}

// Registry — реестр агентов по имени.
type Registry struct {
	agents map[string]Agent
}

// NewRegistry создаёт реестр из переданных агентов.
func NewRegistry(list ...Agent) *Registry {
	r := &Registry{agents: make(map[string]Agent)}
	for _, a := range list {
		r.Register(a)
	}
	return r
}

// Register добавляет агента в реестр.
func (r *Registry) Register(a Agent) {
	r.agents[a.Name()] = a
}

// Get возвращает агента по имени.
func (r *Registry) Get(name string) (Agent, error) {
	a, ok := r.agents[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAgent, name)
	}
	return a, nil
}
