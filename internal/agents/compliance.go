package agents

import (
	"context"
	"fmt"

	"github.com/shaiso/Caseflow/internal/config"
	"github.com/shaiso/Caseflow/internal/domain"
)

// Compliance проверяет требования к документам и оценивает visa-таймлайн.
type Compliance struct {
	policy config.Policy
}

// NewCompliance создаёт compliance-агента.
func NewCompliance(policy config.Policy) *Compliance {
	return &Compliance{policy: policy}
}

// Name возвращает имя агента.
func (a *Compliance) Name() string { return NameCompliance }

// Run вычисляет требуемые документы, риски и оценку срока визы.
func (a *Compliance) Run(_ context.Context, c *domain.Case, _ string) (*domain.StepResult, error) {
	seed := c.Seed

	docs := requiredDocs(a.policy, seed.Nationality, seed.WorkLocation, seed.Role)
	risks, flagSummary := complianceRiskFlags(a.policy, seed.Nationality, seed.WorkLocation, seed.Role)
	weeks := visaTimelineWeeks(a.policy, seed.Nationality, seed.WorkLocation)

	docsAny := make(map[string]any, len(docs))
	for k, v := range docs {
		docsAny[k] = v
	}

	return &domain.StepResult{
		Agent:   NameCompliance,
		Summary: fmt.Sprintf("Compliance complete. %s", flagSummary),
		Risks:   risks,
		Actions: []domain.Action{
			domain.NewAction("REQUEST_DOCS", map[string]any{"docs": docsAny}),
			domain.NewAction("VISA_TIMELINE", map[string]any{"weeks": weeks}),
		},
		Data: map[string]any{
			"requiredDocs":      docsAny,
			"visaTimelineWeeks": weeks,
		},
	}, nil
}
