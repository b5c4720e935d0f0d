package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/shaiso/Caseflow/internal/domain"
)

// HRIS создаёт запись сотрудника в кадровой системе.
//
// Идемпотентность — через EmployeeDirectory: одна запись на дело.
// Повторный прогон возвращает существующую запись (IDEMPOTENT_HIT),
// второго employee id не появляется.
type HRIS struct {
	directory EmployeeDirectory
}

// NewHRIS создаёт hris-агента.
func NewHRIS(directory EmployeeDirectory) *HRIS {
	return &HRIS{directory: directory}
}

// Name возвращает имя агента.
func (a *HRIS) Name() string { return NameHRIS }

// Run создаёт (или находит) запись сотрудника и возвращает employeeId.
func (a *HRIS) Run(ctx context.Context, c *domain.Case, _ string) (*domain.StepResult, error) {
	seed := c.Seed

	fullName := seed.CandidateName
	if fullName == "" {
		fullName = c.CandidateName
	}
	if fullName == "" {
		fullName = "Candidate"
	}

	email := a.pickEmail(c)
	department := seed.Department
	if department == "" {
		department = seed.Role
	}
	if department == "" {
		department = "General"
	}

	existing, err := a.directory.ByCase(ctx, c.CaseID)
	if err != nil {
		return nil, fmt.Errorf("lookup employee record: %w", err)
	}
	if existing != nil {
		return &domain.StepResult{
			Agent:   NameHRIS,
			Summary: fmt.Sprintf("HRIS already exists for case. Employee %s.", existing.EmployeeID),
			Risks:   []string{},
			Actions: []domain.Action{
				domain.NewAction("HRIS_IDEMPOTENT_HIT", map[string]any{"employeeId": existing.EmployeeID}),
			},
			Data: map[string]any{
				"employeeId":     existing.EmployeeID,
				"createdAt":      existing.CreatedAt.UTC().Format(time.RFC3339),
				"idempotencyKey": "case:" + c.CaseID,
				"fullName":       existing.FullName,
				"email":          existing.Email,
				"department":     existing.Department,
			},
		}, nil
	}

	now := time.Now().UTC()
	rec := &domain.EmployeeRecord{
		CaseID:     c.CaseID,
		EmployeeID: fmt.Sprintf("EMP-%s-%s", c.CaseID, now.Format("20060102150405")),
		FullName:   fullName,
		Email:      email,
		Department: department,
		CreatedAt:  now,
	}
	if err := a.directory.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create employee record: %w", err)
	}

	return &domain.StepResult{
		Agent:   NameHRIS,
		Summary: fmt.Sprintf("HRIS created employee record %s.", rec.EmployeeID),
		Risks:   []string{},
		Actions: []domain.Action{
			domain.NewAction("HRIS_CREATED", map[string]any{"employeeId": rec.EmployeeID}),
		},
		Data: map[string]any{
			"employeeId":     rec.EmployeeID,
			"createdAt":      rec.CreatedAt.Format(time.RFC3339),
			"idempotencyKey": "case:" + c.CaseID,
			"fullName":       rec.FullName,
			"email":          rec.Email,
			"department":     rec.Department,
			"startDate":      seed.StartDate,
		},
	}, nil
}

// pickEmail выбирает email: из шага identity, затем из seed.
func (a *HRIS) pickEmail(c *domain.Case) string {
	for _, stepKey := range []string{"identity_contact", "identity"} {
		if step, ok := c.Steps[stepKey]; ok {
			if v, ok := step["email"].(string); ok && v != "" {
				return v
			}
			if v, ok := step["personalEmail"].(string); ok && v != "" {
				return v
			}
		}
	}
	if c.Seed.PersonalEmail != "" {
		return c.Seed.PersonalEmail
	}
	return "unknown@example.com"
}
