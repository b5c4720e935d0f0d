package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/shaiso/Caseflow/internal/domain"
)

// Workplace подбирает комплект оборудования и назначает рабочее место.
//
// Идемпотентность — через AssignmentStore: одно назначение на дело.
type Workplace struct {
	assignments AssignmentStore
}

// NewWorkplace создаёт workplace-агента.
func NewWorkplace(assignments AssignmentStore) *Workplace {
	return &Workplace{assignments: assignments}
}

// Name возвращает имя агента.
func (a *Workplace) Name() string { return NameWorkplace }

// Run назначает оборудование и место либо возвращает существующее назначение.
func (a *Workplace) Run(ctx context.Context, c *domain.Case, _ string) (*domain.StepResult, error) {
	seed := c.Seed

	fullName := seed.CandidateName
	if fullName == "" {
		fullName = c.CandidateName
	}
	if fullName == "" {
		fullName = "Candidate"
	}

	workMode := a.pickWorkMode(c)

	existing, err := a.assignments.ByCase(ctx, c.CaseID)
	if err != nil {
		return nil, fmt.Errorf("lookup assignment: %w", err)
	}
	if existing != nil {
		return &domain.StepResult{
			Agent: NameWorkplace,
			Summary: fmt.Sprintf("Workplace already assigned for %s: Bundle '%s' + Seat '%s'.",
				fullName, existing.BundleName, existing.SeatID),
			Risks: []string{},
			Actions: []domain.Action{
				domain.NewAction("WORKPLACE_IDEMPOTENT_HIT", map[string]any{
					"seatId":      existing.SeatID,
					"bundleName":  existing.BundleName,
					"deviceModel": existing.DeviceModel,
				}),
			},
			Data: map[string]any{
				"fullName":  fullName,
				"workMode":  workMode,
				"equipment": existing.Equipment,
				"seating":   existing.Seating,
			},
		}, nil
	}

	equipment := equipmentBundle(seed.Role)
	seating := seatingPlan(seed.WorkLocation, seed.Role, workMode)

	var risks []string
	if seed.WorkLocation == "" {
		risks = append(risks, "Missing workLocation. Seating assignment may be incorrect.")
	}
	if seed.Role == "" {
		risks = append(risks, "Missing role. Equipment bundle may be generic.")
	}

	seatID, _ := seating["seatId"].(string)
	bundleName, _ := equipment["bundleName"].(string)
	deviceModel, _ := equipment["deviceModel"].(string)

	assignment := &domain.WorkplaceAssignment{
		CaseID:      c.CaseID,
		SeatID:      seatID,
		BundleName:  bundleName,
		DeviceModel: deviceModel,
		Equipment:   equipment,
		Seating:     seating,
		CreatedAt:   time.Now().UTC(),
	}
	if err := a.assignments.Save(ctx, assignment); err != nil {
		return nil, fmt.Errorf("save assignment: %w", err)
	}

	return &domain.StepResult{
		Agent: NameWorkplace,
		Summary: fmt.Sprintf("Workplace planned for %s: Bundle '%s' + Seat '%s'.",
			fullName, bundleName, seatID),
		Risks: risks,
		Actions: []domain.Action{
			domain.NewAction("WORKPLACE_EQUIPMENT_BUNDLE", map[string]any{"bundle": equipment}),
			domain.NewAction("WORKPLACE_SEATING_ASSIGNED", map[string]any{"seat": seating}),
		},
		Data: map[string]any{
			"fullName":  fullName,
			"workMode":  workMode,
			"equipment": equipment,
			"seating":   seating,
		},
	}, nil
}

// pickWorkMode читает режим работы из шагов кандидата (default: ONSITE).
func (a *Workplace) pickWorkMode(c *domain.Case) string {
	for _, stepKey := range []string{"work_preferences", "offer"} {
		if step, ok := c.Steps[stepKey]; ok {
			if v, ok := step["workMode"].(string); ok && v != "" {
				return v
			}
		}
	}
	return "ONSITE"
}
