package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/shaiso/Caseflow/internal/config"
	"github.com/shaiso/Caseflow/internal/domain"
)

// IT готовит провижининг: тикеты, группы доступа, запрос устройства.
//
// Зависит от HRIS (нужен employeeId) и учитывает решение workplace
// по модели устройства. SLA-риски (доставка позже или впритык к дате
// старта) кладутся в Data["slaRisks"] — детектор конфликтов
// пробрасывает их как есть.
type IT struct {
	policy config.Policy

	// now подменяется в тестах для детерминизма SLA-проверок.
	now func() time.Time
}

// NewIT создаёт it-агента.
func NewIT(policy config.Policy) *IT {
	return &IT{policy: policy, now: time.Now}
}

// Name возвращает имя агента.
func (a *IT) Name() string { return NameIT }

// Run формирует план IT-провижининга.
func (a *IT) Run(_ context.Context, c *domain.Case, _ string) (*domain.StepResult, error) {
	seed := c.Seed

	employeeID := c.Output(NameHRIS).DataString("employeeId")
	if employeeID == "" {
		return &domain.StepResult{
			Agent:   NameIT,
			Summary: "IT provisioning blocked: HRIS employeeId missing.",
			Risks:   []string{"Missing employeeId (HRIS not completed). IT provisioning cannot proceed."},
			Actions: []domain.Action{
				domain.NewAction("BLOCKED", map[string]any{"reason": "HRIS_NOT_READY"}),
			},
			Data: map[string]any{"blocked": true},
		}, nil
	}

	workplaceEquipment := c.Output(NameWorkplace).DataMap("equipment")
	workplaceModel, _ := workplaceEquipment["deviceModel"].(string)

	fallbackBundle := equipmentBundle(seed.Role)
	delivery := deliveryDays(a.policy, seed.WorkLocation)
	groups := accessGroupsByRole(seed.Role)
	tickets := ticketTemplates()

	deviceModel := workplaceModel
	if deviceModel == "" {
		deviceModel, _ = fallbackBundle["deviceModel"].(string)
	}
	accessories, _ := workplaceEquipment["accessories"].([]any)
	if len(accessories) == 0 {
		accessories, _ = fallbackBundle["accessories"].([]any)
	}

	var slaRisks []any
	var risks []string
	if daysToStart, ok := domain.DaysUntil(seed.StartDate, a.now()); ok {
		switch {
		case delivery > daysToStart:
			slaRisks = append(slaRisks, map[string]any{
				"code":       "DEVICE_AFTER_START",
				"severity":   8,
				"message":    fmt.Sprintf("Device delivery (%d days) is after start date (in %d days).", delivery, daysToStart),
				"mitigation": "Expedite shipment, issue loaner device, or adjust start date.",
			})
			risks = append(risks, "Device delivery lands after the start date.")
		case delivery >= max(0, daysToStart-a.policy.TightSLAWindowDays):
			slaRisks = append(slaRisks, map[string]any{
				"code":       "DEVICE_TIGHT_SLA",
				"severity":   5,
				"message":    fmt.Sprintf("Device delivery SLA is tight: %d days, start date in %d days.", delivery, daysToStart),
				"mitigation": "Track shipment daily; prepare loaner device as fallback.",
			})
			risks = append(risks, "Device delivery SLA is tight against the start date.")
		}
	}

	deviceRequest := map[string]any{
		"employeeId":   employeeID,
		"model":        deviceModel,
		"accessories":  accessories,
		"deliveryDays": delivery,
	}

	return &domain.StepResult{
		Agent: NameIT,
		Summary: fmt.Sprintf("IT provisioning planned for %s: %d tickets, device %s, delivery %d days.",
			employeeID, len(tickets), deviceModel, delivery),
		Risks: risks,
		Actions: []domain.Action{
			domain.NewAction("IT_TICKETS_CREATED", map[string]any{"tickets": tickets}),
			domain.NewAction("ACCESS_GROUPS_ASSIGNED", map[string]any{"groups": groups}),
			domain.NewAction("DEVICE_REQUESTED", map[string]any{"request": deviceRequest}),
		},
		Data: map[string]any{
			"employeeId":    employeeID,
			"tickets":       tickets,
			"accessGroups":  groups,
			"deviceRequest": deviceRequest,
			"slaRisks":      slaRisks,
		},
	}, nil
}
