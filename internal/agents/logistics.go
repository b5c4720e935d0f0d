package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/shaiso/Caseflow/internal/config"
	"github.com/shaiso/Caseflow/internal/domain"
)

// Logistics проверяет цепочку поставки: устройство, доставка, рабочее место.
type Logistics struct {
	policy config.Policy
}

// NewLogistics создаёт logistics-агента.
func NewLogistics(policy config.Policy) *Logistics {
	return &Logistics{policy: policy}
}

// Name возвращает имя агента.
func (a *Logistics) Name() string { return NameLogistics }

// Run оценивает склад, сроки доставки и ETA рабочего места.
//
// Если workplace-агент уже выбрал deviceModel, его решение — источник
// истины: складской сигнал переопределяется этой моделью.
func (a *Logistics) Run(_ context.Context, c *domain.Case, _ string) (*domain.StepResult, error) {
	seed := c.Seed

	delivery := deliveryDays(a.policy, seed.WorkLocation)
	seatingETA := seatingETADays(a.policy, seed.WorkLocation)
	stock := laptopStock(seed.Role)

	preferredModel := c.Output(NameWorkplace).DataString("equipment", "deviceModel")
	if preferredModel != "" {
		stock = map[string]any{
			"model": preferredModel,
		}
		// Детерминированное правило статуса: XPS считается дефицитным.
		if strings.Contains(strings.ToLower(preferredModel), "xps") {
			stock["status"] = "LOW_STOCK"
		} else {
			stock["status"] = "IN_STOCK"
		}
	}

	var risks []string
	if status, _ := stock["status"].(string); status == "LOW_STOCK" {
		risks = append(risks, "Selected device model is low stock; risk of delay or substitution.")
	}

	model, _ := stock["model"].(string)
	status, _ := stock["status"].(string)
	summary := fmt.Sprintf(
		"Logistics validated. Device: %s (%s), delivery %d days; seating ETA %d days.",
		model, status, delivery, seatingETA,
	)

	return &domain.StepResult{
		Agent:   NameLogistics,
		Summary: summary,
		Risks:   risks,
		Actions: []domain.Action{
			domain.NewAction("DEVICE_SUPPLY_CHECK", map[string]any{"laptop": stock, "deliveryDays": delivery}),
			domain.NewAction("FACILITIES_SEATING", map[string]any{"etaDays": seatingETA}),
		},
		Data: map[string]any{
			"laptop":         stock,
			"deliveryDays":   delivery,
			"seatingEtaDays": seatingETA,
		},
	}, nil
}
