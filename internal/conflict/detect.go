package conflict

import (
	"fmt"
	"time"

	"github.com/shaiso/Caseflow/internal/domain"
)

// Типы конфликтов.
const (
	// TypeVisaBeforeStart — visa-таймлайн длиннее, чем время до даты старта.
	TypeVisaBeforeStart = "VISA_BEFORE_START_RISK"

	// TypeDeviceAfterStart — доставка устройства позже даты старта.
	TypeDeviceAfterStart = "DEVICE_AFTER_START_RISK"

	// TypeGenericSLA — SLA-риск из выхода агента без собственного кода.
	TypeGenericSLA = "IT_SLA_RISK"
)

// Серьёзность date-based конфликтов.
const (
	severityVisa    = 9
	severityDevice  = 8
	severityDefault = 5
)

// Detect возвращает упорядоченный список конфликтов для дела.
//
// outputs — агрегированные выходы агентов (имя агента → StepResult).
// now — момент отсчёта для вычисления времени до даты старта.
// Порядок стабилен: visa → delivery → SLA-проброс в порядке списка.
func Detect(c *domain.Case, outputs map[string]*domain.StepResult, now time.Time) []domain.Conflict {
	var conflicts []domain.Conflict

	visaWeeks := outputs["compliance"].DataInt("visaTimelineWeeks")
	deliveryDays := outputs["logistics"].DataInt("deliveryDays")

	if daysToStart, ok := domain.DaysUntil(c.Seed.StartDate, now); ok {
		visaDays := visaWeeks * 7
		if visaDays > daysToStart {
			conflicts = append(conflicts, domain.Conflict{
				Type:     TypeVisaBeforeStart,
				Severity: severityVisa,
				Message: fmt.Sprintf("Visa timeline (%d weeks) exceeds time until start date (%d days).",
					visaWeeks, daysToStart),
				SuggestedResolution: "Adjust start date, expedite visa, or convert to remote start (policy permitting).",
			})
		}

		if deliveryDays > daysToStart {
			conflicts = append(conflicts, domain.Conflict{
				Type:     TypeDeviceAfterStart,
				Severity: severityDevice,
				Message: fmt.Sprintf("Device delivery (%d days) exceeds time until start date (%d days).",
					deliveryDays, daysToStart),
				SuggestedResolution: "Expedite delivery, issue loaner device, or delay start date.",
			})
		}
	}

	// SLA-риски из выходов агентов пробрасываются без изменений содержимого.
	for _, raw := range outputs["it"].DataList("slaRisks") {
		risk, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		conflicts = append(conflicts, passthrough(risk))
	}

	return conflicts
}

// passthrough конвертирует SLA-риск агента в Conflict, сохраняя содержимое.
func passthrough(risk map[string]any) domain.Conflict {
	conflictType, _ := risk["code"].(string)
	if conflictType == "" {
		conflictType = TypeGenericSLA
	}

	severity := severityDefault
	switch v := risk["severity"].(type) {
	case int:
		severity = v
	case float64:
		severity = int(v)
	}

	message, _ := risk["message"].(string)
	if message == "" {
		message = "IT SLA risk detected."
	}

	resolution, _ := risk["mitigation"].(string)
	if resolution == "" {
		resolution = "Review IT provisioning plan and mitigate."
	}

	return domain.Conflict{
		Type:                conflictType,
		Severity:            severity,
		Message:             message,
		SuggestedResolution: resolution,
	}
}
