package conflict

import (
	"strings"
	"time"

	"github.com/shaiso/Caseflow/internal/domain"
)

// Рекомендации, которые может вынести детектор.
const (
	RecommendProceed     = "PROCEED"
	RecommendExpediteVisa = "EXPEDITE_VISA"
	RecommendRemoteStart  = "REMOTE_START_TEMP"
	RecommendLoanerDevice = "ISSUE_LOANER_DEVICE"
	RecommendReview       = "REVIEW_REQUIRED"

	OptionDelayStart     = "DELAY_START_DATE"
	OptionExpediteDevice = "EXPEDITE_DEVICE"
)

// Порог (в днях), при превышении которого visa-разрыв считается
// слишком большим для экспедирования и дело переводится на remote start.
const remoteStartGapDays = 7

// Decide выносит решение по списку конфликтов.
//
// Приоритет семейств: visa > device > прочее. Внутри visa-семейства
// рекомендация зависит от величины разрыва между visa-таймлайном и
// временем до даты старта.
func Decide(c *domain.Case, outputs map[string]*domain.StepResult, conflicts []domain.Conflict, now time.Time) domain.Decision {
	if len(conflicts) == 0 {
		return domain.Decision{
			PrimaryRecommendation: RecommendProceed,
			Options:               []string{},
			Impact:                "Day-1 readiness is achievable with current plan.",
			Rationale:             "No conflicts detected across compliance, logistics and IT.",
		}
	}

	if hasType(conflicts, TypeVisaBeforeStart) {
		primary := RecommendExpediteVisa
		rationale := "Visa timeline conflicts with start date; expedited processing can close the gap."

		visaDays := outputs["compliance"].DataInt("visaTimelineWeeks") * 7
		if daysToStart, ok := domain.DaysUntil(c.Seed.StartDate, now); ok {
			if visaDays-daysToStart >= remoteStartGapDays {
				primary = RecommendRemoteStart
				rationale = "Visa gap is too large to expedite; temporary remote start keeps day one on schedule."
			}
		}

		return domain.Decision{
			PrimaryRecommendation: primary,
			Options:               []string{OptionDelayStart, RecommendExpediteVisa, RecommendRemoteStart},
			Impact:                "Start date at risk until visa timeline is resolved.",
			Rationale:             rationale,
		}
	}

	if hasDeviceConflict(conflicts) {
		return domain.Decision{
			PrimaryRecommendation: RecommendLoanerDevice,
			Options:               []string{OptionExpediteDevice, RecommendLoanerDevice, OptionDelayStart},
			Impact:                "New hire may lack primary device on day one.",
			Rationale:             "Loaner pool covers day-one productivity while the ordered device is in transit.",
		}
	}

	return domain.Decision{
		PrimaryRecommendation: RecommendReview,
		Options:               []string{OptionDelayStart, RecommendExpediteVisa, RecommendRemoteStart},
		Impact:                "Detected risks require manual assessment.",
		Rationale:             "Conflicts fall outside automated remediation playbooks.",
	}
}

func hasType(conflicts []domain.Conflict, conflictType string) bool {
	for _, c := range conflicts {
		if c.Type == conflictType {
			return true
		}
	}
	return false
}

// hasDeviceConflict ловит и наш тип, и пробросы агентов вида DEVICE_*.
func hasDeviceConflict(conflicts []domain.Conflict) bool {
	for _, c := range conflicts {
		if c.Type == TypeDeviceAfterStart || strings.HasPrefix(c.Type, "DEVICE_") {
			return true
		}
	}
	return false
}
