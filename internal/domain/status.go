package domain

// CaseStatus — статус жизненного цикла дела.
//
// Жизненный цикл:
//
//	DRAFT → SUBMITTED → ONBOARDING_IN_PROGRESS → READY_DAY1
//	      ↘ NEGOTIATION_PENDING / ON_HOLD_HR (боковые состояния)
type CaseStatus string

const (
	// CaseStatusDraft — дело создано, кандидат ещё заполняет шаги.
	CaseStatusDraft CaseStatus = "DRAFT"

	// CaseStatusNegotiationPending — оффер на пересогласовании.
	CaseStatusNegotiationPending CaseStatus = "NEGOTIATION_PENDING"

	// CaseStatusOnHoldHR — дело приостановлено HR.
	CaseStatusOnHoldHR CaseStatus = "ON_HOLD_HR"

	// CaseStatusSubmitted — кандидат отправил все шаги.
	CaseStatusSubmitted CaseStatus = "SUBMITTED"

	// CaseStatusOnboardingInProgress — оркестратор запущен, агенты работают.
	CaseStatusOnboardingInProgress CaseStatus = "ONBOARDING_IN_PROGRESS"

	// CaseStatusReadyDay1 — дело готово к первому рабочему дню.
	CaseStatusReadyDay1 CaseStatus = "READY_DAY1"
)

// RiskStatus — оценка риска дела по итогам последнего прогона оркестратора.
//
// Отдельный от CaseStatus: риск отражает результат проверки конфликтов,
// а не позицию дела в жизненном цикле.
type RiskStatus string

const (
	// RiskStatusNone — оркестратор ещё не запускался.
	RiskStatusNone RiskStatus = "NONE"

	// RiskStatusGreen — конфликтов не обнаружено.
	RiskStatusGreen RiskStatus = "GREEN"

	// RiskStatusAtRisk — обнаружен хотя бы один конфликт.
	RiskStatusAtRisk RiskStatus = "AT_RISK"
)

// OverallStatus — итоговый статус плана.
type OverallStatus string

const (
	// OverallOnTrack — конфликтов нет, план выполним.
	OverallOnTrack OverallStatus = "ON_TRACK"

	// OverallAtRisk — есть конфликты, требуется решение.
	OverallAtRisk OverallStatus = "AT_RISK"
)
