package agents

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/shaiso/Caseflow/internal/config"
)

// Детерминированные rule-таблицы агентов. Это справочные lookup'ы,
// пороговые значения приходят из config.Policy.

// requiredDocs возвращает список требуемых документов с пояснениями.
func requiredDocs(policy config.Policy, nationality, workLocation, role string) map[string]string {
	docs := map[string]string{
		"passport":      "Required for all hires",
		"photo":         "Required for badge/ID",
		"address_proof": "Required for payroll/bank KYC",
	}

	if policy.IsSponsoredLocation(workLocation) {
		docs["visa_page"] = "Required (residency/work permit processing)"
		docs["emirates_id"] = "Required post-issuance (can be pending for Day 1)"
	}

	r := strings.ToLower(role)
	if strings.Contains(r, "nurse") || strings.Contains(r, "doctor") {
		docs["license"] = "Required for clinical roles (DHA/MOH/DOH as applicable)"
		docs["certificates"] = "Required (clinical qualification verification)"
	}

	return docs
}

// visaTimelineWeeks оценивает срок получения визы в неделях.
func visaTimelineWeeks(policy config.Policy, nationality, workLocation string) int {
	if policy.IsSponsoredLocation(workLocation) {
		if policy.IsSlowVisaNationality(nationality) {
			return policy.VisaWeeksSponsoredSlow
		}
		return policy.VisaWeeksSponsored
	}
	return policy.VisaWeeksDefault
}

// complianceRiskFlags возвращает список рисков и краткое резюме.
func complianceRiskFlags(policy config.Policy, nationality, workLocation, role string) ([]string, string) {
	var risks []string
	weeks := visaTimelineWeeks(policy, nationality, workLocation)
	if weeks >= policy.VisaWeeksSponsoredSlow {
		risks = append(risks, fmt.Sprintf("Visa processing likely >= %d weeks; start date may be at risk.", weeks))
	}
	if strings.Contains(strings.ToLower(role), "intern") && policy.IsSponsoredLocation(workLocation) {
		risks = append(risks, "Intern visas may have additional constraints; verify eligibility.")
	}
	summary := fmt.Sprintf("Estimated visa timeline: %d weeks.", weeks)
	return risks, summary
}

// laptopStock возвращает базовый сигнал по складу устройств для роли.
func laptopStock(role string) map[string]any {
	r := strings.ToLower(role)
	switch {
	case strings.Contains(r, "engineer") || strings.Contains(r, "developer"):
		return map[string]any{"model": "Dell XPS 13", "status": "LOW_STOCK"}
	case strings.Contains(r, "designer"):
		return map[string]any{"model": "MacBook Pro 14", "status": "AVAILABLE"}
	default:
		return map[string]any{"model": "Standard ThinkPad", "status": "AVAILABLE"}
	}
}

// deliveryDays возвращает срок доставки устройства для локации.
func deliveryDays(policy config.Policy, workLocation string) int {
	if policy.IsSponsoredLocation(workLocation) {
		return policy.DeliveryDaysLocal
	}
	return policy.DeliveryDaysDefault
}

// seatingETADays возвращает срок подготовки рабочего места для локации.
func seatingETADays(policy config.Policy, workLocation string) int {
	if policy.IsSponsoredLocation(workLocation) {
		return policy.SeatingETALocal
	}
	return policy.SeatingETADefault
}

// equipmentBundle подбирает комплект оборудования по роли.
// Включает конкретный deviceModel, чтобы logistics и IT сходились на модели.
func equipmentBundle(role string) map[string]any {
	r := strings.ToLower(role)

	for _, k := range []string{"developer", "engineer", "data", "ai", "ml"} {
		if strings.Contains(r, k) {
			return map[string]any{
				"bundleName":  "Power User (Dev/Data)",
				"deviceModel": "Dell Latitude 5440",
				"monitor":     "27-inch monitor",
				"accessories": []any{"Dock", "Keyboard", "Mouse", "Headset"},
			}
		}
	}

	for _, k := range []string{"manager", "director", "lead", "head"} {
		if strings.Contains(r, k) {
			return map[string]any{
				"bundleName":  "Leader Bundle",
				"deviceModel": "Dell Latitude 7440",
				"monitor":     "34-inch ultrawide",
				"accessories": []any{"Dock", "Keyboard", "Mouse", "Noise-cancel headset"},
			}
		}
	}

	return map[string]any{
		"bundleName":  "Standard Bundle",
		"deviceModel": "Dell Latitude 5440",
		"monitor":     "24-inch monitor",
		"accessories": []any{"Dock", "Keyboard", "Mouse"},
	}
}

// seatingPlan назначает рабочее место. Для remote-режимов место не выделяется;
// иначе seat id выводится детерминированно из локации и роли.
func seatingPlan(workLocation, role, workMode string) map[string]any {
	loc := strings.ToUpper(strings.TrimSpace(workLocation))
	if loc == "" {
		loc = "HQ"
	}
	mode := strings.ToUpper(strings.TrimSpace(workMode))
	if mode == "" {
		mode = "ONSITE"
	}

	if mode == "REMOTE" || mode == "HYBRID_REMOTE" {
		return map[string]any{
			"seatId":   "REMOTE-N/A",
			"building": nil,
			"floor":    nil,
			"zone":     "Remote",
			"notes":    "Remote work mode; no permanent seat allocated.",
		}
	}

	h := fnv.New32a()
	h.Write([]byte(loc + ":" + role))
	sum := h.Sum32()

	floor := 2 + int(sum%5)            // этажи 2..6
	zone := string(rune('A' + sum%4))  // зоны A..D
	desk := 10 + int((sum>>8)%90)      // столы 10..99

	return map[string]any{
		"seatId":   fmt.Sprintf("%s-%d%s-%d", loc, floor, zone, desk),
		"building": loc,
		"floor":    floor,
		"zone":     zone,
		"notes":    "Auto-assigned seat; verify against facilities inventory.",
	}
}

// accessGroupsByRole возвращает группы доступа для роли.
func accessGroupsByRole(role string) []any {
	groups := []any{"all-staff", "email", "vpn"}
	r := strings.ToLower(role)
	switch {
	case strings.Contains(r, "engineer") || strings.Contains(r, "developer"):
		groups = append(groups, "engineering", "source-control", "ci")
	case strings.Contains(r, "designer"):
		groups = append(groups, "design", "asset-library")
	case strings.Contains(r, "manager") || strings.Contains(r, "director") || strings.Contains(r, "head"):
		groups = append(groups, "management", "reporting")
	}
	return groups
}

// ticketTemplates возвращает стандартный набор IT-тикетов онбординга.
func ticketTemplates() []any {
	return []any{
		map[string]any{"type": "ACCOUNT_CREATE", "system": "SSO", "sla": "2d"},
		map[string]any{"type": "MAILBOX_CREATE", "system": "Mail", "sla": "1d"},
		map[string]any{"type": "DEVICE_PREP", "system": "Endpoint", "sla": "5d"},
		map[string]any{"type": "ACCESS_GRANT", "system": "IAM", "sla": "2d"},
	}
}
