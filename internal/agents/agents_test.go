package agents

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shaiso/Caseflow/internal/config"
	"github.com/shaiso/Caseflow/internal/domain"
	"github.com/shaiso/Caseflow/internal/repo"
)

var policy = config.DefaultPolicy()

func nurseCase(startDate string) *domain.Case {
	return domain.NewCase("CASE-TEST0001", "APP-1001", domain.Seed{
		CandidateName: "Ayesha Khan",
		Role:          "Staff Nurse",
		WorkLocation:  "Dubai, AE",
		Nationality:   "PK",
		StartDate:     startDate,
	})
}

func engineerCase() *domain.Case {
	return domain.NewCase("CASE-TEST0002", "APP-1002", domain.Seed{
		CandidateName: "Omar Farouk",
		Role:          "Software Engineer",
		WorkLocation:  "Cairo, EG",
		Nationality:   "EG",
		StartDate:     "2026-12-01",
	})
}

func TestRequiredDocsSponsoredClinical(t *testing.T) {
	docs := requiredDocs(policy, "PK", "Dubai, AE", "Staff Nurse")

	for _, key := range []string{"passport", "photo", "address_proof", "visa_page", "emirates_id", "license", "certificates"} {
		if _, ok := docs[key]; !ok {
			t.Errorf("missing required doc %q", key)
		}
	}

	// Не-sponsored локация без клинической роли — только базовые.
	base := requiredDocs(policy, "EG", "Cairo, EG", "Software Engineer")
	if len(base) != 3 {
		t.Errorf("base docs = %d entries, want 3: %v", len(base), base)
	}
}

func TestVisaTimelineWeeks(t *testing.T) {
	tests := []struct {
		nationality, location string
		want                  int
	}{
		{"PK", "Dubai, AE", policy.VisaWeeksSponsoredSlow},
		{"EG", "Dubai, AE", policy.VisaWeeksSponsored},
		{"PK", "Cairo, EG", policy.VisaWeeksDefault},
	}
	for _, tt := range tests {
		if got := visaTimelineWeeks(policy, tt.nationality, tt.location); got != tt.want {
			t.Errorf("visaTimelineWeeks(%s, %s) = %d, want %d", tt.nationality, tt.location, got, tt.want)
		}
	}
}

func TestSeatingPlanDeterministic(t *testing.T) {
	first := seatingPlan("Dubai, AE", "Staff Nurse", "ONSITE")
	second := seatingPlan("Dubai, AE", "Staff Nurse", "ONSITE")

	if first["seatId"] != second["seatId"] {
		t.Errorf("seat assignment not deterministic: %v vs %v", first["seatId"], second["seatId"])
	}

	remote := seatingPlan("Dubai, AE", "Staff Nurse", "REMOTE")
	if remote["seatId"] != "REMOTE-N/A" {
		t.Errorf("remote seatId = %v, want REMOTE-N/A", remote["seatId"])
	}
}

func TestComplianceRun(t *testing.T) {
	a := NewCompliance(policy)

	res, err := a.Run(context.Background(), nurseCase("2026-12-01"), "")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if got := res.DataInt("visaTimelineWeeks"); got != policy.VisaWeeksSponsoredSlow {
		t.Errorf("visaTimelineWeeks = %d, want %d", got, policy.VisaWeeksSponsoredSlow)
	}
	if len(res.Risks) == 0 {
		t.Error("slow-visa nationality in sponsored location produced no risks")
	}
	docs := res.DataMap("requiredDocs")
	if _, ok := docs["license"]; !ok {
		t.Error("clinical role missing license doc")
	}
}

func TestLogisticsPrefersWorkplaceModel(t *testing.T) {
	a := NewLogistics(policy)
	c := engineerCase()

	// Без выхода workplace — роль определяет склад (XPS → LOW_STOCK).
	res, err := a.Run(context.Background(), c, "")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	laptop := res.DataMap("laptop")
	if laptop["model"] != "Dell XPS 13" || laptop["status"] != "LOW_STOCK" {
		t.Errorf("laptop = %v, want Dell XPS 13 / LOW_STOCK", laptop)
	}
	if len(res.Risks) == 0 {
		t.Error("low stock produced no risk")
	}

	// Workplace уже выбрал модель: ответ logistics следует за ней.
	c.AgentOutputs[NameWorkplace] = &domain.StepResult{
		Agent: NameWorkplace,
		Data: map[string]any{
			"equipment": map[string]any{"deviceModel": "Dell Latitude 5440"},
		},
	}
	res, err = a.Run(context.Background(), c, "")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	laptop = res.DataMap("laptop")
	if laptop["model"] != "Dell Latitude 5440" || laptop["status"] != "IN_STOCK" {
		t.Errorf("laptop = %v, want Dell Latitude 5440 / IN_STOCK", laptop)
	}
}

func TestHRISIdempotent(t *testing.T) {
	directory := repo.NewMemoryEmployees()
	a := NewHRIS(directory)
	c := nurseCase("2026-12-01")
	ctx := context.Background()

	first, err := a.Run(ctx, c, "")
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	firstID := first.DataString("employeeId")
	if firstID == "" {
		t.Fatal("no employeeId in first run")
	}
	if !strings.HasPrefix(firstID, "EMP-"+c.CaseID) {
		t.Errorf("employeeId = %q, want EMP-%s-... prefix", firstID, c.CaseID)
	}

	second, err := a.Run(ctx, c, "")
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if got := second.DataString("employeeId"); got != firstID {
		t.Errorf("second run employeeId = %q, want %q", got, firstID)
	}
	if len(second.Actions) == 0 || second.Actions[0].Type() != "HRIS_IDEMPOTENT_HIT" {
		t.Errorf("second run action = %v, want HRIS_IDEMPOTENT_HIT", second.Actions)
	}
}

func TestHRISPicksStepEmail(t *testing.T) {
	a := NewHRIS(repo.NewMemoryEmployees())
	c := nurseCase("2026-12-01")
	c.Seed.PersonalEmail = "seed@example.com"
	c.Steps["identity_contact"] = map[string]any{"email": "step@example.com"}

	res, err := a.Run(context.Background(), c, "")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := res.DataString("email"); got != "step@example.com" {
		t.Errorf("email = %q, want step payload to win over seed", got)
	}
}

func TestWorkplaceIdempotent(t *testing.T) {
	assignments := repo.NewMemoryAssignments()
	a := NewWorkplace(assignments)
	c := engineerCase()
	ctx := context.Background()

	first, err := a.Run(ctx, c, "")
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	firstSeat := first.DataString("seating", "seatId")
	if firstSeat == "" {
		t.Fatal("no seatId in first run")
	}
	if got := first.DataString("equipment", "bundleName"); got != "Power User (Dev/Data)" {
		t.Errorf("bundleName = %q, want Power User (Dev/Data)", got)
	}

	second, err := a.Run(ctx, c, "")
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if got := second.DataString("seating", "seatId"); got != firstSeat {
		t.Errorf("second run seatId = %q, want %q", got, firstSeat)
	}
	if len(second.Actions) == 0 || second.Actions[0].Type() != "WORKPLACE_IDEMPOTENT_HIT" {
		t.Errorf("second run action = %v, want WORKPLACE_IDEMPOTENT_HIT", second.Actions)
	}
}

func TestITBlockedWithoutHRIS(t *testing.T) {
	a := NewIT(policy)

	res, err := a.Run(context.Background(), nurseCase("2026-12-01"), "")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if blocked, _ := res.DataField("blocked").(bool); !blocked {
		t.Error("IT not blocked without HRIS employeeId")
	}
	if len(res.Actions) == 0 || res.Actions[0].Type() != "BLOCKED" {
		t.Errorf("action = %v, want BLOCKED", res.Actions)
	}
}

func TestITSLARisks(t *testing.T) {
	a := NewIT(policy)
	a.now = func() time.Time {
		return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	}

	// Cairo (доставка 7 дней), старт через 3 дня: доставка после старта.
	c := engineerCase()
	c.Seed.StartDate = "2026-03-04"
	c.AgentOutputs[NameHRIS] = &domain.StepResult{
		Agent: NameHRIS,
		Data:  map[string]any{"employeeId": "EMP-TEST-1"},
	}

	res, err := a.Run(context.Background(), c, "")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	slaRisks := res.DataList("slaRisks")
	if len(slaRisks) != 1 {
		t.Fatalf("slaRisks = %d entries, want 1: %v", len(slaRisks), slaRisks)
	}
	risk, _ := slaRisks[0].(map[string]any)
	if risk["code"] != "DEVICE_AFTER_START" {
		t.Errorf("sla risk code = %v, want DEVICE_AFTER_START", risk["code"])
	}

	if got := res.DataString("deviceRequest", "employeeId"); got != "EMP-TEST-1" {
		t.Errorf("deviceRequest employeeId = %q, want EMP-TEST-1", got)
	}
	if tickets := res.DataList("tickets"); len(tickets) != 4 {
		t.Errorf("tickets = %d, want 4", len(tickets))
	}
}

func TestITTightSLA(t *testing.T) {
	a := NewIT(policy)
	a.now = func() time.Time {
		return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	}

	// Cairo (доставка 7 дней), старт через 7 дней: впритык, но успевает.
	c := engineerCase()
	c.Seed.StartDate = "2026-03-08"
	c.AgentOutputs[NameHRIS] = &domain.StepResult{
		Agent: NameHRIS,
		Data:  map[string]any{"employeeId": "EMP-TEST-2"},
	}

	res, err := a.Run(context.Background(), c, "")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	slaRisks := res.DataList("slaRisks")
	if len(slaRisks) != 1 {
		t.Fatalf("slaRisks = %d entries, want 1: %v", len(slaRisks), slaRisks)
	}
	risk, _ := slaRisks[0].(map[string]any)
	if risk["code"] != "DEVICE_TIGHT_SLA" {
		t.Errorf("sla risk code = %v, want DEVICE_TIGHT_SLA", risk["code"])
	}
}

func TestRegistryUnknownAgent(t *testing.T) {
	r := NewRegistry(NewCompliance(policy))

	if _, err := r.Get(NameCompliance); err != nil {
		t.Errorf("known agent lookup failed: %v", err)
	}
	if _, err := r.Get("payroll"); err == nil {
		t.Error("unknown agent lookup succeeded")
	}
}
