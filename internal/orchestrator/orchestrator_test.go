package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shaiso/Caseflow/internal/agents"
	"github.com/shaiso/Caseflow/internal/config"
	"github.com/shaiso/Caseflow/internal/domain"
	"github.com/shaiso/Caseflow/internal/repo"
	"github.com/shaiso/Caseflow/internal/store"
)

func newTestStore() *store.CaseStore {
	return store.New(store.Config{
		Snapshots: repo.NewMemorySnapshots(),
		Logger:    slog.Default(),
	})
}

func newTestOrchestrator(s *store.CaseStore) *Orchestrator {
	policy := config.Default().Policy
	registry := agents.NewRegistry(
		agents.NewCompliance(policy),
		agents.NewLogistics(policy),
		agents.NewHRIS(repo.NewMemoryEmployees()),
		agents.NewWorkplace(repo.NewMemoryAssignments()),
		agents.NewIT(policy),
	)
	return New(s, registry, slog.Default())
}

func startDateIn(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}

func seedCase(t *testing.T, s *store.CaseStore, seed domain.Seed) *domain.Case {
	t.Helper()
	return s.InitOrGet(context.Background(), "APP-"+t.Name(), seed, "")
}

func TestRunCaseNotFound(t *testing.T) {
	o := newTestOrchestrator(newTestStore())

	_, err := o.Run(context.Background(), "CASE-MISSING", "")
	if !errors.Is(err, ErrCaseNotFound) {
		t.Fatalf("Run error = %v, want ErrCaseNotFound", err)
	}
}

func TestRunOnTrackPlan(t *testing.T) {
	s := newTestStore()
	o := newTestOrchestrator(s)
	ctx := context.Background()

	c := seedCase(t, s, domain.Seed{
		CandidateName: "Ayesha Khan",
		Role:          "Staff Nurse",
		WorkLocation:  "Dubai, AE",
		Nationality:   "PK",
		StartDate:     startDateIn(90),
	})

	res, err := o.Run(ctx, c.CaseID, "")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.Plan.OverallStatus != domain.OverallOnTrack {
		t.Errorf("overall status = %s, want ON_TRACK (conflicts: %+v)",
			res.Plan.OverallStatus, res.Plan.Conflicts)
	}
	if res.Plan.Decision.PrimaryRecommendation != "PROCEED" {
		t.Errorf("recommendation = %q, want PROCEED", res.Plan.Decision.PrimaryRecommendation)
	}
	if res.Plan.Day1Readiness.EmployeeID == "" {
		t.Error("plan has no employeeId in day-1 readiness")
	}
	if len(res.Plan.NextActions) != 4 {
		t.Errorf("next actions = %d, want 4", len(res.Plan.NextActions))
	}
	for _, name := range []string{"compliance", "logistics", "hris", "workplace", "it"} {
		if res.Plan.AgentSummaries[name] == "" {
			t.Errorf("missing agent summary for %s", name)
		}
	}

	updated, ok := s.Get(ctx, c.CaseID)
	if !ok {
		t.Fatal("case disappeared after run")
	}
	if updated.Status != domain.CaseStatusReadyDay1 {
		t.Errorf("case status = %s, want READY_DAY1", updated.Status)
	}
	if updated.RiskStatus != domain.RiskStatusGreen {
		t.Errorf("risk status = %s, want GREEN", updated.RiskStatus)
	}
	if updated.Output(OutputOrchestrator) == nil {
		t.Error("orchestrator output not persisted on case")
	}
}

func TestRunAtRiskVisaConflict(t *testing.T) {
	s := newTestStore()
	o := newTestOrchestrator(s)
	ctx := context.Background()

	// Sponsored-локация + slow-visa национальность дают 8 недель visa,
	// старт через 10 дней: конфликт по визе с remote-start рекомендацией.
	c := seedCase(t, s, domain.Seed{
		CandidateName: "Ayesha Khan",
		Role:          "Staff Nurse",
		WorkLocation:  "Dubai, AE",
		Nationality:   "PK",
		StartDate:     startDateIn(10),
	})

	res, err := o.Run(ctx, c.CaseID, "")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.Plan.OverallStatus != domain.OverallAtRisk {
		t.Fatalf("overall status = %s, want AT_RISK", res.Plan.OverallStatus)
	}
	if !hasConflictType(res.Plan.Conflicts, "VISA_BEFORE_START_RISK") {
		t.Errorf("conflicts %+v do not include VISA_BEFORE_START_RISK", res.Plan.Conflicts)
	}
	if res.Plan.Decision.PrimaryRecommendation != "REMOTE_START_TEMP" {
		t.Errorf("recommendation = %q, want REMOTE_START_TEMP",
			res.Plan.Decision.PrimaryRecommendation)
	}

	updated, _ := s.Get(ctx, c.CaseID)
	if updated.RiskStatus != domain.RiskStatusAtRisk {
		t.Errorf("risk status = %s, want AT_RISK", updated.RiskStatus)
	}
	if updated.Status == domain.CaseStatusReadyDay1 {
		t.Error("at-risk case must not be promoted to READY_DAY1")
	}
}

func TestRunIdempotentSecondPass(t *testing.T) {
	s := newTestStore()
	o := newTestOrchestrator(s)
	ctx := context.Background()

	c := seedCase(t, s, domain.Seed{
		CandidateName: "Omar Farouk",
		Role:          "Software Engineer",
		WorkLocation:  "Dubai, AE",
		Nationality:   "EG",
		StartDate:     startDateIn(90),
	})

	first, err := o.Run(ctx, c.CaseID, "")
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := o.Run(ctx, c.CaseID, "")
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if first.Plan.Day1Readiness.EmployeeID != second.Plan.Day1Readiness.EmployeeID {
		t.Errorf("employeeId changed between runs: %q vs %q",
			first.Plan.Day1Readiness.EmployeeID, second.Plan.Day1Readiness.EmployeeID)
	}

	skipped := map[string]bool{}
	for _, evt := range s.Recent(ctx, c.CaseID) {
		switch evt.Type {
		case domain.AgentSkipped("hris"):
			skipped["hris"] = true
		case domain.AgentSkipped("workplace"):
			skipped["workplace"] = true
		case domain.AgentSkipped("it"):
			skipped["it"] = true
		}
	}
	for _, name := range []string{"hris", "workplace", "it"} {
		if !skipped[name] {
			t.Errorf("second run did not skip %s", name)
		}
	}
}

func TestRunRejectsConcurrent(t *testing.T) {
	s := newTestStore()
	o := newTestOrchestrator(s)

	c := seedCase(t, s, domain.Seed{
		CandidateName: "Omar Farouk",
		StartDate:     startDateIn(90),
	})

	if err := o.acquire(c.CaseID); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	defer o.release(c.CaseID)

	_, err := o.Run(context.Background(), c.CaseID, "")
	if !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("Run error = %v, want ErrRunInProgress", err)
	}
}

// trackingAgent оборачивает реального агента и фиксирует пересечения
// прогонов и порядок запуска через общие счётчики.
type trackingAgent struct {
	inner   agents.Agent
	active  *atomic.Int32
	overlap *atomic.Bool
	mu      *sync.Mutex
	order   *[]string
}

func (a trackingAgent) Name() string { return a.inner.Name() }

func (a trackingAgent) Run(ctx context.Context, c *domain.Case, notes string) (*domain.StepResult, error) {
	if a.active.Add(1) > 1 {
		a.overlap.Store(true)
	}
	defer a.active.Add(-1)

	a.mu.Lock()
	*a.order = append(*a.order, a.inner.Name())
	a.mu.Unlock()

	// Даём планировщику шанс проявить перекрытие, если оно возможно.
	time.Sleep(5 * time.Millisecond)
	return a.inner.Run(ctx, c, notes)
}

func TestRunDependentStepsSequential(t *testing.T) {
	s := newTestStore()
	policy := config.Default().Policy

	var (
		active  atomic.Int32
		overlap atomic.Bool
		mu      sync.Mutex
		order   []string
	)
	track := func(inner agents.Agent) agents.Agent {
		return trackingAgent{inner: inner, active: &active, overlap: &overlap, mu: &mu, order: &order}
	}

	registry := agents.NewRegistry(
		agents.NewCompliance(policy),
		agents.NewLogistics(policy),
		track(agents.NewHRIS(repo.NewMemoryEmployees())),
		track(agents.NewWorkplace(repo.NewMemoryAssignments())),
		track(agents.NewIT(policy)),
	)
	o := New(s, registry, slog.Default())

	c := seedCase(t, s, domain.Seed{
		CandidateName: "Omar Farouk",
		Role:          "Software Engineer",
		WorkLocation:  "Dubai, AE",
		Nationality:   "EG",
		StartDate:     startDateIn(90),
	})

	if _, err := o.Run(context.Background(), c.CaseID, ""); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if overlap.Load() {
		t.Error("dependent steps ran concurrently, want strictly sequential execution")
	}

	want := []string{agents.NameHRIS, agents.NameWorkplace, agents.NameIT}
	mu.Lock()
	got := append([]string(nil), order...)
	mu.Unlock()
	if len(got) != len(want) {
		t.Fatalf("dependent steps ran = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("dependent step order = %v, want %v", got, want)
		}
	}
}

type failingAgent struct{ name string }

func (a failingAgent) Name() string { return a.name }

func (a failingAgent) Run(context.Context, *domain.Case, string) (*domain.StepResult, error) {
	return nil, errors.New("upstream unavailable")
}

func TestRunAbortsOnAgentFailure(t *testing.T) {
	s := newTestStore()
	policy := config.Default().Policy
	registry := agents.NewRegistry(
		agents.NewCompliance(policy),
		failingAgent{name: agents.NameLogistics},
		agents.NewHRIS(repo.NewMemoryEmployees()),
		agents.NewWorkplace(repo.NewMemoryAssignments()),
		agents.NewIT(policy),
	)
	o := New(s, registry, slog.Default())
	ctx := context.Background()

	c := seedCase(t, s, domain.Seed{
		CandidateName: "Omar Farouk",
		StartDate:     startDateIn(90),
	})

	if _, err := o.Run(ctx, c.CaseID, ""); err == nil {
		t.Fatal("Run succeeded despite agent failure")
	}

	updated, _ := s.Get(ctx, c.CaseID)
	if updated.Output(OutputOrchestrator) != nil {
		t.Error("failed run must not persist an orchestrator plan")
	}
}

func hasConflictType(conflicts []domain.Conflict, conflictType string) bool {
	for _, c := range conflicts {
		if c.Type == conflictType {
			return true
		}
	}
	return false
}
