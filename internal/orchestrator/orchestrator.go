package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shaiso/Caseflow/internal/agents"
	"github.com/shaiso/Caseflow/internal/conflict"
	"github.com/shaiso/Caseflow/internal/domain"
	"github.com/shaiso/Caseflow/internal/store"
	"github.com/shaiso/Caseflow/internal/telemetry"
)

// OutputOrchestrator — ключ, под которым итоговый план лежит в AgentOutputs.
const OutputOrchestrator = "orchestrator"

// RunResult — итог прогона оркестратора.
type RunResult struct {
	// Plan — агрегированный план (также сохраняется в деле).
	Plan domain.Plan

	// Outputs — выходы агентов на момент завершения прогона.
	Outputs map[string]*domain.StepResult
}

// Orchestrator прогоняет агентов по делу и собирает итоговый план.
type Orchestrator struct {
	store    *store.CaseStore
	registry *agents.Registry
	logger   *slog.Logger

	// now — источник времени для детектора конфликтов (подменяется в тестах).
	now func() time.Time

	// mu защищает running: по делу допустим один активный прогон.
	mu      sync.Mutex
	running map[string]struct{}
}

// New создаёт оркестратор поверх хранилища дел и реестра агентов.
func New(s *store.CaseStore, r *agents.Registry, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		store:    s,
		registry: r,
		logger:   logger,
		now:      time.Now,
		running:  make(map[string]struct{}),
	}
}

// Run выполняет полный прогон по делу.
//
// Порядок фаз фиксирован: [compliance ∥ logistics] → hris → workplace → it.
// Любая ошибка агента прерывает прогон; частично сохранённые выходы
// остаются в деле и переиспользуются следующим прогоном.
func (o *Orchestrator) Run(ctx context.Context, caseID, notes string) (*RunResult, error) {
	if err := o.acquire(caseID); err != nil {
		telemetry.RunsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}
	defer o.release(caseID)

	c, ok := o.store.Get(ctx, caseID)
	if !ok {
		telemetry.RunsTotal.WithLabelValues("not_found").Inc()
		return nil, fmt.Errorf("%w: %s", ErrCaseNotFound, caseID)
	}

	logger := telemetry.WithCaseID(o.logger, caseID)
	logger.Info("orchestrator run started")

	o.store.Emit(ctx, caseID, domain.EventOrchestratorStart, map[string]any{
		"notes": notes,
	})
	o.store.SetStatus(ctx, caseID, domain.CaseStatusOnboardingInProgress)

	runErr := o.runPhases(ctx, caseID, notes, logger)
	if runErr != nil {
		telemetry.RunsTotal.WithLabelValues("error").Inc()
		logger.Error("orchestrator run failed", "error", runErr)
		return nil, runErr
	}

	c, ok = o.store.Get(ctx, caseID)
	if !ok {
		// Дело удалили посреди прогона.
		telemetry.RunsTotal.WithLabelValues("not_found").Inc()
		return nil, fmt.Errorf("%w: %s", ErrCaseNotFound, caseID)
	}

	now := o.now()
	conflicts := conflict.Detect(c, c.AgentOutputs, now)
	for _, cf := range conflicts {
		o.store.Emit(ctx, caseID, domain.EventOrchestratorConflict, map[string]any{
			"type":     cf.Type,
			"severity": cf.Severity,
			"message":  cf.Message,
		})
	}
	decision := conflict.Decide(c, c.AgentOutputs, conflicts, now)

	plan := buildPlan(c, conflicts, decision)

	o.store.UpdateAgentOutput(ctx, caseID, OutputOrchestrator, &domain.StepResult{
		Agent:   OutputOrchestrator,
		Summary: planSummary(plan),
		Data:    map[string]any{"plan": plan},
	})

	risk := domain.RiskStatusGreen
	if len(conflicts) > 0 {
		risk = domain.RiskStatusAtRisk
	}
	o.store.SetRiskStatus(ctx, caseID, risk)
	if len(conflicts) == 0 {
		o.store.SetStatus(ctx, caseID, domain.CaseStatusReadyDay1)
	}

	o.store.Emit(ctx, caseID, domain.EventOrchestratorDone, map[string]any{
		"overallStatus": string(plan.OverallStatus),
		"conflicts":     len(conflicts),
		"decision":      plan.Decision.PrimaryRecommendation,
	})

	telemetry.RunsTotal.WithLabelValues("ok").Inc()
	logger.Info("orchestrator run finished",
		"overall_status", string(plan.OverallStatus),
		"conflicts", len(conflicts))

	final, _ := o.store.Get(ctx, caseID)
	outputs := c.AgentOutputs
	if final != nil {
		outputs = final.AgentOutputs
	}
	return &RunResult{Plan: plan, Outputs: outputs}, nil
}

// runPhases прогоняет агентов по фазам зависимостей.
func (o *Orchestrator) runPhases(ctx context.Context, caseID, notes string, logger *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return o.runAgent(gctx, caseID, agents.NameCompliance, notes, logger) })
	g.Go(func() error { return o.runAgent(gctx, caseID, agents.NameLogistics, notes, logger) })
	if err := g.Wait(); err != nil {
		return err
	}

	// Зависимые шаги идут строго последовательно: исполнители не обязаны
	// быть потокобезопасными друг относительно друга.
	for _, name := range []string{agents.NameHRIS, agents.NameWorkplace, agents.NameIT} {
		if err := o.runAgent(ctx, caseID, name, notes, logger); err != nil {
			return err
		}
	}
	return nil
}

// runAgent выполняет одного агента: skip-предикат, событие start/skipped,
// запуск, сохранение выхода, событие done.
func (o *Orchestrator) runAgent(ctx context.Context, caseID, name, notes string, logger *slog.Logger) error {
	c, ok := o.store.Get(ctx, caseID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrCaseNotFound, caseID)
	}

	if shouldSkip(name, c) {
		o.store.Emit(ctx, caseID, domain.AgentSkipped(name), map[string]any{
			"agent":  name,
			"reason": "output already materialized",
		})
		telemetry.WithAgent(logger, name).Info("agent skipped, output reused")
		return nil
	}

	a, err := o.registry.Get(name)
	if err != nil {
		return err
	}

	o.store.Emit(ctx, caseID, domain.AgentStart(name), map[string]any{"agent": name})

	res, err := a.Run(ctx, c, notes)
	if err != nil {
		return fmt.Errorf("agent %s: %w", name, err)
	}

	o.store.UpdateAgentOutput(ctx, caseID, name, res)
	o.store.Emit(ctx, caseID, domain.AgentDone(name), map[string]any{
		"agent":   name,
		"summary": res.Summary,
	})
	return nil
}

// shouldSkip — идемпотентные предикаты над сохранёнными выходами.
//
// Пропускаются только агенты с материализованными побочными эффектами:
// compliance и logistics детерминированы и дёшевы, их повторный прогон
// подхватывает изменения seed.
func shouldSkip(name string, c *domain.Case) bool {
	out := c.Output(name)
	switch name {
	case agents.NameHRIS:
		return out.DataString("employeeId") != ""
	case agents.NameWorkplace:
		return out.DataString("seating", "seatId") != "" &&
			out.DataString("equipment", "bundleName") != ""
	case agents.NameIT:
		return len(out.DataList("tickets")) > 0 && len(out.DataMap("deviceRequest")) > 0
	default:
		return false
	}
}

// buildPlan собирает итоговый план из выходов агентов и решения.
func buildPlan(c *domain.Case, conflicts []domain.Conflict, decision domain.Decision) domain.Plan {
	overall := domain.OverallOnTrack
	if len(conflicts) > 0 {
		overall = domain.OverallAtRisk
	}
	if conflicts == nil {
		conflicts = []domain.Conflict{}
	}

	summaries := make(map[string]string)
	for _, name := range []string{
		agents.NameCompliance, agents.NameLogistics,
		agents.NameHRIS, agents.NameWorkplace, agents.NameIT,
	} {
		if out := c.Output(name); out != nil {
			summaries[name] = out.Summary
		}
	}

	it := c.Output(agents.NameIT)
	workplace := c.Output(agents.NameWorkplace)

	readiness := domain.Readiness{
		EmployeeID:    c.Output(agents.NameHRIS).DataString("employeeId"),
		ITTickets:     it.DataList("tickets"),
		DeviceRequest: it.DataMap("deviceRequest"),
		Seating:       workplace.DataMap("seating"),
		Equipment:     workplace.DataMap("equipment"),
	}
	if readiness.ITTickets == nil {
		readiness.ITTickets = []any{}
	}

	return domain.Plan{
		CaseID:         c.CaseID,
		OverallStatus:  overall,
		Conflicts:      conflicts,
		Decision:       decision,
		NextActions:    nextActions(overall, decision),
		AgentSummaries: summaries,
		Day1Readiness:  readiness,
	}
}

// nextActions — следующие шаги по четырём сторонам процесса.
func nextActions(overall domain.OverallStatus, decision domain.Decision) []domain.NextAction {
	hrAction := "Confirm start date logistics with the hiring manager."
	candidateAction := "Complete any remaining onboarding steps."
	if overall == domain.OverallAtRisk {
		hrAction = fmt.Sprintf("Review conflicts and confirm remediation path (%s).",
			decision.PrimaryRecommendation)
		candidateAction = "Complete remaining onboarding steps and watch for document requests."
	}
	return []domain.NextAction{
		{Owner: "Candidate", Action: candidateAction},
		{Owner: "HR", Action: hrAction},
		{Owner: "Workplace", Action: "Prepare assigned seat and equipment bundle before day one."},
		{Owner: "IT", Action: "Track provisioning tickets and device delivery to completion."},
	}
}

func planSummary(plan domain.Plan) string {
	if plan.OverallStatus == domain.OverallOnTrack {
		return "Onboarding plan is on track; no conflicts detected."
	}
	return fmt.Sprintf("Onboarding plan at risk: %d conflict(s), recommendation %s.",
		len(plan.Conflicts), plan.Decision.PrimaryRecommendation)
}

// acquire берёт run-lock дела.
func (o *Orchestrator) acquire(caseID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, busy := o.running[caseID]; busy {
		return fmt.Errorf("%w: %s", ErrRunInProgress, caseID)
	}
	o.running[caseID] = struct{}{}
	return nil
}

func (o *Orchestrator) release(caseID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.running, caseID)
}
