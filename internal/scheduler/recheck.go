package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/shaiso/Caseflow/internal/orchestrator"
	"github.com/shaiso/Caseflow/internal/store"
)

// cronParser — стандартный 5-польный cron (minute hour dom month dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronExpr проверяет валидность cron-выражения.
func ValidateCronExpr(expr string) error {
	if _, err := cronParser.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return nil
}

// Recheck — sweep переоценки дел с риском.
type Recheck struct {
	store  *store.CaseStore
	orch   *orchestrator.Orchestrator
	logger *slog.Logger
	cron   *cron.Cron
}

// NewRecheck создаёт sweep с заданным cron-расписанием.
// Расписание валидируется сразу, до первого тика.
func NewRecheck(s *store.CaseStore, o *orchestrator.Orchestrator, cronExpr string, logger *slog.Logger) (*Recheck, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Recheck{
		store:  s,
		orch:   o,
		logger: logger,
		cron:   cron.New(cron.WithParser(cronParser)),
	}

	if _, err := r.cron.AddFunc(cronExpr, func() {
		r.Sweep(context.Background())
	}); err != nil {
		return nil, fmt.Errorf("schedule recheck sweep: %w", err)
	}
	return r, nil
}

// Start запускает расписание.
func (r *Recheck) Start() {
	r.cron.Start()
	r.logger.Info("recheck sweep scheduled")
}

// Stop останавливает расписание и дожидается завершения текущего тика.
func (r *Recheck) Stop() {
	<-r.cron.Stop().Done()
	r.logger.Info("recheck sweep stopped")
}

// Sweep один раз переоценивает все дела с риском.
// Возвращает количество успешно перезапущенных прогонов.
func (r *Recheck) Sweep(ctx context.Context) int {
	ids := r.store.AtRisk()
	if len(ids) == 0 {
		return 0
	}

	r.logger.Info("recheck sweep started", "at_risk", len(ids))

	reran := 0
	for _, caseID := range ids {
		if ctx.Err() != nil {
			break
		}

		_, err := r.orch.Run(ctx, caseID, "scheduled risk recheck")
		switch {
		case err == nil:
			reran++
		case errors.Is(err, orchestrator.ErrRunInProgress):
			// Дело уже прогоняется — догоним следующим тиком.
		case errors.Is(err, orchestrator.ErrCaseNotFound):
			// Дело удалили между выборкой и прогоном.
		default:
			r.logger.Warn("recheck run failed", "case_id", caseID, "error", err)
		}
	}

	r.logger.Info("recheck sweep finished", "reran", reran)
	return reran
}
