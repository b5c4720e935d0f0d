package api

import (
	"log/slog"

	"github.com/shaiso/Caseflow/internal/orchestrator"
	"github.com/shaiso/Caseflow/internal/store"
)

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	store  *store.CaseStore
	orch   *orchestrator.Orchestrator
	logger *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Store        *store.CaseStore
	Orchestrator *orchestrator.Orchestrator
	Logger       *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:  cfg.Store,
		orch:   cfg.Orchestrator,
		logger: logger,
	}
}
