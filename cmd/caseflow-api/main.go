package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Caseflow/internal/agents"
	"github.com/shaiso/Caseflow/internal/api"
	"github.com/shaiso/Caseflow/internal/config"
	"github.com/shaiso/Caseflow/internal/mq"
	"github.com/shaiso/Caseflow/internal/orchestrator"
	"github.com/shaiso/Caseflow/internal/repo"
	"github.com/shaiso/Caseflow/internal/scheduler"
	"github.com/shaiso/Caseflow/internal/store"
	"github.com/shaiso/Caseflow/internal/telemetry"
)

var startTime = time.Now()

func main() {
	logger := telemetry.SetupLogger()
	logger.Info("starting caseflow-api")

	cfgPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "path", cfgPath, "error", err)
		os.Exit(1)
	}

	// Граница персистентности: Postgres или in-memory для локальной
	// разработки и тестов.
	var (
		snapshots   store.Snapshots
		employees   agents.EmployeeDirectory
		assignments agents.AssignmentStore
	)
	if cfg.DatabaseURL != "" {
		pool, err := repo.NewPool(context.Background(), cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		logger.Info("connected to database")

		snapshots = repo.NewSnapshotRepo(pool)
		employees = repo.NewEmployeeRepo(pool)
		assignments = repo.NewAssignmentRepo(pool)
	} else {
		logger.Info("no database configured, using in-memory persistence")
		snapshots = repo.NewMemorySnapshots()
		employees = repo.NewMemoryEmployees()
		assignments = repo.NewMemoryAssignments()
	}

	// Релей событий в RabbitMQ (опционально).
	var sink store.Sink
	if cfg.AMQPURL != "" {
		conn, err := mq.NewConnection(cfg.AMQPURL, logger)
		if err != nil {
			logger.Error("failed to connect to RabbitMQ", "error", err)
			os.Exit(1)
		}
		defer conn.Close()

		if err := mq.SetupTopology(context.Background(), conn); err != nil {
			logger.Error("failed to set up AMQP topology", "error", err)
			os.Exit(1)
		}
		go func() {
			for range conn.ReconnectNotify() {
				if err := mq.SetupTopology(context.Background(), conn); err != nil {
					logger.Warn("failed to re-declare AMQP topology", "error", err)
				}
			}
		}()

		relay := mq.NewRelay(mq.NewPublisher(conn, logger), logger)
		defer relay.Close()
		sink = relay
		logger.Info("event relay enabled")
	}

	caseStore := store.New(store.Config{
		Snapshots: snapshots,
		Sink:      sink,
		Logger:    logger,
	})

	registry := agents.NewRegistry(
		agents.NewCompliance(cfg.Policy),
		agents.NewLogistics(cfg.Policy),
		agents.NewHRIS(employees),
		agents.NewWorkplace(assignments),
		agents.NewIT(cfg.Policy),
	)
	orch := orchestrator.New(caseStore, registry, logger)

	// Периодическая переоценка дел с риском (опционально).
	if cfg.RecheckCron != "" {
		recheck, err := scheduler.NewRecheck(caseStore, orch, cfg.RecheckCron, logger)
		if err != nil {
			logger.Error("failed to schedule recheck sweep", "error", err)
			os.Exit(1)
		}
		recheck.Start()
		defer recheck.Stop()
	}

	handler := api.NewHandler(api.Config{
		Store:        caseStore,
		Orchestrator: orch,
		Logger:       logger,
	})

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(startTime))
	})
	mux.Handle("/metrics", promhttp.Handler())

	handler.RegisterRoutes(mux)

	server := &http.Server{
		Addr:    cfg.APIAddr,
		Handler: mux,
	}

	go func() {
		logger.Info("listening", "addr", cfg.APIAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("stopped")
}
