package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики событийного лога и персистентности.
//
// Fire-and-forget операции (эмиссия событий, write-behind снапшоты)
// по контракту не возвращают ошибок вызывающему — счётчики ниже
// единственный способ увидеть потери.
var (
	// EventsEmitted — всего событий, добавленных в событийные логи.
	EventsEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "caseflow_events_emitted_total",
		Help: "Total events appended to per-case event logs",
	})

	// EventsDropped — события, не доставленные медленным подписчикам.
	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "caseflow_events_dropped_total",
		Help: "Events dropped on full subscriber channels",
	})

	// SnapshotFailures — неудачные записи durable-снапшотов.
	SnapshotFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "caseflow_snapshot_failures_total",
		Help: "Failed durable snapshot writes (logged, not propagated)",
	})

	// RelayDropped — события, не принятые AMQP-релеем.
	RelayDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "caseflow_relay_dropped_total",
		Help: "Events dropped by the AMQP event relay",
	})

	// RunsTotal — прогоны оркестратора по результату.
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "caseflow_orchestrator_runs_total",
		Help: "Orchestrator runs by result",
	}, []string{"result"})
)
