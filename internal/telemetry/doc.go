// Package telemetry обеспечивает наблюдаемость системы.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики
//
// Метрики объявлены на уровне пакета, чтобы store и orchestrator
// могли инкрементировать их без проводки зависимостей;
// экспортируются на /metrics endpoint в cmd/caseflow-api.
package telemetry
