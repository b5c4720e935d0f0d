// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go             — Handler с DI (хранилище, оркестратор, logger)
//   - routes.go              — регистрация маршрутов
//   - middleware.go          — middleware (logging, recovery)
//   - response.go            — унифицированные JSON-ответы и обработка ошибок
//   - dto.go                 — Data Transfer Objects (request/response)
//   - case_handler.go        — обработчики для /cases
//   - orchestrate_handler.go — запуск оркестратора
//   - events_handler.go      — событийный лог и SSE-стрим
//
// API предоставляет REST endpoints для дел онбординга: создание и шаги
// кандидата, запуск оркестратора, чтение планов и живой поток событий.
package api
