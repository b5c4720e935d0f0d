// Package domain содержит основные сущности системы Caseflow.
//
// Сущности:
//   - Case       — дело онбординга: seed-данные, шаги, результаты агентов
//   - StepResult — результат работы одного агента
//   - Event      — событие жизненного цикла дела (append-only лог)
//   - Plan       — итоговый план оркестратора с конфликтами и решением
//
// Пакет не зависит от инфраструктуры (БД, MQ, HTTP) —
// только данные и их инварианты.
package domain
