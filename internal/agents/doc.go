// Package agents реализует исполнителей шагов онбординга.
//
// # Контракт
//
// Каждый агент — чистый с точки зрения оркестратора исполнитель:
//
//	Run(ctx, caseSnapshot, notes) → *domain.StepResult | error
//
// Агент получает снапшот дела (seed-данные, шаги кандидата, выходы
// других агентов) и возвращает результат; ошибкой считается только
// невосстановимый сбой — бизнес-риски возвращаются в StepResult.Risks.
//
// # Агенты
//
//   - compliance — требуемые документы, visa-таймлайн, риски
//   - logistics  — наличие устройств, сроки доставки, ETA рабочего места
//   - hris       — создание записи сотрудника (идемпотентно через Directory)
//   - workplace  — комплект оборудования и рабочее место (идемпотентно)
//   - it         — тикеты, группы доступа, запрос устройства, SLA-риски
//
// # Идемпотентность
//
// hris и workplace держат свои побочные эффекты за интерфейсами
// (EmployeeDirectory, AssignmentStore): повторный прогон находит
// существующую запись и возвращает её, не создавая дубликат.
//
// Пороговые значения правил приходят из config.Policy,
// а не зашиваются в код.
package agents
