// Package repo реализует доступ к Postgres через pgx.
//
// Репозитории:
//   - SnapshotRepo   — durable-снапшоты дел (jsonb blob на case_id)
//   - EmployeeRepo   — записи сотрудников, созданные HRIS-агентом
//   - AssignmentRepo — назначения рабочих мест workplace-агента
//
// Для всех трёх есть in-memory реализации (memory.go) — они
// используются в тестах и при запуске без БД.
//
// Контракт снапшотов: Load возвращает (nil, nil) если снапшота нет —
// отсутствие снапшота не является ошибкой.
package repo
