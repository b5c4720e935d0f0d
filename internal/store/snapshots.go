package store

import (
	"context"

	"github.com/shaiso/Caseflow/internal/domain"
)

// Snapshots — граница durable-персистентности: произвольный JSON blob
// на case_id, сохраняемый без потерь между рестартами.
//
// Реализации: repo.SnapshotRepo (Postgres), repo.MemorySnapshots (тесты,
// запуск без БД).
type Snapshots interface {
	// Load возвращает снапшот дела.
	// (nil, nil) — снапшота нет; это не ошибка.
	Load(ctx context.Context, caseID string) ([]byte, error)

	// Save записывает снапшот целиком (last-writer-wins).
	Save(ctx context.Context, caseID string, blob []byte) error

	// Delete удаляет снапшот. Отсутствие записи не является ошибкой.
	Delete(ctx context.Context, caseID string) error
}

// Sink — необязательный получатель всех событий store (например,
// AMQP-релей). Deliver обязан быть неблокирующим: он вызывается
// под per-case блокировкой на пути эмиссии.
type Sink interface {
	Deliver(caseID string, evt domain.Event)
}
