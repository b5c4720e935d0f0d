package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SnapshotRepo хранит durable-снапшоты дел: один jsonb blob на case_id.
//
// Запись — whole-state, last-writer-wins. Реализует интерфейс
// store.Snapshots: Load возвращает (nil, nil) при отсутствии снапшота.
type SnapshotRepo struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepo создаёт новый SnapshotRepo.
func NewSnapshotRepo(pool *pgxpool.Pool) *SnapshotRepo {
	return &SnapshotRepo{pool: pool}
}

// Load возвращает снапшот дела. (nil, nil) — снапшота нет.
func (r *SnapshotRepo) Load(ctx context.Context, caseID string) ([]byte, error) {
	query := `
		SELECT snapshot
		FROM case_snapshots
		WHERE case_id = $1
	`
	var blob []byte
	err := r.pool.QueryRow(ctx, query, caseID).Scan(&blob)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return blob, nil
}

// Save записывает снапшот дела (upsert, полная перезапись).
func (r *SnapshotRepo) Save(ctx context.Context, caseID string, blob []byte) error {
	query := `
		INSERT INTO case_snapshots (case_id, snapshot, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (case_id) DO UPDATE
		SET snapshot = EXCLUDED.snapshot, updated_at = EXCLUDED.updated_at
	`
	_, err := r.pool.Exec(ctx, query, caseID, blob, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Delete удаляет снапшот дела. Отсутствие записи не является ошибкой.
func (r *SnapshotRepo) Delete(ctx context.Context, caseID string) error {
	query := `DELETE FROM case_snapshots WHERE case_id = $1`
	if _, err := r.pool.Exec(ctx, query, caseID); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}
