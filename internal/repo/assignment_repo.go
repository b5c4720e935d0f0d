package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Caseflow/internal/domain"
)

// AssignmentRepo — репозиторий назначений рабочих мест.
//
// Одно назначение на дело; Save — upsert, чтобы повторный прогон
// workplace-агента был безопасен.
type AssignmentRepo struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepo создаёт новый AssignmentRepo.
func NewAssignmentRepo(pool *pgxpool.Pool) *AssignmentRepo {
	return &AssignmentRepo{pool: pool}
}

// ByCase возвращает назначение для дела. (nil, nil) — назначения нет.
func (r *AssignmentRepo) ByCase(ctx context.Context, caseID string) (*domain.WorkplaceAssignment, error) {
	query := `
		SELECT case_id, seat_id, bundle_name, device_model, equipment, seating, created_at
		FROM workplace_assignments
		WHERE case_id = $1
	`
	var a domain.WorkplaceAssignment
	var equipmentJSON, seatingJSON []byte
	err := r.pool.QueryRow(ctx, query, caseID).Scan(
		&a.CaseID,
		&a.SeatID,
		&a.BundleName,
		&a.DeviceModel,
		&equipmentJSON,
		&seatingJSON,
		&a.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}

	if equipmentJSON != nil {
		if err := json.Unmarshal(equipmentJSON, &a.Equipment); err != nil {
			return nil, fmt.Errorf("unmarshal equipment: %w", err)
		}
	}
	if seatingJSON != nil {
		if err := json.Unmarshal(seatingJSON, &a.Seating); err != nil {
			return nil, fmt.Errorf("unmarshal seating: %w", err)
		}
	}
	return &a, nil
}

// Save записывает назначение (upsert по case_id).
func (r *AssignmentRepo) Save(ctx context.Context, a *domain.WorkplaceAssignment) error {
	equipmentJSON, err := json.Marshal(a.Equipment)
	if err != nil {
		return fmt.Errorf("marshal equipment: %w", err)
	}
	seatingJSON, err := json.Marshal(a.Seating)
	if err != nil {
		return fmt.Errorf("marshal seating: %w", err)
	}

	query := `
		INSERT INTO workplace_assignments (case_id, seat_id, bundle_name, device_model, equipment, seating, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (case_id) DO UPDATE
		SET seat_id = EXCLUDED.seat_id,
		    bundle_name = EXCLUDED.bundle_name,
		    device_model = EXCLUDED.device_model,
		    equipment = EXCLUDED.equipment,
		    seating = EXCLUDED.seating
	`
	_, err = r.pool.Exec(ctx, query,
		a.CaseID,
		a.SeatID,
		a.BundleName,
		a.DeviceModel,
		equipmentJSON,
		seatingJSON,
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert assignment: %w", err)
	}
	return nil
}
