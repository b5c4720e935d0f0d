package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Caseflow/internal/domain"
)

// EmployeeRepo — репозиторий записей сотрудников.
//
// Уникальность по case_id обеспечивает идемпотентность HRIS-агента:
// повторный прогон находит существующую запись вместо создания новой.
type EmployeeRepo struct {
	pool *pgxpool.Pool
}

// NewEmployeeRepo создаёт новый EmployeeRepo.
func NewEmployeeRepo(pool *pgxpool.Pool) *EmployeeRepo {
	return &EmployeeRepo{pool: pool}
}

// ByCase возвращает запись сотрудника для дела. (nil, nil) — записи нет.
func (r *EmployeeRepo) ByCase(ctx context.Context, caseID string) (*domain.EmployeeRecord, error) {
	query := `
		SELECT case_id, employee_id, full_name, email, department, created_at
		FROM employee_records
		WHERE case_id = $1
	`
	var rec domain.EmployeeRecord
	err := r.pool.QueryRow(ctx, query, caseID).Scan(
		&rec.CaseID,
		&rec.EmployeeID,
		&rec.FullName,
		&rec.Email,
		&rec.Department,
		&rec.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get employee record: %w", err)
	}
	return &rec, nil
}

// Create создаёт запись сотрудника.
func (r *EmployeeRepo) Create(ctx context.Context, rec *domain.EmployeeRecord) error {
	query := `
		INSERT INTO employee_records (case_id, employee_id, full_name, email, department, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		rec.CaseID,
		rec.EmployeeID,
		rec.FullName,
		rec.Email,
		rec.Department,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert employee record: %w", err)
	}
	return nil
}
