package repo

import (
	"context"
	"sync"

	"github.com/shaiso/Caseflow/internal/domain"
)

// In-memory реализации репозиториев для тестов и запуска без БД.
// Контракты совпадают с pgx-вариантами, включая (nil, nil) при отсутствии.

// MemorySnapshots — снапшоты в памяти процесса.
type MemorySnapshots struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemorySnapshots создаёт пустое хранилище снапшотов.
func NewMemorySnapshots() *MemorySnapshots {
	return &MemorySnapshots{blobs: make(map[string][]byte)}
}

// Load возвращает снапшот дела. (nil, nil) — снапшота нет.
func (m *MemorySnapshots) Load(_ context.Context, caseID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	blob, ok := m.blobs[caseID]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, nil
}

// Save записывает снапшот дела.
func (m *MemorySnapshots) Save(_ context.Context, caseID string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(blob))
	copy(stored, blob)
	m.blobs[caseID] = stored
	return nil
}

// Delete удаляет снапшот дела.
func (m *MemorySnapshots) Delete(_ context.Context, caseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.blobs, caseID)
	return nil
}

// MemoryEmployees — записи сотрудников в памяти процесса.
type MemoryEmployees struct {
	mu      sync.RWMutex
	records map[string]*domain.EmployeeRecord
}

// NewMemoryEmployees создаёт пустое хранилище записей сотрудников.
func NewMemoryEmployees() *MemoryEmployees {
	return &MemoryEmployees{records: make(map[string]*domain.EmployeeRecord)}
}

// ByCase возвращает запись сотрудника для дела. (nil, nil) — записи нет.
func (m *MemoryEmployees) ByCase(_ context.Context, caseID string) (*domain.EmployeeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[caseID]
	if !ok {
		return nil, nil
	}
	out := *rec
	return &out, nil
}

// Create создаёт запись сотрудника.
func (m *MemoryEmployees) Create(_ context.Context, rec *domain.EmployeeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[rec.CaseID]; ok {
		return ErrAlreadyExists
	}
	stored := *rec
	m.records[rec.CaseID] = &stored
	return nil
}

// MemoryAssignments — назначения рабочих мест в памяти процесса.
type MemoryAssignments struct {
	mu          sync.RWMutex
	assignments map[string]*domain.WorkplaceAssignment
}

// NewMemoryAssignments создаёт пустое хранилище назначений.
func NewMemoryAssignments() *MemoryAssignments {
	return &MemoryAssignments{assignments: make(map[string]*domain.WorkplaceAssignment)}
}

// ByCase возвращает назначение для дела. (nil, nil) — назначения нет.
func (m *MemoryAssignments) ByCase(_ context.Context, caseID string) (*domain.WorkplaceAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.assignments[caseID]
	if !ok {
		return nil, nil
	}
	out := *a
	return &out, nil
}

// Save записывает назначение (upsert по case_id).
func (m *MemoryAssignments) Save(_ context.Context, a *domain.WorkplaceAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *a
	m.assignments[a.CaseID] = &stored
	return nil
}
