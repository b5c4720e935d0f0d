package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Caseflow/internal/domain"
	"github.com/shaiso/Caseflow/internal/telemetry"
)

// Границы событийного лога.
const (
	// maxEventLog — ёмкость per-case лога; старые события вытесняются.
	maxEventLog = 200

	// recentWindow — окно catch-up для новых подписчиков.
	recentWindow = 50

	// defaultSubscriberBuffer — буфер канала подписчика.
	defaultSubscriberBuffer = 64
)

// CaseStore — реестр состояния дел: память + durable-снапшоты + pub/sub.
//
// Создаётся явно через New и внедряется зависимостью —
// никакого глобального синглтона.
type CaseStore struct {
	// mu защищает индексы entries и byAppNum.
	mu       sync.RWMutex
	entries  map[string]*caseEntry
	byAppNum map[string]string

	snapshots Snapshots
	sink      Sink
	logger    *slog.Logger
	bufSize   int

	// dropped — сколько событий потеряно на переполненных каналах подписчиков.
	dropped atomic.Int64
}

// caseEntry — одно дело со своим логом событий и подписчиками.
// Все поля защищены mu; лог и подписчики живут в entry и потому
// переезжают вместе с делом при промоушене id.
type caseEntry struct {
	mu     sync.Mutex
	c      *domain.Case
	events []domain.Event
	subs   []chan domain.Event
}

// Config — конфигурация CaseStore.
type Config struct {
	// Snapshots — граница персистентности (обязательно).
	Snapshots Snapshots

	// Sink — необязательный получатель всех событий (AMQP-релей).
	Sink Sink

	// SubscriberBuffer — размер буфера канала подписчика (default: 64).
	SubscriberBuffer int

	// Logger — логгер (default: slog.Default()).
	Logger *slog.Logger
}

// New создаёт новый CaseStore.
func New(cfg Config) *CaseStore {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	bufSize := cfg.SubscriberBuffer
	if bufSize <= 0 {
		bufSize = defaultSubscriberBuffer
	}
	return &CaseStore{
		entries:   make(map[string]*caseEntry),
		byAppNum:  make(map[string]string),
		snapshots: cfg.Snapshots,
		sink:      cfg.Sink,
		logger:    logger,
		bufSize:   bufSize,
	}
}

// InitOrGet — идемпотентное создание или получение дела по номеру заявки.
//
// Если дело уже существует:
//   - непустой seed домерживается (не затирая прежние выходы шагов);
//   - если передан стабильный caseID, отличный от текущего временного,
//     выполняется атомарный промоушен: дело, индекс по номеру заявки,
//     лог событий, подписчики и ключ снапшота переезжают одним действием.
//
// Если дела нет — создаётся новое (caseID или сгенерированный CASE-XXXXXXXX),
// эмитится system.case_created, пишется снапшот.
func (s *CaseStore) InitOrGet(ctx context.Context, applicationNumber string, seed domain.Seed, caseID string) *domain.Case {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cid, ok := s.byAppNum[applicationNumber]; ok {
		e, exists := s.entries[cid]
		if !exists {
			// Протухший индекс — пересоздаём ниже.
			delete(s.byAppNum, applicationNumber)
		} else {
			if caseID != "" && caseID != cid {
				e = s.promoteLocked(ctx, e, cid, caseID, applicationNumber)
			}
			e.mu.Lock()
			if !seed.IsZero() {
				e.c.Seed.Merge(seed)
				if seed.CandidateName != "" {
					e.c.CandidateName = seed.CandidateName
				}
				e.c.Touch()
				s.persistLocked(ctx, e)
			}
			out := e.c.Clone()
			e.mu.Unlock()
			return out
		}
	}

	cid := caseID
	if cid == "" {
		cid = "CASE-" + strings.ToUpper(uuid.New().String()[:8])
	}

	e := &caseEntry{c: domain.NewCase(cid, applicationNumber, seed)}
	s.entries[cid] = e
	s.byAppNum[applicationNumber] = cid

	e.mu.Lock()
	defer e.mu.Unlock()
	s.emitLocked(e, domain.EventCaseCreated, map[string]any{
		"caseId":            cid,
		"applicationNumber": applicationNumber,
	})
	s.persistLocked(ctx, e)
	return e.c.Clone()
}

// promoteLocked переносит дело с временного id на стабильный.
// Вызывается под s.mu; двигает entry, индекс заявки и ключ снапшота.
func (s *CaseStore) promoteLocked(ctx context.Context, e *caseEntry, oldID, newID, applicationNumber string) *caseEntry {
	if other, ok := s.entries[newID]; ok && other != e {
		// Дело под стабильным id уже есть — оно и становится истиной.
		s.byAppNum[applicationNumber] = newID
		return other
	}

	s.entries[newID] = e
	delete(s.entries, oldID)
	s.byAppNum[applicationNumber] = newID

	e.mu.Lock()
	e.c.CaseID = newID
	e.c.Touch()
	s.persistLocked(ctx, e)
	e.mu.Unlock()

	// Старый ключ снапшота больше не нужен; удаление best-effort.
	if s.snapshots != nil {
		if err := s.snapshots.Delete(ctx, oldID); err != nil {
			s.logger.Warn("failed to delete old snapshot key", "case_id", oldID, "error", err)
		}
	}

	s.logger.Info("case id promoted", "old_id", oldID, "case_id", newID)
	return e
}

// Get возвращает дело по id. При отсутствии в памяти пробует поднять
// persisted-снапшот (cold start). Отсутствие снапшота — not found, не сбой.
func (s *CaseStore) Get(ctx context.Context, caseID string) (*domain.Case, bool) {
	e, ok := s.lookup(ctx, caseID)
	if !ok {
		return nil, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.c.Clone(), true
}

// SaveStep сохраняет payload шага кандидата, отмечает шаг завершённым,
// двигает курсор (если передан), эмитит ui.step_saved и пишет снапшот.
func (s *CaseStore) SaveStep(ctx context.Context, caseID, stepKey string, payload map[string]any, nextStepIndex *int) (*domain.Case, bool) {
	e, ok := s.lookup(ctx, caseID)
	if !ok {
		return nil, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.c.Steps[stepKey] = payload
	if !e.c.HasCompletedStep(stepKey) {
		e.c.CompletedSteps = append(e.c.CompletedSteps, stepKey)
	}
	if nextStepIndex != nil {
		e.c.CurrentStepIndex = *nextStepIndex
	}
	e.c.Touch()

	s.emitLocked(e, domain.EventStepSaved, map[string]any{"stepKey": stepKey})
	s.persistLocked(ctx, e)
	return e.c.Clone(), true
}

// UpdateAgentOutput перезаписывает результат агента и пишет снапшот.
// Выход шага принадлежит своему агенту — никто другой этот ключ не трогает.
func (s *CaseStore) UpdateAgentOutput(ctx context.Context, caseID, agent string, output *domain.StepResult) {
	e, ok := s.lookup(ctx, caseID)
	if !ok {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.c.AgentOutputs[agent] = output.Clone()
	e.c.Touch()
	s.persistLocked(ctx, e)
}

// SetStatus меняет статус жизненного цикла, эмитит событие, пишет снапшот.
func (s *CaseStore) SetStatus(ctx context.Context, caseID string, status domain.CaseStatus) {
	e, ok := s.lookup(ctx, caseID)
	if !ok {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.c.Status = status
	e.c.Touch()
	s.emitLocked(e, domain.EventStatusChanged, map[string]any{"status": string(status)})
	s.persistLocked(ctx, e)
}

// SetRiskStatus меняет оценку риска, эмитит событие, пишет снапшот.
func (s *CaseStore) SetRiskStatus(ctx context.Context, caseID string, risk domain.RiskStatus) {
	e, ok := s.lookup(ctx, caseID)
	if !ok {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.c.RiskStatus = risk
	e.c.Touch()
	s.emitLocked(e, domain.EventRiskChanged, map[string]any{"riskStatus": string(risk)})
	s.persistLocked(ctx, e)
}

// Delete удаляет дело: память, persisted-снапшот и подписчиков.
// Возвращает true, если дело существовало (в памяти или в снапшоте).
func (s *CaseStore) Delete(ctx context.Context, caseID string) bool {
	s.mu.Lock()
	e, ok := s.entries[caseID]
	if ok {
		delete(s.entries, caseID)
		delete(s.byAppNum, e.c.ApplicationNumber)
	}
	s.mu.Unlock()

	existed := ok

	if ok {
		e.mu.Lock()
		s.emitLocked(e, domain.EventCaseDeleted, map[string]any{"caseId": caseID})
		for _, ch := range e.subs {
			close(ch)
		}
		e.subs = nil
		e.mu.Unlock()
	} else if s.snapshots != nil {
		// В памяти нет, но снапшот мог остаться от прошлой жизни процесса.
		blob, err := s.snapshots.Load(ctx, caseID)
		if err != nil {
			s.logger.Warn("failed to check snapshot on delete", "case_id", caseID, "error", err)
		}
		existed = blob != nil
	}

	if s.snapshots != nil {
		if err := s.snapshots.Delete(ctx, caseID); err != nil {
			s.logger.Warn("failed to delete snapshot", "case_id", caseID, "error", err)
		}
	}
	return existed
}

// Subscribe подписывает на события дела. Новые события приходят в канал
// в порядке эмиссии; переполнение буфера ведёт к потере событий для
// этого подписчика. Канал закрывается при Unsubscribe или Delete.
func (s *CaseStore) Subscribe(ctx context.Context, caseID string) (<-chan domain.Event, bool) {
	e, ok := s.lookup(ctx, caseID)
	if !ok {
		return nil, false
	}

	ch := make(chan domain.Event, s.bufSize)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.subs = append(e.subs, ch)
	return ch, true
}

// Unsubscribe снимает подписку и закрывает канал.
func (s *CaseStore) Unsubscribe(caseID string, ch <-chan domain.Event) {
	s.mu.RLock()
	e, ok := s.entries[caseID]
	s.mu.RUnlock()
	if !ok {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for i, sub := range e.subs {
		if sub == ch {
			e.subs = append(e.subs[:i], e.subs[i+1:]...)
			close(sub)
			return
		}
	}
}

// Emit добавляет событие в лог дела и рассылает подписчикам (best-effort).
func (s *CaseStore) Emit(ctx context.Context, caseID string, eventType domain.EventType, payload map[string]any) {
	e, ok := s.lookup(ctx, caseID)
	if !ok {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	s.emitLocked(e, eventType, payload)
}

// Recent возвращает catch-up окно: последние recentWindow событий дела.
func (s *CaseStore) Recent(ctx context.Context, caseID string) []domain.Event {
	e, ok := s.lookup(ctx, caseID)
	if !ok {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	start := 0
	if len(e.events) > recentWindow {
		start = len(e.events) - recentWindow
	}
	out := make([]domain.Event, len(e.events)-start)
	copy(out, e.events[start:])
	return out
}

// Cases возвращает копии всех дел, находящихся в памяти.
func (s *CaseStore) Cases() []*domain.Case {
	s.mu.RLock()
	entries := make([]*caseEntry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	out := make([]*domain.Case, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.c.Clone())
		e.mu.Unlock()
	}
	return out
}

// AtRisk возвращает id дел с RiskStatus == AT_RISK (для recheck-sweep).
func (s *CaseStore) AtRisk() []string {
	var ids []string
	for _, c := range s.Cases() {
		if c.RiskStatus == domain.RiskStatusAtRisk {
			ids = append(ids, c.CaseID)
		}
	}
	return ids
}

// DroppedEvents возвращает количество потерянных событий подписчиков.
func (s *CaseStore) DroppedEvents() int64 {
	return s.dropped.Load()
}

// --- внутреннее ---

// lookup находит entry в памяти или поднимает его из снапшота.
func (s *CaseStore) lookup(ctx context.Context, caseID string) (*caseEntry, bool) {
	s.mu.RLock()
	e, ok := s.entries[caseID]
	s.mu.RUnlock()
	if ok {
		return e, true
	}
	return s.loadPersisted(ctx, caseID)
}

// loadPersisted восстанавливает дело из снапшота после холодного старта.
// Отсутствие снапшота — not found; ошибка чтения логируется и тоже
// трактуется как not found (персистентность best-effort).
func (s *CaseStore) loadPersisted(ctx context.Context, caseID string) (*caseEntry, bool) {
	if s.snapshots == nil {
		return nil, false
	}

	blob, err := s.snapshots.Load(ctx, caseID)
	if err != nil {
		s.logger.Warn("failed to load snapshot", "case_id", caseID, "error", err)
		return nil, false
	}
	if blob == nil {
		return nil, false
	}

	var c domain.Case
	if err := json.Unmarshal(blob, &c); err != nil {
		s.logger.Warn("corrupt snapshot ignored", "case_id", caseID, "error", err)
		return nil, false
	}
	if c.Steps == nil {
		c.Steps = make(map[string]map[string]any)
	}
	if c.AgentOutputs == nil {
		c.AgentOutputs = make(map[string]*domain.StepResult)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[caseID]; ok {
		// Кто-то успел восстановить параллельно.
		return e, true
	}
	e := &caseEntry{c: &c}
	s.entries[caseID] = e
	if c.ApplicationNumber != "" {
		s.byAppNum[c.ApplicationNumber] = caseID
	}
	s.logger.Info("case restored from snapshot", "case_id", caseID)
	return e, true
}

// emitLocked добавляет событие в лог и рассылает подписчикам.
// Вызывается под e.mu. Отправка неблокирующая: переполненный канал —
// событие для этого подписчика теряется, эмиссия не задерживается.
func (s *CaseStore) emitLocked(e *caseEntry, eventType domain.EventType, payload map[string]any) {
	evt := domain.Event{
		Timestamp: time.Now().UTC(),
		Type:      eventType,
		Payload:   payload,
	}

	e.events = append(e.events, evt)
	if len(e.events) > maxEventLog {
		e.events = e.events[len(e.events)-maxEventLog:]
	}
	telemetry.EventsEmitted.Inc()

	for _, ch := range e.subs {
		select {
		case ch <- evt:
		default:
			s.dropped.Add(1)
			telemetry.EventsDropped.Inc()
		}
	}

	if s.sink != nil {
		s.sink.Deliver(e.c.CaseID, evt)
	}
}

// persistLocked пишет снапшот дела (write-behind, best-effort).
// Вызывается под e.mu. Ошибка записи логируется и считается,
// но не прерывает мутацию — память остаётся источником истины.
func (s *CaseStore) persistLocked(ctx context.Context, e *caseEntry) {
	if s.snapshots == nil {
		return
	}

	blob, err := json.Marshal(e.c)
	if err != nil {
		s.logger.Error("failed to marshal case snapshot", "case_id", e.c.CaseID, "error", err)
		telemetry.SnapshotFailures.Inc()
		return
	}
	if err := s.snapshots.Save(ctx, e.c.CaseID, blob); err != nil {
		s.logger.Warn("failed to save case snapshot", "case_id", e.c.CaseID, "error", err)
		telemetry.SnapshotFailures.Inc()
	}
}
