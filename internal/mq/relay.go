package mq

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/shaiso/Caseflow/internal/domain"
	"github.com/shaiso/Caseflow/internal/telemetry"
)

// defaultRelayBuffer — буфер очереди релея.
const defaultRelayBuffer = 256

// eventPublisher — то, что релею нужно от Publisher (подменяется в тестах).
type eventPublisher interface {
	PublishEvent(ctx context.Context, caseID string, evt domain.Event) error
}

// Relay — неблокирующий мост из событийного лога дел в AMQP.
//
// Deliver вызывается из-под блокировки дела и потому никогда не блокирует:
// событие кладётся в буферизованную очередь, при переполнении — теряется
// (с учётом в метрике). Фоновая горутина выкачивает очередь и публикует.
type Relay struct {
	pub    eventPublisher
	logger *slog.Logger

	queue chan relayItem
	done  chan struct{}
	wg    sync.WaitGroup

	closed  atomic.Bool
	dropped atomic.Int64
}

type relayItem struct {
	caseID string
	evt    domain.Event
}

// NewRelay создаёт релей и запускает фоновую публикацию.
func NewRelay(pub *Publisher, logger *slog.Logger) *Relay {
	return newRelay(pub, logger)
}

func newRelay(pub eventPublisher, logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Relay{
		pub:    pub,
		logger: logger,
		queue:  make(chan relayItem, defaultRelayBuffer),
		done:   make(chan struct{}),
	}
	r.wg.Add(1)
	go r.pump()
	return r
}

// Deliver ставит событие в очередь публикации. Никогда не блокирует;
// при переполнении очереди или после Close событие теряется.
func (r *Relay) Deliver(caseID string, evt domain.Event) {
	if r.closed.Load() {
		return
	}
	select {
	case r.queue <- relayItem{caseID: caseID, evt: evt}:
	default:
		r.dropped.Add(1)
		telemetry.RelayDropped.Inc()
	}
}

// pump выкачивает очередь и публикует события.
// Ошибка публикации — потеря события: релей best-effort, durable-история
// дел живёт в снапшотах, не в AMQP.
func (r *Relay) pump() {
	defer r.wg.Done()
	for {
		select {
		case <-r.done:
			// Дорабатываем то, что уже в очереди.
			for {
				select {
				case item := <-r.queue:
					r.publish(item)
				default:
					return
				}
			}
		case item := <-r.queue:
			r.publish(item)
		}
	}
}

func (r *Relay) publish(item relayItem) {
	if err := r.pub.PublishEvent(context.Background(), item.caseID, item.evt); err != nil {
		r.dropped.Add(1)
		telemetry.RelayDropped.Inc()
		r.logger.Warn("failed to relay event",
			"case_id", item.caseID,
			"type", item.evt.Type,
			"error", err)
	}
}

// Dropped возвращает количество потерянных релеем событий.
func (r *Relay) Dropped() int64 {
	return r.dropped.Load()
}

// Close останавливает релей, дорабатывая уже поставленные события.
func (r *Relay) Close() {
	if r.closed.Swap(true) {
		return
	}
	close(r.done)
	r.wg.Wait()
}
