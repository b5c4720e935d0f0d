package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — имя обменника.
type Exchange string

// Queue — имя очереди.
type Queue string

// ExchangeEvents — topic-exchange всех событий дел.
// Ключ маршрутизации: case.<caseId>.<eventType>.
const ExchangeEvents Exchange = "caseflow.events"

// QueueAudit — очередь полного аудит-потока (привязка case.#).
// Объявляется сервисом, потребляется внешними системами.
const QueueAudit Queue = "caseflow.events.audit"

// SetupTopology объявляет exchange, аудит-очередь и привязку.
// Идемпотентно; вызывается при старте и после каждого reconnect.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.ExchangeDeclare(
			string(ExchangeEvents),
			"topic",
			true,  // durable
			false, // auto-deleted
			false, // internal
			false, // no-wait
			nil,
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ExchangeEvents, err)
		}

		_, err = ch.QueueDeclare(
			string(QueueAudit),
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", QueueAudit, err)
		}

		if err := ch.QueueBind(string(QueueAudit), "case.#", string(ExchangeEvents), false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", QueueAudit, err)
		}
		return nil
	})
}
