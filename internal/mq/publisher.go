package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Caseflow/internal/domain"
)

// Publisher публикует события дел в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт Publisher поверх установленного соединения.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{conn: conn, logger: logger}
}

// EventMessage — формат сообщения на проводе.
type EventMessage struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// CaseID — идентификатор дела.
	CaseID string `json:"caseId"`

	// Event — само событие (ts, type, payload).
	Event domain.Event `json:"event"`
}

// PublishEvent публикует событие дела в topic-exchange.
// Ключ маршрутизации: case.<caseId>.<eventType>.
func (p *Publisher) PublishEvent(ctx context.Context, caseID string, evt domain.Event) error {
	msg := EventMessage{
		ID:     uuid.New().String(),
		CaseID: caseID,
		Event:  evt,
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal event message: %w", err)
	}

	routingKey := "case." + caseID + "." + string(evt.Type)

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(ExchangeEvents),
			routingKey,
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    msg.ID,
				Timestamp:    evt.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", ExchangeEvents, routingKey, err)
		}

		p.logger.Debug("published event",
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", evt.Type,
		)
		return nil
	})
}
