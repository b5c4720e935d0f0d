// Package mq — интеграция с RabbitMQ для исходящего потока событий дел.
//
// Структура:
//   - connection.go — соединение с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchange, очередей и привязок
//   - publisher.go  — публикация событий дел
//   - relay.go      — неблокирующий мост из CaseStore в publisher
//
// Поток событий исходящий: каждое событие из событийного лога дела
// публикуется в topic-exchange caseflow.events с ключом маршрутизации
// case.<caseId>.<eventType>. Внешние потребители (аудит, нотификации)
// подписываются своими очередями; сам сервис из AMQP не читает.
package mq
