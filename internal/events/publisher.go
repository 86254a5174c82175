// Package events публикует аудиторские события сервиса в RabbitMQ:
// записанные предсказания и смену конфигурации пробного периода.
// Сообщения публикуются в JSON; потребителя внутри процесса нет.
package events

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
)

// Ключи маршрутизации публикуемых событий.
const (
	RoutingKeyPredictionRecorded = "trial.prediction_recorded"
	RoutingKeyConfigChanged      = "trial.config_changed"
)

// Exchange — durable exchange для событий пробного периода.
const Exchange = "trial.events"

// Publisher публикует события в канал RabbitMQ.
type Publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Connect устанавливает соединение с RabbitMQ и объявляет exchange.
func Connect(url string) (*Publisher, error) {
	const op = "events.Connect"
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Publisher{conn: conn, ch: ch}, nil
}

// Publish публикует сообщение с заданным ключом маршрутизации.
func (p *Publisher) Publish(routingKey string, message any) error {
	const op = "events.Publish"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = p.ch.Publish(
		Exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает канал и соединение.
func (p *Publisher) Close() error {
	if err := p.ch.Close(); err != nil {
		return err
	}
	return p.conn.Close()
}

// Nop — заглушка публикатора для запуска без RabbitMQ.
type Nop struct{}

// Publish ничего не делает.
func (Nop) Publish(string, any) error { return nil }
