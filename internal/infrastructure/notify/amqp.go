package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gdugdh24/partnerfinder/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Event is the message published on the notification exchange.
type Event struct {
	EventType   string              `json:"event_type"`
	RecipientID string              `json:"recipient_id"`
	Payload     domain.Notification `json:"payload"`
	SentAt      time.Time           `json:"sent_at"`
}

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPNotifier publishes every notification to a fanout exchange; push
// delivery is left to its consumers.
type AMQPNotifier struct {
	exchange string
	open     func() (amqpChannel, error)
}

func NewAMQPNotifier(conn *amqp.Connection, exchange string) (*AMQPNotifier, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	err = ch.ExchangeDeclare(
		exchange, // name
		"fanout", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	return &AMQPNotifier{
		exchange: exchange,
		open: func() (amqpChannel, error) {
			return conn.Channel()
		},
	}, nil
}

func (n *AMQPNotifier) Send(ctx context.Context, recipientID string, notification domain.Notification) error {
	body, err := json.Marshal(Event{
		EventType:   notification.Type,
		RecipientID: recipientID,
		Payload:     notification,
		SentAt:      time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	ch, err := n.open()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	err = ch.PublishWithContext(ctx,
		n.exchange, // exchange
		"",         // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}
