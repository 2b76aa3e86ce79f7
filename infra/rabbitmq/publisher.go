package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"catalog/pkg/events"
)

const publishTimeout = 5 * time.Second

var errNotAcked = errors.New("message was not acknowledged by broker")

// Publisher implements events.Publisher on a single confirm-mode channel.
// Publishes are serialized so every confirmation maps to its own message.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	service string

	mu       sync.Mutex
	declared map[string]bool
}

var _ events.Publisher = (*Publisher)(nil)

func NewPublisher(url, service string) (*Publisher, error) {
	conn, err := dial(url)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		closeAll(nil, conn)
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := channel.Confirm(false); err != nil {
		closeAll(channel, conn)
		return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	zap.L().Info("RabbitMQ publisher connected successfully")

	return &Publisher{
		conn:     conn,
		channel:  channel,
		service:  service,
		declared: make(map[string]bool),
	}, nil
}

// Publish sends the event to exchange under its routing key and waits for the
// broker to confirm it.
func (p *Publisher) Publish(ctx context.Context, exchange string, event *events.Event, headers events.Headers) error {
	body, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}

	service := headers.Service
	if service == "" {
		service = p.service
	}
	msg := amqp.Publishing{
		ContentType:   "application/json",
		Body:          body,
		DeliveryMode:  amqp.Persistent,
		Timestamp:     event.Timestamp,
		MessageId:     event.ID,
		CorrelationId: headers.CorrelationID,
		AppId:         service,
		Headers: amqp.Table{
			"x-trace-id":       headers.TraceID,
			"x-correlation-id": headers.CorrelationID,
			"x-service":        service,
		},
	}
	routingKey := event.GetRoutingKey()

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.declared[exchange] {
		if err := declareTopic(p.channel, exchange); err != nil {
			return fmt.Errorf("failed to declare exchange: %w", err)
		}
		p.declared[exchange] = true
	}

	confirm, err := p.channel.PublishWithDeferredConfirmWithContext(
		publishCtx,
		exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		msg,
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	acked, err := confirm.WaitContext(publishCtx)
	if err != nil {
		return fmt.Errorf("publish confirmation: %w", err)
	}
	if !acked {
		return errNotAcked
	}

	zap.L().Debug("Event published",
		zap.String("exchange", exchange),
		zap.String("routingKey", routingKey),
		zap.String("event", event.Event),
		zap.String("traceId", headers.TraceID),
	)
	return nil
}

func (p *Publisher) IsHealthy() bool {
	if p == nil || p.conn == nil || p.channel == nil {
		return false
	}
	return !p.conn.IsClosed() && !p.channel.IsClosed()
}

func (p *Publisher) Close() error {
	closeAll(p.channel, p.conn)
	zap.L().Info("RabbitMQ publisher closed")
	return nil
}
