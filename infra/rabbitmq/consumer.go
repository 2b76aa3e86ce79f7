package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"catalog/pkg/events"
	"catalog/pkg/metrics"
)

const handleTimeout = 30 * time.Second

// EventHandler processes one event. Returning an error wrapping
// events.ErrPermanent sends the message straight to the dead letter queue.
type EventHandler func(ctx context.Context, event *events.Event) error

// Router dispatches events by name. Events without a route are acknowledged and dropped.
type Router map[string]EventHandler

type Consumer struct {
	conn        *amqp.Connection
	channel     *amqp.Channel
	queueName   string
	serviceName string
	metrics     *metrics.Metrics
}

type ConsumerConfig struct {
	Exchange      string   // e.g. "catalog.item"
	QueueName     string   // e.g. "catalog.image-reclaim"
	RoutingKeys   []string // e.g. ["item.image.replaced.v1"]
	ServiceName   string
	PrefetchCount int // 0 uses the default of 10
	Metrics       *metrics.Metrics
}

func NewConsumer(url string, config ConsumerConfig) (*Consumer, error) {
	conn, err := dial(url)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		closeAll(nil, conn)
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := setupTopology(channel, config); err != nil {
		closeAll(channel, conn)
		return nil, err
	}

	zap.L().Info("RabbitMQ consumer created successfully",
		zap.String("queue", config.QueueName),
		zap.String("exchange", config.Exchange),
		zap.Strings("routingKeys", config.RoutingKeys),
	)

	return &Consumer{
		conn:        conn,
		channel:     channel,
		queueName:   config.QueueName,
		serviceName: config.ServiceName,
		metrics:     config.Metrics,
	}, nil
}

// setupTopology declares the exchange, the queue and a dead letter pair
// bound with the same routing keys.
func setupTopology(ch *amqp.Channel, config ConsumerConfig) error {
	prefetch := config.PrefetchCount
	if prefetch == 0 {
		prefetch = 10
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	dlxName := config.Exchange + ".dlx"
	dlqName := config.QueueName + ".dlq"

	if err := declareTopic(ch, config.Exchange); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	if err := declareTopic(ch, dlxName); err != nil {
		return fmt.Errorf("failed to declare DLX: %w", err)
	}

	if _, err := ch.QueueDeclare(config.QueueName, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange": dlxName,
	}); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if _, err := ch.QueueDeclare(dlqName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare DLQ: %w", err)
	}

	for _, key := range config.RoutingKeys {
		if err := ch.QueueBind(dlqName, key, dlxName, false, nil); err != nil {
			return fmt.Errorf("failed to bind DLQ: %w", err)
		}
		if err := ch.QueueBind(config.QueueName, key, config.Exchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue: %w", err)
		}
	}
	return nil
}

// Consume blocks delivering messages to the router until ctx is cancelled
// or the broker closes the channel.
func (c *Consumer) Consume(ctx context.Context, router Router) error {
	msgs, err := c.channel.ConsumeWithContext(
		ctx,
		c.queueName,
		c.serviceName, // consumer tag
		false,         // auto-ack
		false,         // exclusive
		false,         // no-local
		false,         // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	zap.L().Info("Started consuming messages", zap.String("queue", c.queueName))

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("Consumer context cancelled, stopping...")
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("message channel closed")
			}
			c.handleMessage(ctx, msg, router)
		}
	}
}

// handleMessage acks on success. A failed message is requeued once and
// dead-lettered on its redelivery. Malformed and permanent failures are
// dead-lettered immediately.
func (c *Consumer) handleMessage(ctx context.Context, msg amqp.Delivery, router Router) {
	traceID, _ := msg.Headers["x-trace-id"].(string)
	correlationID, _ := msg.Headers["x-correlation-id"].(string)
	log := zap.L().With(
		zap.String("queue", c.queueName),
		zap.String("routingKey", msg.RoutingKey),
		zap.String("traceId", traceID),
		zap.String("correlationId", correlationID),
	)

	event, err := events.ParseEvent(msg.Body)
	if err != nil {
		log.Error("Failed to unmarshal event", zap.Error(err))
		_ = msg.Nack(false, false)
		return
	}

	handler, ok := router[event.Event]
	if !ok {
		log.Debug("No handler for event, skipping", zap.String("event", event.Event))
		_ = msg.Ack(false)
		return
	}

	processCtx, cancel := context.WithTimeout(events.WithCorrelationID(ctx, correlationID), handleTimeout)
	defer cancel()

	err = handler(processCtx, event)
	c.metrics.ObserveEvent(event.Event, err)
	if err != nil {
		requeue := !msg.Redelivered && !errors.Is(err, events.ErrPermanent)
		log.Error("Failed to process event",
			zap.String("event", event.Event),
			zap.Bool("requeue", requeue),
			zap.Error(err))
		_ = msg.Nack(false, requeue)
		return
	}

	if err := msg.Ack(false); err != nil {
		log.Error("Failed to acknowledge message", zap.Error(err))
		return
	}
	log.Info("Successfully processed event", zap.String("event", event.Event))
}

func (c *Consumer) Close() error {
	closeAll(c.channel, c.conn)
	zap.L().Info("RabbitMQ consumer closed")
	return nil
}
