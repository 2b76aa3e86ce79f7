package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog/pkg/events"
)

// ackRecorder captures how a delivery was settled.
type ackRecorder struct {
	acked    bool
	nacked   bool
	requeued bool
}

func (a *ackRecorder) Ack(uint64, bool) error {
	a.acked = true
	return nil
}

func (a *ackRecorder) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked = true
	a.requeued = requeue
	return nil
}

func (a *ackRecorder) Reject(_ uint64, requeue bool) error {
	return a.Nack(0, false, requeue)
}

func delivery(t *testing.T, name string, redelivered bool) (amqp.Delivery, *ackRecorder) {
	t.Helper()
	event, err := events.NewEvent(name, events.EventVersionV1, map[string]string{"imageUri": "x"}, events.Headers{})
	require.NoError(t, err)
	body, err := event.ToJSON()
	require.NoError(t, err)

	rec := &ackRecorder{}
	return amqp.Delivery{
		Acknowledger: rec,
		Body:         body,
		Redelivered:  redelivered,
		Headers:      amqp.Table{"x-correlation-id": "corr-1"},
	}, rec
}

func TestConsumer_HandleMessage(t *testing.T) {
	tests := []struct {
		name        string
		event       string
		redelivered bool
		handlerErr  error
		wantAck     bool
		wantRequeue bool
	}{
		{name: "success", event: events.ItemImageReplacedEvent, wantAck: true},
		{name: "unrouted_event", event: events.ItemCreatedEvent, wantAck: true},
		{name: "first_failure_requeues", event: events.ItemImageReplacedEvent, handlerErr: errors.New("s3 timeout"), wantRequeue: true},
		{name: "redelivered_failure_dead_letters", event: events.ItemImageReplacedEvent, redelivered: true, handlerErr: errors.New("s3 timeout")},
		{name: "permanent_failure_dead_letters", event: events.ItemImageReplacedEvent, handlerErr: fmt.Errorf("bad payload: %w", events.ErrPermanent)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotCorrelation string
			router := Router{
				events.ItemImageReplacedEvent: func(ctx context.Context, _ *events.Event) error {
					gotCorrelation = events.CorrelationID(ctx)
					return tt.handlerErr
				},
			}
			msg, rec := delivery(t, tt.event, tt.redelivered)

			(&Consumer{queueName: "test"}).handleMessage(context.Background(), msg, router)

			assert.Equal(t, tt.wantAck, rec.acked)
			assert.Equal(t, !tt.wantAck, rec.nacked)
			assert.Equal(t, tt.wantRequeue, rec.requeued)
			if tt.event == events.ItemImageReplacedEvent {
				assert.Equal(t, "corr-1", gotCorrelation)
			}
		})
	}
}

func TestConsumer_MalformedBodyIsDeadLettered(t *testing.T) {
	rec := &ackRecorder{}
	msg := amqp.Delivery{Acknowledger: rec, Body: []byte("{")}

	(&Consumer{queueName: "test"}).handleMessage(context.Background(), msg, Router{})

	assert.True(t, rec.nacked)
	assert.False(t, rec.requeued)
}
