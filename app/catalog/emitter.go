package catalog

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"catalog/domain"
	"catalog/pkg/events"
	"catalog/pkg/metrics"
)

const (
	entityStore = "entity store"
	imageStore  = "image store"
)

type Option func(*options)

type options struct {
	publisher events.Publisher
	metrics   *metrics.Metrics
	service   string
}

func WithPublisher(p events.Publisher) Option {
	return func(o *options) { o.publisher = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func WithServiceName(name string) Option {
	return func(o *options) { o.service = name }
}

func buildOptions(opts []Option) options {
	o := options{publisher: events.NopPublisher{}, service: "catalog"}
	for _, opt := range opts {
		opt(&o)
	}
	if o.publisher == nil {
		o.publisher = events.NopPublisher{}
	}
	return o
}

// emit publishes a domain event. Publishing never fails the calling operation.
func (o options) emit(ctx context.Context, name string, payload any) {
	event, err := events.NewEvent(name, events.EventVersionV1, payload, events.Headers{
		CorrelationID: events.CorrelationID(ctx),
		Service:       o.service,
	})
	if err == nil {
		err = o.publisher.Publish(ctx, events.CatalogExchange, event, events.Headers{
			TraceID:       event.TraceID,
			CorrelationID: event.CorrelationID,
			Service:       o.service,
		})
	}
	o.metrics.ObserveEvent(name, err)
	if err != nil {
		zap.L().Warn("failed to publish event", zap.String("event", name), zap.Error(err))
	}
}

func (o options) observe(operation string, started time.Time, err error) {
	o.metrics.ObserveOperation(operation, domain.Kind(err), started)
}

// storeError passes domain errors through and wraps everything else as an
// entity store failure.
func storeError(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, domain.ErrInUse),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrDependencyUnavailable):
		return err
	default:
		return domain.Unavailable(entityStore, err)
	}
}

func itemPayload(item domain.Item, at time.Time) events.ItemPayload {
	return events.ItemPayload{
		ID:              item.ID,
		Name:            item.Name,
		Price:           item.Price,
		Description:     item.Description,
		LongDescription: item.LongDescription,
		CategoryIDs:     item.CategoryIDs(),
		ImageURI:        item.ImageURI,
		At:              at,
	}
}
