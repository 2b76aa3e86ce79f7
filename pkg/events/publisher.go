package events

import (
	"context"
	"errors"
)

// ErrPermanent marks a consumer failure that retrying cannot fix.
var ErrPermanent = errors.New("permanent failure")

// Publisher defines the interface for publishing domain events
type Publisher interface {
	Publish(ctx context.Context, exchange string, event *Event, headers Headers) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, *Event, Headers) error { return nil }

func (NopPublisher) Close() error { return nil }
