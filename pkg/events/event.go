package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID            string          `json:"id"`
	Event         string          `json:"event"`   // e.g., "item.updated"
	Version       string          `json:"version"` // e.g., "v1"
	Timestamp     time.Time       `json:"timestamp"`
	Payload       json.RawMessage `json:"payload"`
	TraceID       string          `json:"traceId"`
	CorrelationID string          `json:"correlationId"`
	Service       string          `json:"service,omitempty"`
}

type Headers struct {
	TraceID       string
	CorrelationID string
	Service       string
}

func NewEvent(eventName, version string, payload any, headers Headers) (*Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	if headers.TraceID == "" {
		headers.TraceID = GenerateTraceID()
	}
	return &Event{
		ID:            uuid.NewString(),
		Event:         eventName,
		Version:       version,
		Timestamp:     time.Now().UTC(),
		Payload:       raw,
		TraceID:       headers.TraceID,
		CorrelationID: headers.CorrelationID,
		Service:       headers.Service,
	}, nil
}

func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func (e *Event) GetRoutingKey() string {
	return e.Event + "." + e.Version
}

// DecodePayload unmarshals the event payload into dst.
func (e *Event) DecodePayload(dst any) error {
	return json.Unmarshal(e.Payload, dst)
}

func ParseEvent(body []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(body, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func GenerateTraceID() string {
	return uuid.New().String()
}

func GenerateCorrelationID() string {
	return uuid.New().String()
}

type correlationKey struct{}

func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationID returns the id stored by WithCorrelationID, or "".
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}
