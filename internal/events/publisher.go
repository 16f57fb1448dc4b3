package events

import (
	"context"
	"errors"
)

// ErrUnknownBackend is returned for an EVENTS_BACKEND value other than nats, kafka or none
var ErrUnknownBackend = errors.New("unknown events backend")

// Publisher delivers encoded events to a transport
type Publisher interface {
	Publish(ctx context.Context, eventType Type, key string, data []byte) error
	Close() error
}

// NoopPublisher discards everything; used when EVENTS_BACKEND=none
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Type, string, []byte) error { return nil }
func (NoopPublisher) Close() error { return nil }
