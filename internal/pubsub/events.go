// Package pubsub provides a generic publish/subscribe event system used to
// fan history changes and log lines out to secondary observers (history
// pane, log pane, tracing). The editor reads buffer state synchronously
// from the history manager; events here are for observers only.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	CreatedEvent EventType = "created"
	UpdatedEvent EventType = "updated"
	DeletedEvent EventType = "deleted"
)

// Event represents a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc[T any] func(eventType EventType, payload T)

// Publish calls f.
func (f PublisherFunc[T]) Publish(eventType EventType, payload T) {
	f(eventType, payload)
}

// MultiPublisher publishes each event to every non-nil publisher in order.
func MultiPublisher[T any](pubs ...Publisher[T]) Publisher[T] {
	live := make([]Publisher[T], 0, len(pubs))
	for _, p := range pubs {
		if p != nil {
			live = append(live, p)
		}
	}
	return PublisherFunc[T](func(eventType EventType, payload T) {
		for _, p := range live {
			p.Publish(eventType, payload)
		}
	})
}
