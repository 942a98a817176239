// Package eventbus provides event-driven communication infrastructure for
// execution orchestration.
package eventbus

import (
	"context"

	"github.com/flowd-sh/flowd/pkg/events"
)

type Event interface {
	GetType() events.EventType
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, event Event) error
}

type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

type EventHandler func(ctx context.Context, event any) error

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}

// TopicFor routes step events to their own topic; everything else goes to the
// execution lifecycle topic.
func TopicFor(eventType events.EventType) string {
	switch eventType {
	case events.StepCompletedEvent, events.StepFailedEvent:
		return events.StepTopic
	default:
		return events.ExecutionTopic
	}
}
