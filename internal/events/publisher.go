package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/laraib28/todo-web/internal/kafka"
)

// Topics carrying domain events, keyed by aggregate.
const (
	TopicTasks     = "todo.tasks"
	TopicReminders = "todo.reminders"
)

// publishTimeout bounds a single outbound publish so a slow broker can never
// hold up the request that triggered the event.
const publishTimeout = 5 * time.Second

// Publisher delivers envelopes to the event bus. Delivery is best-effort:
// callers are expected to log and swallow errors, never to roll back the
// business change that produced the event.
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
	Enabled() bool
	Close() error
}

// PublishError wraps a failed delivery attempt.
type PublishError struct {
	EventType string
	Subject   string
	Err       error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish %s for %s: %v", e.EventType, e.Subject, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

type busPublisher struct {
	producer kafka.Producer
}

// NewBusPublisher wraps a Kafka producer as an event Publisher. The producer
// is expected to be acquired once per process and closed on shutdown via
// Close.
func NewBusPublisher(producer kafka.Producer) Publisher {
	return &busPublisher{producer: producer}
}

func (p *busPublisher) Publish(ctx context.Context, env Envelope) error {
	value, err := json.Marshal(env)
	if err != nil {
		return &PublishError{EventType: env.Type, Subject: env.Subject, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	// Key by subject so all events for one aggregate land on one partition.
	if err := p.producer.Publish(ctx, topicFor(env.Type), env.Subject, value); err != nil {
		return &PublishError{EventType: env.Type, Subject: env.Subject, Err: err}
	}
	return nil
}

func (p *busPublisher) Enabled() bool { return true }

func (p *busPublisher) Close() error { return p.producer.Close() }

func topicFor(eventType string) string {
	if strings.HasPrefix(eventType, "reminder.") {
		return TopicReminders
	}
	return TopicTasks
}

type disabledPublisher struct{}

// NewDisabledPublisher returns the no-op publisher used when event publishing
// is switched off by configuration.
func NewDisabledPublisher() Publisher { return disabledPublisher{} }

func (disabledPublisher) Publish(context.Context, Envelope) error { return nil }
func (disabledPublisher) Enabled() bool                           { return false }
func (disabledPublisher) Close() error                            { return nil }
