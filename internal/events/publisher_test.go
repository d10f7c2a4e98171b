package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProducer struct {
	topics []string
	keys   []string
	err    error
}

func (p *fakeProducer) Publish(_ context.Context, topic, key string, _ []byte) error {
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.keys = append(p.keys, key)
	return nil
}
func (p *fakeProducer) Close() error { return nil }

func TestBusPublisher_TopicRouting(t *testing.T) {
	prod := &fakeProducer{}
	pub := NewBusPublisher(prod)

	task := emitterTask()
	rt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	task.ReminderTime = &rt

	created, err := NewTaskCreated(task)
	require.NoError(t, err)
	scheduled, err := NewReminderScheduled(task)
	require.NoError(t, err)

	require.NoError(t, pub.Publish(context.Background(), created))
	require.NoError(t, pub.Publish(context.Background(), scheduled))

	assert.Equal(t, []string{TopicTasks, TopicReminders}, prod.topics)
	// Keyed by subject so one aggregate's events stay ordered.
	assert.Equal(t, []string{"task/t-1", "task/t-1"}, prod.keys)
}

func TestBusPublisher_WrapsTransportError(t *testing.T) {
	prod := &fakeProducer{err: errors.New("connection refused")}
	pub := NewBusPublisher(prod)

	env, err := NewTaskCreated(emitterTask())
	require.NoError(t, err)

	err = pub.Publish(context.Background(), env)
	var perr *PublishError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, TypeTaskCreated, perr.EventType)
}

func TestDisabledPublisher(t *testing.T) {
	pub := NewDisabledPublisher()
	assert.False(t, pub.Enabled())
	assert.NoError(t, pub.Publish(context.Background(), Envelope{Type: TypeTaskCreated}))
	assert.NoError(t, pub.Close())
}
