package events_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laraib28/todo-web/internal/domain"
	"github.com/laraib28/todo-web/internal/events"
)

func eventTask() *domain.Task {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Task{
		ID:        "3f1c2a44-9b1f-4f9e-b0d7-0c1a2b3c4d5e",
		UserID:    "u-1",
		Title:     "Buy milk",
		Priority:  domain.PriorityMedium,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestNewTaskCreated_EnvelopeShape(t *testing.T) {
	task := eventTask()
	env, err := events.NewTaskCreated(task)
	require.NoError(t, err)

	assert.Equal(t, "1.0", env.SpecVersion)
	assert.Equal(t, events.TypeTaskCreated, env.Type)
	assert.Equal(t, "/api/tasks", env.Source)
	assert.Equal(t, "task/"+task.ID, env.Subject)
	assert.NotEmpty(t, env.ID)
	assert.False(t, env.Time.IsZero())
	assert.Equal(t, "application/json", env.DataContentType)
}

func TestNewTaskCreated_RequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Task)
	}{
		{"missing id", func(task *domain.Task) { task.ID = "" }},
		{"missing user", func(task *domain.Task) { task.UserID = "" }},
		{"missing title", func(task *domain.Task) { task.Title = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := eventTask()
			tt.mutate(task)
			_, err := events.NewTaskCreated(task)
			var cerr *events.ConstructionError
			require.ErrorAs(t, err, &cerr)
		})
	}
}

func TestEnvelope_RoundTrip(t *testing.T) {
	rt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	task := eventTask()
	task.ReminderTime = &rt

	builders := map[string]func() (events.Envelope, error){
		events.TypeTaskCreated: func() (events.Envelope, error) { return events.NewTaskCreated(task) },
		events.TypeTaskUpdated: func() (events.Envelope, error) {
			return events.NewTaskUpdated(task, domain.ChangeSet{
				Changes:        map[string]any{"title": "Buy oat milk"},
				PreviousValues: map[string]any{"title": "Buy milk"},
			})
		},
		events.TypeTaskDeleted:       func() (events.Envelope, error) { return events.NewTaskDeleted(task) },
		events.TypeReminderScheduled: func() (events.Envelope, error) { return events.NewReminderScheduled(task) },
		events.TypeReminderCancelled: func() (events.Envelope, error) {
			return events.NewReminderCancelled(task, events.ReasonTaskDeleted)
		},
	}

	for eventType, build := range builders {
		t.Run(eventType, func(t *testing.T) {
			env, err := build()
			require.NoError(t, err)

			wire, err := json.Marshal(env)
			require.NoError(t, err)

			var back events.Envelope
			require.NoError(t, json.Unmarshal(wire, &back))
			assert.Equal(t, env.ID, back.ID)
			assert.Equal(t, env.Type, back.Type)
			assert.Equal(t, env.Subject, back.Subject)
			assert.JSONEq(t, string(env.Data), string(back.Data))

			payload, err := events.Decode(back)
			require.NoError(t, err)
			require.NotNil(t, payload)
		})
	}
}

func TestNewReminderScheduled_DefaultChannels(t *testing.T) {
	rt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	task := eventTask()
	task.ReminderTime = &rt

	env, err := events.NewReminderScheduled(task)
	require.NoError(t, err)

	payload, err := events.Decode(env)
	require.NoError(t, err)
	scheduled, ok := payload.(events.ReminderScheduled)
	require.True(t, ok)
	assert.Equal(t, []string{"email"}, scheduled.NotificationChannels)
	assert.True(t, scheduled.ScheduledTime.Equal(rt))
}

func TestNewReminderScheduled_ConfiguredChannels(t *testing.T) {
	rt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	task := eventTask()
	task.ReminderTime = &rt
	task.ReminderConfig = domain.ReminderConfig{"channels": []any{"push", "sms"}}

	env, err := events.NewReminderScheduled(task)
	require.NoError(t, err)

	payload, _ := events.Decode(env)
	assert.Equal(t, []string{"push", "sms"}, payload.(events.ReminderScheduled).NotificationChannels)
}

func TestNewReminderScheduled_NoReminderTime(t *testing.T) {
	_, err := events.NewReminderScheduled(eventTask())
	var cerr *events.ConstructionError
	require.ErrorAs(t, err, &cerr)
}

func TestNewTaskUpdated_RejectsEmptyOrUnbalancedChangeSet(t *testing.T) {
	task := eventTask()

	_, err := events.NewTaskUpdated(task, domain.ChangeSet{
		Changes:        map[string]any{},
		PreviousValues: map[string]any{},
	})
	var cerr *events.ConstructionError
	require.ErrorAs(t, err, &cerr)

	_, err = events.NewTaskUpdated(task, domain.ChangeSet{
		Changes:        map[string]any{"title": "x"},
		PreviousValues: map[string]any{},
	})
	require.ErrorAs(t, err, &cerr)
}

func TestDecode_UnknownType(t *testing.T) {
	env := events.Envelope{Type: "task.exploded", Data: []byte(`{}`)}
	_, err := events.Decode(env)
	var uerr *events.UnknownEventTypeError
	require.ErrorAs(t, err, &uerr)
}
