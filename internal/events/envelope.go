// Package events defines the CloudEvents-shaped envelopes published for task
// and reminder domain events, and the best-effort machinery that emits them.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/laraib28/todo-web/internal/domain"
)

// Event type strings. The set is closed: every envelope carries exactly one
// of these, and Decode rejects anything else.
const (
	TypeTaskCreated       = "task.created"
	TypeTaskUpdated       = "task.updated"
	TypeTaskDeleted       = "task.deleted"
	TypeReminderScheduled = "reminder.scheduled"
	TypeReminderCancelled = "reminder.cancelled"
)

// Reasons carried by reminder.cancelled events.
const (
	ReasonTaskDeleted     = "task_deleted"
	ReasonReminderRemoved = "reminder_removed"
)

const (
	specVersion = "1.0"
	eventSource = "/api/tasks"
	contentType = "application/json"
)

// Envelope is the wire format for every published domain event.
type Envelope struct {
	SpecVersion     string          `json:"specversion"`
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	Source          string          `json:"source"`
	Subject         string          `json:"subject"`
	Time            time.Time       `json:"time"`
	DataContentType string          `json:"datacontenttype"`
	Data            json.RawMessage `json:"data"`
}

// TaskCreated is the payload of a task.created event.
type TaskCreated struct {
	TaskID      string `json:"task_id"`
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// TaskUpdated is the payload of a task.updated event. Changes and
// PreviousValues hold exactly the fields whose values differed, keyed
// identically.
type TaskUpdated struct {
	TaskID         string         `json:"task_id"`
	UserID         string         `json:"user_id"`
	Changes        map[string]any `json:"changes"`
	PreviousValues map[string]any `json:"previous_values"`
}

// TaskDeleted is the payload of a task.deleted event.
type TaskDeleted struct {
	TaskID      string `json:"task_id"`
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	WasComplete bool   `json:"was_complete"`
}

// ReminderScheduled is the payload of a reminder.scheduled event. It is
// emitted both when a reminder first appears and when it moves to a new time.
type ReminderScheduled struct {
	TaskID               string    `json:"task_id"`
	UserID               string    `json:"user_id"`
	ScheduledTime        time.Time `json:"scheduled_time"`
	NotificationChannels []string  `json:"notification_channels"`
}

// ReminderCancelled is the payload of a reminder.cancelled event.
type ReminderCancelled struct {
	TaskID      string    `json:"task_id"`
	UserID      string    `json:"user_id"`
	Reason      string    `json:"reason"`
	CancelledAt time.Time `json:"cancelled_at"`
}

// ConstructionError is returned when an envelope cannot be fully built.
// No partial envelope is ever produced.
type ConstructionError struct {
	EventType string
	Reason    string
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("cannot construct %s event: %s", e.EventType, e.Reason)
}

// UnknownEventTypeError is returned by Decode for a type outside the closed set.
type UnknownEventTypeError struct {
	EventType string
}

func (e *UnknownEventTypeError) Error() string {
	return fmt.Sprintf("unknown event type %q", e.EventType)
}

func newEnvelope(eventType, subject string, data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, &ConstructionError{EventType: eventType, Reason: err.Error()}
	}
	return Envelope{
		SpecVersion:     specVersion,
		ID:              uuid.New().String(),
		Type:            eventType,
		Source:          eventSource,
		Subject:         subject,
		Time:            time.Now().UTC(),
		DataContentType: contentType,
		Data:            raw,
	}, nil
}

func taskSubject(taskID string) string { return "task/" + taskID }

// NewTaskCreated builds a task.created envelope for a freshly persisted task.
func NewTaskCreated(task *domain.Task) (Envelope, error) {
	if task.ID == "" || task.UserID == "" {
		return Envelope{}, &ConstructionError{EventType: TypeTaskCreated, Reason: "task id and user id are required"}
	}
	if task.Title == "" {
		return Envelope{}, &ConstructionError{EventType: TypeTaskCreated, Reason: "title is required"}
	}
	return newEnvelope(TypeTaskCreated, taskSubject(task.ID), TaskCreated{
		TaskID:      task.ID,
		UserID:      task.UserID,
		Title:       task.Title,
		Description: task.Description,
		Priority:    string(task.Priority),
	})
}

// NewTaskUpdated builds a task.updated envelope from a non-empty change set.
func NewTaskUpdated(task *domain.Task, cs domain.ChangeSet) (Envelope, error) {
	if task.ID == "" || task.UserID == "" {
		return Envelope{}, &ConstructionError{EventType: TypeTaskUpdated, Reason: "task id and user id are required"}
	}
	if cs.Empty() {
		return Envelope{}, &ConstructionError{EventType: TypeTaskUpdated, Reason: "change set is empty"}
	}
	if len(cs.Changes) != len(cs.PreviousValues) {
		return Envelope{}, &ConstructionError{EventType: TypeTaskUpdated, Reason: "changes and previous_values keys diverge"}
	}
	return newEnvelope(TypeTaskUpdated, taskSubject(task.ID), TaskUpdated{
		TaskID:         task.ID,
		UserID:         task.UserID,
		Changes:        cs.Changes,
		PreviousValues: cs.PreviousValues,
	})
}

// NewTaskDeleted builds a task.deleted envelope from a task snapshot taken
// before the row was removed.
func NewTaskDeleted(task *domain.Task) (Envelope, error) {
	if task.ID == "" || task.UserID == "" {
		return Envelope{}, &ConstructionError{EventType: TypeTaskDeleted, Reason: "task id and user id are required"}
	}
	return newEnvelope(TypeTaskDeleted, taskSubject(task.ID), TaskDeleted{
		TaskID:      task.ID,
		UserID:      task.UserID,
		Title:       task.Title,
		WasComplete: task.IsComplete,
	})
}

// NewReminderScheduled builds a reminder.scheduled envelope for a task whose
// resulting reminder_time is non-nil.
func NewReminderScheduled(task *domain.Task) (Envelope, error) {
	if task.ID == "" || task.UserID == "" {
		return Envelope{}, &ConstructionError{EventType: TypeReminderScheduled, Reason: "task id and user id are required"}
	}
	if task.ReminderTime == nil {
		return Envelope{}, &ConstructionError{EventType: TypeReminderScheduled, Reason: "reminder_time is not set"}
	}
	channels := task.NotificationChannels()
	if len(channels) == 0 {
		return Envelope{}, &ConstructionError{EventType: TypeReminderScheduled, Reason: "notification channels are empty"}
	}
	return newEnvelope(TypeReminderScheduled, taskSubject(task.ID), ReminderScheduled{
		TaskID:               task.ID,
		UserID:               task.UserID,
		ScheduledTime:        task.ReminderTime.UTC(),
		NotificationChannels: channels,
	})
}

// NewReminderCancelled builds a reminder.cancelled envelope.
func NewReminderCancelled(task *domain.Task, reason string) (Envelope, error) {
	if task.ID == "" || task.UserID == "" {
		return Envelope{}, &ConstructionError{EventType: TypeReminderCancelled, Reason: "task id and user id are required"}
	}
	if reason == "" {
		return Envelope{}, &ConstructionError{EventType: TypeReminderCancelled, Reason: "reason is required"}
	}
	return newEnvelope(TypeReminderCancelled, taskSubject(task.ID), ReminderCancelled{
		TaskID:      task.ID,
		UserID:      task.UserID,
		Reason:      reason,
		CancelledAt: time.Now().UTC(),
	})
}

// Decode restores the typed payload of an envelope. The concrete type of the
// returned value follows the envelope's Type field.
func Decode(env Envelope) (any, error) {
	switch env.Type {
	case TypeTaskCreated:
		var p TaskCreated
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return p, nil
	case TypeTaskUpdated:
		var p TaskUpdated
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return p, nil
	case TypeTaskDeleted:
		var p TaskDeleted
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return p, nil
	case TypeReminderScheduled:
		var p ReminderScheduled
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return p, nil
	case TypeReminderCancelled:
		var p ReminderCancelled
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return p, nil
	default:
		return nil, &UnknownEventTypeError{EventType: env.Type}
	}
}
