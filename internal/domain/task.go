package domain

import (
	"reflect"
	"time"
)

// Priority represents how urgent a task is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priority levels.
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

const (
	MaxTitleLen       = 200
	MaxDescriptionLen = 2000
)

// ReminderConfig is the free-form reminder configuration stored alongside a
// task. The only key this service interprets is "channels".
type ReminderConfig map[string]any

// Channels extracts the notification channel list from the config,
// defaulting to ["email"] when the config is nil or has no "channels" key.
func (c ReminderConfig) Channels() []string {
	raw, ok := c["channels"]
	if !ok {
		return []string{string(ChannelEmail)}
	}
	switch v := raw.(type) {
	case []string:
		if len(v) == 0 {
			return []string{string(ChannelEmail)}
		}
		return v
	case []any:
		// JSON decoding produces []any; coerce the string members.
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			return []string{string(ChannelEmail)}
		}
		return out
	default:
		return []string{string(ChannelEmail)}
	}
}

// Task is a single todo item owned by a user. A non-nil ReminderTime means a
// reminder should exist for it; ReminderConfig is only meaningful in that case.
type Task struct {
	ID                   string         `json:"id"`
	UserID               string         `json:"user_id"`
	Title                string         `json:"title"`
	Description          string         `json:"description"`
	Priority             Priority       `json:"priority"`
	IsComplete           bool           `json:"is_complete"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DueDate              *time.Time     `json:"due_date,omitempty"`
	ReminderTime         *time.Time     `json:"reminder_time,omitempty"`
	ReminderConfig       ReminderConfig `json:"reminder_config,omitempty"`
	RecurrencePatternID  *string        `json:"recurrence_pattern_id,omitempty"`
	RecurrenceInstanceID *string        `json:"recurrence_instance_id,omitempty"`
	IsRecurring          bool           `json:"is_recurring"`
}

// Validate checks the write-time constraints on a task.
func (t *Task) Validate() error {
	if len(t.Title) == 0 || len(t.Title) > MaxTitleLen {
		return &ValidationError{Field: "title", Reason: "must be 1-200 characters"}
	}
	if len(t.Description) > MaxDescriptionLen {
		return &ValidationError{Field: "description", Reason: "must be at most 2000 characters"}
	}
	if !t.Priority.Valid() {
		return &ValidationError{Field: "priority", Reason: "must be one of low, medium, high"}
	}
	if t.ReminderConfig != nil && t.ReminderTime == nil {
		return &ValidationError{Field: "reminder_config", Reason: "requires reminder_time to be set"}
	}
	return nil
}

// NotificationChannels returns the channels a reminder for this task should
// use, applying the ["email"] default.
func (t *Task) NotificationChannels() []string {
	return t.ReminderConfig.Channels()
}

// ChangeSet records a field-level diff of a task update. Changes and
// PreviousValues always hold exactly the same keys.
type ChangeSet struct {
	Changes        map[string]any `json:"changes"`
	PreviousValues map[string]any `json:"previous_values"`
}

// Empty reports whether no field actually changed.
func (c ChangeSet) Empty() bool { return len(c.Changes) == 0 }

// Changed reports whether the named field is part of the diff.
func (c ChangeSet) Changed(field string) bool {
	_, ok := c.Changes[field]
	return ok
}

func (c *ChangeSet) record(field string, oldVal, newVal any) {
	c.Changes[field] = newVal
	c.PreviousValues[field] = oldVal
}

// Diff computes the field-level difference between two versions of a task.
// Only fields whose values actually differ are recorded; a field merely being
// present in an update request is not enough.
func Diff(oldTask, newTask *Task) ChangeSet {
	cs := ChangeSet{
		Changes:        make(map[string]any),
		PreviousValues: make(map[string]any),
	}
	if oldTask.Title != newTask.Title {
		cs.record("title", oldTask.Title, newTask.Title)
	}
	if oldTask.Description != newTask.Description {
		cs.record("description", oldTask.Description, newTask.Description)
	}
	if oldTask.Priority != newTask.Priority {
		cs.record("priority", string(oldTask.Priority), string(newTask.Priority))
	}
	if oldTask.IsComplete != newTask.IsComplete {
		cs.record("is_complete", oldTask.IsComplete, newTask.IsComplete)
	}
	if !timePtrEqual(oldTask.DueDate, newTask.DueDate) {
		cs.record("due_date", oldTask.DueDate, newTask.DueDate)
	}
	if !timePtrEqual(oldTask.ReminderTime, newTask.ReminderTime) {
		cs.record("reminder_time", oldTask.ReminderTime, newTask.ReminderTime)
	}
	if !reflect.DeepEqual(oldTask.ReminderConfig, newTask.ReminderConfig) {
		cs.record("reminder_config", oldTask.ReminderConfig, newTask.ReminderConfig)
	}
	return cs
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
