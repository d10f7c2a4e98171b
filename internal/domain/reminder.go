package domain

import "time"

// ReminderStatus represents the lifecycle state of a reminder.
type ReminderStatus string

const (
	ReminderPending   ReminderStatus = "pending"
	ReminderFired     ReminderStatus = "fired"
	ReminderCancelled ReminderStatus = "cancelled"
)

// Valid reports whether s is a known reminder status.
func (s ReminderStatus) Valid() bool {
	return s == ReminderPending || s == ReminderFired || s == ReminderCancelled
}

// IsTerminal returns true if no further state transitions are possible.
func (s ReminderStatus) IsTerminal() bool {
	return s == ReminderFired || s == ReminderCancelled
}

// CanTransitionTo reports whether the transition s → next is legal.
// The only legal transitions are pending → fired and pending → cancelled.
func (s ReminderStatus) CanTransitionTo(next ReminderStatus) bool {
	return s == ReminderPending && (next == ReminderFired || next == ReminderCancelled)
}

// Reminder is a scheduled notification for a task. Rows are created and
// cancelled by the reminder worker reacting to published domain events;
// the API only reads them.
type Reminder struct {
	ID                   string         `json:"id"`
	TaskID               string         `json:"task_id"`
	UserID               string         `json:"user_id"`
	ScheduledTime        time.Time      `json:"scheduled_time"`
	Status               ReminderStatus `json:"status"`
	NotificationChannels []string       `json:"notification_channels"`
	CreatedAt            time.Time      `json:"created_at"`
	FiredAt              *time.Time     `json:"fired_at,omitempty"`
}

// NotificationChannel is a delivery channel for reminder notifications.
type NotificationChannel string

const (
	ChannelEmail NotificationChannel = "email"
	ChannelPush  NotificationChannel = "push"
	ChannelSMS   NotificationChannel = "sms"
)

// Valid reports whether ch is a known delivery channel.
func (ch NotificationChannel) Valid() bool {
	return ch == ChannelEmail || ch == ChannelPush || ch == ChannelSMS
}

// NotificationStatus is the delivery state of a single notification attempt.
type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
)

// Notification is one entry in the append-only delivery log: a delivery on a
// single channel for a fired reminder.
type Notification struct {
	ID         string              `json:"id"`
	ReminderID string              `json:"reminder_id"`
	UserID     string              `json:"user_id"`
	Channel    NotificationChannel `json:"channel"`
	Status     NotificationStatus  `json:"status"`
	Attempt    int                 `json:"attempt"`
	LastError  string              `json:"last_error,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	SentAt     *time.Time          `json:"sent_at,omitempty"`
}
