package domain

import "fmt"

// TaskNotFoundError is returned when a task ID does not exist.
type TaskNotFoundError struct {
	TaskID string
}

func (e *TaskNotFoundError) Error() string {
	return fmt.Sprintf("task not found: %s", e.TaskID)
}

// ReminderNotFoundError is returned when a reminder ID does not exist.
type ReminderNotFoundError struct {
	ReminderID string
}

func (e *ReminderNotFoundError) Error() string {
	return fmt.Sprintf("reminder not found: %s", e.ReminderID)
}

// PatternNotFoundError is returned when a recurrence pattern ID does not exist.
type PatternNotFoundError struct {
	PatternID string
}

func (e *PatternNotFoundError) Error() string {
	return fmt.Sprintf("recurrence pattern not found: %s", e.PatternID)
}

// UserNotFoundError is returned when a user cannot be resolved.
type UserNotFoundError struct {
	UserID string
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// NotOwnerError is returned when a user touches a resource owned by someone else.
type NotOwnerError struct {
	Resource string
	ID       string
}

func (e *NotOwnerError) Error() string {
	return fmt.Sprintf("not authorized to access %s %s", e.Resource, e.ID)
}

// ValidationError is returned when a field fails a write-time constraint.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// EmailTakenError is returned when registering with an already-used email.
type EmailTakenError struct {
	Email string
}

func (e *EmailTakenError) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// InvalidCredentialsError is returned on login failure. The message is the
// same for an unknown email and a wrong password.
type InvalidCredentialsError struct{}

func (e *InvalidCredentialsError) Error() string {
	return "invalid credentials"
}

// InvalidTransitionError is returned when a reminder state transition is not
// allowed by the lifecycle model.
type InvalidTransitionError struct {
	From ReminderStatus
	To   ReminderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("illegal reminder transition %s -> %s", e.From, e.To)
}

// UnsupportedChannelError is returned when no sender is registered for a
// notification channel.
type UnsupportedChannelError struct {
	Channel string
}

func (e *UnsupportedChannelError) Error() string {
	return fmt.Sprintf("no sender registered for channel %q", e.Channel)
}

// ConflictError is returned when a database constraint rejects a write.
type ConflictError struct {
	Detail string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict: %s", e.Detail)
}
