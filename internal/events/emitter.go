package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/laraib28/todo-web/internal/domain"
	"github.com/laraib28/todo-web/pkg/telemetry"
)

// AuditLog appends domain events to the local append-only events table.
type AuditLog interface {
	Append(ctx context.Context, ev *domain.AuditEvent) error
}

// Emitter turns committed task mutations into published domain events plus
// audit rows. Every emission is best-effort: failures are logged and counted
// but never propagated, so the HTTP outcome of the triggering request is
// unaffected.
type Emitter struct {
	publisher Publisher
	audit     AuditLog
	logger    *slog.Logger
}

// NewEmitter wires an Emitter. audit may be nil to skip the local event table.
func NewEmitter(publisher Publisher, audit AuditLog, logger *slog.Logger) *Emitter {
	return &Emitter{publisher: publisher, audit: audit, logger: logger}
}

// TaskCreated emits task.created, followed by reminder.scheduled when the new
// task carries a reminder time.
func (e *Emitter) TaskCreated(ctx context.Context, task *domain.Task) {
	if env, err := NewTaskCreated(task); err != nil {
		e.logger.Error("construct task.created", slog.String("task_id", task.ID), slog.String("error", err.Error()))
	} else {
		e.emit(ctx, env)
	}

	if task.ReminderTime != nil {
		e.reminderScheduled(ctx, task)
	}
}

// TaskUpdated emits task.updated for a non-empty change set, then applies the
// reminder transition policy when reminder_time was among the changed fields:
// non-nil → nil cancels, a resulting non-nil value (re)schedules. A move from
// one non-nil time to another emits only reminder.scheduled.
func (e *Emitter) TaskUpdated(ctx context.Context, task *domain.Task, cs domain.ChangeSet, previousReminderTime *time.Time) {
	if cs.Empty() {
		return
	}

	if env, err := NewTaskUpdated(task, cs); err != nil {
		e.logger.Error("construct task.updated", slog.String("task_id", task.ID), slog.String("error", err.Error()))
	} else {
		e.emit(ctx, env)
	}

	if !cs.Changed("reminder_time") {
		return
	}
	switch {
	case previousReminderTime != nil && task.ReminderTime == nil:
		e.reminderCancelled(ctx, task, ReasonReminderRemoved)
	case task.ReminderTime != nil:
		e.reminderScheduled(ctx, task)
	}
}

// TaskDeleted emits task.deleted, followed by reminder.cancelled when the
// deleted task had a reminder. The cancellation is attempted regardless of
// whether the task.deleted publish succeeded.
func (e *Emitter) TaskDeleted(ctx context.Context, task *domain.Task) {
	if env, err := NewTaskDeleted(task); err != nil {
		e.logger.Error("construct task.deleted", slog.String("task_id", task.ID), slog.String("error", err.Error()))
	} else {
		e.emit(ctx, env)
	}

	if task.ReminderTime != nil {
		e.reminderCancelled(ctx, task, ReasonTaskDeleted)
	}
}

func (e *Emitter) reminderScheduled(ctx context.Context, task *domain.Task) {
	env, err := NewReminderScheduled(task)
	if err != nil {
		e.logger.Error("construct reminder.scheduled", slog.String("task_id", task.ID), slog.String("error", err.Error()))
		return
	}
	e.emit(ctx, env)
}

func (e *Emitter) reminderCancelled(ctx context.Context, task *domain.Task, reason string) {
	env, err := NewReminderCancelled(task, reason)
	if err != nil {
		e.logger.Error("construct reminder.cancelled", slog.String("task_id", task.ID), slog.String("error", err.Error()))
		return
	}
	e.emit(ctx, env)
}

// emit publishes one envelope and appends the matching audit row. Both legs
// are independent: a publish failure does not stop the audit append, and
// neither failure reaches the caller.
func (e *Emitter) emit(ctx context.Context, env Envelope) {
	outcome := "ok"
	switch {
	case !e.publisher.Enabled():
		outcome = "disabled"
	default:
		if err := e.publisher.Publish(ctx, env); err != nil {
			outcome = "error"
			e.logger.Error("event publish failed",
				slog.String("event_type", env.Type),
				slog.String("subject", env.Subject),
				slog.String("error", err.Error()),
			)
		}
	}
	telemetry.EventsPublished.WithLabelValues(env.Type, outcome).Inc()

	if e.audit == nil {
		return
	}
	if err := e.audit.Append(ctx, auditRow(env)); err != nil {
		telemetry.AuditAppendFailures.Inc()
		e.logger.Error("audit append failed",
			slog.String("event_type", env.Type),
			slog.String("subject", env.Subject),
			slog.String("error", err.Error()),
		)
	}
}

// auditRow maps an envelope onto the events table schema.
func auditRow(env Envelope) *domain.AuditEvent {
	aggregateType, aggregateID, _ := strings.Cut(env.Subject, "/")
	var userID *string
	// Every payload in the closed set carries user_id; extract it for the
	// actor column without committing to a payload type here.
	var probe struct {
		UserID string `json:"user_id"`
	}
	if json.Unmarshal(env.Data, &probe) == nil && probe.UserID != "" {
		userID = &probe.UserID
	}
	meta, _ := json.Marshal(map[string]string{"event_id": env.ID, "source": env.Source})
	return &domain.AuditEvent{
		ID:            uuid.New().String(),
		EventType:     env.Type,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		UserID:        userID,
		Payload:       env.Data,
		Metadata:      meta,
		CreatedAt:     env.Time,
	}
}
