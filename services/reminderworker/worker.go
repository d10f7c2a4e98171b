// Package reminderworker materializes reminder lifecycle events into the
// reminders table and fires due reminders over the configured notification
// channels. A single instance fires at a time via Redis leader election; the
// event consumer runs on every instance inside one consumer group.
package reminderworker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/laraib28/todo-web/internal/domain"
	"github.com/laraib28/todo-web/internal/events"
	"github.com/laraib28/todo-web/internal/kafka"
	"github.com/laraib28/todo-web/internal/notify"
	"github.com/laraib28/todo-web/internal/postgres"
	redisstore "github.com/laraib28/todo-web/internal/redis"
	"github.com/laraib28/todo-web/pkg/retry"
	"github.com/laraib28/todo-web/pkg/telemetry"
)

const (
	pollInterval = 15 * time.Second
	dueBatchSize = 100
)

// sendRetry is the per-channel delivery retry policy.
var sendRetry = retry.Config{
	MaxAttempts: 3,
	BaseDelay:   time.Second,
	MaxDelay:    10 * time.Second,
}

// Worker consumes reminder events and delivers due reminders.
type Worker struct {
	reminders     postgres.ReminderRepository
	notifications postgres.NotificationRepository
	users         postgres.UserRepository
	registry      *notify.Registry
	consumer      kafka.Consumer
	elector       *redisstore.Elector
	logger        *slog.Logger
	now           func() time.Time
}

func New(
	reminders postgres.ReminderRepository,
	notifications postgres.NotificationRepository,
	users postgres.UserRepository,
	registry *notify.Registry,
	consumer kafka.Consumer,
	elector *redisstore.Elector,
	logger *slog.Logger,
) *Worker {
	return &Worker{
		reminders:     reminders,
		notifications: notifications,
		users:         users,
		registry:      registry,
		consumer:      consumer,
		elector:       elector,
		logger:        logger,
		now:           time.Now,
	}
}

// Run starts the event consumer and the firing loop, blocking until ctx is
// cancelled.
func (w *Worker) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.consumer.Subscribe(ctx, w.HandleMessage)
	}()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	w.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			w.elector.Resign(context.Background())
			return nil
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("reminder event consumer: %w", err)
			}
			return nil
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

// HandleMessage applies one reminder event. Processing is idempotent, so the
// at-least-once delivery of the consumer group is safe: a replayed
// reminder.scheduled hits the same derived reminder ID, and a replayed
// cancellation finds nothing pending.
func (w *Worker) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		// Malformed messages are logged and committed, not retried forever.
		w.logger.Error("drop malformed event", slog.String("error", err.Error()))
		return nil
	}

	payload, err := events.Decode(env)
	if err != nil {
		var unknown *events.UnknownEventTypeError
		if errors.As(err, &unknown) {
			w.logger.Warn("drop unknown event type", slog.String("type", env.Type))
			return nil
		}
		w.logger.Error("drop undecodable event",
			slog.String("type", env.Type),
			slog.String("error", err.Error()),
		)
		return nil
	}

	switch p := payload.(type) {
	case events.ReminderScheduled:
		return w.applyScheduled(ctx, env, p)
	case events.ReminderCancelled:
		return w.applyCancelled(ctx, p)
	default:
		// Task events on this topic are not expected; ignore defensively.
		return nil
	}
}

func (w *Worker) applyScheduled(ctx context.Context, env events.Envelope, p events.ReminderScheduled) error {
	reminder := &domain.Reminder{
		ID:                   reminderIDFor(env.ID),
		TaskID:               p.TaskID,
		UserID:               p.UserID,
		ScheduledTime:        p.ScheduledTime,
		Status:               domain.ReminderPending,
		NotificationChannels: p.NotificationChannels,
		CreatedAt:            env.Time,
	}
	if err := w.reminders.Supersede(ctx, reminder); err != nil {
		return fmt.Errorf("apply reminder.scheduled for task %s: %w", p.TaskID, err)
	}
	telemetry.RemindersScheduled.Inc()
	w.logger.Info("reminder scheduled",
		slog.String("reminder_id", reminder.ID),
		slog.String("task_id", p.TaskID),
		slog.Time("scheduled_time", p.ScheduledTime),
	)
	return nil
}

func (w *Worker) applyCancelled(ctx context.Context, p events.ReminderCancelled) error {
	n, err := w.reminders.CancelPendingByTask(ctx, p.TaskID)
	if err != nil {
		return fmt.Errorf("apply reminder.cancelled for task %s: %w", p.TaskID, err)
	}
	if n > 0 {
		telemetry.RemindersCancelled.Add(float64(n))
		w.logger.Info("reminders cancelled",
			slog.String("task_id", p.TaskID),
			slog.String("reason", p.Reason),
			slog.Int64("count", n),
		)
	}
	return nil
}

// reminderIDFor derives a stable reminder ID from the event ID, making the
// scheduled-event insert idempotent under redelivery.
func reminderIDFor(eventID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("reminder:"+eventID)).String()
}

func (w *Worker) tick(ctx context.Context) {
	if !w.elector.AcquireOrRenew(ctx) {
		return
	}
	if err := w.fireDue(ctx); err != nil {
		w.logger.Error("fireDue", slog.String("error", err.Error()))
	}
}

func (w *Worker) fireDue(ctx context.Context) error {
	due, err := w.reminders.ListDue(ctx, w.now().UTC(), dueBatchSize)
	if err != nil {
		return err
	}
	for _, reminder := range due {
		if err := w.fire(ctx, reminder); err != nil {
			w.logger.Error("fire reminder",
				slog.String("reminder_id", reminder.ID),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}

// fire transitions the reminder to fired and delivers a notification on each
// of its channels. The state transition comes first so a crash mid-delivery
// can never fire the same reminder twice.
func (w *Worker) fire(ctx context.Context, reminder *domain.Reminder) error {
	if err := w.reminders.MarkFired(ctx, reminder.ID, w.now().UTC()); err != nil {
		var invalid *domain.InvalidTransitionError
		if errors.As(err, &invalid) {
			// Lost the race to another instance or a cancellation.
			return nil
		}
		return err
	}
	telemetry.RemindersFired.Inc()

	msg := notify.Message{
		UserID:     reminder.UserID,
		TaskID:     reminder.TaskID,
		ReminderID: reminder.ID,
		Subject:    "Task reminder",
		Body:       fmt.Sprintf("Your task reminder scheduled for %s is due.", reminder.ScheduledTime.Format(time.RFC3339)),
	}
	if user, err := w.users.GetByID(ctx, reminder.UserID); err == nil {
		msg.EmailTo = user.Email
	} else {
		w.logger.Warn("resolve reminder recipient",
			slog.String("user_id", reminder.UserID),
			slog.String("error", err.Error()),
		)
	}

	for _, channel := range reminder.NotificationChannels {
		w.deliver(ctx, reminder, domain.NotificationChannel(channel), msg)
	}
	return nil
}

// deliver writes one delivery-log row and drives it to sent or failed.
func (w *Worker) deliver(ctx context.Context, reminder *domain.Reminder, channel domain.NotificationChannel, msg notify.Message) {
	notification := &domain.Notification{
		ID:         uuid.New().String(),
		ReminderID: reminder.ID,
		UserID:     reminder.UserID,
		Channel:    channel,
		Status:     domain.NotificationPending,
		CreatedAt:  w.now().UTC(),
	}
	if err := w.notifications.Create(ctx, notification); err != nil {
		w.logger.Error("create notification row",
			slog.String("reminder_id", reminder.ID),
			slog.String("channel", string(channel)),
			slog.String("error", err.Error()),
		)
		return
	}

	sender, err := w.registry.Get(channel)
	if err != nil {
		w.failNotification(ctx, notification, 0, err)
		return
	}

	attempts := 0
	cfg := sendRetry
	cfg.OnRetry = func(attempt int, err error) {
		attempts = attempt
		telemetry.NotificationRetries.WithLabelValues(string(channel)).Inc()
		w.logger.Warn("notification send retry",
			slog.String("notification_id", notification.ID),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
		)
	}

	if err := retry.Do(ctx, cfg, func() error { return sender.Send(ctx, msg) }); err != nil {
		w.failNotification(ctx, notification, attempts+1, err)
		return
	}

	if err := w.notifications.MarkSent(ctx, notification.ID, attempts, w.now().UTC()); err != nil {
		w.logger.Error("mark notification sent",
			slog.String("notification_id", notification.ID),
			slog.String("error", err.Error()),
		)
	}
	telemetry.NotificationsSent.WithLabelValues(string(channel), "sent").Inc()
}

func (w *Worker) failNotification(ctx context.Context, n *domain.Notification, attempt int, cause error) {
	telemetry.NotificationsSent.WithLabelValues(string(n.Channel), "failed").Inc()
	if err := w.notifications.MarkFailed(ctx, n.ID, attempt, cause.Error()); err != nil {
		w.logger.Error("mark notification failed",
			slog.String("notification_id", n.ID),
			slog.String("error", err.Error()),
		)
	}
}
