package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/laraib28/todo-web/internal/domain"
)

// ReminderRepository abstracts database access for the reminder lifecycle.
// The worker owns all writes; the API only reads.
type ReminderRepository interface {
	ListByUser(ctx context.Context, userID string) ([]*domain.Reminder, error)
	ListByTask(ctx context.Context, taskID string) ([]*domain.Reminder, error)
	GetByID(ctx context.Context, id string) (*domain.Reminder, error)

	// Supersede cancels any other pending reminders for the task and inserts
	// the new one. The insert is idempotent on the reminder ID so replayed
	// events do not create duplicates.
	Supersede(ctx context.Context, reminder *domain.Reminder) error

	// CancelPendingByTask cancels every pending reminder for the task and
	// returns how many rows changed state.
	CancelPendingByTask(ctx context.Context, taskID string) (int64, error)

	// ListDue returns pending reminders whose scheduled time is at or before
	// now, oldest first.
	ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.Reminder, error)

	// MarkFired moves a reminder from pending to fired. It fails with an
	// InvalidTransitionError if the reminder is already terminal.
	MarkFired(ctx context.Context, id string, firedAt time.Time) error
}

type reminderRepository struct {
	pool *pgxpool.Pool
}

func NewReminderRepository(pool *pgxpool.Pool) ReminderRepository {
	return &reminderRepository{pool: pool}
}

const reminderColumns = `
	id, task_id, user_id, scheduled_time, status, notification_channels,
	created_at, fired_at
`

func (r *reminderRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Reminder, error) {
	return r.list(ctx, "user_id", userID)
}

func (r *reminderRepository) ListByTask(ctx context.Context, taskID string) ([]*domain.Reminder, error) {
	return r.list(ctx, "task_id", taskID)
}

func (r *reminderRepository) list(ctx context.Context, column, value string) ([]*domain.Reminder, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+reminderColumns+`
		FROM reminders
		WHERE `+column+` = $1
		ORDER BY scheduled_time DESC
	`, value)
	if err != nil {
		return nil, fmt.Errorf("list reminders by %s: %w", column, err)
	}
	defer rows.Close()

	var reminders []*domain.Reminder
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}
	return reminders, rows.Err()
}

func (r *reminderRepository) GetByID(ctx context.Context, id string) (*domain.Reminder, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+reminderColumns+`
		FROM reminders
		WHERE id = $1
	`, id)

	reminder, err := scanReminder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.ReminderNotFoundError{ReminderID: id}
		}
		return nil, err
	}
	return reminder, nil
}

func (r *reminderRepository) Supersede(ctx context.Context, reminder *domain.Reminder) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin supersede: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE reminders
		SET status = $1
		WHERE task_id = $2 AND status = $3 AND id <> $4
	`, string(domain.ReminderCancelled), reminder.TaskID, string(domain.ReminderPending), reminder.ID)
	if err != nil {
		return fmt.Errorf("cancel superseded reminders for task %s: %w", reminder.TaskID, err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO reminders
			(id, task_id, user_id, scheduled_time, status, notification_channels, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`,
		reminder.ID, reminder.TaskID, reminder.UserID, reminder.ScheduledTime,
		string(reminder.Status), reminder.NotificationChannels, reminder.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert reminder %s: %w", reminder.ID, translateConstraint(err))
	}

	return tx.Commit(ctx)
}

func (r *reminderRepository) CancelPendingByTask(ctx context.Context, taskID string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE reminders
		SET status = $1
		WHERE task_id = $2 AND status = $3
	`, string(domain.ReminderCancelled), taskID, string(domain.ReminderPending))
	if err != nil {
		return 0, fmt.Errorf("cancel pending reminders for task %s: %w", taskID, err)
	}
	return tag.RowsAffected(), nil
}

func (r *reminderRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.Reminder, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+reminderColumns+`
		FROM reminders
		WHERE status = $1 AND scheduled_time <= $2
		ORDER BY scheduled_time ASC
		LIMIT $3
	`, string(domain.ReminderPending), now, limit)
	if err != nil {
		return nil, fmt.Errorf("list due reminders: %w", err)
	}
	defer rows.Close()

	var reminders []*domain.Reminder
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}
	return reminders, rows.Err()
}

func (r *reminderRepository) MarkFired(ctx context.Context, id string, firedAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE reminders
		SET status = $1, fired_at = $2
		WHERE id = $3 AND status = $4
	`, string(domain.ReminderFired), firedAt, id, string(domain.ReminderPending))
	if err != nil {
		return fmt.Errorf("mark reminder %s fired: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		current, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return &domain.InvalidTransitionError{From: current.Status, To: domain.ReminderFired}
	}
	return nil
}

func scanReminder(row interface {
	Scan(...any) error
}) (*domain.Reminder, error) {
	var reminder domain.Reminder
	var status string
	err := row.Scan(
		&reminder.ID, &reminder.TaskID, &reminder.UserID, &reminder.ScheduledTime,
		&status, &reminder.NotificationChannels, &reminder.CreatedAt, &reminder.FiredAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan reminder: %w", err)
	}
	reminder.Status = domain.ReminderStatus(status)
	return &reminder, nil
}
