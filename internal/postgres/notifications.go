package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/laraib28/todo-web/internal/domain"
)

// NotificationRepository is the append-only delivery log. Rows only ever move
// forward (pending to sent or failed); nothing is updated back to pending and
// nothing is deleted.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	MarkSent(ctx context.Context, id string, attempt int, sentAt time.Time) error
	MarkFailed(ctx context.Context, id string, attempt int, lastError string) error
	ListByReminder(ctx context.Context, reminderID string) ([]*domain.Notification, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Notification, error)
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications
			(id, reminder_id, user_id, channel, status, attempt, last_error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`,
		n.ID, n.ReminderID, n.UserID, string(n.Channel), string(n.Status),
		n.Attempt, n.LastError, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create notification %s: %w", n.ID, translateConstraint(err))
	}
	return nil
}

func (r *notificationRepository) MarkSent(ctx context.Context, id string, attempt int, sentAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET status = $1, attempt = $2, sent_at = $3
		WHERE id = $4
	`, string(domain.NotificationSent), attempt, sentAt, id)
	if err != nil {
		return fmt.Errorf("mark notification %s sent: %w", id, err)
	}
	return nil
}

func (r *notificationRepository) MarkFailed(ctx context.Context, id string, attempt int, lastError string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET status = $1, attempt = $2, last_error = $3
		WHERE id = $4
	`, string(domain.NotificationFailed), attempt, lastError, id)
	if err != nil {
		return fmt.Errorf("mark notification %s failed: %w", id, err)
	}
	return nil
}

func (r *notificationRepository) ListByReminder(ctx context.Context, reminderID string) ([]*domain.Notification, error) {
	return r.list(ctx, "reminder_id", reminderID)
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Notification, error) {
	return r.list(ctx, "user_id", userID)
}

func (r *notificationRepository) list(ctx context.Context, column, value string) ([]*domain.Notification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, reminder_id, user_id, channel, status, attempt, last_error,
		       created_at, sent_at
		FROM notifications
		WHERE `+column+` = $1
		ORDER BY created_at DESC
	`, value)
	if err != nil {
		return nil, fmt.Errorf("list notifications by %s: %w", column, err)
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		var n domain.Notification
		var channel, status string
		err := rows.Scan(
			&n.ID, &n.ReminderID, &n.UserID, &channel, &status,
			&n.Attempt, &n.LastError, &n.CreatedAt, &n.SentAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Channel = domain.NotificationChannel(channel)
		n.Status = domain.NotificationStatus(status)
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}
