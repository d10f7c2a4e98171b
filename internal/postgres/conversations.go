package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/laraib28/todo-web/internal/domain"
)

// ConversationRepository stores the per-user chat transcript used to give the
// assistant short-term memory.
type ConversationRepository interface {
	Append(ctx context.Context, msg *domain.ConversationMessage) error

	// Recent returns the newest messages for the user in chronological order.
	Recent(ctx context.Context, userID string, limit int) ([]*domain.ConversationMessage, error)
}

type conversationRepository struct {
	pool *pgxpool.Pool
}

func NewConversationRepository(pool *pgxpool.Pool) ConversationRepository {
	return &conversationRepository{pool: pool}
}

func (r *conversationRepository) Append(ctx context.Context, msg *domain.ConversationMessage) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO conversation_history (id, user_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, msg.ID, msg.UserID, msg.Role, msg.Content, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("append conversation message: %w", translateConstraint(err))
	}
	return nil
}

func (r *conversationRepository) Recent(ctx context.Context, userID string, limit int) ([]*domain.ConversationMessage, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, role, content, created_at
		FROM (
			SELECT id, user_id, role, content, created_at
			FROM conversation_history
			WHERE user_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("load conversation for user %s: %w", userID, err)
	}
	defer rows.Close()

	var messages []*domain.ConversationMessage
	for rows.Next() {
		var msg domain.ConversationMessage
		if err := rows.Scan(&msg.ID, &msg.UserID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation message: %w", err)
		}
		messages = append(messages, &msg)
	}
	return messages, rows.Err()
}
