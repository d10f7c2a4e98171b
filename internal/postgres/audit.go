package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/laraib28/todo-web/internal/domain"
)

// AuditRepository persists the local append-only events table. It satisfies
// events.AuditLog so the emitter can mirror every published envelope.
type AuditRepository interface {
	Append(ctx context.Context, ev *domain.AuditEvent) error
	ListByAggregate(ctx context.Context, aggregateType, aggregateID string) ([]*domain.AuditEvent, error)
}

type auditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) AuditRepository {
	return &auditRepository{pool: pool}
}

func (r *auditRepository) Append(ctx context.Context, ev *domain.AuditEvent) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO events
			(id, event_type, aggregate_type, aggregate_id, user_id, payload, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		ev.ID, ev.EventType, ev.AggregateType, ev.AggregateID, ev.UserID,
		ev.Payload, ev.Metadata, ev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append event %s: %w", ev.ID, translateConstraint(err))
	}
	return nil
}

func (r *auditRepository) ListByAggregate(ctx context.Context, aggregateType, aggregateID string) ([]*domain.AuditEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, event_type, aggregate_type, aggregate_id, user_id, payload, metadata, created_at
		FROM events
		WHERE aggregate_type = $1 AND aggregate_id = $2
		ORDER BY created_at ASC
	`, aggregateType, aggregateID)
	if err != nil {
		return nil, fmt.Errorf("list events for %s/%s: %w", aggregateType, aggregateID, err)
	}
	defer rows.Close()

	var events []*domain.AuditEvent
	for rows.Next() {
		var ev domain.AuditEvent
		err := rows.Scan(
			&ev.ID, &ev.EventType, &ev.AggregateType, &ev.AggregateID,
			&ev.UserID, &ev.Payload, &ev.Metadata, &ev.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, &ev)
	}
	return events, rows.Err()
}
