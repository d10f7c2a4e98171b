package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/laraib28/todo-web/internal/domain"
)

// RecurrenceRepository abstracts database access for recurrence patterns.
type RecurrenceRepository interface {
	ListByUser(ctx context.Context, userID string) ([]*domain.RecurrencePattern, error)
	GetByID(ctx context.Context, id string) (*domain.RecurrencePattern, error)
	Create(ctx context.Context, pattern *domain.RecurrencePattern) error
	Update(ctx context.Context, pattern *domain.RecurrencePattern) error
	Delete(ctx context.Context, id string) error
}

type recurrenceRepository struct {
	pool *pgxpool.Pool
}

func NewRecurrenceRepository(pool *pgxpool.Pool) RecurrenceRepository {
	return &recurrenceRepository{pool: pool}
}

const patternColumns = `
	id, user_id, task_template, frequency, "interval", days_of_week,
	day_of_month, end_date, max_occurrences, timezone, last_generated_at,
	created_at, updated_at
`

func (r *recurrenceRepository) ListByUser(ctx context.Context, userID string) ([]*domain.RecurrencePattern, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+patternColumns+`
		FROM recurrence_patterns
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list recurrence patterns for user %s: %w", userID, err)
	}
	defer rows.Close()

	var patterns []*domain.RecurrencePattern
	for rows.Next() {
		pattern, err := scanPattern(rows)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, pattern)
	}
	return patterns, rows.Err()
}

func (r *recurrenceRepository) GetByID(ctx context.Context, id string) (*domain.RecurrencePattern, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+patternColumns+`
		FROM recurrence_patterns
		WHERE id = $1
	`, id)

	pattern, err := scanPattern(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.PatternNotFoundError{PatternID: id}
		}
		return nil, err
	}
	return pattern, nil
}

func (r *recurrenceRepository) Create(ctx context.Context, pattern *domain.RecurrencePattern) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO recurrence_patterns
			(id, user_id, task_template, frequency, "interval", days_of_week,
			 day_of_month, end_date, max_occurrences, timezone, last_generated_at,
			 created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		pattern.ID, pattern.UserID, pattern.TaskTemplate, string(pattern.Frequency),
		pattern.Interval, pattern.DaysOfWeek, pattern.DayOfMonth, pattern.EndDate,
		pattern.MaxOccurrences, pattern.Timezone, pattern.LastGeneratedAt,
		pattern.CreatedAt, pattern.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create recurrence pattern %s: %w", pattern.ID, translateConstraint(err))
	}
	return nil
}

func (r *recurrenceRepository) Update(ctx context.Context, pattern *domain.RecurrencePattern) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE recurrence_patterns
		SET task_template = $1, frequency = $2, "interval" = $3, days_of_week = $4,
		    day_of_month = $5, end_date = $6, max_occurrences = $7, timezone = $8,
		    last_generated_at = $9, updated_at = $10
		WHERE id = $11
	`,
		pattern.TaskTemplate, string(pattern.Frequency), pattern.Interval,
		pattern.DaysOfWeek, pattern.DayOfMonth, pattern.EndDate,
		pattern.MaxOccurrences, pattern.Timezone, pattern.LastGeneratedAt,
		pattern.UpdatedAt, pattern.ID,
	)
	if err != nil {
		return fmt.Errorf("update recurrence pattern %s: %w", pattern.ID, translateConstraint(err))
	}
	if tag.RowsAffected() == 0 {
		return &domain.PatternNotFoundError{PatternID: pattern.ID}
	}
	return nil
}

func (r *recurrenceRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM recurrence_patterns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete recurrence pattern %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.PatternNotFoundError{PatternID: id}
	}
	return nil
}

func scanPattern(row interface {
	Scan(...any) error
}) (*domain.RecurrencePattern, error) {
	var pattern domain.RecurrencePattern
	var frequency string
	err := row.Scan(
		&pattern.ID, &pattern.UserID, &pattern.TaskTemplate, &frequency,
		&pattern.Interval, &pattern.DaysOfWeek, &pattern.DayOfMonth,
		&pattern.EndDate, &pattern.MaxOccurrences, &pattern.Timezone,
		&pattern.LastGeneratedAt, &pattern.CreatedAt, &pattern.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan recurrence pattern: %w", err)
	}
	pattern.Frequency = domain.Frequency(frequency)
	return &pattern, nil
}
