package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/laraib28/todo-web/internal/domain"
)

// TaskRepository abstracts all database access for tasks.
type TaskRepository interface {
	ListByUser(ctx context.Context, userID string) ([]*domain.Task, error)
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	Create(ctx context.Context, task *domain.Task) error
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
}

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository wraps a pgxpool with the TaskRepository interface.
func NewTaskRepository(pool *pgxpool.Pool) TaskRepository {
	return &taskRepository{pool: pool}
}

const taskColumns = `
	id, user_id, title, description, priority, is_complete,
	created_at, updated_at, due_date, reminder_time, reminder_config,
	recurrence_pattern_id, recurrence_instance_id, is_recurring
`

func (r *taskRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks for user %s: %w", userID, err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = $1
	`, id)

	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.TaskNotFoundError{TaskID: id}
		}
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tasks
			(id, user_id, title, description, priority, is_complete,
			 created_at, updated_at, due_date, reminder_time, reminder_config,
			 recurrence_pattern_id, recurrence_instance_id, is_recurring)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`,
		task.ID, task.UserID, task.Title, task.Description, string(task.Priority),
		task.IsComplete, task.CreatedAt, task.UpdatedAt, task.DueDate,
		task.ReminderTime, task.ReminderConfig,
		task.RecurrencePatternID, task.RecurrenceInstanceID, task.IsRecurring,
	)
	if err != nil {
		return fmt.Errorf("create task %s: %w", task.ID, translateConstraint(err))
	}
	return nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tasks
		SET title = $1, description = $2, priority = $3, is_complete = $4,
		    updated_at = $5, due_date = $6, reminder_time = $7, reminder_config = $8
		WHERE id = $9
	`,
		task.Title, task.Description, string(task.Priority), task.IsComplete,
		task.UpdatedAt, task.DueDate, task.ReminderTime, task.ReminderConfig,
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("update task %s: %w", task.ID, translateConstraint(err))
	}
	if tag.RowsAffected() == 0 {
		return &domain.TaskNotFoundError{TaskID: task.ID}
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.TaskNotFoundError{TaskID: id}
	}
	return nil
}

// scanTask reads a task row from any pgx row type.
func scanTask(row interface {
	Scan(...any) error
}) (*domain.Task, error) {
	var task domain.Task
	var priority string
	err := row.Scan(
		&task.ID, &task.UserID, &task.Title, &task.Description, &priority,
		&task.IsComplete, &task.CreatedAt, &task.UpdatedAt, &task.DueDate,
		&task.ReminderTime, &task.ReminderConfig,
		&task.RecurrencePatternID, &task.RecurrenceInstanceID, &task.IsRecurring,
	)
	if err != nil {
		return nil, fmt.Errorf("scan task: %w", err)
	}
	task.Priority = domain.Priority(priority)
	return &task, nil
}
