package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/laraib28/todo-web/internal/domain"
	"github.com/laraib28/todo-web/internal/events"
	"github.com/laraib28/todo-web/internal/postgres"
	"github.com/laraib28/todo-web/pkg/telemetry"
	"github.com/laraib28/todo-web/services/api/middleware"
)

// Tasks handles the task CRUD surface. Every mutation persists first, then
// hands the outcome to the emitter; event delivery never affects the HTTP
// response.
type Tasks struct {
	repo    postgres.TaskRepository
	emitter *events.Emitter
	logger  *slog.Logger
}

func NewTasks(repo postgres.TaskRepository, emitter *events.Emitter, logger *slog.Logger) *Tasks {
	return &Tasks{repo: repo, emitter: emitter, logger: logger}
}

// taskRequest is the JSON body for task create and update. Raw fields keep
// "absent" and "null" distinguishable, which the reminder lifecycle needs:
// an explicit null clears the reminder, an absent field leaves it alone.
type taskRequest struct {
	raw map[string]json.RawMessage

	Title          string                `json:"title"`
	Description    string                `json:"description"`
	Priority       string                `json:"priority"`
	IsComplete     bool                  `json:"is_complete"`
	DueDate        *time.Time            `json:"due_date"`
	ReminderTime   *time.Time            `json:"reminder_time"`
	ReminderConfig domain.ReminderConfig `json:"reminder_config"`
}

func decodeTaskRequest(r *http.Request) (*taskRequest, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, err
	}
	req := &taskRequest{raw: raw}
	for key, val := range raw {
		var dst any
		switch key {
		case "title":
			dst = &req.Title
		case "description":
			dst = &req.Description
		case "priority":
			dst = &req.Priority
		case "is_complete":
			dst = &req.IsComplete
		case "due_date":
			dst = &req.DueDate
		case "reminder_time":
			dst = &req.ReminderTime
		case "reminder_config":
			dst = &req.ReminderConfig
		default:
			continue
		}
		if err := json.Unmarshal(val, dst); err != nil {
			return nil, err
		}
	}
	return req, nil
}

func (req *taskRequest) has(field string) bool {
	_, ok := req.raw[field]
	return ok
}

// List handles GET /api/tasks.
func (h *Tasks) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	tasks, err := h.repo.ListByUser(r.Context(), userID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Create handles POST /api/tasks.
func (h *Tasks) Create(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("api").Start(r.Context(), "tasks.create")
	defer span.End()

	req, err := decodeTaskRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.has("priority") {
		req.Priority = string(domain.PriorityMedium)
	}

	now := time.Now().UTC()
	task := &domain.Task{
		ID:             uuid.New().String(),
		UserID:         middleware.UserID(ctx),
		Title:          req.Title,
		Description:    req.Description,
		Priority:       domain.Priority(req.Priority),
		CreatedAt:      now,
		UpdatedAt:      now,
		DueDate:        req.DueDate,
		ReminderTime:   req.ReminderTime,
		ReminderConfig: req.ReminderConfig,
	}
	if err := task.Validate(); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	span.SetAttributes(attribute.String("task.id", task.ID))

	if err := h.repo.Create(ctx, task); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	telemetry.TasksCreated.Inc()
	h.emitter.TaskCreated(ctx, task)

	h.logger.Info("task created",
		slog.String("task_id", task.ID),
		slog.String("user_id", task.UserID),
	)
	writeJSON(w, http.StatusCreated, task)
}

// Get handles GET /api/tasks/{id}.
func (h *Tasks) Get(w http.ResponseWriter, r *http.Request) {
	task, err := h.ownedTask(r)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Update handles PUT /api/tasks/{id}. Only fields present in the body are
// applied; the response reflects the stored state after the update.
func (h *Tasks) Update(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("api").Start(r.Context(), "tasks.update")
	defer span.End()
	r = r.WithContext(ctx)

	before, err := h.ownedTask(r)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	req, err := decodeTaskRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	after := *before
	if req.has("title") {
		after.Title = req.Title
	}
	if req.has("description") {
		after.Description = req.Description
	}
	if req.has("priority") {
		after.Priority = domain.Priority(req.Priority)
	}
	if req.has("is_complete") {
		after.IsComplete = req.IsComplete
	}
	if req.has("due_date") {
		after.DueDate = req.DueDate
	}
	if req.has("reminder_time") {
		after.ReminderTime = req.ReminderTime
		if req.ReminderTime == nil {
			after.ReminderConfig = nil
		}
	}
	if req.has("reminder_config") {
		after.ReminderConfig = req.ReminderConfig
	}
	if err := after.Validate(); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	cs := domain.Diff(before, &after)
	if cs.Empty() {
		writeJSON(w, http.StatusOK, before)
		return
	}

	after.UpdatedAt = time.Now().UTC()
	span.SetAttributes(attribute.String("task.id", after.ID))

	if err := h.repo.Update(ctx, &after); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	h.emitter.TaskUpdated(ctx, &after, cs, before.ReminderTime)

	h.logger.Info("task updated",
		slog.String("task_id", after.ID),
		slog.Int("changed_fields", len(cs.Changes)),
	)
	writeJSON(w, http.StatusOK, &after)
}

// Toggle handles PATCH /api/tasks/{id}/toggle, flipping the completion flag.
func (h *Tasks) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("api").Start(r.Context(), "tasks.toggle")
	defer span.End()
	r = r.WithContext(ctx)

	before, err := h.ownedTask(r)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	after := *before
	after.IsComplete = !before.IsComplete
	after.UpdatedAt = time.Now().UTC()
	span.SetAttributes(attribute.String("task.id", after.ID))

	if err := h.repo.Update(ctx, &after); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	h.emitter.TaskUpdated(ctx, &after, domain.Diff(before, &after), before.ReminderTime)

	h.logger.Info("task toggled",
		slog.String("task_id", after.ID),
		slog.Bool("is_complete", after.IsComplete),
	)
	writeJSON(w, http.StatusOK, &after)
}

// Delete handles DELETE /api/tasks/{id}.
func (h *Tasks) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("api").Start(r.Context(), "tasks.delete")
	defer span.End()
	r = r.WithContext(ctx)

	task, err := h.ownedTask(r)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	if err := h.repo.Delete(ctx, task.ID); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	h.emitter.TaskDeleted(ctx, task)

	h.logger.Info("task deleted", slog.String("task_id", task.ID))
	w.WriteHeader(http.StatusNoContent)
}

// ownedTask loads the task from the URL and enforces ownership.
func (h *Tasks) ownedTask(r *http.Request) (*domain.Task, error) {
	id := chi.URLParam(r, "id")
	task, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if task.UserID != middleware.UserID(r.Context()) {
		return nil, &domain.NotOwnerError{Resource: "task", ID: id}
	}
	return task, nil
}
