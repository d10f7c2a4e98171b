package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/laraib28/todo-web/internal/domain"
	"github.com/laraib28/todo-web/internal/postgres"
	"github.com/laraib28/todo-web/services/api/middleware"
)

// Recurring handles the recurrence pattern CRUD surface.
type Recurring struct {
	repo   postgres.RecurrenceRepository
	logger *slog.Logger
}

func NewRecurring(repo postgres.RecurrenceRepository, logger *slog.Logger) *Recurring {
	return &Recurring{repo: repo, logger: logger}
}

type patternRequest struct {
	TaskTemplate   map[string]any `json:"task_template"`
	Frequency      string         `json:"frequency"`
	Interval       int            `json:"interval"`
	DaysOfWeek     []int          `json:"days_of_week"`
	DayOfMonth     *int           `json:"day_of_month"`
	EndDate        *time.Time     `json:"end_date"`
	MaxOccurrences *int           `json:"max_occurrences"`
	Timezone       string         `json:"timezone"`
}

func (req *patternRequest) apply(p *domain.RecurrencePattern) {
	p.TaskTemplate = req.TaskTemplate
	p.Frequency = domain.Frequency(req.Frequency)
	p.Interval = req.Interval
	p.DaysOfWeek = req.DaysOfWeek
	p.DayOfMonth = req.DayOfMonth
	p.EndDate = req.EndDate
	p.MaxOccurrences = req.MaxOccurrences
	p.Timezone = req.Timezone
}

// List handles GET /api/tasks/recurring.
func (h *Recurring) List(w http.ResponseWriter, r *http.Request) {
	patterns, err := h.repo.ListByUser(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if patterns == nil {
		patterns = []*domain.RecurrencePattern{}
	}
	writeJSON(w, http.StatusOK, patterns)
}

// Create handles POST /api/tasks/recurring.
func (h *Recurring) Create(w http.ResponseWriter, r *http.Request) {
	var req patternRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Interval == 0 {
		req.Interval = 1
	}
	if req.Timezone == "" {
		req.Timezone = "UTC"
	}

	now := time.Now().UTC()
	pattern := &domain.RecurrencePattern{
		ID:        uuid.New().String(),
		UserID:    middleware.UserID(r.Context()),
		CreatedAt: now,
		UpdatedAt: now,
	}
	req.apply(pattern)

	if err := pattern.Validate(); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if err := h.repo.Create(r.Context(), pattern); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	h.logger.Info("recurrence pattern created",
		slog.String("pattern_id", pattern.ID),
		slog.String("frequency", string(pattern.Frequency)),
	)
	writeJSON(w, http.StatusCreated, pattern)
}

// Get handles GET /api/tasks/recurring/{id}.
func (h *Recurring) Get(w http.ResponseWriter, r *http.Request) {
	pattern, err := h.ownedPattern(r)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, pattern)
}

// Update handles PUT /api/tasks/recurring/{id}. The full pattern definition is
// replaced; generation bookkeeping fields are preserved.
func (h *Recurring) Update(w http.ResponseWriter, r *http.Request) {
	pattern, err := h.ownedPattern(r)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	var req patternRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.apply(pattern)
	pattern.UpdatedAt = time.Now().UTC()

	if err := pattern.Validate(); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if err := h.repo.Update(r.Context(), pattern); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, pattern)
}

// Delete handles DELETE /api/tasks/recurring/{id}. Tasks already generated from the
// pattern are kept; the FK sets their pattern reference to null.
func (h *Recurring) Delete(w http.ResponseWriter, r *http.Request) {
	pattern, err := h.ownedPattern(r)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if err := h.repo.Delete(r.Context(), pattern.ID); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Recurring) ownedPattern(r *http.Request) (*domain.RecurrencePattern, error) {
	id := chi.URLParam(r, "id")
	pattern, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if pattern.UserID != middleware.UserID(r.Context()) {
		return nil, &domain.NotOwnerError{Resource: "recurrence pattern", ID: id}
	}
	return pattern, nil
}
