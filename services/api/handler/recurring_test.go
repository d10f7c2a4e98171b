package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laraib28/todo-web/internal/domain"
	"github.com/laraib28/todo-web/internal/postgres"
)

// ── mocks ────────────────────────────────────────────────────────────────────

type fakePatternRepo struct {
	patterns map[string]*domain.RecurrencePattern
}

func newFakePatternRepo() *fakePatternRepo {
	return &fakePatternRepo{patterns: make(map[string]*domain.RecurrencePattern)}
}

func (r *fakePatternRepo) ListByUser(_ context.Context, userID string) ([]*domain.RecurrencePattern, error) {
	var out []*domain.RecurrencePattern
	for _, p := range r.patterns {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePatternRepo) GetByID(_ context.Context, id string) (*domain.RecurrencePattern, error) {
	p, ok := r.patterns[id]
	if !ok {
		return nil, &domain.PatternNotFoundError{PatternID: id}
	}
	cp := *p
	return &cp, nil
}

func (r *fakePatternRepo) Create(_ context.Context, p *domain.RecurrencePattern) error {
	cp := *p
	r.patterns[p.ID] = &cp
	return nil
}

func (r *fakePatternRepo) Update(_ context.Context, p *domain.RecurrencePattern) error {
	if _, ok := r.patterns[p.ID]; !ok {
		return &domain.PatternNotFoundError{PatternID: p.ID}
	}
	cp := *p
	r.patterns[p.ID] = &cp
	return nil
}

func (r *fakePatternRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.patterns[id]; !ok {
		return &domain.PatternNotFoundError{PatternID: id}
	}
	delete(r.patterns, id)
	return nil
}

var _ postgres.RecurrenceRepository = (*fakePatternRepo)(nil)

// ── helpers ──────────────────────────────────────────────────────────────────

func newRecurringHandler(repo *fakePatternRepo) *Recurring {
	logger := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
	return NewRecurring(repo, logger)
}

func createPattern(t *testing.T, h *Recurring, body map[string]any) domain.RecurrencePattern {
	t.Helper()
	rec := doRequest(h.Create, http.MethodPost, "/api/tasks/recurring", body, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p domain.RecurrencePattern
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

// ── tests ────────────────────────────────────────────────────────────────────

func TestCreatePatternDefaults(t *testing.T) {
	h := newRecurringHandler(newFakePatternRepo())

	p := createPattern(t, h, map[string]any{
		"task_template": map[string]any{"title": "weekly review"},
		"frequency":     "weekly",
		"days_of_week":  []int{4},
	})

	assert.Equal(t, 1, p.Interval, "interval defaults to 1")
	assert.Equal(t, "UTC", p.Timezone, "timezone defaults to UTC")
	assert.Equal(t, testUserID, p.UserID)
}

func TestCreatePatternValidation(t *testing.T) {
	h := newRecurringHandler(newFakePatternRepo())

	for name, body := range map[string]map[string]any{
		"unknown frequency": {
			"task_template": map[string]any{"title": "x"},
			"frequency":     "fortnightly",
		},
		"negative interval": {
			"task_template": map[string]any{"title": "x"},
			"frequency":     "daily",
			"interval":      -2,
		},
		"day of week out of range": {
			"task_template": map[string]any{"title": "x"},
			"frequency":     "weekly",
			"days_of_week":  []int{7},
		},
		"both end conditions": {
			"task_template":   map[string]any{"title": "x"},
			"frequency":       "daily",
			"end_date":        "2027-01-01T00:00:00Z",
			"max_occurrences": 5,
		},
		"custom without cron": {
			"task_template": map[string]any{"title": "x"},
			"frequency":     "custom",
		},
	} {
		t.Run(name, func(t *testing.T) {
			rec := doRequest(h.Create, http.MethodPost, "/api/tasks/recurring", body, nil)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
		})
	}
}

func TestUpdatePatternKeepsBookkeeping(t *testing.T) {
	repo := newFakePatternRepo()
	h := newRecurringHandler(repo)

	p := createPattern(t, h, map[string]any{
		"task_template": map[string]any{"title": "daily log"},
		"frequency":     "daily",
	})

	rec := doRequest(h.Update, http.MethodPut, "/api/tasks/recurring/"+p.ID,
		map[string]any{
			"task_template": map[string]any{"title": "daily log"},
			"frequency":     "daily",
			"interval":      2,
			"timezone":      "Europe/Berlin",
		},
		map[string]string{"id": p.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated domain.RecurrencePattern
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, 2, updated.Interval)
	assert.Equal(t, "Europe/Berlin", updated.Timezone)
	assert.Equal(t, p.CreatedAt, updated.CreatedAt)
}

func TestPatternOwnership(t *testing.T) {
	repo := newFakePatternRepo()
	h := newRecurringHandler(repo)

	theirs := &domain.RecurrencePattern{
		ID:        "55555555-5555-5555-5555-555555555555",
		UserID:    "someone-else",
		Frequency: domain.FrequencyDaily,
		Interval:  1,
		Timezone:  "UTC",
	}
	require.NoError(t, repo.Create(context.Background(), theirs))

	rec := doRequest(h.Get, http.MethodGet, "/api/tasks/recurring/"+theirs.ID, nil,
		map[string]string{"id": theirs.ID})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(h.Delete, http.MethodDelete, "/api/tasks/recurring/"+theirs.ID, nil,
		map[string]string{"id": theirs.ID})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Len(t, repo.patterns, 1, "foreign pattern must survive")
}

func TestDeletePattern(t *testing.T) {
	repo := newFakePatternRepo()
	h := newRecurringHandler(repo)

	p := createPattern(t, h, map[string]any{
		"task_template": map[string]any{"title": "x"},
		"frequency":     "monthly",
		"day_of_month":  15,
	})

	rec := doRequest(h.Delete, http.MethodDelete, "/api/tasks/recurring/"+p.ID, nil,
		map[string]string{"id": p.ID})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, repo.patterns)
}
