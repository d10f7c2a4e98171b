package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/laraib28/todo-web/internal/domain"
	"github.com/laraib28/todo-web/internal/postgres"
	"github.com/laraib28/todo-web/services/api/middleware"
)

// Reminders is the read-only surface over the reminder lifecycle and the
// notification delivery log. All writes happen in the reminder worker.
type Reminders struct {
	reminders     postgres.ReminderRepository
	notifications postgres.NotificationRepository
	logger        *slog.Logger
}

func NewReminders(reminders postgres.ReminderRepository, notifications postgres.NotificationRepository, logger *slog.Logger) *Reminders {
	return &Reminders{reminders: reminders, notifications: notifications, logger: logger}
}

// List handles GET /api/reminders. An optional ?status= query narrows the
// result to one lifecycle state.
func (h *Reminders) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && !domain.ReminderStatus(status).Valid() {
		writeError(w, http.StatusUnprocessableEntity, "unknown reminder status")
		return
	}

	reminders, err := h.reminders.ListByUser(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	filtered := make([]*domain.Reminder, 0, len(reminders))
	for _, rem := range reminders {
		if status == "" || rem.Status == domain.ReminderStatus(status) {
			filtered = append(filtered, rem)
		}
	}
	writeJSON(w, http.StatusOK, filtered)
}

// Get handles GET /api/reminders/{id}.
func (h *Reminders) Get(w http.ResponseWriter, r *http.Request) {
	reminder, err := h.ownedReminder(r)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, reminder)
}

// Notifications handles GET /api/reminders/{id}/notifications.
func (h *Reminders) Notifications(w http.ResponseWriter, r *http.Request) {
	reminder, err := h.ownedReminder(r)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	notifications, err := h.notifications.ListByReminder(r.Context(), reminder.ID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if notifications == nil {
		notifications = []*domain.Notification{}
	}
	writeJSON(w, http.StatusOK, notifications)
}

func (h *Reminders) ownedReminder(r *http.Request) (*domain.Reminder, error) {
	id := chi.URLParam(r, "id")
	reminder, err := h.reminders.GetByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if reminder.UserID != middleware.UserID(r.Context()) {
		return nil, &domain.NotOwnerError{Resource: "reminder", ID: id}
	}
	return reminder, nil
}
