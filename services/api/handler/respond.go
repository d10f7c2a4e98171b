package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/laraib28/todo-web/internal/domain"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeDomainError maps typed domain errors onto HTTP status codes. Anything
// unrecognized becomes a logged 500.
func writeDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		taskNotFound     *domain.TaskNotFoundError
		reminderNotFound *domain.ReminderNotFoundError
		patternNotFound  *domain.PatternNotFoundError
		userNotFound     *domain.UserNotFoundError
		notOwner         *domain.NotOwnerError
		validation       *domain.ValidationError
		emailTaken       *domain.EmailTakenError
		conflict         *domain.ConflictError
		badCredentials   *domain.InvalidCredentialsError
	)
	switch {
	case errors.As(err, &notOwner):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.As(err, &taskNotFound),
		errors.As(err, &reminderNotFound),
		errors.As(err, &patternNotFound),
		errors.As(err, &userNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.As(err, &validation):
		writeError(w, http.StatusUnprocessableEntity, validation.Error())
	case errors.As(err, &emailTaken):
		writeError(w, http.StatusConflict, emailTaken.Error())
	case errors.As(err, &conflict):
		writeError(w, http.StatusConflict, "conflict")
	case errors.As(err, &badCredentials):
		writeError(w, http.StatusUnauthorized, badCredentials.Error())
	default:
		logger.Error("internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
