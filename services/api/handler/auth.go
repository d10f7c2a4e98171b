package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/laraib28/todo-web/internal/auth"
	"github.com/laraib28/todo-web/internal/domain"
	"github.com/laraib28/todo-web/internal/postgres"
	"github.com/laraib28/todo-web/services/api/middleware"
)

// Auth handles registration, login, and session introspection. Sessions are
// carried in an httponly cookie rather than an Authorization header so the
// browser frontend never touches the token.
type Auth struct {
	users        postgres.UserRepository
	tokens       *auth.Tokens
	cookieSecure bool
	logger       *slog.Logger
}

func NewAuth(users postgres.UserRepository, tokens *auth.Tokens, cookieSecure bool, logger *slog.Logger) *Auth {
	return &Auth{users: users, tokens: tokens, cookieSecure: cookieSecure, logger: logger}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/auth/register.
func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusUnprocessableEntity, "a valid email is required")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusUnprocessableEntity, "password must be at least 8 characters")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	user := &domain.User{
		ID:             uuid.New().String(),
		Email:          req.Email,
		HashedPassword: hash,
		CreatedAt:      time.Now().UTC(),
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	if err := h.setSession(w, user.ID); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	h.logger.Info("user registered", slog.String("user_id", user.ID))
	writeJSON(w, http.StatusCreated, user)
}

// Login handles POST /api/auth/login.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		// Same response for unknown email and wrong password.
		writeDomainError(w, h.logger, &domain.InvalidCredentialsError{})
		return
	}
	if !auth.CheckPassword(user.HashedPassword, req.Password) {
		writeDomainError(w, h.logger, &domain.InvalidCredentialsError{})
		return
	}

	if err := h.setSession(w, user.ID); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Logout handles POST /api/auth/logout.
func (h *Auth) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Me handles GET /api/auth/me.
func (h *Auth) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Auth) setSession(w http.ResponseWriter, userID string) error {
	token, err := h.tokens.Mint(userID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(auth.TokenTTL.Seconds()),
	})
	return nil
}
