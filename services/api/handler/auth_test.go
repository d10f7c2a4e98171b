package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laraib28/todo-web/internal/auth"
	"github.com/laraib28/todo-web/internal/domain"
	"github.com/laraib28/todo-web/internal/postgres"
)

type fakeUserRepo struct {
	byEmail map[string]*domain.User
	byID    map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*domain.User{}, byID: map[string]*domain.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	if _, ok := r.byEmail[u.Email]; ok {
		return &domain.EmailTakenError{Email: u.Email}
	}
	cp := *u
	r.byEmail[u.Email] = &cp
	r.byID[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, &domain.UserNotFoundError{UserID: email}
	}
	return u, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, &domain.UserNotFoundError{UserID: id}
	}
	return u, nil
}

var _ postgres.UserRepository = (*fakeUserRepo)(nil)

func newAuthHandler(users *fakeUserRepo) *Auth {
	logger := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
	return NewAuth(users, auth.NewTokens("test-secret"), false, logger)
}

func postJSON(h http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", auth.CookieName)
	return nil
}

func TestRegisterSetsHTTPOnlyCookie(t *testing.T) {
	h := newAuthHandler(newFakeUserRepo())

	rec := postJSON(h.Register, "/api/auth/register",
		map[string]string{"email": "A@Example.com", "password": "hunter22"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	cookie := sessionCookie(t, rec)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.NotEmpty(t, cookie.Value)

	var user domain.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "a@example.com", user.Email, "email is normalized")
	assert.NotContains(t, rec.Body.String(), "hashed_password")
}

func TestRegisterRejectsWeakInput(t *testing.T) {
	h := newAuthHandler(newFakeUserRepo())

	rec := postJSON(h.Register, "/api/auth/register",
		map[string]string{"email": "not-an-email", "password": "hunter22"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = postJSON(h.Register, "/api/auth/register",
		map[string]string{"email": "a@example.com", "password": "short"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	users := newFakeUserRepo()
	h := newAuthHandler(users)

	creds := map[string]string{"email": "a@example.com", "password": "hunter22"}
	require.Equal(t, http.StatusCreated, postJSON(h.Register, "/api/auth/register", creds).Code)
	assert.Equal(t, http.StatusConflict, postJSON(h.Register, "/api/auth/register", creds).Code)
}

func TestLoginRoundTrip(t *testing.T) {
	users := newFakeUserRepo()
	h := newAuthHandler(users)

	creds := map[string]string{"email": "a@example.com", "password": "hunter22"}
	require.Equal(t, http.StatusCreated, postJSON(h.Register, "/api/auth/register", creds).Code)

	rec := postJSON(h.Login, "/api/auth/login", creds)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sessionCookie(t, rec)
}

func TestLoginWrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	users := newFakeUserRepo()
	h := newAuthHandler(users)

	require.Equal(t, http.StatusCreated, postJSON(h.Register, "/api/auth/register",
		map[string]string{"email": "a@example.com", "password": "hunter22"}).Code)

	wrongPassword := postJSON(h.Login, "/api/auth/login",
		map[string]string{"email": "a@example.com", "password": "wrong-one"})
	unknownEmail := postJSON(h.Login, "/api/auth/login",
		map[string]string{"email": "b@example.com", "password": "whatever1"})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestLogoutClearsCookie(t *testing.T) {
	h := newAuthHandler(newFakeUserRepo())

	rec := postJSON(h.Logout, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	cookie := sessionCookie(t, rec)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}
