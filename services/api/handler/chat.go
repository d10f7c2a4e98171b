package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/laraib28/todo-web/internal/chat"
	"github.com/laraib28/todo-web/internal/domain"
	"github.com/laraib28/todo-web/internal/postgres"
	"github.com/laraib28/todo-web/internal/redis"
	"github.com/laraib28/todo-web/pkg/telemetry"
	"github.com/laraib28/todo-web/services/api/middleware"
)

const (
	// conversationWindow is how many stored turns are replayed to the model.
	conversationWindow = 20
	// maxChatMessageLen bounds a single user message in bytes.
	maxChatMessageLen = 1000
)

// Chat handles the assistant endpoint. Each request replays the recent
// conversation plus a snapshot of the user's tasks, and both turns are
// persisted so the next request has context.
type Chat struct {
	client        *chat.Client
	tasks         postgres.TaskRepository
	conversations postgres.ConversationRepository
	limiter       redis.RateLimiter
	logger        *slog.Logger
}

func NewChat(
	client *chat.Client,
	tasks postgres.TaskRepository,
	conversations postgres.ConversationRepository,
	limiter redis.RateLimiter,
	logger *slog.Logger,
) *Chat {
	return &Chat{client: client, tasks: tasks, conversations: conversations, limiter: limiter, logger: logger}
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// Send handles POST /api/chat.
func (h *Chat) Send(w http.ResponseWriter, r *http.Request) {
	if h.client == nil {
		writeError(w, http.StatusNotImplemented, "assistant is not configured")
		return
	}

	ctx := r.Context()
	userID := middleware.UserID(ctx)

	if h.limiter != nil {
		allowed, err := h.limiter.Allow(ctx, "chat:"+userID)
		if err != nil {
			h.logger.Error("chat rate limiter", slog.String("error", err.Error()))
			// Fail open: a Redis outage should not take the assistant down.
		} else if !allowed {
			telemetry.ChatRequests.WithLabelValues("rate_limited").Inc()
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(w, http.StatusUnprocessableEntity, "message must not be empty")
		return
	}
	if len(req.Message) > maxChatMessageLen {
		writeError(w, http.StatusUnprocessableEntity, "message is too long")
		return
	}

	messages, err := h.buildMessages(r, userID, req.Message)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	reply, err := h.client.Complete(ctx, messages)
	if err != nil {
		h.writeChatError(w, err)
		return
	}
	telemetry.ChatRequests.WithLabelValues("ok").Inc()

	now := time.Now().UTC()
	h.persistTurn(r, &domain.ConversationMessage{
		ID: uuid.New().String(), UserID: userID,
		Role: domain.RoleUser, Content: req.Message, CreatedAt: now,
	})
	h.persistTurn(r, &domain.ConversationMessage{
		ID: uuid.New().String(), UserID: userID,
		Role: domain.RoleAssistant, Content: reply, CreatedAt: now.Add(time.Millisecond),
	})

	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

// buildMessages assembles system prompt + stored history + the new message.
func (h *Chat) buildMessages(r *http.Request, userID, userMessage string) ([]chat.Message, error) {
	tasks, err := h.tasks.ListByUser(r.Context(), userID)
	if err != nil {
		return nil, err
	}
	history, err := h.conversations.Recent(r.Context(), userID, conversationWindow)
	if err != nil {
		return nil, err
	}

	messages := make([]chat.Message, 0, len(history)+2)
	messages = append(messages, chat.Message{Role: "system", Content: systemPrompt(tasks)})
	for _, turn := range history {
		messages = append(messages, chat.Message{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, chat.Message{Role: domain.RoleUser, Content: userMessage})
	return messages, nil
}

func systemPrompt(tasks []*domain.Task) string {
	var b strings.Builder
	b.WriteString("You are a todo assistant. Answer questions about the user's tasks. Current tasks:\n")
	if len(tasks) == 0 {
		b.WriteString("(none)\n")
	}
	for _, t := range tasks {
		status := "open"
		if t.IsComplete {
			status = "done"
		}
		fmt.Fprintf(&b, "- [%s] %s (priority %s", status, t.Title, t.Priority)
		if t.DueDate != nil {
			fmt.Fprintf(&b, ", due %s", t.DueDate.Format(time.RFC3339))
		}
		b.WriteString(")\n")
	}
	return b.String()
}

func (h *Chat) persistTurn(r *http.Request, msg *domain.ConversationMessage) {
	if err := h.conversations.Append(r.Context(), msg); err != nil {
		h.logger.Error("persist conversation turn",
			slog.String("user_id", msg.UserID),
			slog.String("error", err.Error()),
		)
	}
}

func (h *Chat) writeChatError(w http.ResponseWriter, err error) {
	var (
		rateLimited *chat.RateLimitError
		unavailable *chat.UnavailableError
		provider    *chat.ProviderError
	)
	switch {
	case errors.As(err, &rateLimited):
		telemetry.ChatRequests.WithLabelValues("provider_rate_limited").Inc()
		writeError(w, http.StatusTooManyRequests, "assistant is rate limited, try again shortly")
	case errors.As(err, &unavailable):
		telemetry.ChatRequests.WithLabelValues("unavailable").Inc()
		writeError(w, http.StatusServiceUnavailable, "assistant is temporarily unavailable")
	case errors.As(err, &provider):
		telemetry.ChatRequests.WithLabelValues("provider_error").Inc()
		h.logger.Error("chat provider error", slog.String("error", provider.Error()))
		writeError(w, http.StatusInternalServerError, "assistant request failed")
	default:
		telemetry.ChatRequests.WithLabelValues("error").Inc()
		h.logger.Error("chat error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
