package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laraib28/todo-web/internal/domain"
)

func TestWebhookSenderPostsJSON(t *testing.T) {
	var got Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sender := NewWebhookSender(domain.ChannelPush, srv.URL)
	err := sender.Send(context.Background(), Message{
		UserID:     "u1",
		TaskID:     "t1",
		ReminderID: "r1",
		Subject:    "Reminder",
		Body:       "Water the plants",
	})
	require.NoError(t, err)
	assert.Equal(t, "r1", got.ReminderID)
	assert.Equal(t, "Water the plants", got.Body)
}

func TestWebhookSenderRejectsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	sender := NewWebhookSender(domain.ChannelSMS, srv.URL)
	err := sender.Send(context.Background(), Message{ReminderID: "r1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestRegistryRoutesByChannel(t *testing.T) {
	reg := NewRegistry()
	push := NewWebhookSender(domain.ChannelPush, "http://push.gateway")
	reg.Register(push)

	got, err := reg.Get(domain.ChannelPush)
	require.NoError(t, err)
	assert.Same(t, Sender(push), got)

	_, err = reg.Get(domain.ChannelEmail)
	var unsupported *domain.UnsupportedChannelError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "email", unsupported.Channel)
}

func TestEmailSenderRequiresRecipient(t *testing.T) {
	sender := NewEmailSender(EmailConfig{Host: "localhost", Port: 25, From: "todo@example.com"})
	err := sender.Send(context.Background(), Message{ReminderID: "r1"})
	require.Error(t, err)
}
