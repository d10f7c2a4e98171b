package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-key", "test-model")
}

func TestCompleteReturnsReply(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req completionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.NotEmpty(t, req.Messages)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "You have 3 tasks due today."}},
			},
		})
	})

	reply, err := client.Complete(context.Background(), []Message{
		{Role: "system", Content: "You are a todo assistant."},
		{Role: "user", Content: "what's due today?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "You have 3 tasks due today.", reply)
}

func TestCompleteMapsRateLimit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}})
	var rateLimited *RateLimitError
	require.ErrorAs(t, err, &rateLimited)
}

func TestCompleteMapsUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}})
	var unavailable *UnavailableError
	require.ErrorAs(t, err, &unavailable)
}

func TestCompleteMapsProviderError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad request"}`))
	})

	_, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}})
	var provider *ProviderError
	require.ErrorAs(t, err, &provider)
	assert.Equal(t, http.StatusBadRequest, provider.StatusCode)
}

func TestCompleteRejectsEmptyChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}})
	var provider *ProviderError
	require.ErrorAs(t, err, &provider)
}
