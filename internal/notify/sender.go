// Package notify delivers reminder notifications over the configured
// channels. Each channel has a Sender; the Registry routes by channel name.
package notify

import (
	"context"
	"sync"

	"github.com/laraib28/todo-web/internal/domain"
)

// Message is one notification to deliver.
type Message struct {
	UserID     string `json:"user_id"`
	TaskID     string `json:"task_id"`
	ReminderID string `json:"reminder_id"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`

	// EmailTo is the recipient address, resolved from the user account.
	// Only the email sender reads it.
	EmailTo string `json:"email_to,omitempty"`
}

// Sender delivers messages on a single channel.
type Sender interface {
	Send(ctx context.Context, msg Message) error
	Channel() domain.NotificationChannel
}

// Registry maps notification channels to their senders.
type Registry struct {
	mu      sync.RWMutex
	senders map[domain.NotificationChannel]Sender
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{senders: make(map[domain.NotificationChannel]Sender)}
}

// Register adds a sender. Safe to call concurrently.
func (r *Registry) Register(s Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.senders[s.Channel()] = s
}

// Get returns the sender for the given channel.
// Returns UnsupportedChannelError if not registered.
func (r *Registry) Get(channel domain.NotificationChannel) (Sender, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.senders[channel]
	if !ok {
		return nil, &domain.UnsupportedChannelError{Channel: string(channel)}
	}
	return s, nil
}
