package domain

import (
	"encoding/json"
	"time"
)

// AuditEvent is one row of the append-only events table. Rows are written
// alongside every published domain event and never mutated.
type AuditEvent struct {
	ID            string          `json:"id"`
	EventType     string          `json:"event_type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	UserID        *string         `json:"user_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}
