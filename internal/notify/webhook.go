package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/laraib28/todo-web/internal/domain"
)

// WebhookSender posts the message as JSON to a channel gateway. Push and SMS
// deliveries both go through gateways, so one sender serves both channels.
type WebhookSender struct {
	channel domain.NotificationChannel
	url     string
	client  *http.Client
}

func NewWebhookSender(channel domain.NotificationChannel, url string) *WebhookSender {
	return &WebhookSender{
		channel: channel,
		url:     url,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *WebhookSender) Channel() domain.NotificationChannel { return s.channel }

func (s *WebhookSender) Send(ctx context.Context, msg Message) error {
	ctx, span := otel.Tracer("notify").Start(ctx, "notify."+string(s.channel))
	defer span.End()

	span.SetAttributes(
		attribute.String("notify.channel", string(s.channel)),
		attribute.String("notify.url", s.url),
	)

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal %s notification: %w", s.channel, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build request failed")
		return fmt.Errorf("build %s request: %w", s.channel, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "http call failed")
		return fmt.Errorf("%s gateway call: %w", s.channel, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		err := fmt.Errorf("%s gateway returned status %d", s.channel, resp.StatusCode)
		span.RecordError(err)
		span.SetStatus(codes.Error, "bad status code")
		return err
	}
	return nil
}
