package notify

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/laraib28/todo-web/internal/domain"
)

// EmailConfig holds SMTP connection details.
type EmailConfig struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

// EmailSender delivers reminder notifications via SMTP.
type EmailSender struct {
	cfg EmailConfig
}

func NewEmailSender(cfg EmailConfig) *EmailSender {
	return &EmailSender{cfg: cfg}
}

func (s *EmailSender) Channel() domain.NotificationChannel { return domain.ChannelEmail }

func (s *EmailSender) Send(ctx context.Context, msg Message) error {
	ctx, span := otel.Tracer("notify").Start(ctx, "notify.email")
	defer span.End()

	if msg.EmailTo == "" {
		err := errors.New("message missing recipient address")
		span.RecordError(err)
		span.SetStatus(codes.Error, "missing recipient")
		return err
	}

	span.SetAttributes(attribute.String("email.to", msg.EmailTo))

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	mime := buildMIME(s.cfg.From, msg.EmailTo, msg.Subject, msg.Body)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	// Run the blocking SMTP call in a goroutine so we respect ctx cancellation.
	type result struct{ err error }
	done := make(chan result, 1)
	go func() {
		done <- result{err: smtp.SendMail(addr, auth, s.cfg.From, []string{msg.EmailTo}, mime)}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			span.RecordError(res.err)
			span.SetStatus(codes.Error, "smtp send failed")
			return fmt.Errorf("smtp send to %s: %w", msg.EmailTo, res.err)
		}
		return nil
	case <-ctx.Done():
		err := fmt.Errorf("email send timed out: %w", ctx.Err())
		span.RecordError(err)
		span.SetStatus(codes.Error, "timeout")
		return err
	}
}

func buildMIME(from, to, subject, body string) []byte {
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		from, to, subject, body,
	)
	return []byte(msg)
}
