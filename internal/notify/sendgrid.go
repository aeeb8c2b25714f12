// Package notify delivers contact form notifications to the studio inbox.
package notify

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/visualink/studio/internal/contact"
)

// SendGrid sends a plain summary of each contact message via SendGrid.
type SendGrid struct {
	client *sendgrid.Client
	from   string
	to     string
}

// NewSendGrid creates a SendGrid notifier.
func NewSendGrid(apiKey, from, to string) (*SendGrid, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("sendgrid api key is empty")
	}
	if from == "" || to == "" {
		return nil, fmt.Errorf("notification from/to address is empty")
	}
	return &SendGrid{client: sendgrid.NewSendClient(apiKey), from: from, to: to}, nil
}

// Notify emails the studio with reply-to set to the sender.
func (s *SendGrid) Notify(ctx context.Context, m contact.Message) error {
	msg := mail.NewSingleEmail(
		mail.NewEmail("Studio Website", s.from),
		"[New Inquiry] "+m.Subject,
		mail.NewEmail("", s.to),
		plainBody(m),
		htmlBody(m),
	)
	msg.SetReplyTo(mail.NewEmail(m.Name, m.Email))

	resp, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d body=%s", resp.StatusCode, resp.Body)
	}
	slog.InfoContext(ctx, "contact notification sent",
		slog.Int64("message_id", m.ID),
		slog.Int("status", resp.StatusCode),
	)
	return nil
}

func plainBody(m contact.Message) string {
	return fmt.Sprintf("Name: %s\nEmail: %s\nSubject: %s\n\n%s\n", m.Name, m.Email, m.Subject, m.Message)
}

func htmlBody(m contact.Message) string {
	return "<pre>" + html.EscapeString(plainBody(m)) + "</pre>"
}

// Noop discards notifications. It is used when SendGrid is not configured.
type Noop struct{}

// Notify does nothing.
func (Noop) Notify(context.Context, contact.Message) error { return nil }
