package contact

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/visualink/studio/internal/apperr"
)

// DefaultSubject is stored when a submission has no subject.
const DefaultSubject = "No Subject"

// Store is the persistence the Service needs. *Repository satisfies it.
type Store interface {
	Create(ctx context.Context, name, email, subject, message string) (*Message, error)
	List(ctx context.Context) ([]Message, error)
	Delete(ctx context.Context, id int64) error
}

// Notifier tells the studio about a new message.
type Notifier interface {
	Notify(ctx context.Context, m Message) error
}

// SubmitRequest is the public contact form payload.
type SubmitRequest struct {
	Name    string `json:"name"    example:"Amina Odhiambo"`
	Email   string `json:"email"   example:"amina@example.com"`
	Subject string `json:"subject" example:"Wedding coverage"`
	Message string `json:"message" example:"Are you available in June?"`
}

// Validate checks required fields.
func (r SubmitRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.Name) == "":
		return apperr.Required("name")
	case strings.TrimSpace(r.Email) == "":
		return apperr.Required("email")
	case strings.TrimSpace(r.Message) == "":
		return apperr.Required("message")
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(r.Email)); err != nil {
		return apperr.Invalid("email", "is not a valid address")
	}
	return nil
}

// Service implements the contact message workflow.
type Service struct {
	store    Store
	notifier Notifier
	log      *slog.Logger
}

// NewService creates a contact Service. A nil notifier disables notifications.
func NewService(store Store, notifier Notifier, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, notifier: notifier, log: log}
}

// Submit stores the message, then notifies the studio. Notification is best
// effort: a failure is logged and the submission still succeeds.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*Message, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		subject = DefaultSubject
	}

	m, err := s.store.Create(ctx,
		strings.TrimSpace(req.Name),
		strings.TrimSpace(req.Email),
		subject,
		req.Message,
	)
	if err != nil {
		return nil, apperr.Upstream("store message", err)
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, *m); err != nil {
			s.log.WarnContext(ctx, "contact notification failed",
				slog.Int64("message_id", m.ID),
				slog.String("error", err.Error()),
			)
		}
	}
	return m, nil
}

// List returns every message, newest first.
func (s *Service) List(ctx context.Context) ([]Message, error) {
	msgs, err := s.store.List(ctx)
	if err != nil {
		return nil, apperr.Upstream("list messages", err)
	}
	return msgs, nil
}

// Delete removes a message. Deleting a missing id succeeds.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperr.Required("id")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return apperr.Upstream("delete message", err)
	}
	return nil
}
