// Package contact stores messages submitted through the public contact form.
package contact

import (
	"context"
	"fmt"
	"time"

	"github.com/visualink/studio/internal/db"
)

// Message is a contact form submission.
type Message struct {
	ID        int64     `json:"id"         example:"12"`
	Name      string    `json:"name"       example:"Amina Odhiambo"`
	Email     string    `json:"email"      example:"amina@example.com"`
	Subject   string    `json:"subject"    example:"Wedding coverage"`
	Message   string    `json:"message"    example:"Are you available in June?"`
	CreatedAt time.Time `json:"created_at" example:"2026-02-27T14:48:34Z"`
}

const messageColumns = `id, name, email, subject, message, created_at`

// Repository handles message persistence.
type Repository struct {
	db db.Querier
}

// NewRepository creates a new contact Repository.
func NewRepository(q db.Querier) *Repository {
	return &Repository{db: q}
}

// Create inserts a message and returns the stored record.
func (r *Repository) Create(ctx context.Context, name, email, subject, message string) (*Message, error) {
	m := &Message{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO messages (name, email, subject, message)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+messageColumns,
		name, email, subject, message,
	).Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return m, nil
}

// List returns all messages, newest first.
func (r *Repository) List(ctx context.Context) ([]Message, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+messageColumns+` FROM messages ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	out := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return out, nil
}

// Delete removes a message. A missing id is not an error.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}
