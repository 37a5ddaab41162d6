// Package contact persists contact-form submissions.
package contact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrInvalidMessage is returned when a submission fails validation.
var ErrInvalidMessage = errors.New("invalid contact message")

// Message is a single contact-form submission.
type Message struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the submission fields.
func (m *Message) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidMessage)
	}
	email := strings.TrimSpace(m.Email)
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidMessage)
	}
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || !strings.Contains(email[at+1:], ".") {
		return fmt.Errorf("%w: email %q is malformed", ErrInvalidMessage, email)
	}
	if strings.TrimSpace(m.Message) == "" {
		return fmt.Errorf("%w: message is required", ErrInvalidMessage)
	}
	return nil
}

// Store persists contact messages in sqlite.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS contact_messages (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL,
	message    TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
`

// NewStore opens (creating if needed) the contact database at path.
// Use ":memory:" for an ephemeral store in tests.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening contact db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating contact schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Save validates and persists a submission, assigning its ID and
// timestamp.
func (s *Store) Save(ctx context.Context, msg *Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	msg.ID = uuid.New().String()
	msg.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contact_messages (id, name, email, message, created_at) VALUES (?, ?, ?, ?, ?)`,
		msg.ID, strings.TrimSpace(msg.Name), strings.TrimSpace(msg.Email),
		strings.TrimSpace(msg.Message), msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving contact message: %w", err)
	}
	return nil
}

// Count returns the number of stored messages.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contact_messages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting contact messages: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
