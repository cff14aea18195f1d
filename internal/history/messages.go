// Package history persists conversation transcript, roadmap progress, and the
// usage-analytics event log. Each store owns one namespace and is loadable and
// clearable on its own; losing one never takes the others with it.
package history

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/mjessen/formpilot/internal/errors"
)

// DefaultMessageLimit is the conversation retention window.
const DefaultMessageLimit = 50

// Message is one conversation turn.
type Message struct {
	ID        int64  `json:"id"`
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"`
}

// Valid message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Messages owns the conversation transcript. Appends beyond the retention
// window silently evict the oldest entries.
type Messages struct {
	db    *sql.DB
	limit int
}

// NewMessages creates the transcript store. A non-positive limit uses the
// default retention window.
func NewMessages(db *sql.DB, limit int) *Messages {
	if limit <= 0 {
		limit = DefaultMessageLimit
	}
	return &Messages{db: db, limit: limit}
}

// NewSessionID mints a session identifier for a fresh conversation.
func NewSessionID() string {
	return uuid.NewString()
}

// Append persists one message and prunes everything beyond the newest N.
func (m *Messages) Append(sessionID, role, content string) error {
	if role == "" || content == "" {
		return errors.NewInvalidRequest("role and content are required")
	}
	if role != RoleUser && role != RoleAssistant {
		return errors.NewInvalidRequest("role must be user or assistant")
	}

	_, err := m.db.Exec(`
		INSERT INTO messages (session_id, role, content, created_at)
		VALUES (?, ?, ?, ?)
	`, sessionID, role, content, time.Now().Unix())
	if err != nil {
		return errors.NewStorage("append message", err)
	}

	// Retention: keep only the newest N rows. Insert order is the relative
	// order, so the autoincrement id is the eviction key.
	_, err = m.db.Exec(`
		DELETE FROM messages
		WHERE id NOT IN (SELECT id FROM messages ORDER BY id DESC LIMIT ?)
	`, m.limit)
	if err != nil {
		return errors.NewStorage("prune messages", err)
	}

	return nil
}

// List returns the retained transcript in original relative order (oldest
// first). Unreadable rows are skipped, not fatal.
func (m *Messages) List() ([]Message, error) {
	rows, err := m.db.Query(`
		SELECT id, session_id, role, content, created_at
		FROM messages
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, errors.NewStorage("list messages", err)
	}
	defer rows.Close()

	messages := []Message{}
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			continue
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorage("list messages", err)
	}

	return messages, nil
}

// Clear wipes the transcript namespace.
func (m *Messages) Clear() error {
	if _, err := m.db.Exec(`DELETE FROM messages`); err != nil {
		return errors.NewStorage("clear messages", err)
	}
	return nil
}
