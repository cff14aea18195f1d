package history

import (
	"database/sql"
	"time"

	"github.com/mjessen/formpilot/internal/errors"
)

// DefaultEventLimit bounds the usage-analytics event log.
const DefaultEventLimit = 100

// Event is one lightweight usage-analytics entry. Events describe what the
// user did (form captured, fill applied), never the data involved.
type Event struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Detail    string `json:"detail,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

// Events owns the analytics namespace.
type Events struct {
	db    *sql.DB
	limit int
}

// NewEvents creates the event log. A non-positive limit uses the default.
func NewEvents(db *sql.DB, limit int) *Events {
	if limit <= 0 {
		limit = DefaultEventLimit
	}
	return &Events{db: db, limit: limit}
}

// Track records one event and prunes entries beyond the bound. Tracking is
// best-effort side-channel bookkeeping; callers usually ignore the error.
func (e *Events) Track(name, detail string) error {
	if name == "" {
		return errors.NewInvalidRequest("event name is required")
	}

	_, err := e.db.Exec(`
		INSERT INTO events (name, detail, created_at) VALUES (?, ?, ?)
	`, name, nullIfEmpty(detail), time.Now().Unix())
	if err != nil {
		return errors.NewStorage("track event", err)
	}

	_, err = e.db.Exec(`
		DELETE FROM events
		WHERE id NOT IN (SELECT id FROM events ORDER BY id DESC LIMIT ?)
	`, e.limit)
	if err != nil {
		return errors.NewStorage("prune events", err)
	}

	return nil
}

// List returns the newest events first, at most limit (clamped to the bound).
func (e *Events) List(limit int) ([]Event, error) {
	if limit <= 0 || limit > e.limit {
		limit = e.limit
	}

	rows, err := e.db.Query(`
		SELECT id, name, detail, created_at
		FROM events
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.NewStorage("list events", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var ev Event
		var detail sql.NullString
		if err := rows.Scan(&ev.ID, &ev.Name, &detail, &ev.CreatedAt); err != nil {
			continue
		}
		ev.Detail = detail.String
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorage("list events", err)
	}

	return events, nil
}

// Clear wipes the analytics namespace.
func (e *Events) Clear() error {
	if _, err := e.db.Exec(`DELETE FROM events`); err != nil {
		return errors.NewStorage("clear events", err)
	}
	return nil
}
