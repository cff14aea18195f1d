package archive

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mjessen/formpilot/internal/errors"
	"github.com/mjessen/formpilot/internal/schema"
)

// List bounds used when no configured cap is supplied.
const (
	DefaultListLimit = 50
	MaxListLimit     = 50
)

// Store owns the captures namespace.
type Store struct {
	db  *sql.DB
	cap int
}

// NewStore creates a Store over an initialized database. limit caps every
// listing; a non-positive or oversized limit falls back to DefaultListLimit.
func NewStore(db *sql.DB, limit int) *Store {
	if limit <= 0 || limit > MaxListLimit {
		limit = DefaultListLimit
	}
	return &Store{db: db, cap: limit}
}

// Create persists a schema as a new capture and returns it with its assigned
// id and timestamp.
func (s *Store) Create(ctx context.Context, fs *schema.FormSchema) (*Capture, error) {
	if fs == nil {
		return nil, errors.NewInvalidRequest("schema is required")
	}
	if fs.URL == "" {
		return nil, errors.NewInvalidRequest("schema url is required")
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	c := &Capture{
		ID:              id,
		URL:             fs.URL,
		Title:           fs.Title,
		Fields:          fs.Fields,
		Headings:        fs.Headings,
		Buttons:         fs.Buttons,
		MainContent:     fs.MainContent,
		PageDescription: fs.PageDescription,
		CreatedAt:       time.Now().Unix(),
	}

	fieldsJSON, err := json.Marshal(c.Fields)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	headingsJSON := marshalOrNull(c.Headings)
	buttonsJSON := marshalOrNull(c.Buttons)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO captures (
			id, url, title, fields_json, headings_json, buttons_json,
			main_content, page_description, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.URL, c.Title, string(fieldsJSON), headingsJSON, buttonsJSON,
		nullIfEmpty(c.MainContent), nullIfEmpty(c.PageDescription), c.CreatedAt)
	if err != nil {
		return nil, errors.NewStorage("insert capture", err)
	}

	return c, nil
}

// List returns captures newest-first. A limit outside (0, cap] is clamped to
// the store's configured cap; fewer records than the limit truncates, never
// errors.
func (s *Store) List(ctx context.Context, limit int) ([]Capture, error) {
	if limit <= 0 || limit > s.cap {
		limit = s.cap
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, url, title, fields_json, headings_json, buttons_json,
			main_content, page_description, created_at
		FROM captures
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.NewStorage("list captures", err)
	}
	defer rows.Close()

	captures := []Capture{}
	for rows.Next() {
		c, err := scanCapture(rows)
		if err != nil {
			return nil, err
		}
		captures = append(captures, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorage("list captures", err)
	}

	return captures, nil
}

// GetByID retrieves one capture.
func (s *Store) GetByID(ctx context.Context, id string) (*Capture, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, url, title, fields_json, headings_json, buttons_json,
			main_content, page_description, created_at
		FROM captures
		WHERE id = ?
	`, id)

	c, err := scanCapture(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("capture", id)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteByID removes one capture. Deleting a nonexistent id reports not-found
// and touches nothing else.
func (s *Store) DeleteByID(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM captures WHERE id = ?`, id)
	if err != nil {
		return errors.NewStorage("delete capture", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if affected == 0 {
		return errors.NewNotFound("capture", id)
	}
	return nil
}

// DeleteAll removes every capture and returns how many were purged.
// Irreversible; confirmation is the caller's concern.
func (s *Store) DeleteAll(ctx context.Context) (int, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM captures`)
	if err != nil {
		return 0, errors.NewStorage("purge captures", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return int(affected), nil
}

// scanner abstracts sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCapture(row scanner) (*Capture, error) {
	var c Capture
	var fieldsJSON string
	var headingsJSON, buttonsJSON, mainContent, pageDescription sql.NullString

	err := row.Scan(&c.ID, &c.URL, &c.Title, &fieldsJSON, &headingsJSON,
		&buttonsJSON, &mainContent, &pageDescription, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, errors.NewStorage("scan capture", err)
	}

	if err := json.Unmarshal([]byte(fieldsJSON), &c.Fields); err != nil {
		return nil, errors.NewCorrupt("capture " + c.ID + " has unparseable fields_json")
	}
	if headingsJSON.Valid {
		_ = json.Unmarshal([]byte(headingsJSON.String), &c.Headings)
	}
	if buttonsJSON.Valid {
		_ = json.Unmarshal([]byte(buttonsJSON.String), &c.Buttons)
	}
	c.MainContent = mainContent.String
	c.PageDescription = pageDescription.String

	return &c, nil
}

func marshalOrNull(values []string) any {
	if len(values) == 0 {
		return nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil
	}
	return string(data)
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// entropy is shared so ids stay strictly increasing within one millisecond;
// newest-first listing tiebreaks on id for captures created in the same
// second.
var entropy = ulid.Monotonic(rand.Reader, 0)

// generateULID generates a new ULID.
func generateULID() (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
