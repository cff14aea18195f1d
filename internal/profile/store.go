package profile

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/mjessen/formpilot/internal/errors"
)

// Store persists the personal-data record. The whole record lives in a single
// row and every mutation is one whole-record upsert, so a mutation is either
// fully visible or not at all; Clear is a single delete. Across concurrent
// processes the model is last-write-wins.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store over an initialized database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Get returns the current record. A missing row or unparseable stored JSON
// yields the all-empty default record, never an error.
func (s *Store) Get() Record {
	var raw string
	err := s.db.QueryRow(`SELECT record_json FROM profile WHERE id = 1`).Scan(&raw)
	if err != nil {
		return Record{}
	}

	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return Record{}
	}
	return rec
}

// Set updates a single field and persists the whole record before returning.
func (s *Store) Set(field, value string) error {
	rec := s.Get()
	if !rec.SetValue(field, value) {
		return errors.NewInvalidRequest("unknown profile field: " + field)
	}
	return s.write(rec)
}

// ReplaceAll overwrites the whole record.
func (s *Store) ReplaceAll(rec Record) error {
	return s.write(rec)
}

// LoadDemo bulk-replaces the record with the demo fixture. Idempotent.
func (s *Store) LoadDemo() error {
	return s.write(DemoRecord())
}

// Clear removes the record from memory and storage in one statement; no
// partially cleared state is ever visible.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM profile WHERE id = 1`); err != nil {
		return errors.NewStorage("clear profile", err)
	}
	return nil
}

// FilledCount returns how many record fields hold a value.
func (s *Store) FilledCount() int {
	return s.Get().FilledCount()
}

func (s *Store) write(rec Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return errors.NewInternal(err)
	}

	_, err = s.db.Exec(`
		INSERT INTO profile (id, record_json, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			record_json = excluded.record_json,
			updated_at = excluded.updated_at
	`, string(raw), time.Now().Unix())
	if err != nil {
		return errors.NewStorage("write profile", err)
	}
	return nil
}
