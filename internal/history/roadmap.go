package history

import (
	"database/sql"
	"time"

	"github.com/mjessen/formpilot/internal/errors"
)

// Roadmap step statuses. Transitions are monotonic by intent only; the user
// may regress a step and that is allowed, not corrected.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusComplete   = "complete"
)

// Step is one unit of progress through the relocation paperwork.
type Step struct {
	ID          string `json:"id"`
	Order       int    `json:"order"`
	Title       string `json:"title"`
	Status      string `json:"status"`
	Notes       string `json:"notes,omitempty"`
	CompletedAt *int64 `json:"completed_at,omitempty"`
}

// defaultSteps is the seeded step set, in order.
var defaultSteps = []Step{
	{ID: "anmeldung", Order: 1, Title: "Register your address (Anmeldung)"},
	{ID: "visa", Order: 2, Title: "Apply for visa or residence permit"},
	{ID: "bank", Order: 3, Title: "Open a bank account"},
	{ID: "insurance", Order: 4, Title: "Get health insurance"},
	{ID: "tax-id", Order: 5, Title: "Receive your tax ID"},
	{ID: "rundfunk", Order: 6, Title: "Register for the broadcast fee"},
}

// Roadmap owns the roadmap-step namespace.
type Roadmap struct {
	db *sql.DB
}

// NewRoadmap creates the roadmap store.
func NewRoadmap(db *sql.DB) *Roadmap {
	return &Roadmap{db: db}
}

// Seed inserts the default step set. Existing rows keep their status;
// reseeding is a no-op for them.
func (r *Roadmap) Seed() error {
	for _, step := range defaultSteps {
		_, err := r.db.Exec(`
			INSERT OR IGNORE INTO roadmap_steps (id, ord, title, status)
			VALUES (?, ?, ?, ?)
		`, step.ID, step.Order, step.Title, StatusPending)
		if err != nil {
			return errors.NewStorage("seed roadmap", err)
		}
	}
	return nil
}

// List returns all steps in roadmap order.
func (r *Roadmap) List() ([]Step, error) {
	rows, err := r.db.Query(`
		SELECT id, ord, title, status, notes, completed_at
		FROM roadmap_steps
		ORDER BY ord ASC
	`)
	if err != nil {
		return nil, errors.NewStorage("list roadmap", err)
	}
	defer rows.Close()

	steps := []Step{}
	for rows.Next() {
		var s Step
		var notes sql.NullString
		var completedAt sql.NullInt64
		if err := rows.Scan(&s.ID, &s.Order, &s.Title, &s.Status, &notes, &completedAt); err != nil {
			continue
		}
		s.Notes = notes.String
		if completedAt.Valid {
			s.CompletedAt = &completedAt.Int64
		}
		steps = append(steps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorage("list roadmap", err)
	}

	return steps, nil
}

// SetStatus updates one step. completed_at is set if and only if the new
// status is complete; regressing a completed step clears it.
func (r *Roadmap) SetStatus(id, status, notes string) error {
	if status != StatusPending && status != StatusInProgress && status != StatusComplete {
		return errors.NewInvalidRequest("status must be one of: pending, in_progress, complete")
	}

	var completedAt any
	if status == StatusComplete {
		completedAt = time.Now().Unix()
	}

	result, err := r.db.Exec(`
		UPDATE roadmap_steps
		SET status = ?, notes = ?, completed_at = ?
		WHERE id = ?
	`, status, nullIfEmpty(notes), completedAt, id)
	if err != nil {
		return errors.NewStorage("update roadmap step", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if affected == 0 {
		return errors.NewNotFound("roadmap step", id)
	}
	return nil
}

// Reset returns every step to pending and clears notes and completion times.
func (r *Roadmap) Reset() error {
	_, err := r.db.Exec(`
		UPDATE roadmap_steps
		SET status = ?, notes = NULL, completed_at = NULL
	`, StatusPending)
	if err != nil {
		return errors.NewStorage("reset roadmap", err)
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
