package archive

import (
	"context"
	"database/sql"
	"testing"

	"github.com/mjessen/formpilot/internal/db"
	"github.com/mjessen/formpilot/internal/errors"
	"github.com/mjessen/formpilot/internal/schema"
)

func testStore(t *testing.T) (*Store, *sql.DB) {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database, 0), database
}

func sampleSchema(url string) *schema.FormSchema {
	return &schema.FormSchema{
		URL:   url,
		Title: "Anmeldung Online",
		Fields: []schema.Field{
			{ID: "vorname", Label: "First name", Type: "text", Required: true},
			{ID: "plz", Label: "Postcode", Type: "text"},
		},
		Headings:        []string{"Address Registration"},
		Buttons:         []string{"Submit"},
		PageDescription: "Register your address online",
	}
}

func TestCreate(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	c, err := store.Create(ctx, sampleSchema("https://city.example/anmeldung"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if len(c.ID) != 26 {
		t.Errorf("ID length = %d, want 26 (ULID)", len(c.ID))
	}
	if c.CreatedAt == 0 {
		t.Error("CreatedAt not set")
	}
	if len(c.Fields) != 2 {
		t.Errorf("len(Fields) = %d, want 2", len(c.Fields))
	}
}

func TestCreate_RequiresSchemaAndURL(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, nil); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("Create(nil) error = %v, want INVALID_REQUEST", err)
	}
	if _, err := store.Create(ctx, &schema.FormSchema{}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("Create(no url) error = %v, want INVALID_REQUEST", err)
	}
}

func TestList_NewestFirst(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	c1, err := store.Create(ctx, sampleSchema("https://a.example/1"))
	if err != nil {
		t.Fatalf("Create C1 failed: %v", err)
	}
	c2, err := store.Create(ctx, sampleSchema("https://a.example/2"))
	if err != nil {
		t.Fatalf("Create C2 failed: %v", err)
	}
	c3, err := store.Create(ctx, sampleSchema("https://a.example/3"))
	if err != nil {
		t.Fatalf("Create C3 failed: %v", err)
	}

	captures, err := store.List(ctx, 50)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(captures) != 3 {
		t.Fatalf("len = %d, want 3", len(captures))
	}
	want := []string{c3.ID, c2.ID, c1.ID}
	for i, id := range want {
		if captures[i].ID != id {
			t.Errorf("captures[%d].ID = %s, want %s", i, captures[i].ID, id)
		}
	}
}

func TestList_LimitClampedAndTruncating(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := store.Create(ctx, sampleSchema("https://a.example/x")); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	// Fewer records than the limit truncates, never errors.
	captures, err := store.List(ctx, 50)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(captures) != 3 {
		t.Errorf("len = %d, want 3", len(captures))
	}

	// Oversized and non-positive limits are clamped to the bounds.
	if _, err := store.List(ctx, 10_000); err != nil {
		t.Errorf("List(10000) error = %v", err)
	}
	captures, err = store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List(0) failed: %v", err)
	}
	if len(captures) != 3 {
		t.Errorf("List(0) len = %d, want 3 (default limit)", len(captures))
	}

	captures, err = store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List(2) failed: %v", err)
	}
	if len(captures) != 2 {
		t.Errorf("List(2) len = %d, want 2", len(captures))
	}
}

func TestList_ConfiguredCap(t *testing.T) {
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	store := NewStore(database, 2)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := store.Create(ctx, sampleSchema("https://a.example/x")); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	// The configured cap bounds both the default and explicit limits.
	captures, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List(0) failed: %v", err)
	}
	if len(captures) != 2 {
		t.Errorf("List(0) len = %d, want 2 (configured cap)", len(captures))
	}
	captures, err = store.List(ctx, 50)
	if err != nil {
		t.Fatalf("List(50) failed: %v", err)
	}
	if len(captures) != 2 {
		t.Errorf("List(50) len = %d, want 2 (configured cap)", len(captures))
	}
}

func TestList_Empty(t *testing.T) {
	store, _ := testStore(t)

	captures, err := store.List(context.Background(), 50)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if captures == nil {
		t.Fatal("List should return an empty slice, not nil")
	}
	if len(captures) != 0 {
		t.Errorf("len = %d, want 0", len(captures))
	}
}

func TestGetByID_RoundTrip(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, sampleSchema("https://city.example/anmeldung"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}

	if got.URL != created.URL || got.Title != created.Title {
		t.Errorf("got %+v, want %+v", got, created)
	}
	if len(got.Fields) != 2 || got.Fields[0].ID != "vorname" {
		t.Errorf("Fields = %+v, want round-tripped field list", got.Fields)
	}
	if len(got.Headings) != 1 || got.Headings[0] != "Address Registration" {
		t.Errorf("Headings = %v", got.Headings)
	}
	if got.PageDescription != "Register your address online" {
		t.Errorf("PageDescription = %q", got.PageDescription)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	store, _ := testStore(t)

	_, err := store.GetByID(context.Background(), "01NOPE")

	if !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("error = %v, want NOT_FOUND", err)
	}
}

func TestDeleteByID(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	keep, err := store.Create(ctx, sampleSchema("https://a.example/keep"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	doomed, err := store.Create(ctx, sampleSchema("https://a.example/doomed"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.DeleteByID(ctx, doomed.ID); err != nil {
		t.Fatalf("DeleteByID failed: %v", err)
	}

	if _, err := store.GetByID(ctx, doomed.ID); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("deleted capture still retrievable")
	}
	if _, err := store.GetByID(ctx, keep.ID); err != nil {
		t.Errorf("unrelated capture affected by delete: %v", err)
	}
}

func TestDeleteByID_NotFoundNoSideEffects(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	kept, err := store.Create(ctx, sampleSchema("https://a.example/keep"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.DeleteByID(ctx, "01NOPE"); !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("error = %v, want NOT_FOUND", err)
	}

	if _, err := store.GetByID(ctx, kept.ID); err != nil {
		t.Errorf("existing capture affected: %v", err)
	}
}

func TestDeleteAll(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if _, err := store.Create(ctx, sampleSchema("https://a.example/x")); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	purged, err := store.DeleteAll(ctx)
	if err != nil {
		t.Fatalf("DeleteAll failed: %v", err)
	}
	if purged != 4 {
		t.Errorf("purged = %d, want 4", purged)
	}

	captures, err := store.List(ctx, 50)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(captures) != 0 {
		t.Errorf("len after DeleteAll = %d, want 0", len(captures))
	}
}

func TestCapture_SchemaRoundTrip(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	fs := sampleSchema("https://city.example/anmeldung")
	c, err := store.Create(ctx, fs)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	back := c.Schema()
	if back.URL != fs.URL || len(back.Fields) != len(fs.Fields) {
		t.Errorf("Schema() = %+v, want original schema content", back)
	}
}
