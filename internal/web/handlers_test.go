package web

import (
	"context"
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/mjessen/formpilot/internal/archive"
	"github.com/mjessen/formpilot/internal/config"
	"github.com/mjessen/formpilot/internal/db"
	"github.com/mjessen/formpilot/internal/history"
	"github.com/mjessen/formpilot/internal/logging"
	"github.com/mjessen/formpilot/internal/offline"
	"github.com/mjessen/formpilot/internal/profile"
	"github.com/mjessen/formpilot/internal/schema"
)

func setupTest(t *testing.T) *Handlers {
	t.Helper()
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("db.Init: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()

	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		t.Fatalf("template sub-FS: %v", err)
	}
	renderer := NewRenderer(templateSub, "test")

	return &Handlers{
		cfg:      cfg,
		captures: archive.NewStore(database, cfg.CaptureListLimit),
		profile:  profile.NewStore(database),
		messages: history.NewMessages(database, cfg.HistoryLimit),
		roadmap:  history.NewRoadmap(database),
		cache:    offline.New(database, cfg, logging.Nop()),
		renderer: renderer,
	}
}

// seedCapture archives a capture and returns its ID.
func seedCapture(t *testing.T, h *Handlers, pageURL, title string) string {
	t.Helper()
	fs := &schema.FormSchema{
		URL:   pageURL,
		Title: title,
		Fields: []schema.Field{
			{ID: "vorname", Label: "Vorname", Type: "text"},
			{ID: "email", Label: "E-Mail", Type: "email"},
		},
		Headings: []string{title},
	}
	capture, err := h.captures.Create(context.Background(), fs)
	if err != nil {
		t.Fatalf("seed capture %q: %v", title, err)
	}
	return capture.ID
}

// --- HandleCaptures ---

func TestHandleCaptures_Default(t *testing.T) {
	h := setupTest(t)
	seedCapture(t, h, "https://example.org/anmeldung", "Anmeldung")

	req := httptest.NewRequest("GET", "/captures", nil)
	rec := httptest.NewRecorder()
	h.HandleCaptures(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Anmeldung") {
		t.Error("expected capture title 'Anmeldung' in response")
	}
	if !strings.Contains(body, "Captures") {
		t.Error("expected page title 'Captures' in response")
	}
}

func TestHandleCaptures_Empty(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/captures", nil)
	rec := httptest.NewRecorder()
	h.HandleCaptures(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No pages captured yet") {
		t.Error("expected empty state message")
	}
}

func TestHandleCaptures_JSON(t *testing.T) {
	h := setupTest(t)
	seedCapture(t, h, "https://example.org/anmeldung", "Anmeldung")

	req := httptest.NewRequest("GET", "/captures", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.HandleCaptures(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("content-type = %q, want application/json", ct)
	}

	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	captures := payload["captures"].([]any)
	if len(captures) != 1 {
		t.Errorf("got %d captures, want 1", len(captures))
	}
}

// --- HandleDetail ---

func TestHandleDetail(t *testing.T) {
	h := setupTest(t)
	id := seedCapture(t, h, "https://example.org/anmeldung", "Anmeldung")

	req := httptest.NewRequest("GET", "/captures/"+id, nil)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "vorname") {
		t.Error("expected field id 'vorname' in detail page")
	}
	if !strings.Contains(body, "https://example.org/anmeldung") {
		t.Error("expected capture URL in detail page")
	}
}

func TestHandleDetail_NotFound(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/captures/nope", nil)
	req.SetPathValue("id", "nope")
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	errObj := payload["error"].(map[string]any)
	if errObj["code"] != "NOT_FOUND" {
		t.Errorf("error code = %v, want NOT_FOUND", errObj["code"])
	}
}

// --- HandleDelete ---

func TestHandleDelete(t *testing.T) {
	h := setupTest(t)
	id := seedCapture(t, h, "https://example.org/anmeldung", "Anmeldung")

	req := httptest.NewRequest("DELETE", "/captures/"+id, nil)
	req.SetPathValue("id", id)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	// Gone afterwards.
	if _, err := h.captures.GetByID(context.Background(), id); err == nil {
		t.Error("capture should be deleted")
	}
}

func TestHandleDelete_NotFound(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("DELETE", "/captures/nope", nil)
	req.SetPathValue("id", "nope")
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

// --- HandlePurge ---

func TestHandlePurge(t *testing.T) {
	h := setupTest(t)
	seedCapture(t, h, "https://example.org/a", "A")
	seedCapture(t, h, "https://example.org/b", "B")

	form := url.Values{"confirm": {"true"}}
	req := httptest.NewRequest("POST", "/captures/purge", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.HandlePurge(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if purged := payload["purged"].(float64); purged != 2 {
		t.Errorf("purged = %v, want 2", purged)
	}

	items, err := h.captures.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("got %d captures after purge, want 0", len(items))
	}
}

func TestHandlePurge_RequiresConfirm(t *testing.T) {
	h := setupTest(t)
	seedCapture(t, h, "https://example.org/a", "A")

	req := httptest.NewRequest("POST", "/captures/purge", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.HandlePurge(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	items, err := h.captures.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Error("purge without confirm must not delete anything")
	}
}

// --- HandleStatus ---

func TestHandleStatus(t *testing.T) {
	h := setupTest(t)
	seedCapture(t, h, "https://example.org/a", "A")
	if err := h.profile.LoadDemo(); err != nil {
		t.Fatalf("load demo: %v", err)
	}
	if err := h.roadmap.Seed(); err != nil {
		t.Fatalf("seed roadmap: %v", err)
	}

	req := httptest.NewRequest("GET", "/status", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.HandleStatus(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	prof := payload["profile"].(map[string]any)
	if prof["filled_count"].(float64) == 0 {
		t.Error("demo profile should report filled fields")
	}
	if payload["captures"].(float64) != 1 {
		t.Errorf("captures = %v, want 1", payload["captures"])
	}
	if payload["cache_fresh"] != false {
		t.Error("empty cache should report cache_fresh: false")
	}
	if steps := payload["roadmap"].([]any); len(steps) == 0 {
		t.Error("expected seeded roadmap steps")
	}
}

// The status page reports counts, never profile values.
func TestHandleStatus_NoProfileValues(t *testing.T) {
	h := setupTest(t)
	if err := h.profile.LoadDemo(); err != nil {
		t.Fatalf("load demo: %v", err)
	}
	rec := h.profile.Get()

	req := httptest.NewRequest("GET", "/status", nil)
	w := httptest.NewRecorder()
	h.HandleStatus(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	for field, value := range rec.Values() {
		if value == "" {
			continue
		}
		if strings.Contains(body, value) {
			t.Errorf("status page contains profile value for %s: %q", field, value)
		}
	}
}

// --- HandleGuides ---

func TestHandleGuides_Empty(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/guides", nil)
	rec := httptest.NewRecorder()
	h.HandleGuides(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "No guides cached yet") {
		t.Error("expected empty state message")
	}
	if !strings.Contains(body, "stale") {
		t.Error("empty cache should be reported stale")
	}
}

// --- Server wiring ---

func TestSecurityHeaders(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := securityHeaders(inner)

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing X-Content-Type-Options header")
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("missing X-Frame-Options header")
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("missing Content-Security-Policy header")
	}
}

func TestNewServer_Routes(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("db.Init: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	srv := NewServer(database, config.DefaultConfig(), logging.Nop(), "test", "127.0.0.1", 0)

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("GET / status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/captures" {
		t.Errorf("redirect location = %q, want /captures", loc)
	}
}
