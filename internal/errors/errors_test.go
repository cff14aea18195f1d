package errors

import (
	"fmt"
	"testing"
)

func TestPilotError_Error(t *testing.T) {
	err := &PilotError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "capture not found",
	}

	expected := "NOT_FOUND: capture not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("html is required")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "html is required" {
		t.Errorf("Message = %q, want %q", err.Message, "html is required")
	}
	if !err.Recoverable {
		t.Error("Recoverable = false, want true")
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("capture", "01ABC")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["identifier"] != "01ABC" {
		t.Errorf("Details[identifier] = %v, want %q", err.Details["identifier"], "01ABC")
	}
}

func TestNewStalePage(t *testing.T) {
	err := NewStalePage("https://a.example/form", "https://b.example/other")

	if err.Code != ErrStalePage {
		t.Errorf("Code = %q, want %q", err.Code, ErrStalePage)
	}
	if err.Status != 409 {
		t.Errorf("Status = %d, want 409", err.Status)
	}
	if err.Details["schema_url"] != "https://a.example/form" {
		t.Errorf("Details[schema_url] = %v, want schema URL", err.Details["schema_url"])
	}
}

func TestNewUnknownToken(t *testing.T) {
	err := NewUnknownToken("[SHOE_SIZE]")

	if err.Code != ErrUnknownToken {
		t.Errorf("Code = %q, want %q", err.Code, ErrUnknownToken)
	}
	if err.Status != 422 {
		t.Errorf("Status = %d, want 422", err.Status)
	}
	if err.Details["token"] != "[SHOE_SIZE]" {
		t.Errorf("Details[token] = %v, want %q", err.Details["token"], "[SHOE_SIZE]")
	}
}

func TestNewStorage(t *testing.T) {
	err := NewStorage("insert capture", fmt.Errorf("disk full"))

	if err.Code != ErrStorage {
		t.Errorf("Code = %q, want %q", err.Code, ErrStorage)
	}
	if !err.Recoverable {
		t.Error("Recoverable = false, want true")
	}
	if err.Message != "insert capture: disk full" {
		t.Errorf("Message = %q, want wrapped reason", err.Message)
	}
}

func TestNewStorage_NilErr(t *testing.T) {
	err := NewStorage("insert capture", nil)

	if err.Message != "insert capture" {
		t.Errorf("Message = %q, want %q", err.Message, "insert capture")
	}
}

func TestNewCorrupt_IsFatal(t *testing.T) {
	err := NewCorrupt("schema version went backwards")

	if err.Code != ErrCorrupt {
		t.Errorf("Code = %q, want %q", err.Code, ErrCorrupt)
	}
	if err.Recoverable {
		t.Error("Recoverable = true, want false")
	}
}

func TestNewInternal(t *testing.T) {
	err := NewInternal(fmt.Errorf("boom"))

	if err.Code != ErrInternal {
		t.Errorf("Code = %q, want %q", err.Code, ErrInternal)
	}
	if err.Message != "boom" {
		t.Errorf("Message = %q, want %q", err.Message, "boom")
	}
}

func TestNewInternal_NilError(t *testing.T) {
	err := NewInternal(nil)

	if err.Message != "internal error" {
		t.Errorf("Message = %q, want %q", err.Message, "internal error")
	}
}

func TestIs(t *testing.T) {
	err := NewNotFound("capture", "x")

	if !Is(err, ErrNotFound) {
		t.Error("Is(err, ErrNotFound) = false, want true")
	}
	if Is(err, ErrStorage) {
		t.Error("Is(err, ErrStorage) = true, want false")
	}
	if Is(fmt.Errorf("plain"), ErrNotFound) {
		t.Error("Is(plain error) = true, want false")
	}
}

func TestRecoverable(t *testing.T) {
	if !Recoverable(NewStorage("write", nil)) {
		t.Error("Recoverable(storage) = false, want true")
	}
	if Recoverable(NewCorrupt("bad")) {
		t.Error("Recoverable(corrupt) = true, want false")
	}
	if Recoverable(fmt.Errorf("plain")) {
		t.Error("Recoverable(plain) = true, want false")
	}
}
