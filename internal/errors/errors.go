package errors

import "fmt"

// ErrorCode represents a FormPilot error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrStalePage      ErrorCode = "STALE_PAGE"      // 409
	ErrUnknownToken   ErrorCode = "UNKNOWN_TOKEN"   // 422
	ErrStorage        ErrorCode = "STORAGE"         // 500, recoverable
	ErrCorrupt        ErrorCode = "CORRUPT"         // 500, fatal
	ErrInternal       ErrorCode = "INTERNAL"        // 500, fatal
)

// PilotError represents a structured error with code, status, and details.
// Recoverable errors are soft outcomes the caller may surface and continue
// from; fatal errors indicate the durability layer itself is compromised.
type PilotError struct {
	Code        ErrorCode
	Status      int
	Message     string
	Details     map[string]any
	Recoverable bool
}

// Error implements the error interface.
func (e *PilotError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *PilotError {
	return &PilotError{
		Code:        ErrInvalidRequest,
		Status:      400,
		Message:     msg,
		Recoverable: true,
	}
}

// NewNotFound creates a 404 error for a missing record.
func NewNotFound(kind, identifier string) *PilotError {
	return &PilotError{
		Code:        ErrNotFound,
		Status:      404,
		Message:     fmt.Sprintf("%s not found: %s", kind, identifier),
		Details:     map[string]any{"identifier": identifier},
		Recoverable: true,
	}
}

// NewStalePage creates a 409 error for when a fill targets a page other than
// the one its schema was extracted from.
func NewStalePage(schemaURL, pageURL string) *PilotError {
	return &PilotError{
		Code:        ErrStalePage,
		Status:      409,
		Message:     fmt.Sprintf("page changed since capture: schema from %q, page is %q", schemaURL, pageURL),
		Details:     map[string]any{"schema_url": schemaURL, "page_url": pageURL},
		Recoverable: true,
	}
}

// NewUnknownToken creates a 422 error for a token outside the vocabulary.
func NewUnknownToken(tok string) *PilotError {
	return &PilotError{
		Code:        ErrUnknownToken,
		Status:      422,
		Message:     fmt.Sprintf("unknown placeholder token: %s", tok),
		Details:     map[string]any{"token": tok},
		Recoverable: true,
	}
}

// NewStorage creates a recoverable 500 error for a failed storage operation.
// Previously persisted state is intact; the operation may be retried.
func NewStorage(op string, err error) *PilotError {
	msg := op
	if err != nil {
		msg = fmt.Sprintf("%s: %v", op, err)
	}
	return &PilotError{
		Code:        ErrStorage,
		Status:      500,
		Message:     msg,
		Recoverable: true,
	}
}

// NewCorrupt creates a fatal 500 error for durability-layer corruption.
func NewCorrupt(msg string) *PilotError {
	return &PilotError{
		Code:    ErrCorrupt,
		Status:  500,
		Message: msg,
	}
}

// NewInternal creates a fatal 500 error for unexpected internal errors.
func NewInternal(err error) *PilotError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &PilotError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a PilotError with the given code.
func Is(err error, code ErrorCode) bool {
	if pErr, ok := err.(*PilotError); ok {
		return pErr.Code == code
	}
	return false
}

// Recoverable reports whether err is a recoverable PilotError. Non-PilotError
// values are treated as fatal.
func Recoverable(err error) bool {
	if pErr, ok := err.(*PilotError); ok {
		return pErr.Recoverable
	}
	return false
}
