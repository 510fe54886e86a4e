package errors

import "fmt"

// ErrorCode classifies a vocabsync failure.
type ErrorCode string

const (
	// ErrTransport: remote service unreachable or timed out. Always caught
	// at the gateway boundary and degraded to "not synced".
	ErrTransport ErrorCode = "TRANSPORT"

	// ErrRemoteConflict: the flashcard app rejected a note as a duplicate.
	// Handled via the update fallback, not surfaced to users.
	ErrRemoteConflict ErrorCode = "REMOTE_CONFLICT"

	// ErrPersistenceConflict: local uniqueness violation outside the normal
	// upsert path. Indicates a defect in term normalization.
	ErrPersistenceConflict ErrorCode = "PERSISTENCE_CONFLICT"

	// ErrGenerationEmpty: the model returned no usable entries.
	ErrGenerationEmpty ErrorCode = "GENERATION_EMPTY"

	// ErrSyncInProgress: a collection-level cloud sync is already running.
	ErrSyncInProgress ErrorCode = "SYNC_IN_PROGRESS"

	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrInternal       ErrorCode = "INTERNAL"
)

// Error is a structured error with a code and optional details.
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewTransport wraps a transport-level failure (timeout, refused connection).
func NewTransport(op string, err error) *Error {
	return &Error{
		Code:    ErrTransport,
		Message: fmt.Sprintf("%s: remote unreachable: %v", op, err),
		Details: map[string]any{"op": op},
	}
}

// NewRemoteConflict marks a duplicate-note response from the remote service.
func NewRemoteConflict(term string) *Error {
	return &Error{
		Code:    ErrRemoteConflict,
		Message: fmt.Sprintf("remote note already exists for %q", term),
		Details: map[string]any{"term": term},
	}
}

// NewPersistenceConflict marks a local uniqueness violation.
func NewPersistenceConflict(term string) *Error {
	return &Error{
		Code:    ErrPersistenceConflict,
		Message: fmt.Sprintf("persistence conflict for term %q", term),
		Details: map[string]any{"term": term},
	}
}

// NewGenerationEmpty reports that generation produced nothing usable.
func NewGenerationEmpty(input string) *Error {
	return &Error{
		Code:    ErrGenerationEmpty,
		Message: fmt.Sprintf("nothing found for %q", input),
		Details: map[string]any{"input": input},
	}
}

// NewSyncInProgress reports a rejected concurrent cloud sync.
func NewSyncInProgress() *Error {
	return &Error{
		Code:    ErrSyncInProgress,
		Message: "collection sync already in progress",
	}
}

// NewNotFound reports a missing entry.
func NewNotFound(identifier string) *Error {
	return &Error{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("entry not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewInvalidRequest reports invalid operation parameters.
func NewInvalidRequest(msg string) *Error {
	return &Error{
		Code:    ErrInvalidRequest,
		Message: msg,
	}
}

// NewInternal wraps an unexpected failure, typically storage unavailability.
func NewInternal(err error) *Error {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Code:    ErrInternal,
		Message: msg,
	}
}

// Is checks if an error is a vocabsync Error with the given code.
func Is(err error, code ErrorCode) bool {
	if vErr, ok := err.(*Error); ok {
		return vErr.Code == code
	}
	return false
}
