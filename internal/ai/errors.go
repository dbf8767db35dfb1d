package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidModelType means the descriptor's type is outside the closed set
	// the router dispatches over: a registry/router mismatch, not a caller error.
	ErrInvalidModelType = errors.New("invalid model type")

	// ErrMissingDocID means a retrieval-augmented descriptor carries no document
	// index reference.
	ErrMissingDocID = errors.New("rag model has no doc_id")
)

// BackendError wraps any fault from a downstream model backend (auth, network,
// malformed response). It is the only error shape that crosses the router
// boundary for backend-level failures.
type BackendError struct {
	Backend string
	Message string
	Err     error
}

func (e *BackendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s backend: %s: %v", e.Backend, e.Message, e.Err)
	}
	return fmt.Sprintf("%s backend: %s", e.Backend, e.Message)
}

func (e *BackendError) Unwrap() error { return e.Err }

func newBackendError(backend, message string, err error) *BackendError {
	return &BackendError{Backend: backend, Message: message, Err: err}
}
