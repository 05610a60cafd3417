package firestore

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the requested document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrRequestFailed wraps failures that never produced a response.
	ErrRequestFailed = errors.New("document store request failed")
	// ErrInvalidValue is returned when a value cannot be converted to or from the wire format.
	ErrInvalidValue = errors.New("invalid document value")
	// ErrInvalidDocumentID is returned when the document id is empty or spans several path segments.
	ErrInvalidDocumentID = errors.New("invalid document id")
)

// APIError describes an error answer of the document store.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Status is the canonical status, e.g. PERMISSION_DENIED.
	Status string
	// Message is the human-readable message.
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("document store error (%d %s): %s", e.StatusCode, e.Status, e.Message)
	}

	return fmt.Sprintf("document store error (%d): %s", e.StatusCode, e.Message)
}
