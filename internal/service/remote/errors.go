package remote

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSession is returned when an operation is called without an active session.
	ErrNoSession = errors.New("no active session")
	// ErrDocumentNotFound is returned when the user has no document yet.
	ErrDocumentNotFound = errors.New("progress document not found")
	// ErrNilDocument is returned when Save is called with a nil document.
	ErrNilDocument = errors.New("progress document cannot be nil")
)

// ErrorKind classifies store failures.
type ErrorKind string

// KindTransport covers network, permission and decoding failures.
const KindTransport ErrorKind = "TransportError"

// StoreError describes a failed read or write that should be retried later.
type StoreError struct {
	// Kind classifies the failure.
	Kind ErrorKind
	// Op is the failed operation, "load" or "save".
	Op string
	// UserID identifies the document.
	UserID string
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("failed to %s progress of user %s (%s): %v", e.Op, e.UserID, e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StoreError) Unwrap() error {
	return e.Err
}

func newTransportError(op, userID string, err error) *StoreError {
	return &StoreError{
		Kind:   KindTransport,
		Op:     op,
		UserID: userID,
		Err:    err,
	}
}
