package app

import "errors"

var (
	// ErrLoginRequired indicates that the command needs a signed-in session.
	ErrLoginRequired = errors.New("login required: run 'progress-sync auth guest' or 'progress-sync auth login'")
	// ErrMissingCredentials indicates that the email or password flag is empty.
	ErrMissingCredentials = errors.New("email and password are required")
)
