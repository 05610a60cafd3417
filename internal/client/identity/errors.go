package identity

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes reported by the provider.
const (
	CodeEmailExists             = "EMAIL_EXISTS"
	CodeEmailNotFound           = "EMAIL_NOT_FOUND"
	CodeInvalidPassword         = "INVALID_PASSWORD"
	CodeInvalidLoginCredentials = "INVALID_LOGIN_CREDENTIALS"
	CodeInvalidEmail            = "INVALID_EMAIL"
	CodeWeakPassword            = "WEAK_PASSWORD"
	CodeUserDisabled            = "USER_DISABLED"
	CodeOperationNotAllowed     = "OPERATION_NOT_ALLOWED"
	CodeTokenExpired            = "TOKEN_EXPIRED"
	CodeInvalidRefreshToken     = "INVALID_REFRESH_TOKEN"
	CodeUserNotFound            = "USER_NOT_FOUND"
	// CodeNetworkRequestFailed is used for failures that never reached the provider.
	CodeNetworkRequestFailed = "NETWORK_REQUEST_FAILED"
	// CodeInvalidResponse is used when the provider answered with an unexpected payload.
	CodeInvalidResponse = "INVALID_RESPONSE"
	// CodeSignOutFailed is used when the persisted session could not be cleared.
	CodeSignOutFailed = "SIGN_OUT_FAILED"
)

// ErrMissingCredentials indicates that an email or password argument is empty.
var ErrMissingCredentials = errors.New("email and password are required")

// ProviderError describes a failed identity provider operation.
type ProviderError struct {
	// StatusCode is the HTTP status of the provider response, 0 when no response was received.
	StatusCode int
	// Code is the provider's error code, e.g. EMAIL_EXISTS.
	Code string
	// Message is the provider's full message.
	Message string
	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("identity provider error (%d): %s", e.StatusCode, e.Message)
	}

	return "identity provider error: " + e.Message
}

// Unwrap returns the underlying cause.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError wraps a cause that did not come from a provider response.
func NewProviderError(code string, err error) *ProviderError {
	return &ProviderError{
		Code:    code,
		Message: err.Error(),
		Err:     err,
	}
}

// newProviderErrorFromMessage parses messages like "WEAK_PASSWORD : Password should be at least 6 characters".
func newProviderErrorFromMessage(statusCode int, message string) *ProviderError {
	code := message
	if before, _, found := strings.Cut(message, " : "); found {
		code = before
	}

	return &ProviderError{
		StatusCode: statusCode,
		Code:       strings.TrimSpace(code),
		Message:    message,
	}
}

// HasCode reports whether err is a ProviderError with the given code.
func HasCode(err error, code string) bool {
	var providerErr *ProviderError

	return errors.As(err, &providerErr) && providerErr.Code == code
}
