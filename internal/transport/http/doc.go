// Package http provides the HTTP client shared by the identity and document store clients.
// It chains custom transports for request/response logging with secret redaction,
// outgoing request rate limiting and User-Agent header injection.
package http
