// Package identity provides a Go client for the backend's authentication REST API.
// It covers anonymous sign-in, email/password sign-in and registration,
// and exchanging a persisted refresh token for a fresh session.
// Provider failures, including transport failures, are reported as *ProviderError
// carrying the provider's error code and message.
// Refreshed sessions are cached in an LRU keyed by refresh token until shortly before they expire.
package identity
