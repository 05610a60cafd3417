package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/progress-sync/internal/config"
)

// TestRedactSecrets tests that credentials never reach the logs.
func TestRedactSecrets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		dump      string
		forbidden string
	}{
		{
			name:      "password in JSON body",
			dump:      `{"email":"kid@example.com","password":"hunter2","returnSecureToken":true}`,
			forbidden: "hunter2",
		},
		{
			name:      "tokens in JSON response",
			dump:      `{"idToken": "eyJhbGciOi", "refreshToken":"AMf-vBx"}`,
			forbidden: "AMf-vBx",
		},
		{
			name:      "api key in request line",
			dump:      "POST /v1/accounts:signUp?key=AIzaSecret HTTP/1.1",
			forbidden: "AIzaSecret",
		},
		{
			name:      "refresh token in form body",
			dump:      "grant_type=refresh_token&refresh_token=AMf-secret",
			forbidden: "AMf-secret",
		},
		{
			name:      "bearer header",
			dump:      "GET /v1/doc HTTP/1.1\r\nAuthorization: Bearer eyJsecret\r\n",
			forbidden: "eyJsecret",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := string(redactSecrets([]byte(tt.dump)))
			assert.NotContains(t, result, tt.forbidden)
			assert.Contains(t, result, "REDACTED")
		})
	}

	// Non-secret fields are untouched.
	result := string(redactSecrets([]byte(`{"email":"kid@example.com","grant_type":"refresh_token"}`)))
	assert.Contains(t, result, "kid@example.com")
}

// TestLogTransport_Truncate tests dump truncation.
func TestLogTransport_Truncate(t *testing.T) {
	t.Parallel()

	transport, ok := NewLogTransport(http.DefaultTransport, 4).(*LogTransport)
	require.True(t, ok)

	assert.Equal(t, "abcd... [truncated]", transport.truncate([]byte("abcdef")))
	assert.Equal(t, "abc", transport.truncate([]byte("abc")))

	defaultTransport, ok := NewLogTransport(http.DefaultTransport, 0).(*LogTransport)
	require.True(t, ok)
	assert.Equal(t, uint64(DefaultMaxLogLength), defaultTransport.maxLogLength)
}

// TestLogTransport_RoundTrip tests that requests pass through the logging transport.
func TestLogTransport_RoundTrip(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	transport := NewLogTransport(http.DefaultTransport, 0)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, server.URL,
		strings.NewReader(`{"password":"x"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)

	defer resp.Body.Close() //nolint:errcheck // Test cleanup, error is not critical.

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, err = transport.RoundTrip(nil) //nolint:bodyclose // Body is empty on error.
	require.ErrorIs(t, err, ErrNilRequest)
}

// TestNewRateLimitTransport tests limiter construction.
func TestNewRateLimitTransport(t *testing.T) {
	t.Parallel()

	next := http.DefaultTransport

	assert.Same(t, next, NewRateLimitTransport(next, 0, 10), "zero rate disables limiting")

	limited, ok := NewRateLimitTransport(next, 2, 0).(*RateLimitTransport)
	require.True(t, ok)
	assert.Equal(t, 1, limited.limiter.Burst())
}

// TestRateLimitTransport_RoundTrip tests that a canceled context stops a waiting request.
func TestRateLimitTransport_RoundTrip(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	// One token per minute with burst 1: the first call passes, the second must wait.
	transport := NewRateLimitTransport(http.DefaultTransport, 1.0/60, 1)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)

	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close() //nolint:errcheck,gosec // Test cleanup, error is not critical.

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	req, err = http.NewRequestWithContext(ctx, http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)

	resp, err = transport.RoundTrip(req) //nolint:bodyclose // Body is empty on error.
	require.Error(t, err)
	assert.Nil(t, resp)
}

// TestNewClient tests the shared client builder.
func TestNewClient(t *testing.T) {
	t.Parallel()

	client := NewClient(&config.Config{ParsedRequestTimeout: 5 * time.Second})
	assert.Equal(t, 5*time.Second, client.Timeout)
	assert.IsType(t, &UserAgentInjector{}, client.Transport)

	client = NewClient(&config.Config{})
	assert.Equal(t, DefaultTimeout, client.Timeout)
}
