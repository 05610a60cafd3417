package http

import (
	"fmt"
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimitTransport is a custom http.RoundTripper that spaces out outgoing requests.
// Each request waits for a token from a shared limiter, honoring the request context.
type RateLimitTransport struct {
	// next is the underlying HTTP round tripper.
	next http.RoundTripper
	// limiter hands out request tokens.
	limiter *rate.Limiter
}

// NewRateLimitTransport wraps next with a limiter allowing requestsPerSecond with the given burst.
// A non-positive rate disables limiting and returns next unchanged.
func NewRateLimitTransport(next http.RoundTripper, requestsPerSecond float64, burst int) http.RoundTripper {
	if requestsPerSecond <= 0 {
		return next
	}

	if burst < 1 {
		burst = 1
	}

	return &RateLimitTransport{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// RoundTrip waits for the limiter and forwards the request.
// It implements the http.RoundTripper interface.
func (t *RateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	return t.next.RoundTrip(req)
}
