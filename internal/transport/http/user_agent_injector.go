package http

import (
	"net/http"

	"github.com/oshokin/progress-sync/internal/utils"
)

// UserAgentInjector is a custom http.RoundTripper that injects a User-Agent header into HTTP requests.
// The provider APIs use it to attribute traffic to the client build.
type UserAgentInjector struct {
	// next is the underlying HTTP round tripper.
	next http.RoundTripper
	// userAgentProvider provides the User-Agent string to inject.
	userAgentProvider utils.UserAgentProvider
}

const (
	// userAgentHeader is the HTTP header name for User-Agent.
	userAgentHeader = "User-Agent"
	// clientVersionHeader carries the client build for the identity provider.
	clientVersionHeader = "X-Client-Version"
)

// NewUserAgentInjector creates and returns a new instance of UserAgentInjector.
func NewUserAgentInjector(next http.RoundTripper, userAgentProvider utils.UserAgentProvider) http.RoundTripper {
	return &UserAgentInjector{
		next:              next,
		userAgentProvider: userAgentProvider,
	}
}

// RoundTrip executes a single HTTP transaction, adding the User-Agent and client version headers if missing.
// The caller's request is cloned before headers change, as http.RoundTripper requires.
func (t *UserAgentInjector) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	if req.Header.Get(userAgentHeader) != "" && req.Header.Get(clientVersionHeader) != "" {
		return t.next.RoundTrip(req)
	}

	userAgent := t.userAgentProvider.GetUserAgent()
	outgoing := req.Clone(req.Context())

	if outgoing.Header.Get(userAgentHeader) == "" {
		outgoing.Header.Set(userAgentHeader, userAgent)
	}

	if outgoing.Header.Get(clientVersionHeader) == "" {
		outgoing.Header.Set(clientVersionHeader, userAgent)
	}

	return t.next.RoundTrip(outgoing)
}
