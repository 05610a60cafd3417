package http

import (
	"net/http"

	"github.com/oshokin/progress-sync/internal/config"
	"github.com/oshokin/progress-sync/internal/utils"
	"github.com/oshokin/progress-sync/internal/version"
)

// NewClient builds the HTTP client shared by all provider clients.
// The transport chain is: User-Agent injection -> rate limiting -> logging -> default transport.
func NewClient(cfg *config.Config) *http.Client {
	timeout := cfg.ParsedRequestTimeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := NewLogTransport(http.DefaultTransport, cfg.ParsedMaxLogLength)
	transport = NewRateLimitTransport(transport, cfg.RequestsPerSecond, cfg.RequestBurst)
	transport = NewUserAgentInjector(transport, utils.NewClientUserAgentProvider(ProductName, version.Short()))

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}
