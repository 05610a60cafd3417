package utils

//go:generate $MOCKGEN -source=user_agent_provider.go -destination=mocks/user_agent_provider_mock.go

import (
	"fmt"
	"runtime"
)

// UserAgentProvider is an interface that defines a method for retrieving a User-Agent string.
type UserAgentProvider interface {
	// GetUserAgent returns a User-Agent string.
	GetUserAgent() string
}

// ClientUserAgentProvider builds a User-Agent identifying this client,
// its version and the platform it runs on.
type ClientUserAgentProvider struct {
	// userAgent is the precomputed User-Agent string.
	userAgent string
}

// NewClientUserAgentProvider creates a provider for "product/version (os; arch)".
// An empty version yields just the product with the platform suffix.
func NewClientUserAgentProvider(product, version string) UserAgentProvider {
	name := product
	if version != "" {
		name = product + "/" + version
	}

	return &ClientUserAgentProvider{
		userAgent: fmt.Sprintf("%s (%s; %s)", name, runtime.GOOS, runtime.GOARCH),
	}
}

// GetUserAgent returns a User-Agent string.
func (p *ClientUserAgentProvider) GetUserAgent() string {
	return p.userAgent
}
