package session

//go:generate $MOCKGEN -source=persister.go -destination=mocks/persister_mock.go

import "github.com/oshokin/progress-sync/internal/config"

// Persister stores the refresh token of the active session between runs.
type Persister interface {
	// LoadRefreshToken returns the persisted token, or an empty string.
	LoadRefreshToken() string
	// SaveRefreshToken persists the token. An empty token clears it.
	SaveRefreshToken(token string) error
}

// ConfigPersister keeps the refresh token in the configuration file.
type ConfigPersister struct {
	cfg *config.Config
}

// NewConfigPersister creates a persister backed by the configuration file.
func NewConfigPersister(cfg *config.Config) *ConfigPersister {
	return &ConfigPersister{cfg: cfg}
}

// LoadRefreshToken returns the persisted token.
func (p *ConfigPersister) LoadRefreshToken() string {
	return p.cfg.RefreshToken
}

// SaveRefreshToken writes the token to the configuration file.
func (p *ConfigPersister) SaveRefreshToken(token string) error {
	return config.SaveRefreshToken(p.cfg, token)
}
