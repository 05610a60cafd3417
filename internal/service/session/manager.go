package session

//go:generate $MOCKGEN -source=manager.go -destination=mocks/manager_mock.go

import (
	"context"
	"fmt"
	"sync"

	"github.com/oshokin/progress-sync/internal/client/identity"
	"github.com/oshokin/progress-sync/internal/logger"
)

// Listener is called after every session transition with the new session, or nil after sign-out.
type Listener func(ctx context.Context, session *identity.Session)

// Manager defines the session operations.
type Manager interface {
	// LoginAsGuest signs in with a new anonymous account.
	LoginAsGuest(ctx context.Context) (*identity.Session, error)
	// LoginWithEmail signs in with an existing email/password account.
	LoginWithEmail(ctx context.Context, email, password string) (*identity.Session, error)
	// RegisterWithEmail creates an email/password account and signs in with it.
	RegisterWithEmail(ctx context.Context, email, password string) (*identity.Session, error)
	// Logout signs out and forgets the persisted session.
	Logout(ctx context.Context) error
	// Restore signs in with the persisted session, if there is one.
	Restore(ctx context.Context) (*identity.Session, error)
	// Current returns the active session, or nil when signed out.
	Current() *identity.Session
	// Subscribe registers a listener for session transitions.
	Subscribe(listener Listener)
}

// ManagerImpl implements Manager.
type ManagerImpl struct {
	client    identity.Client
	persister Persister

	mu        sync.RWMutex
	current   *identity.Session
	listeners []Listener
}

// NewManager creates a new session manager.
func NewManager(client identity.Client, persister Persister) *ManagerImpl {
	return &ManagerImpl{
		client:    client,
		persister: persister,
	}
}

// LoginAsGuest signs in with a new anonymous account.
func (m *ManagerImpl) LoginAsGuest(ctx context.Context) (*identity.Session, error) {
	session, err := m.client.SignInAnonymously(ctx)
	if err != nil {
		return nil, fmt.Errorf("guest sign-in failed: %w", err)
	}

	m.signIn(ctx, session)

	return session, nil
}

// LoginWithEmail signs in with an existing email/password account.
func (m *ManagerImpl) LoginWithEmail(ctx context.Context, email, password string) (*identity.Session, error) {
	session, err := m.client.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("email sign-in failed: %w", err)
	}

	m.signIn(ctx, session)

	return session, nil
}

// RegisterWithEmail creates an email/password account and signs in with it.
func (m *ManagerImpl) RegisterWithEmail(ctx context.Context, email, password string) (*identity.Session, error) {
	session, err := m.client.SignUpWithPassword(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	m.signIn(ctx, session)

	return session, nil
}

// Logout signs out and forgets the persisted session.
// The active session stays in place when the persisted token cannot be cleared.
func (m *ManagerImpl) Logout(ctx context.Context) error {
	if err := m.persister.SaveRefreshToken(""); err != nil {
		return fmt.Errorf("sign-out failed: %w", identity.NewProviderError(identity.CodeSignOutFailed, err))
	}

	m.setCurrent(nil)
	logger.Info(ctx, "Signed out")
	m.notify(ctx, nil)

	return nil
}

// Restore signs in with the persisted session, if there is one.
// Without a persisted session it reports a sign-out and returns nil.
func (m *ManagerImpl) Restore(ctx context.Context) (*identity.Session, error) {
	refreshToken := m.persister.LoadRefreshToken()
	if refreshToken == "" {
		m.setCurrent(nil)
		m.notify(ctx, nil)

		return nil, nil //nolint:nilnil // Signed out is not an error.
	}

	session, err := m.client.RefreshSession(ctx, refreshToken)
	if err != nil {
		if isRevoked(err) {
			logger.Warnf(ctx, "Persisted session is no longer valid: %v", err)

			if clearErr := m.persister.SaveRefreshToken(""); clearErr != nil {
				logger.Errorf(ctx, "Failed to clear persisted session: %v", clearErr)
			}

			m.setCurrent(nil)
			m.notify(ctx, nil)
		}

		return nil, fmt.Errorf("session restore failed: %w", err)
	}

	m.signIn(ctx, session)

	return session, nil
}

// Current returns the active session, or nil when signed out.
func (m *ManagerImpl) Current() *identity.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.current
}

// Subscribe registers a listener. Listeners are called in registration order.
func (m *ManagerImpl) Subscribe(listener Listener) {
	if listener == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.listeners = append(m.listeners, listener)
}

func (m *ManagerImpl) signIn(ctx context.Context, session *identity.Session) {
	if session.RefreshToken != "" && session.RefreshToken != m.persister.LoadRefreshToken() {
		// The session is usable even if it cannot be restored later.
		if err := m.persister.SaveRefreshToken(session.RefreshToken); err != nil {
			logger.Warnf(ctx, "Failed to persist session: %v", err)
		}
	}

	m.setCurrent(session)
	logger.Infof(ctx, "Signed in as %s", session.DisplayName())
	m.notify(ctx, session)
}

func (m *ManagerImpl) setCurrent(session *identity.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = session
}

func (m *ManagerImpl) notify(ctx context.Context, session *identity.Session) {
	m.mu.RLock()
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.RUnlock()

	for _, listener := range listeners {
		listener(ctx, session)
	}
}

// isRevoked reports whether the provider rejected the refresh token itself.
func isRevoked(err error) bool {
	for _, code := range []string{
		identity.CodeInvalidRefreshToken,
		identity.CodeTokenExpired,
		identity.CodeUserNotFound,
		identity.CodeUserDisabled,
	} {
		if identity.HasCode(err, code) {
			return true
		}
	}

	return false
}
