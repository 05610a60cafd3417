package identity

//go:generate $MOCKGEN -source=client.go -destination=mocks/client_mock.go

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/oshokin/progress-sync/internal/client/kvstore"
	"github.com/oshokin/progress-sync/internal/config"
	"github.com/oshokin/progress-sync/internal/logger"
)

// Client defines the interface for interacting with the identity provider.
type Client interface {
	// SignInAnonymously creates a new guest account and returns its session.
	SignInAnonymously(ctx context.Context) (*Session, error)
	// SignInWithPassword signs in an existing email/password account.
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	// SignUpWithPassword registers a new email/password account.
	SignUpWithPassword(ctx context.Context, email, password string) (*Session, error)
	// RefreshSession exchanges a refresh token for a fresh session.
	RefreshSession(ctx context.Context, refreshToken string) (*Session, error)
}

// ClientImpl implements the Client interface over the provider's REST API.
type ClientImpl struct {
	// apiKey is the project API key sent with every request.
	apiKey string
	// identityBaseURL is the base URL of the accounts API.
	identityBaseURL string
	// secureTokenBaseURL is the base URL of the token exchange API.
	secureTokenBaseURL string
	// httpClient is the shared HTTP client.
	httpClient *http.Client
	// sessionsCache caches refreshed sessions keyed by refresh token.
	sessionsCache *lru.Cache[string, *Session]
	// sessionStore keeps the last restored session between runs. Optional.
	sessionStore kvstore.Store
	// now returns the current time.
	now func() time.Time
}

// ClientOption configures a ClientImpl.
type ClientOption func(*ClientImpl)

// WithSessionStore persists the last restored session in store,
// so a later run restoring the same refresh token within the token lifetime
// reuses it instead of calling the provider.
func WithSessionStore(store kvstore.Store) ClientOption {
	return func(c *ClientImpl) {
		c.sessionStore = store
	}
}

// NewClient creates and returns a new instance of ClientImpl.
func NewClient(cfg *config.Config, httpClient *http.Client, opts ...ClientOption) (Client, error) {
	identityBaseURL, err := url.Parse(cfg.IdentityBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid identity base URL: %w", err)
	}

	secureTokenBaseURL, err := url.Parse(cfg.SecureTokenBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid secure token base URL: %w", err)
	}

	cacheSize := cfg.TokenCacheSize
	if cacheSize <= 0 {
		cacheSize = defaultTokenCacheSize
	}

	sessionsCache, err := lru.New[string, *Session](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create sessions cache: %w", err)
	}

	client := &ClientImpl{
		apiKey:             cfg.APIKey,
		identityBaseURL:    identityBaseURL.String(),
		secureTokenBaseURL: secureTokenBaseURL.String(),
		httpClient:         httpClient,
		sessionsCache:      sessionsCache,
		now:                time.Now,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// SignInAnonymously creates a new guest account and returns its session.
func (c *ClientImpl) SignInAnonymously(ctx context.Context) (*Session, error) {
	response, err := postJSON[authResponse](c, ctx, c.identityBaseURL, signUpURI, &signUpRequest{
		ReturnSecureToken: true,
	})
	if err != nil {
		return nil, err
	}

	session := c.sessionFromAuthResponse(response)
	session.IsAnonymous = true

	return session, nil
}

// SignInWithPassword signs in an existing email/password account.
func (c *ClientImpl) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, NewProviderError(CodeInvalidLoginCredentials, ErrMissingCredentials)
	}

	response, err := postJSON[authResponse](c, ctx, c.identityBaseURL, signInWithPasswordURI,
		&signInWithPasswordRequest{
			Email:             strings.TrimSpace(email),
			Password:          password,
			ReturnSecureToken: true,
		})
	if err != nil {
		return nil, err
	}

	return c.sessionFromAuthResponse(response), nil
}

// SignUpWithPassword registers a new email/password account.
func (c *ClientImpl) SignUpWithPassword(ctx context.Context, email, password string) (*Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, NewProviderError(CodeInvalidEmail, ErrMissingCredentials)
	}

	response, err := postJSON[authResponse](c, ctx, c.identityBaseURL, signUpURI, &signUpRequest{
		Email:             strings.TrimSpace(email),
		Password:          password,
		ReturnSecureToken: true,
	})
	if err != nil {
		return nil, err
	}

	return c.sessionFromAuthResponse(response), nil
}

// RefreshSession exchanges a refresh token for a fresh session.
// Sessions are reused while their ID token is valid: first from the in-memory LRU cache,
// then from the session store, so repeated restores cost no API calls.
func (c *ClientImpl) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	if cached, ok := c.sessionsCache.Get(refreshToken); ok {
		if !cached.ExpiresWithin(c.now(), tokenExpiryMargin) {
			logger.Debugf(ctx, "Session cache hit for user: %s", cached.UserID)

			return cached, nil
		}

		c.sessionsCache.Remove(refreshToken)
	}

	if stored := c.loadStoredSession(ctx, refreshToken); stored != nil {
		logger.Debugf(ctx, "Stored session reused for user: %s", stored.UserID)
		c.sessionsCache.Add(refreshToken, stored)

		return stored, nil
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	token, err := postForm[tokenResponse](c, ctx, c.secureTokenBaseURL, tokenURI, form)
	if err != nil {
		return nil, err
	}

	session := &Session{
		UserID:       token.UserID,
		IDToken:      token.IDToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    c.expiresAt(token.ExpiresIn),
	}

	// The token endpoint does not describe the account, so look it up.
	account, err := c.lookupAccount(ctx, session.IDToken)
	if err != nil {
		return nil, err
	}

	session.Email = account.Email
	session.IsAnonymous = account.Email == "" && len(account.ProviderUserInfo) == 0

	c.sessionsCache.Add(refreshToken, session)
	c.saveStoredSession(ctx, refreshToken, session)

	return session, nil
}

// loadStoredSession returns the stored session restored from refreshToken
// when it is still valid. Storage failures are logged and treated as a miss.
func (c *ClientImpl) loadStoredSession(ctx context.Context, refreshToken string) *Session {
	if c.sessionStore == nil {
		return nil
	}

	value, ok, err := c.sessionStore.Get(sessionStorageKey)
	if err != nil {
		logger.Warnf(ctx, "Failed to read stored session: %v", err)

		return nil
	}

	if !ok {
		return nil
	}

	var record storedSession
	if err = json.Unmarshal([]byte(value), &record); err != nil {
		logger.Warnf(ctx, "Ignoring malformed stored session: %v", err)

		return nil
	}

	if record.RefreshToken != refreshToken {
		return nil
	}

	session := &Session{
		UserID:       record.UserID,
		IsAnonymous:  record.IsAnonymous,
		Email:        record.Email,
		IDToken:      record.IDToken,
		RefreshToken: record.IssuedRefreshToken,
		ExpiresAt:    record.ExpiresAt,
	}

	if session.UserID == "" || session.IDToken == "" || session.ExpiresWithin(c.now(), tokenExpiryMargin) {
		return nil
	}

	return session
}

func (c *ClientImpl) saveStoredSession(ctx context.Context, refreshToken string, session *Session) {
	if c.sessionStore == nil {
		return
	}

	content, err := json.Marshal(&storedSession{
		RefreshToken:       refreshToken,
		UserID:             session.UserID,
		IsAnonymous:        session.IsAnonymous,
		Email:              session.Email,
		IDToken:            session.IDToken,
		IssuedRefreshToken: session.RefreshToken,
		ExpiresAt:          session.ExpiresAt,
	})
	if err != nil {
		logger.Warnf(ctx, "Failed to encode session: %v", err)

		return
	}

	if err = c.sessionStore.Set(sessionStorageKey, string(content)); err != nil {
		logger.Warnf(ctx, "Failed to store session: %v", err)
	}
}

func (c *ClientImpl) lookupAccount(ctx context.Context, idToken string) (*accountInfo, error) {
	response, err := postJSON[lookupResponse](c, ctx, c.identityBaseURL, lookupURI, &lookupRequest{
		IDToken: idToken,
	})
	if err != nil {
		return nil, err
	}

	if len(response.Users) == 0 || response.Users[0] == nil {
		return nil, &ProviderError{Code: CodeUserNotFound, Message: CodeUserNotFound}
	}

	return response.Users[0], nil
}

func (c *ClientImpl) sessionFromAuthResponse(response *authResponse) *Session {
	return &Session{
		UserID:       response.LocalID,
		IsAnonymous:  response.Email == "",
		Email:        response.Email,
		IDToken:      response.IDToken,
		RefreshToken: response.RefreshToken,
		ExpiresAt:    c.expiresAt(response.ExpiresIn),
	}
}

// expiresAt converts a lifetime in seconds, encoded as a string, to an absolute time.
func (c *ClientImpl) expiresAt(expiresIn string) time.Time {
	seconds, err := strconv.ParseInt(expiresIn, 10, 64)
	if err != nil || seconds <= 0 {
		return c.now().Add(defaultTokenLifetime)
	}

	return c.now().Add(time.Duration(seconds) * time.Second)
}
