package identity

import "time"

const (
	// signUpURI creates anonymous or email/password accounts.
	signUpURI = "v1/accounts:signUp"
	// signInWithPasswordURI signs in with email and password.
	signInWithPasswordURI = "v1/accounts:signInWithPassword"
	// lookupURI returns account details for an ID token.
	lookupURI = "v1/accounts:lookup"
	// tokenURI exchanges a refresh token for a new ID token.
	tokenURI = "v1/token"

	// apiKeyParam is the query parameter carrying the project API key.
	apiKeyParam = "key"
)

const (
	// defaultTokenCacheSize is used when the configuration does not set one.
	defaultTokenCacheSize = 32
	// tokenExpiryMargin keeps cached sessions from being handed out right before they expire.
	tokenExpiryMargin = 5 * time.Minute
	// defaultTokenLifetime is assumed when the provider omits the token lifetime.
	defaultTokenLifetime = time.Hour
	// sessionStorageKey is the local storage key of the last restored session.
	sessionStorageKey = "identity.session"
)
