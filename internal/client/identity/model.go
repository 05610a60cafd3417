package identity

import "time"

// Session is an authenticated or anonymous identity handle issued by the provider.
type Session struct {
	// UserID is the provider's unique identifier of the account.
	UserID string
	// IsAnonymous is true for guest accounts without credentials.
	IsAnonymous bool
	// Email is the account email; empty for guests.
	Email string
	// IDToken is the short-lived bearer token accepted by the document store.
	IDToken string
	// RefreshToken is the long-lived credential used to restore the session.
	RefreshToken string
	// ExpiresAt is the moment the ID token stops being accepted.
	ExpiresAt time.Time
}

// DisplayName returns the label shown for the session: the email or "guest".
func (s *Session) DisplayName() string {
	if s == nil {
		return ""
	}

	if s.IsAnonymous || s.Email == "" {
		return "guest"
	}

	return s.Email
}

// ExpiresWithin reports whether the ID token expires before now+margin.
func (s *Session) ExpiresWithin(now time.Time, margin time.Duration) bool {
	return !now.Add(margin).Before(s.ExpiresAt)
}

// signUpRequest is the body of accounts:signUp. Empty credentials create an anonymous account.
type signUpRequest struct {
	Email             string `json:"email,omitempty"`
	Password          string `json:"password,omitempty"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

// signInWithPasswordRequest is the body of accounts:signInWithPassword.
type signInWithPasswordRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

// authResponse is returned by accounts:signUp and accounts:signInWithPassword.
type authResponse struct {
	// IDToken is the issued bearer token.
	IDToken string `json:"idToken"`
	// Email is the account email, absent for anonymous accounts.
	Email string `json:"email"`
	// RefreshToken is the long-lived credential.
	RefreshToken string `json:"refreshToken"`
	// ExpiresIn is the token lifetime in seconds, encoded as a string.
	ExpiresIn string `json:"expiresIn"`
	// LocalID is the account identifier.
	LocalID string `json:"localId"`
}

// lookupRequest is the body of accounts:lookup.
type lookupRequest struct {
	IDToken string `json:"idToken"`
}

// lookupResponse is returned by accounts:lookup.
type lookupResponse struct {
	Users []*accountInfo `json:"users"`
}

// accountInfo describes one account in a lookup response.
type accountInfo struct {
	// LocalID is the account identifier.
	LocalID string `json:"localId"`
	// Email is the account email.
	Email string `json:"email"`
	// ProviderUserInfo lists linked sign-in providers; empty for anonymous accounts.
	ProviderUserInfo []*providerUserInfo `json:"providerUserInfo"`
}

// providerUserInfo describes a linked sign-in provider.
type providerUserInfo struct {
	ProviderID string `json:"providerId"`
}

// tokenResponse is returned by the token exchange endpoint.
type tokenResponse struct {
	ExpiresIn    string `json:"expires_in"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
	IDToken      string `json:"id_token"`
	UserID       string `json:"user_id"`
	ProjectID    string `json:"project_id"`
}

// errorResponse is the error envelope of the provider APIs.
type errorResponse struct {
	Error *errorBody `json:"error"`
}

// errorBody is the payload of errorResponse.
type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// storedSession is the session record kept in the local storage between runs.
type storedSession struct {
	// RefreshToken is the token the session was restored from.
	RefreshToken string `json:"refreshToken"`
	// UserID is the provider's unique identifier of the account.
	UserID string `json:"userId"`
	// IsAnonymous is true for guest accounts.
	IsAnonymous bool `json:"isAnonymous"`
	// Email is the account email.
	Email string `json:"email,omitempty"`
	// IDToken is the bearer token.
	IDToken string `json:"idToken"`
	// IssuedRefreshToken is the refresh token returned with the session.
	IssuedRefreshToken string `json:"issuedRefreshToken"`
	// ExpiresAt is the moment the ID token expires.
	ExpiresAt time.Time `json:"expiresAt"`
}
