package app

import (
	"context"
	"strings"

	"github.com/oshokin/progress-sync/internal/config"
	"github.com/oshokin/progress-sync/internal/logger"
)

// ExecuteAuthGuestCommand signs in with a new anonymous account and syncs its progress.
func ExecuteAuthGuestCommand(ctx context.Context, cfg *config.Config) {
	withApp(ctx, cfg, true, func(a *App) error {
		return a.LoginAsGuest(ctx)
	})
}

// ExecuteAuthLoginCommand signs in with an email account and syncs its progress.
func ExecuteAuthLoginCommand(ctx context.Context, cfg *config.Config, email, password string) {
	withApp(ctx, cfg, true, func(a *App) error {
		return a.LoginWithEmail(ctx, email, password)
	})
}

// ExecuteAuthRegisterCommand creates an email account, signs in, and syncs its progress.
func ExecuteAuthRegisterCommand(ctx context.Context, cfg *config.Config, email, password string) {
	withApp(ctx, cfg, true, func(a *App) error {
		return a.RegisterWithEmail(ctx, email, password)
	})
}

// ExecuteAuthLogoutCommand forgets the persisted session.
func ExecuteAuthLogoutCommand(ctx context.Context, cfg *config.Config) {
	withApp(ctx, cfg, true, func(a *App) error {
		return a.Logout(ctx)
	})
}

// ExecuteAuthStatusCommand restores the persisted session, reports it, and syncs its progress.
func ExecuteAuthStatusCommand(ctx context.Context, cfg *config.Config) {
	withApp(ctx, cfg, true, func(a *App) error {
		return a.Status(ctx)
	})
}

// LoginAsGuest signs in anonymously and waits for the resulting sync.
func (a *App) LoginAsGuest(ctx context.Context) error {
	if _, err := a.sessions.LoginAsGuest(ctx); err != nil {
		return err
	}

	a.settleSync(ctx)

	return nil
}

// LoginWithEmail signs in with email credentials and waits for the resulting sync.
func (a *App) LoginWithEmail(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return ErrMissingCredentials
	}

	if _, err := a.sessions.LoginWithEmail(ctx, email, password); err != nil {
		return err
	}

	a.settleSync(ctx)

	return nil
}

// RegisterWithEmail creates an account and waits for the resulting sync.
func (a *App) RegisterWithEmail(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return ErrMissingCredentials
	}

	if _, err := a.sessions.RegisterWithEmail(ctx, email, password); err != nil {
		return err
	}

	a.settleSync(ctx)

	return nil
}

// Logout signs out. The local cache is kept for the next session.
func (a *App) Logout(ctx context.Context) error {
	return a.sessions.Logout(ctx)
}

// Status restores the persisted session and reports who is signed in.
func (a *App) Status(ctx context.Context) error {
	current, err := a.sessions.Restore(ctx)
	if err != nil {
		return err
	}

	if current == nil {
		logger.Info(ctx, "Not signed in")

		return nil
	}

	logger.InfoKV(ctx, "Session restored",
		"user", current.DisplayName(),
		"user_id", current.UserID,
		"anonymous", current.IsAnonymous)

	a.settleSync(ctx)

	return nil
}
