package app

import (
	"context"

	"github.com/oshokin/progress-sync/internal/config"
)

// ExecuteSyncCommand restores the persisted session and synchronizes its progress.
func ExecuteSyncCommand(ctx context.Context, cfg *config.Config) {
	withApp(ctx, cfg, true, func(a *App) error {
		return a.Sync(ctx)
	})
}

// Sync restores the persisted session and waits for its sync run.
// Unlike the auth commands, a failed run fails the command.
func (a *App) Sync(ctx context.Context) error {
	current, err := a.sessions.Restore(ctx)
	if err != nil {
		return err
	}

	if current == nil {
		return ErrLoginRequired
	}

	_, err = a.waitForSync(ctx)

	return err
}
