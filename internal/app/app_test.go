package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/oshokin/progress-sync/internal/client/identity"
	mock_identity "github.com/oshokin/progress-sync/internal/client/identity/mocks"
	"github.com/oshokin/progress-sync/internal/config"
	"github.com/oshokin/progress-sync/internal/constants"
	"github.com/oshokin/progress-sync/internal/metrics"
	"github.com/oshokin/progress-sync/internal/service/cloudsync"
	mock_cloudsync "github.com/oshokin/progress-sync/internal/service/cloudsync/mocks"
	mock_localcache "github.com/oshokin/progress-sync/internal/service/localcache/mocks"
	"github.com/oshokin/progress-sync/internal/service/progress"
	"github.com/oshokin/progress-sync/internal/service/remote"
	mock_remote "github.com/oshokin/progress-sync/internal/service/remote/mocks"
	"github.com/oshokin/progress-sync/internal/service/session"
	mock_session "github.com/oshokin/progress-sync/internal/service/session/mocks"
)

var errUnavailable = errors.New("service unavailable")

type testApp struct {
	app       *App
	out       *bytes.Buffer
	client    *mock_identity.MockClient
	persister *mock_session.MockPersister
	syncer    *mock_cloudsync.MockService
	local     *mock_localcache.MockService
	remote    *mock_remote.MockService
}

func newTestApp(t *testing.T, autoSync bool) *testApp {
	t.Helper()

	ctrl := gomock.NewController(t)
	tt := &testApp{
		out:       &bytes.Buffer{},
		client:    mock_identity.NewMockClient(ctrl),
		persister: mock_session.NewMockPersister(ctrl),
		syncer:    mock_cloudsync.NewMockService(ctrl),
		local:     mock_localcache.NewMockService(ctrl),
		remote:    mock_remote.NewMockService(ctrl),
	}

	cfg := &config.Config{SyncQueueSize: 4, ParsedSyncTimeout: time.Second}
	manager := session.NewManager(tt.client, tt.persister)

	tt.app = newApp(context.Background(), cfg, manager, tt.local, tt.remote, tt.syncer)
	tt.app.out = tt.out

	if autoSync {
		tt.app.EnableAutoSync()
	}

	t.Cleanup(func() { tt.app.Close(context.Background()) })

	return tt
}

// TestApp_LoginSchedulesSync tests that every sign-in runs a sync and a failed sync does not fail the command.
func TestApp_LoginSchedulesSync(t *testing.T) {
	t.Parallel()

	guest := &identity.Session{UserID: "guest-1", IsAnonymous: true, RefreshToken: "refresh-guest"}
	user := &identity.Session{UserID: "user-1", Email: "kid@example.com", RefreshToken: "refresh-user"}

	tests := []struct {
		name    string
		session *identity.Session
		setup   func(tt *testApp)
		call    func(ctx context.Context, a *App) error
		syncErr error
	}{
		{
			name:    "guest",
			session: guest,
			setup: func(tt *testApp) {
				tt.client.EXPECT().SignInAnonymously(gomock.Any()).Return(guest, nil)
			},
			call: func(ctx context.Context, a *App) error { return a.LoginAsGuest(ctx) },
		},
		{
			name:    "email login",
			session: user,
			setup: func(tt *testApp) {
				tt.client.EXPECT().SignInWithPassword(gomock.Any(), "kid@example.com", "secret").Return(user, nil)
			},
			call: func(ctx context.Context, a *App) error {
				return a.LoginWithEmail(ctx, " kid@example.com ", "secret")
			},
		},
		{
			name:    "registration with failed sync",
			session: user,
			setup: func(tt *testApp) {
				tt.client.EXPECT().SignUpWithPassword(gomock.Any(), "kid@example.com", "secret").Return(user, nil)
			},
			call: func(ctx context.Context, a *App) error {
				return a.RegisterWithEmail(ctx, "kid@example.com", "secret")
			},
			syncErr: errUnavailable,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tt := newTestApp(t, true)
			tc.setup(tt)

			tt.persister.EXPECT().LoadRefreshToken().Return("")
			tt.persister.EXPECT().SaveRefreshToken(tc.session.RefreshToken).Return(nil)

			var result *cloudsync.Result
			if tc.syncErr == nil {
				result = &cloudsync.Result{UserID: tc.session.UserID, Action: cloudsync.ActionPushedLocal}
			}

			tt.syncer.EXPECT().Sync(gomock.Any(), tc.session).Return(result, tc.syncErr)

			require.NoError(t, tc.call(context.Background(), tt.app))
			assert.Same(t, tc.session, tt.app.sessions.Current())
			assert.Empty(t, tt.app.tasks)
		})
	}
}

// TestApp_LoginFailure tests that a rejected sign-in schedules nothing.
func TestApp_LoginFailure(t *testing.T) {
	t.Parallel()

	tt := newTestApp(t, true)

	providerErr := &identity.ProviderError{Code: identity.CodeInvalidPassword, Message: identity.CodeInvalidPassword}
	tt.client.EXPECT().SignInWithPassword(gomock.Any(), "kid@example.com", "wrong").Return(nil, providerErr)

	err := tt.app.LoginWithEmail(context.Background(), "kid@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, identity.HasCode(err, identity.CodeInvalidPassword))
	assert.Nil(t, tt.app.sessions.Current())
}

// TestApp_MissingCredentials tests that empty credentials never reach the provider.
func TestApp_MissingCredentials(t *testing.T) {
	t.Parallel()

	tt := newTestApp(t, true)

	require.ErrorIs(t, tt.app.LoginWithEmail(context.Background(), "  ", "secret"), ErrMissingCredentials)
	require.ErrorIs(t, tt.app.RegisterWithEmail(context.Background(), "kid@example.com", ""), ErrMissingCredentials)
}

// TestApp_Logout tests that sign-out clears the persisted session without syncing.
func TestApp_Logout(t *testing.T) {
	t.Parallel()

	tt := newTestApp(t, true)
	tt.persister.EXPECT().SaveRefreshToken("").Return(nil)

	require.NoError(t, tt.app.Logout(context.Background()))
	assert.Nil(t, tt.app.sessions.Current())
	assert.Empty(t, tt.app.tasks)
}

// TestApp_Sync tests the sync command.
func TestApp_Sync(t *testing.T) {
	t.Parallel()

	user := &identity.Session{UserID: "user-1", Email: "kid@example.com", RefreshToken: "refresh-user"}

	t.Run("restored session", func(t *testing.T) {
		t.Parallel()

		tt := newTestApp(t, true)
		tt.persister.EXPECT().LoadRefreshToken().Return("refresh-user").AnyTimes()
		tt.client.EXPECT().RefreshSession(gomock.Any(), "refresh-user").Return(user, nil)
		tt.syncer.EXPECT().Sync(gomock.Any(), user).
			Return(&cloudsync.Result{UserID: user.UserID, Action: cloudsync.ActionMerged}, nil)

		require.NoError(t, tt.app.Sync(context.Background()))
	})

	t.Run("failed run fails the command", func(t *testing.T) {
		t.Parallel()

		tt := newTestApp(t, true)
		tt.persister.EXPECT().LoadRefreshToken().Return("refresh-user").AnyTimes()
		tt.client.EXPECT().RefreshSession(gomock.Any(), "refresh-user").Return(user, nil)
		tt.syncer.EXPECT().Sync(gomock.Any(), user).Return(nil, errUnavailable)

		require.ErrorIs(t, tt.app.Sync(context.Background()), errUnavailable)
	})

	t.Run("signed out", func(t *testing.T) {
		t.Parallel()

		tt := newTestApp(t, true)
		tt.persister.EXPECT().LoadRefreshToken().Return("")

		require.ErrorIs(t, tt.app.Sync(context.Background()), ErrLoginRequired)
	})

	t.Run("revoked session", func(t *testing.T) {
		t.Parallel()

		tt := newTestApp(t, true)
		tt.persister.EXPECT().LoadRefreshToken().Return("refresh-user")
		tt.client.EXPECT().RefreshSession(gomock.Any(), "refresh-user").
			Return(nil, &identity.ProviderError{
				Code:    identity.CodeInvalidRefreshToken,
				Message: identity.CodeInvalidRefreshToken,
			})
		tt.persister.EXPECT().SaveRefreshToken("").Return(nil)

		err := tt.app.Sync(context.Background())
		require.Error(t, err)
		assert.True(t, identity.HasCode(err, identity.CodeInvalidRefreshToken))
	})
}

// TestApp_ShowProgress tests the readable progress output.
func TestApp_ShowProgress(t *testing.T) {
	t.Parallel()

	user := &identity.Session{UserID: "user-1", Email: "kid@example.com", RefreshToken: "refresh-user"}

	document, err := progress.ParseDocument([]byte(`{
		"scores": {"math": 1000, "words": 500},
		"totalScore": 1500,
		"badges": ["first-win"],
		"visitedGames": ["math", "words"],
		"streak": 3,
		"streakLastUpdated": "2024-03-01T10:00:00Z",
		"theme": "dark"
	}`))
	require.NoError(t, err)

	t.Run("local", func(t *testing.T) {
		t.Parallel()

		tt := newTestApp(t, false)
		tt.local.EXPECT().Load(gomock.Any()).Return(document, nil)

		require.NoError(t, tt.app.ShowProgress(context.Background(), false))

		output := tt.out.String()
		assert.Contains(t, output, "Progress in local cache")
		assert.Contains(t, output, "Total score: 1,500")
		assert.Contains(t, output, "  math: 1,000")
		assert.Contains(t, output, "Badges: first-win")
		assert.Contains(t, output, "Visited games: math, words")
		assert.Contains(t, output, "Streak: 3 (updated")
		assert.Contains(t, output, "Other fields: theme")
	})

	t.Run("local empty", func(t *testing.T) {
		t.Parallel()

		tt := newTestApp(t, false)
		tt.local.EXPECT().Load(gomock.Any()).Return(nil, nil)

		require.NoError(t, tt.app.ShowProgress(context.Background(), false))
		assert.Equal(t, "No progress in local cache\n", tt.out.String())
	})

	t.Run("remote not found", func(t *testing.T) {
		t.Parallel()

		tt := newTestApp(t, false)
		tt.persister.EXPECT().LoadRefreshToken().Return("refresh-user").AnyTimes()
		tt.client.EXPECT().RefreshSession(gomock.Any(), "refresh-user").Return(user, nil)
		tt.remote.EXPECT().Load(gomock.Any(), user).
			Return(nil, fmt.Errorf("%w: users/user-1", remote.ErrDocumentNotFound))

		require.NoError(t, tt.app.ShowProgress(context.Background(), true))
		assert.Equal(t, "No progress in cloud (kid@example.com)\n", tt.out.String())
	})

	t.Run("remote failure", func(t *testing.T) {
		t.Parallel()

		tt := newTestApp(t, false)
		tt.persister.EXPECT().LoadRefreshToken().Return("refresh-user").AnyTimes()
		tt.client.EXPECT().RefreshSession(gomock.Any(), "refresh-user").Return(user, nil)
		tt.remote.EXPECT().Load(gomock.Any(), user).Return(nil, errUnavailable)

		require.ErrorIs(t, tt.app.ShowProgress(context.Background(), true), errUnavailable)
	})
}

// TestApp_MergeFiles tests merging two progress files.
func TestApp_MergeFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	localPath := filepath.Join(dir, "local.json")
	remotePath := filepath.Join(dir, "remote.json")

	require.NoError(t, os.WriteFile(localPath,
		[]byte(`{"scores":{"math":10,"words":4},"badges":["b"]}`), constants.DefaultFilePermissions))
	require.NoError(t, os.WriteFile(remotePath,
		[]byte(`{"scores":{"math":7},"badges":["a"]}`), constants.DefaultFilePermissions))

	tests := []struct {
		name     string
		local    string
		remote   string
		expected string
	}{
		{
			name:     "both present",
			local:    localPath,
			remote:   remotePath,
			expected: `{"badges":["a","b"],"scores":{"math":10,"words":4},"totalScore":14}`,
		},
		{
			name:     "remote missing",
			local:    localPath,
			remote:   filepath.Join(dir, "missing.json"),
			expected: `{"badges":["b"],"scores":{"math":10,"words":4}}`,
		},
		{
			name:     "both missing",
			local:    filepath.Join(dir, "none.json"),
			remote:   filepath.Join(dir, "missing.json"),
			expected: `null`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tt := newTestApp(t, false)

			require.NoError(t, tt.app.MergeFiles(tc.local, tc.remote))

			var compact bytes.Buffer
			require.NoError(t, json.Compact(&compact, tt.out.Bytes()))
			assert.JSONEq(t, tc.expected, compact.String())
		})
	}
}

// TestApp_MetricsFile tests that sync outcomes are written to the metrics file on close.
func TestApp_MetricsFile(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := mock_identity.NewMockClient(ctrl)
	persister := mock_session.NewMockPersister(ctrl)
	syncer := mock_cloudsync.NewMockService(ctrl)

	cfg := &config.Config{
		SyncQueueSize:     4,
		ParsedSyncTimeout: time.Second,
		MetricsFile:       filepath.Join(t.TempDir(), "progress_sync.prom"),
	}

	registry := prometheus.NewRegistry()
	a := newApp(context.Background(), cfg, session.NewManager(client, persister),
		mock_localcache.NewMockService(ctrl), mock_remote.NewMockService(ctrl), syncer,
		cloudsync.WithRecorder(metrics.NewCollector(registry)))
	a.registry = registry
	a.EnableAutoSync()

	guest := &identity.Session{UserID: "guest-1", IsAnonymous: true}

	client.EXPECT().SignInAnonymously(gomock.Any()).Return(guest, nil)
	syncer.EXPECT().Sync(gomock.Any(), guest).
		Return(&cloudsync.Result{UserID: guest.UserID, Action: cloudsync.ActionAdoptedRemote}, nil)

	require.NoError(t, a.LoginAsGuest(context.Background()))
	a.Close(context.Background())

	content, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), `progress_sync_sync_runs_total{outcome="adopted_remote"} 1`)
}

// TestApp_Status tests the status command against a stubbed session manager.
func TestApp_Status(t *testing.T) {
	t.Parallel()

	user := &identity.Session{UserID: "user-1", Email: "kid@example.com"}

	tests := []struct {
		name    string
		session *identity.Session
		err     error
	}{
		{name: "signed in", session: user},
		{name: "signed out"},
		{name: "restore failure", err: errUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			manager := mock_session.NewMockManager(ctrl)
			manager.EXPECT().Restore(gomock.Any()).Return(tc.session, tc.err)

			a := newApp(context.Background(), &config.Config{SyncQueueSize: 1}, manager,
				mock_localcache.NewMockService(ctrl), mock_remote.NewMockService(ctrl),
				mock_cloudsync.NewMockService(ctrl))
			t.Cleanup(func() { a.Close(context.Background()) })

			err := a.Status(context.Background())
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)

				return
			}

			require.NoError(t, err)
		})
	}
}
