package cloudsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/oshokin/progress-sync/internal/client/identity"
	"github.com/oshokin/progress-sync/internal/config"
	"github.com/oshokin/progress-sync/internal/service/localcache"
	mock_localcache "github.com/oshokin/progress-sync/internal/service/localcache/mocks"
	"github.com/oshokin/progress-sync/internal/service/progress"
	"github.com/oshokin/progress-sync/internal/service/remote"
	mock_remote "github.com/oshokin/progress-sync/internal/service/remote/mocks"
)

var errUnavailable = errors.New("service unavailable")

func testSession() *identity.Session {
	return &identity.Session{UserID: "user-1", IDToken: "id-token"}
}

func parseDocument(t *testing.T, input string) *progress.Document {
	t.Helper()

	document, err := progress.ParseDocument([]byte(input))
	require.NoError(t, err)

	return document
}

type syncFixture struct {
	service *ServiceImpl
	local   *mock_localcache.MockService
	remote  *mock_remote.MockService
}

func newSyncFixture(t *testing.T, cfg *config.Config) *syncFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	local := mock_localcache.NewMockService(ctrl)
	cloud := mock_remote.NewMockService(ctrl)

	if cfg == nil {
		cfg = &config.Config{}
	}

	return &syncFixture{
		service: NewService(cfg, local, cloud),
		local:   local,
		remote:  cloud,
	}
}

// TestServiceImpl_Sync_BothPresent tests that both copies are merged and written back.
func TestServiceImpl_Sync_BothPresent(t *testing.T) {
	t.Parallel()

	f := newSyncFixture(t, nil)
	session := testSession()

	local := parseDocument(t, `{"scores":{"math":10},"badges":["a"]}`)
	cloud := parseDocument(t, `{"scores":{"math":5,"read":3},"badges":["b"],"totalScore":8}`)
	expected := `{"scores":{"math":10,"read":3},"badges":["b","a"],"totalScore":13}`

	var savedLocally *progress.Document

	gomock.InOrder(
		f.local.EXPECT().Load(gomock.Any()).Return(local, nil),
		f.remote.EXPECT().Load(gomock.Any(), session).Return(cloud, nil),
		f.local.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, document *progress.Document) error {
				savedLocally = document

				return nil
			}),
		f.remote.EXPECT().Save(gomock.Any(), session, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ *identity.Session, document *progress.Document) error {
				assert.Same(t, savedLocally, document)

				return nil
			}),
	)

	result, err := f.service.Sync(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, ActionMerged, result.Action)
	assert.Equal(t, "user-1", result.UserID)
	assert.False(t, result.Shared)
	assert.JSONEq(t, expected, marshal(t, result.Document))
	assert.JSONEq(t, expected, marshal(t, savedLocally))
}

// TestServiceImpl_Sync_RemoteOnly tests that the remote copy is adopted locally.
func TestServiceImpl_Sync_RemoteOnly(t *testing.T) {
	t.Parallel()

	f := newSyncFixture(t, nil)
	cloud := parseDocument(t, `{"visitedGames":["math"]}`)

	f.local.EXPECT().Load(gomock.Any()).Return(nil, nil)
	f.remote.EXPECT().Load(gomock.Any(), gomock.Any()).Return(cloud, nil)
	f.local.EXPECT().Save(gomock.Any(), cloud).Return(nil)

	result, err := f.service.Sync(context.Background(), testSession())
	require.NoError(t, err)
	assert.Equal(t, ActionAdoptedRemote, result.Action)
	assert.Same(t, cloud, result.Document)
}

// TestServiceImpl_Sync_LocalOnly tests that the local copy is pushed verbatim and the cache is untouched.
func TestServiceImpl_Sync_LocalOnly(t *testing.T) {
	t.Parallel()

	f := newSyncFixture(t, nil)
	local := parseDocument(t, `{"scores":{"math":1},"totalScore":99,"theme":"dark"}`)

	f.local.EXPECT().Load(gomock.Any()).Return(local, nil)
	f.remote.EXPECT().
		Load(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("%w: user user-1", remote.ErrDocumentNotFound))
	f.remote.EXPECT().Save(gomock.Any(), gomock.Any(), local).Return(nil)

	result, err := f.service.Sync(context.Background(), testSession())
	require.NoError(t, err)
	assert.Equal(t, ActionPushedLocal, result.Action)

	// Pushed as is: the stale total is not recomputed.
	assert.JSONEq(t, `{"scores":{"math":1},"totalScore":99,"theme":"dark"}`, marshal(t, result.Document))
}

// TestServiceImpl_Sync_NeitherPresent tests that nothing is written when there is no document.
func TestServiceImpl_Sync_NeitherPresent(t *testing.T) {
	t.Parallel()

	f := newSyncFixture(t, nil)

	f.local.EXPECT().Load(gomock.Any()).Return(nil, nil)
	f.remote.EXPECT().Load(gomock.Any(), gomock.Any()).Return(nil, remote.ErrDocumentNotFound)

	result, err := f.service.Sync(context.Background(), testSession())
	require.NoError(t, err)
	assert.Equal(t, ActionNone, result.Action)
	assert.Nil(t, result.Document)
}

// TestServiceImpl_Sync_Failures tests that read failures abort the run before any write.
func TestServiceImpl_Sync_Failures(t *testing.T) {
	t.Parallel()

	transportErr := &remote.StoreError{Kind: remote.KindTransport, Op: "load", UserID: "user-1", Err: errUnavailable}

	tests := []struct {
		name   string
		setup  func(f *syncFixture)
		target error
	}{
		{
			name: "corrupted local cache",
			setup: func(f *syncFixture) {
				f.local.EXPECT().Load(gomock.Any()).Return(nil, localcache.ErrCorruptedCache)
			},
			target: localcache.ErrCorruptedCache,
		},
		{
			name: "remote store unreachable",
			setup: func(f *syncFixture) {
				f.local.EXPECT().Load(gomock.Any()).Return(&progress.Document{}, nil)
				f.remote.EXPECT().Load(gomock.Any(), gomock.Any()).Return(nil, transportErr)
			},
			target: errUnavailable,
		},
		{
			name: "local write fails",
			setup: func(f *syncFixture) {
				f.local.EXPECT().Load(gomock.Any()).Return(nil, nil)
				f.remote.EXPECT().Load(gomock.Any(), gomock.Any()).Return(&progress.Document{}, nil)
				f.local.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errUnavailable)
			},
			target: errUnavailable,
		},
		{
			name: "remote write fails after local write",
			setup: func(f *syncFixture) {
				f.local.EXPECT().Load(gomock.Any()).Return(&progress.Document{}, nil)
				f.remote.EXPECT().Load(gomock.Any(), gomock.Any()).Return(&progress.Document{}, nil)
				f.local.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
				f.remote.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any()).Return(errUnavailable)
			},
			target: errUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newSyncFixture(t, nil)
			tt.setup(f)

			result, err := f.service.Sync(context.Background(), testSession())
			require.ErrorIs(t, err, tt.target)
			assert.Nil(t, result)
		})
	}
}

// TestServiceImpl_Sync_NoSession tests that a nil session is rejected.
func TestServiceImpl_Sync_NoSession(t *testing.T) {
	t.Parallel()

	f := newSyncFixture(t, nil)

	_, err := f.service.Sync(context.Background(), nil)
	require.ErrorIs(t, err, ErrNoSession)
}

// TestServiceImpl_Sync_Timeout tests that each run gets the configured deadline.
func TestServiceImpl_Sync_Timeout(t *testing.T) {
	t.Parallel()

	f := newSyncFixture(t, &config.Config{ParsedSyncTimeout: time.Minute})

	f.local.EXPECT().Load(gomock.Any()).DoAndReturn(func(ctx context.Context) (*progress.Document, error) {
		deadline, ok := ctx.Deadline()
		assert.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)

		return nil, nil
	})
	f.remote.EXPECT().Load(gomock.Any(), gomock.Any()).Return(nil, remote.ErrDocumentNotFound)

	_, err := f.service.Sync(context.Background(), testSession())
	require.NoError(t, err)
}

// TestServiceImpl_Sync_Overlapping tests that overlapping runs for one user are joined.
func TestServiceImpl_Sync_Overlapping(t *testing.T) {
	t.Parallel()

	f := newSyncFixture(t, nil)
	started := make(chan struct{})
	release := make(chan struct{})

	f.local.EXPECT().Load(gomock.Any()).DoAndReturn(func(context.Context) (*progress.Document, error) {
		close(started)
		<-release

		return nil, nil
	}).Times(1)
	f.remote.EXPECT().Load(gomock.Any(), gomock.Any()).Return(nil, remote.ErrDocumentNotFound).Times(1)

	var (
		wg      sync.WaitGroup
		results [2]*Result
		errs    [2]error
	)

	wg.Add(1)

	go func() {
		defer wg.Done()

		results[0], errs[0] = f.service.Sync(context.Background(), testSession())
	}()

	<-started
	wg.Add(1)

	go func() {
		defer wg.Done()

		results[1], errs[1] = f.service.Sync(context.Background(), testSession())
	}()

	// Give the second call time to join the running one.
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, ActionNone, results[0].Action)
	assert.Equal(t, ActionNone, results[1].Action)
	assert.True(t, results[0].Shared || results[1].Shared)
}

func marshal(t *testing.T, document *progress.Document) string {
	t.Helper()

	content, err := document.MarshalJSON()
	require.NoError(t, err)

	return string(content)
}
