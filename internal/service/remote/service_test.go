package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/oshokin/progress-sync/internal/client/firestore"
	mock_firestore "github.com/oshokin/progress-sync/internal/client/firestore/mocks"
	"github.com/oshokin/progress-sync/internal/client/identity"
	"github.com/oshokin/progress-sync/internal/config"
	"github.com/oshokin/progress-sync/internal/service/progress"
)

var errNetworkDown = errors.New("network is down")

func testSession() *identity.Session {
	return &identity.Session{UserID: "user-1", IDToken: "id-token", IsAnonymous: true}
}

func newTestService(t *testing.T) (*ServiceImpl, *mock_firestore.MockClient) {
	t.Helper()

	ctrl := gomock.NewController(t)
	client := mock_firestore.NewMockClient(ctrl)

	return NewService(&config.Config{UsersCollection: "players"}, client), client
}

// TestNewService tests the default collection.
func TestNewService(t *testing.T) {
	t.Parallel()

	service := NewService(&config.Config{}, nil)
	assert.Equal(t, config.DefaultUsersCollection, service.collection)
}

// TestServiceImpl_Load tests reading the remote document.
func TestServiceImpl_Load(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		fields    map[string]any
		clientErr error
		check     func(t *testing.T, document *progress.Document, err error)
	}{
		{
			name: "existing document",
			fields: map[string]any{
				"scores":     map[string]any{"math": json.Number("10")},
				"totalScore": json.Number("10"),
				"badges":     []any{},
				"pet":        "fox",
			},
			check: func(t *testing.T, document *progress.Document, err error) {
				t.Helper()
				require.NoError(t, err)
				assert.Equal(t, map[string]float64{"math": 10}, document.Scores)
				assert.NotNil(t, document.Badges)
				assert.JSONEq(t, `"fox"`, string(document.Extra["pet"]))
			},
		},
		{
			name:   "document without fields",
			fields: map[string]any{},
			check: func(t *testing.T, document *progress.Document, err error) {
				t.Helper()
				require.NoError(t, err)
				require.NotNil(t, document)
				assert.True(t, document.IsEmpty())
			},
		},
		{
			name:      "missing document",
			clientErr: fmt.Errorf("%w: players/user-1", firestore.ErrNotFound),
			check: func(t *testing.T, document *progress.Document, err error) {
				t.Helper()
				require.ErrorIs(t, err, ErrDocumentNotFound)
				assert.Nil(t, document)

				var storeErr *StoreError

				assert.NotErrorAs(t, err, &storeErr)
			},
		},
		{
			name:      "store unreachable",
			clientErr: fmt.Errorf("%w: %w", firestore.ErrRequestFailed, errNetworkDown),
			check: func(t *testing.T, document *progress.Document, err error) {
				t.Helper()
				assert.Nil(t, document)

				var storeErr *StoreError

				require.ErrorAs(t, err, &storeErr)
				assert.Equal(t, KindTransport, storeErr.Kind)
				assert.Equal(t, "load", storeErr.Op)
				assert.Equal(t, "user-1", storeErr.UserID)
				require.ErrorIs(t, err, errNetworkDown)
				assert.NotErrorIs(t, err, ErrDocumentNotFound)
			},
		},
		{
			name:      "permission denied",
			clientErr: &firestore.APIError{StatusCode: 403, Status: "PERMISSION_DENIED"},
			check: func(t *testing.T, _ *progress.Document, err error) {
				t.Helper()

				var apiErr *firestore.APIError

				require.ErrorAs(t, err, &apiErr)
				assert.Contains(t, err.Error(), "TransportError")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			service, client := newTestService(t)
			client.EXPECT().
				GetDocument(gomock.Any(), "id-token", "players", "user-1").
				Return(tt.fields, tt.clientErr)

			document, err := service.Load(context.Background(), testSession())
			tt.check(t, document, err)
		})
	}
}

// TestServiceImpl_Save tests replacing the remote document.
func TestServiceImpl_Save(t *testing.T) {
	t.Parallel()

	service, client := newTestService(t)

	document, err := progress.ParseDocument([]byte(`{"scores":{"math":10,"art":2.5},"visitedGames":[],"theme":null}`))
	require.NoError(t, err)

	client.EXPECT().
		SetDocument(gomock.Any(), "id-token", "players", "user-1", map[string]any{
			"scores":       map[string]any{"math": json.Number("10"), "art": json.Number("2.5")},
			"visitedGames": []any{},
			"theme":        nil,
		}).
		Return(nil)

	require.NoError(t, service.Save(context.Background(), testSession(), document))

	client.EXPECT().
		SetDocument(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errNetworkDown)

	err = service.Save(context.Background(), testSession(), document)

	var storeErr *StoreError

	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "save", storeErr.Op)
	require.ErrorIs(t, err, errNetworkDown)
}

// TestServiceImpl_NoSession tests that calls without a session never reach the store.
func TestServiceImpl_NoSession(t *testing.T) {
	t.Parallel()

	service, _ := newTestService(t)
	ctx := context.Background()

	_, err := service.Load(ctx, nil)
	require.ErrorIs(t, err, ErrNoSession)
	require.ErrorIs(t, service.Save(ctx, nil, &progress.Document{}), ErrNoSession)
	require.ErrorIs(t, service.Save(ctx, testSession(), nil), ErrNilDocument)

	assert.False(t, service.SaveUserDataToCloud(ctx, nil, &progress.Document{}))
	assert.Nil(t, service.LoadUserDataFromCloud(ctx, nil))
}

// TestServiceImpl_LegacyFacades tests the boolean and nil-returning wrappers.
func TestServiceImpl_LegacyFacades(t *testing.T) {
	t.Parallel()

	service, client := newTestService(t)
	ctx := context.Background()
	document := &progress.Document{Badges: []string{"a"}}

	gomock.InOrder(
		client.EXPECT().SetDocument(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil),
		client.EXPECT().SetDocument(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errNetworkDown),
	)

	assert.True(t, service.SaveUserDataToCloud(ctx, testSession(), document))
	assert.False(t, service.SaveUserDataToCloud(ctx, testSession(), document))

	gomock.InOrder(
		client.EXPECT().GetDocument(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(map[string]any{"badges": []any{"a"}}, nil),
		client.EXPECT().GetDocument(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, firestore.ErrNotFound),
		client.EXPECT().GetDocument(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errNetworkDown),
	)

	loaded := service.LoadUserDataFromCloud(ctx, testSession())
	require.NotNil(t, loaded)
	assert.Equal(t, []string{"a"}, loaded.Badges)
	assert.Nil(t, service.LoadUserDataFromCloud(ctx, testSession()))
	assert.Nil(t, service.LoadUserDataFromCloud(ctx, testSession()))
}
