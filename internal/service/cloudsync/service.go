package cloudsync

//go:generate $MOCKGEN -source=service.go -destination=mocks/service_mock.go

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/oshokin/progress-sync/internal/client/identity"
	"github.com/oshokin/progress-sync/internal/config"
	"github.com/oshokin/progress-sync/internal/logger"
	"github.com/oshokin/progress-sync/internal/service/localcache"
	"github.com/oshokin/progress-sync/internal/service/progress"
	"github.com/oshokin/progress-sync/internal/service/remote"
)

// Action describes what a sync run did.
type Action string

const (
	// ActionNone means neither store had a document, so nothing was written.
	ActionNone Action = "none"
	// ActionMerged means both documents were merged and written to both stores.
	ActionMerged Action = "merged"
	// ActionAdoptedRemote means the remote document was copied to the local cache.
	ActionAdoptedRemote Action = "adopted_remote"
	// ActionPushedLocal means the local document was copied to the remote store.
	ActionPushedLocal Action = "pushed_local"
)

// Result describes a finished sync run.
type Result struct {
	// UserID identifies the synchronized session.
	UserID string
	// Action is what the run did.
	Action Action
	// Document is the document both stores hold after the run, nil for ActionNone.
	Document *progress.Document
	// Shared is true when the caller joined a run started by another caller.
	Shared bool
	// Duration is how long the run took.
	Duration time.Duration
}

// Service defines the sync operation.
type Service interface {
	// Sync reconciles the local cache with the session's remote document.
	Sync(ctx context.Context, session *identity.Session) (*Result, error)
}

// ServiceImpl implements Service.
//
// The queue already runs syncs one at a time; the singleflight group protects
// callers that invoke Sync directly, outside the queue, from racing on the same user.
type ServiceImpl struct {
	local   localcache.Service
	remote  remote.Service
	timeout time.Duration

	// group joins overlapping runs for the same user.
	group singleflight.Group
}

// NewService creates a new sync service.
func NewService(cfg *config.Config, localService localcache.Service, remoteService remote.Service) *ServiceImpl {
	return &ServiceImpl{
		local:   localService,
		remote:  remoteService,
		timeout: cfg.ParsedSyncTimeout,
	}
}

// Sync reconciles the local cache with the session's remote document.
//
// A failure to read either side aborts the run before anything is written.
// A failed remote write after a successful local write is returned as is;
// the stores stay diverged until the next run.
func (s *ServiceImpl) Sync(ctx context.Context, session *identity.Session) (*Result, error) {
	if session == nil {
		return nil, ErrNoSession
	}

	value, err, shared := s.group.Do(session.UserID, func() (any, error) {
		return s.run(ctx, session)
	})
	if err != nil {
		return nil, err
	}

	result, ok := value.(*Result)
	if !ok {
		return nil, fmt.Errorf("unexpected sync result type %T", value)
	}

	if shared {
		copied := *result
		copied.Shared = true

		return &copied, nil
	}

	return result, nil
}

func (s *ServiceImpl) run(ctx context.Context, session *identity.Session) (*Result, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	ctx = logger.WithKV(ctx, "user_id", session.UserID)
	startedAt := time.Now()

	local, err := s.local.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read local progress: %w", err)
	}

	cloud, err := s.remote.Load(ctx, session)
	if err != nil {
		if !errors.Is(err, remote.ErrDocumentNotFound) {
			return nil, fmt.Errorf("failed to read remote progress: %w", err)
		}

		cloud = nil
	}

	result := &Result{UserID: session.UserID}

	switch {
	case local != nil && cloud != nil:
		merged := progress.Resolve(local, cloud)

		if err = s.local.Save(ctx, merged); err != nil {
			return nil, fmt.Errorf("failed to write merged progress locally: %w", err)
		}

		if err = s.remote.Save(ctx, session, merged); err != nil {
			return nil, fmt.Errorf("failed to write merged progress to the cloud: %w", err)
		}

		result.Action, result.Document = ActionMerged, merged
	case cloud != nil:
		if err = s.local.Save(ctx, cloud); err != nil {
			return nil, fmt.Errorf("failed to write cloud progress locally: %w", err)
		}

		result.Action, result.Document = ActionAdoptedRemote, cloud
	case local != nil:
		if err = s.remote.Save(ctx, session, local); err != nil {
			return nil, fmt.Errorf("failed to write local progress to the cloud: %w", err)
		}

		result.Action, result.Document = ActionPushedLocal, local
	default:
		result.Action = ActionNone
	}

	result.Duration = time.Since(startedAt)

	logger.InfoKV(ctx, "Progress synchronized", "action", result.Action, "duration", result.Duration)

	return result, nil
}
