package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/oshokin/progress-sync/internal/client/firestore"
	"github.com/oshokin/progress-sync/internal/client/identity"
	"github.com/oshokin/progress-sync/internal/client/kvstore"
	"github.com/oshokin/progress-sync/internal/config"
	"github.com/oshokin/progress-sync/internal/logger"
	"github.com/oshokin/progress-sync/internal/metrics"
	"github.com/oshokin/progress-sync/internal/service/cloudsync"
	"github.com/oshokin/progress-sync/internal/service/localcache"
	"github.com/oshokin/progress-sync/internal/service/remote"
	"github.com/oshokin/progress-sync/internal/service/session"
	transport "github.com/oshokin/progress-sync/internal/transport/http"
)

// App holds the wired components used by the commands.
type App struct {
	cfg      *config.Config
	sessions session.Manager
	local    localcache.Service
	remote   remote.Service
	queue    *cloudsync.Queue
	registry *prometheus.Registry
	out      io.Writer

	mu    sync.Mutex
	tasks []*cloudsync.Task
}

// New builds the application from the configuration.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	httpClient := transport.NewClient(cfg)

	store, err := kvstore.NewFileStore(cfg.LocalStoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize local storage: %w", err)
	}

	identityClient, err := identity.NewClient(cfg, httpClient, identity.WithSessionStore(store))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize identity client: %w", err)
	}

	firestoreClient, err := firestore.NewClient(cfg, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize document store client: %w", err)
	}

	localService := localcache.NewService(cfg, store)
	remoteService := remote.NewService(cfg, firestoreClient)
	syncer := cloudsync.NewService(cfg, localService, remoteService)
	manager := session.NewManager(identityClient, session.NewConfigPersister(cfg))

	var opts []cloudsync.QueueOption

	var registry *prometheus.Registry
	if cfg.MetricsFile != "" {
		registry = prometheus.NewRegistry()
		opts = append(opts, cloudsync.WithRecorder(metrics.NewCollector(registry)))
	}

	a := newApp(ctx, cfg, manager, localService, remoteService, syncer, opts...)
	a.registry = registry

	return a, nil
}

func newApp(
	ctx context.Context,
	cfg *config.Config,
	sessions session.Manager,
	localService localcache.Service,
	remoteService remote.Service,
	syncer cloudsync.Service,
	opts ...cloudsync.QueueOption,
) *App {
	return &App{
		cfg:      cfg,
		sessions: sessions,
		local:    localService,
		remote:   remoteService,
		queue:    cloudsync.NewQueue(ctx, syncer, cfg.SyncQueueSize, opts...),
		out:      os.Stdout,
	}
}

// EnableAutoSync makes every sign-in schedule a sync run.
func (a *App) EnableAutoSync() {
	a.sessions.Subscribe(a.onSessionChanged)
}

// Close stops the sync queue, waiting for the scheduled runs to finish,
// and writes the metrics file when one is configured.
func (a *App) Close(ctx context.Context) {
	timeout := a.cfg.ParsedSyncTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := a.queue.Shutdown(ctx); err != nil {
		logger.Warnf(ctx, "Failed to stop sync queue: %v", err)
	}

	if a.registry == nil {
		return
	}

	if err := metrics.WriteFile(a.cfg.MetricsFile, a.registry); err != nil {
		logger.Warnf(ctx, "Failed to write metrics: %v", err)
	}
}

func (a *App) onSessionChanged(ctx context.Context, current *identity.Session) {
	if current == nil {
		logger.Info(ctx, "Login required")

		return
	}

	task, err := a.queue.Submit(ctx, current)
	if err != nil {
		logger.Errorf(ctx, "Failed to schedule sync for %s: %v", current.DisplayName(), err)

		return
	}

	a.mu.Lock()
	a.tasks = append(a.tasks, task)
	a.mu.Unlock()
}

// waitForSync waits for every scheduled sync run and reports their results.
func (a *App) waitForSync(ctx context.Context) ([]*cloudsync.Result, error) {
	a.mu.Lock()
	tasks := a.tasks
	a.tasks = nil
	a.mu.Unlock()

	var (
		results = make([]*cloudsync.Result, 0, len(tasks))
		errs    []error
	)

	for _, task := range tasks {
		result, err := task.Wait(ctx)
		if err != nil {
			errs = append(errs, err)

			continue
		}

		logger.InfoKV(ctx, "Sync finished",
			"user_id", result.UserID,
			"action", result.Action,
			"duration", result.Duration.Round(time.Millisecond))

		results = append(results, result)
	}

	return results, errors.Join(errs...)
}

// settleSync waits for scheduled runs; a failed run does not fail the calling command.
func (a *App) settleSync(ctx context.Context) {
	if _, err := a.waitForSync(ctx); err != nil {
		logger.Errorf(ctx, "Progress sync failed: %v", err)
	}
}

// withApp builds the application, runs fn, and stops the queue afterwards.
// Any error is fatal.
func withApp(ctx context.Context, cfg *config.Config, autoSync bool, fn func(a *App) error) {
	a, err := New(ctx, cfg)
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize application: %v", err)

		return
	}

	if autoSync {
		a.EnableAutoSync()
	}

	err = fn(a)

	a.Close(ctx)

	if err != nil {
		logger.Fatalf(ctx, "%v", err)
	}
}
