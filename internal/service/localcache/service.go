package localcache

//go:generate $MOCKGEN -source=service.go -destination=mocks/service_mock.go

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/oshokin/progress-sync/internal/client/kvstore"
	"github.com/oshokin/progress-sync/internal/config"
	"github.com/oshokin/progress-sync/internal/logger"
	"github.com/oshokin/progress-sync/internal/service/progress"
)

var (
	// ErrCorruptedCache is returned when the cached value is not a progress document.
	ErrCorruptedCache = errors.New("local progress cache is corrupted")
	// ErrNilDocument is returned when Save is called with a nil document.
	ErrNilDocument = errors.New("progress document cannot be nil")
)

// Service defines access to the locally cached progress document.
type Service interface {
	// Load returns the cached document, or nil when nothing is cached.
	Load(ctx context.Context) (*progress.Document, error)
	// Save replaces the cached document.
	Save(ctx context.Context, document *progress.Document) error
	// Clear removes the cached document.
	Clear(ctx context.Context) error
}

// ServiceImpl implements Service on top of a key-value store.
type ServiceImpl struct {
	store kvstore.Store
	key   string
}

// NewService creates a new local cache service.
func NewService(cfg *config.Config, store kvstore.Store) *ServiceImpl {
	key := cfg.LocalStorageKey
	if key == "" {
		key = config.DefaultLocalStorageKey
	}

	return &ServiceImpl{
		store: store,
		key:   key,
	}
}

// Load returns the cached document, or nil when nothing is cached.
func (s *ServiceImpl) Load(ctx context.Context) (*progress.Document, error) {
	value, ok, err := s.store.Get(s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to read local progress: %w", err)
	}

	if !ok {
		logger.Debugf(ctx, "No local progress under key %q", s.key)

		return nil, nil //nolint:nilnil // Absent document is not an error.
	}

	document, err := progress.ParseDocument([]byte(value))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptedCache, err)
	}

	return document, nil
}

// Save replaces the cached document.
func (s *ServiceImpl) Save(ctx context.Context, document *progress.Document) error {
	if document == nil {
		return ErrNilDocument
	}

	content, err := json.Marshal(document)
	if err != nil {
		return fmt.Errorf("failed to encode local progress: %w", err)
	}

	if err = s.store.Set(s.key, string(content)); err != nil {
		return fmt.Errorf("failed to write local progress: %w", err)
	}

	logger.Debugf(ctx, "Local progress saved under key %q", s.key)

	return nil
}

// Clear removes the cached document.
func (s *ServiceImpl) Clear(ctx context.Context) error {
	if err := s.store.Remove(s.key); err != nil {
		return fmt.Errorf("failed to clear local progress: %w", err)
	}

	logger.Debugf(ctx, "Local progress under key %q cleared", s.key)

	return nil
}
