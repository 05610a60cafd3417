package remote

//go:generate $MOCKGEN -source=service.go -destination=mocks/service_mock.go

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/oshokin/progress-sync/internal/client/firestore"
	"github.com/oshokin/progress-sync/internal/client/identity"
	"github.com/oshokin/progress-sync/internal/config"
	"github.com/oshokin/progress-sync/internal/logger"
	"github.com/oshokin/progress-sync/internal/service/progress"
)

const (
	opLoad = "load"
	opSave = "save"
)

// Service defines access to the remote progress document of a session.
type Service interface {
	// Load returns the session's document, ErrDocumentNotFound when there is none,
	// or a *StoreError when the store could not be reached.
	Load(ctx context.Context, session *identity.Session) (*progress.Document, error)
	// Save replaces the session's document.
	Save(ctx context.Context, session *identity.Session, document *progress.Document) error
	// SaveUserDataToCloud saves the document and reports success. Failures are logged.
	SaveUserDataToCloud(ctx context.Context, session *identity.Session, document *progress.Document) bool
	// LoadUserDataFromCloud returns the document, or nil when there is none or it could not be loaded.
	LoadUserDataFromCloud(ctx context.Context, session *identity.Session) *progress.Document
}

// ServiceImpl implements Service on top of the document store client.
type ServiceImpl struct {
	client     firestore.Client
	collection string
}

// NewService creates a new remote progress service.
func NewService(cfg *config.Config, client firestore.Client) *ServiceImpl {
	collection := cfg.UsersCollection
	if collection == "" {
		collection = config.DefaultUsersCollection
	}

	return &ServiceImpl{
		client:     client,
		collection: collection,
	}
}

// Load returns the session's document.
func (s *ServiceImpl) Load(ctx context.Context, session *identity.Session) (*progress.Document, error) {
	if session == nil {
		return nil, ErrNoSession
	}

	fields, err := s.client.GetDocument(ctx, session.IDToken, s.collection, session.UserID)
	if err != nil {
		if errors.Is(err, firestore.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrDocumentNotFound, session.UserID)
		}

		return nil, newTransportError(opLoad, session.UserID, err)
	}

	content, err := json.Marshal(fields)
	if err != nil {
		return nil, newTransportError(opLoad, session.UserID, err)
	}

	document, err := progress.ParseDocument(content)
	if err != nil {
		return nil, newTransportError(opLoad, session.UserID, err)
	}

	if document == nil {
		// The document exists but has no fields.
		document = &progress.Document{}
	}

	return document, nil
}

// Save replaces the session's document.
func (s *ServiceImpl) Save(ctx context.Context, session *identity.Session, document *progress.Document) error {
	if session == nil {
		return ErrNoSession
	}

	if document == nil {
		return ErrNilDocument
	}

	fields, err := toFields(document)
	if err != nil {
		return newTransportError(opSave, session.UserID, err)
	}

	if err = s.client.SetDocument(ctx, session.IDToken, s.collection, session.UserID, fields); err != nil {
		return newTransportError(opSave, session.UserID, err)
	}

	return nil
}

// SaveUserDataToCloud saves the document and reports success.
func (s *ServiceImpl) SaveUserDataToCloud(
	ctx context.Context,
	session *identity.Session,
	document *progress.Document,
) bool {
	if session == nil {
		return false
	}

	if err := s.Save(ctx, session, document); err != nil {
		logger.Errorf(ctx, "Failed to save progress to the cloud: %v", err)

		return false
	}

	logger.Debugf(ctx, "Progress of user %s saved to the cloud", session.UserID)

	return true
}

// LoadUserDataFromCloud returns the document, or nil when it is missing or could not be loaded.
func (s *ServiceImpl) LoadUserDataFromCloud(ctx context.Context, session *identity.Session) *progress.Document {
	if session == nil {
		return nil
	}

	document, err := s.Load(ctx, session)
	if err != nil {
		if !errors.Is(err, ErrDocumentNotFound) {
			logger.Errorf(ctx, "Failed to load progress from the cloud: %v", err)
		}

		return nil
	}

	return document
}

// toFields converts a document to plain values, keeping numbers exact.
func toFields(document *progress.Document) (map[string]any, error) {
	content, err := json.Marshal(document)
	if err != nil {
		return nil, fmt.Errorf("failed to encode progress document: %w", err)
	}

	decoder := json.NewDecoder(bytes.NewReader(content))
	decoder.UseNumber()

	var fields map[string]any
	if err = decoder.Decode(&fields); err != nil {
		return nil, fmt.Errorf("failed to decode progress document: %w", err)
	}

	return fields, nil
}
