package firestore

//go:generate $MOCKGEN -source=client.go -destination=mocks/client_mock.go

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/oshokin/progress-sync/internal/config"
	"github.com/oshokin/progress-sync/internal/logger"
)

// Client defines the interface for reading and writing single documents.
type Client interface {
	// GetDocument returns the fields of a document, or ErrNotFound when it does not exist.
	GetDocument(ctx context.Context, idToken, collection, documentID string) (map[string]any, error)
	// SetDocument replaces the whole document, creating it when missing.
	SetDocument(ctx context.Context, idToken, collection, documentID string, fields map[string]any) error
}

// ClientImpl implements the Client interface over the REST API.
type ClientImpl struct {
	// baseURL is the base URL of the document store API.
	baseURL string
	// projectID is the backend project identifier.
	projectID string
	// databaseID is the database inside the project.
	databaseID string
	// httpClient is the shared HTTP client.
	httpClient *http.Client
}

// NewClient creates and returns a new instance of ClientImpl.
func NewClient(cfg *config.Config, httpClient *http.Client) (Client, error) {
	baseURL, err := url.Parse(cfg.FirestoreBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid document store base URL: %w", err)
	}

	databaseID := cfg.DatabaseID
	if databaseID == "" {
		databaseID = config.DefaultDatabaseID
	}

	return &ClientImpl{
		baseURL:    baseURL.String(),
		projectID:  cfg.ProjectID,
		databaseID: databaseID,
		httpClient: httpClient,
	}, nil
}

// GetDocument returns the fields of a document, or ErrNotFound when it does not exist.
func (c *ClientImpl) GetDocument(
	ctx context.Context,
	idToken, collection, documentID string,
) (map[string]any, error) {
	route, err := c.documentURL(collection, documentID)
	if err != nil {
		return nil, err
	}

	response, err := c.do(ctx, http.MethodGet, route, idToken, nil)
	if err != nil {
		return nil, err
	}

	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, decodeError(response, collection, documentID)
	}

	var document wireDocument
	if err = json.NewDecoder(response.Body).Decode(&document); err != nil {
		return nil, fmt.Errorf("%w: failed to decode document: %w", ErrInvalidValue, err)
	}

	fields, err := decodeFields(document.Fields)
	if err != nil {
		return nil, fmt.Errorf("failed to decode document %s/%s: %w", collection, documentID, err)
	}

	logger.Debugf(ctx, "Loaded document %s/%s with %d fields", collection, documentID, len(fields))

	return fields, nil
}

// SetDocument replaces the whole document, creating it when missing.
// The request carries no update mask, so fields absent from the input are removed.
func (c *ClientImpl) SetDocument(
	ctx context.Context,
	idToken, collection, documentID string,
	fields map[string]any,
) error {
	route, err := c.documentURL(collection, documentID)
	if err != nil {
		return err
	}

	encoded, err := encodeFields(fields)
	if err != nil {
		return fmt.Errorf("failed to encode document %s/%s: %w", collection, documentID, err)
	}

	payload, err := json.Marshal(&wireDocument{Fields: encoded})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}

	response, err := c.do(ctx, http.MethodPatch, route, idToken, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return decodeError(response, collection, documentID)
	}

	// Drain the echoed document so the connection can be reused.
	_, _ = io.Copy(io.Discard, response.Body)

	logger.Debugf(ctx, "Saved document %s/%s with %d fields", collection, documentID, len(fields))

	return nil
}

func (c *ClientImpl) documentURL(collection, documentID string) (string, error) {
	if strings.TrimSpace(documentID) == "" || strings.Contains(documentID, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidDocumentID, documentID)
	}

	route, err := url.JoinPath(c.baseURL, apiVersion,
		"projects", c.projectID,
		"databases", c.databaseID,
		"documents", collection, documentID)
	if err != nil {
		return "", fmt.Errorf("failed to build document URL: %w", err)
	}

	return route, nil
}

func (c *ClientImpl) do(
	ctx context.Context,
	method, route, idToken string,
	body io.Reader,
) (*http.Response, error) {
	request, err := http.NewRequestWithContext(ctx, method, route, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	if idToken != "" {
		request.Header.Set(authorizationHeader, bearerPrefix+idToken)
	}

	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	return response, nil
}

func decodeError(response *http.Response, collection, documentID string) error {
	if response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, documentID)
	}

	apiErr := &APIError{
		StatusCode: response.StatusCode,
		Message:    http.StatusText(response.StatusCode),
	}

	var envelope errorResponse
	if err := json.NewDecoder(response.Body).Decode(&envelope); err == nil && envelope.Error != nil {
		apiErr.Status = envelope.Error.Status

		if envelope.Error.Message != "" {
			apiErr.Message = envelope.Error.Message
		}
	}

	return apiErr
}
