package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// postJSON sends a JSON body to the given API and decodes the JSON answer.
//
//nolint:revive // Go doesn't allow struct methods to be generic.
func postJSON[T any](c *ClientImpl, ctx context.Context, baseURL, uri string, body any) (*T, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, NewProviderError(CodeInvalidResponse, fmt.Errorf("failed to encode request: %w", err))
	}

	return doRequest[T](c, ctx, baseURL, uri, "application/json", bytes.NewReader(payload))
}

// postForm sends a form-encoded body to the given API and decodes the JSON answer.
//
//nolint:revive // Go doesn't allow struct methods to be generic.
func postForm[T any](c *ClientImpl, ctx context.Context, baseURL, uri string, form url.Values) (*T, error) {
	return doRequest[T](c, ctx, baseURL, uri, "application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()))
}

//nolint:revive // Go doesn't allow struct methods to be generic.
func doRequest[T any](
	c *ClientImpl,
	ctx context.Context,
	baseURL, uri, contentType string,
	body io.Reader,
) (*T, error) {
	route, err := url.JoinPath(baseURL, uri)
	if err != nil {
		return nil, NewProviderError(CodeNetworkRequestFailed, err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, route, body)
	if err != nil {
		return nil, NewProviderError(CodeNetworkRequestFailed, err)
	}

	query := url.Values{}
	query.Set(apiKeyParam, c.apiKey)
	request.URL.RawQuery = query.Encode()
	request.Header.Set("Content-Type", contentType)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, NewProviderError(CodeNetworkRequestFailed, err)
	}

	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, decodeProviderError(response)
	}

	var result T
	if err = json.NewDecoder(response.Body).Decode(&result); err != nil {
		return nil, NewProviderError(CodeInvalidResponse, fmt.Errorf("failed to decode response: %w", err))
	}

	return &result, nil
}

// decodeProviderError turns a non-200 answer into a ProviderError.
func decodeProviderError(response *http.Response) *ProviderError {
	var envelope errorResponse

	if err := json.NewDecoder(response.Body).Decode(&envelope); err != nil ||
		envelope.Error == nil || envelope.Error.Message == "" {
		return &ProviderError{
			StatusCode: response.StatusCode,
			Code:       http.StatusText(response.StatusCode),
			Message:    fmt.Sprintf("unexpected HTTP status %d", response.StatusCode),
		}
	}

	return newProviderErrorFromMessage(response.StatusCode, envelope.Error.Message)
}
