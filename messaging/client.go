// Copyright 2026 The Slurdle Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// apiPrefix is the path prefix of the platform's REST API, relative to
// the server base URL.
const apiPrefix = "/slurk/api"

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// ServerURL is the base URL of the platform server (e.g.,
	// "http://localhost:5000"). The /slurk/api prefix is appended by
	// the client.
	ServerURL string
	// Token is the Bearer token authenticating this bot.
	Token string
	// HTTPClient is used for all requests. If nil, http.DefaultClient
	// is used.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// Client is an authenticated REST client for the platform API. It is
// safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a platform REST client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.ServerURL == "" {
		return nil, fmt.Errorf("messaging: ServerURL is required")
	}
	if _, err := url.Parse(config.ServerURL); err != nil {
		return nil, fmt.Errorf("messaging: invalid ServerURL %q: %w", config.ServerURL, err)
	}
	if config.Token == "" {
		return nil, fmt.Errorf("messaging: Token is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(config.ServerURL, "/") + apiPrefix,
		token:      config.Token,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// doRequest performs one authenticated API call. The request body, if
// non-nil, is JSON-encoded. Extra headers (e.g. If-Match) may be passed
// through header. Returns the response body and headers on 2xx; on any
// other status the response decodes into *APIError.
func (c *Client) doRequest(ctx context.Context, method, path string, requestBody any, header http.Header) ([]byte, http.Header, error) {
	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, nil, fmt.Errorf("messaging: failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, nil, fmt.Errorf("messaging: failed to create request: %w", err)
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	request.Header.Set("Authorization", "Bearer "+c.token)
	for key, values := range header {
		for _, value := range values {
			request.Header.Add(key, value)
		}
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, nil, fmt.Errorf("messaging: request to %s %s failed: %w", method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("messaging: failed to read response body: %w", err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, response.Header, nil
	}

	apiErr := &APIError{StatusCode: response.StatusCode}
	if jsonErr := json.Unmarshal(responseBody, apiErr); jsonErr != nil || apiErr.Message == "" {
		// Server returned a non-JSON error or an unexpected shape.
		// Carry the raw body so nothing is lost.
		apiErr.Message = strings.TrimSpace(string(responseBody))
	}
	return nil, response.Header, apiErr
}
