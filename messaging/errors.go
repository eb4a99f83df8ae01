// Copyright 2026 The Slurdle Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"errors"
	"fmt"
)

// APIError represents a structured error response from the platform's
// REST API. Callers can use errors.As to extract the structured
// information:
//
//	var apiErr *APIError
//	if errors.As(err, &apiErr) {
//	    if apiErr.StatusCode == http.StatusNotFound { ... }
//	}
type APIError struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int `json:"-"`
	// Message is the human-readable error description from the server.
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("platform api: %d: %s", e.StatusCode, e.Message)
}

// IsStatus checks whether err is an *APIError with the given HTTP
// status code.
func IsStatus(err error, statusCode int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == statusCode
	}
	return false
}
