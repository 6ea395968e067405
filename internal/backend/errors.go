package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// CodeTokenExpired is the backend's machine-readable code for an expired
// access token. It is matched in exactly one place (IsTokenExpired); no call
// site compares the string itself.
const CodeTokenExpired = "AUTH_002"

// APIError is a non-2xx response from the backend. It carries the upstream
// status, the machine-readable error code when the backend sent one, and the
// raw body and headers so callers can forward the response verbatim.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Header     http.Header
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend: %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("backend: %d: %s", e.StatusCode, e.Message)
}

// IsTokenExpired reports whether err is the backend telling us the access
// token expired: HTTP 401 with the expired-token code. This is the only
// condition the authenticated fetch path treats as recoverable.
func IsTokenExpired(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized && apiErr.Code == CodeTokenExpired
}

// StatusOf returns the HTTP status of an upstream error, or 0 when err is
// not an APIError.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
