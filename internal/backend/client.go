// Package backend is the typed HTTP client for the upstream commerce API.
// All gateway traffic to the backend goes through Client.Do; responses are
// decoded at a single boundary (DecodePayload) and upstream failures are
// surfaced as *APIError.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Request describes one call to the backend API.
type Request struct {
	Method string
	Path   string // endpoint path relative to the base URL, e.g. "/cart/items"
	Query  url.Values
	Header http.Header

	// JSON, when non-nil, is marshaled as the request body. Because it is
	// re-encoded per attempt, requests with a JSON body are safe to retry.
	JSON any

	// RawBody streams the body as-is (multipart uploads). The caller must
	// set Content-Type, boundary included. RawBody requests cannot be
	// replayed and are therefore never retried.
	RawBody io.Reader
}

// Response is a backend response with the body fully read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the response payload into v through the envelope
// boundary.
func (r *Response) Decode(v any) error {
	return DecodePayload(r.Body, v)
}

// SetCookies returns the raw Set-Cookie header values, in order.
func (r *Response) SetCookies() []string {
	if r.Header == nil {
		return nil
	}
	return r.Header.Values("Set-Cookie")
}

// Client calls the upstream commerce API.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient creates a backend client. baseURL includes the API prefix
// (e.g. https://api.example.com/api/v1); a trailing slash is trimmed.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the configured backend origin including the API prefix.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do issues the request and reads the full response body. Non-2xx responses
// are returned as (*Response, *APIError) so callers keep access to the
// upstream status, headers, and body.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	contentType := ""
	switch {
	case req.RawBody != nil:
		body = req.RawBody
	case req.JSON != nil:
		encoded, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", req.Method, req.Path, err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	httpResp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response %s %s: %w", req.Method, req.Path, err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       respBody,
	}

	if httpResp.StatusCode >= 400 {
		code, message := parseError(respBody)
		return resp, &APIError{
			StatusCode: httpResp.StatusCode,
			Code:       code,
			Message:    message,
			Header:     httpResp.Header,
			Body:       respBody,
		}
	}

	return resp, nil
}
