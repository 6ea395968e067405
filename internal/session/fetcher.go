package session

import (
	"context"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"

	"github.com/duynhne/storefront-gateway/internal/backend"
)

// Fetcher is the one request path every feature client uses. It attaches the
// session's default headers, and on a 401 with the backend's expired-token
// code it runs the refresh guard and retries the call exactly once. The
// attempt/retry pair is written out linearly, so a second retry is
// structurally impossible.
type Fetcher struct {
	client *backend.Client
	store  Store

	// guard is nil on the server-rendered path, where expired tokens are
	// not recovered (the visitor is simply anonymous).
	guard Guard

	// onLogout is invoked after a failed recovery, once the session has
	// been cleared. Typically it signals a redirect to the login page.
	onLogout func(ctx context.Context)

	// defaults are attached to every request (e.g. the session's Cookie
	// header) unless the request sets the same header itself.
	defaults http.Header
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithGuard enables refresh-and-retry recovery through the given Guard.
func WithGuard(g Guard) FetcherOption {
	return func(f *Fetcher) { f.guard = g }
}

// WithLogoutHandler sets the hook invoked on forced logout.
func WithLogoutHandler(fn func(ctx context.Context)) FetcherOption {
	return func(f *Fetcher) { f.onLogout = fn }
}

// WithDefaultHeader attaches a header to every outgoing request.
func WithDefaultHeader(key, value string) FetcherOption {
	return func(f *Fetcher) { f.defaults.Set(key, value) }
}

func NewFetcher(client *backend.Client, store Store, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:   client,
		store:    store,
		defaults: http.Header{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Do issues the request. Recovery applies only when a guard is configured
// and the body is replayable; a streamed body cannot be re-sent.
func (f *Fetcher) Do(ctx context.Context, req backend.Request) (*backend.Response, error) {
	resp, err := f.client.Do(ctx, f.withDefaults(req))
	if err == nil {
		return resp, nil
	}
	if f.guard == nil || req.RawBody != nil || !backend.IsTokenExpired(err) {
		// Not ours to interpret; the calling feature handles it.
		return resp, err
	}

	if refreshErr := f.guard.Refresh(ctx); refreshErr != nil {
		log.Ctx(ctx).Warn().Err(refreshErr).Msg("Token refresh failed, logging out")
		f.forceLogout(ctx)
		return nil, err
	}

	retryResp, retryErr := f.client.Do(ctx, f.withDefaults(req))
	if retryErr != nil {
		log.Ctx(ctx).Warn().Err(retryErr).Msg("Retry after refresh failed, logging out")
		f.forceLogout(ctx)
		return nil, err
	}
	return retryResp, nil
}

// Get issues a GET with query parameters.
func (f *Fetcher) Get(ctx context.Context, endpoint string, query url.Values, header http.Header, v any) error {
	return f.call(ctx, backend.Request{
		Method: http.MethodGet,
		Path:   endpoint,
		Query:  query,
		Header: header,
	}, v)
}

// Post issues a POST with a JSON body.
func (f *Fetcher) Post(ctx context.Context, endpoint string, body any, header http.Header, v any) error {
	return f.call(ctx, backend.Request{
		Method: http.MethodPost,
		Path:   endpoint,
		JSON:   body,
		Header: header,
	}, v)
}

// Put issues a PUT with a JSON body.
func (f *Fetcher) Put(ctx context.Context, endpoint string, body any, header http.Header, v any) error {
	return f.call(ctx, backend.Request{
		Method: http.MethodPut,
		Path:   endpoint,
		JSON:   body,
		Header: header,
	}, v)
}

// Patch issues a PATCH with a JSON body.
func (f *Fetcher) Patch(ctx context.Context, endpoint string, body any, header http.Header, v any) error {
	return f.call(ctx, backend.Request{
		Method: http.MethodPatch,
		Path:   endpoint,
		JSON:   body,
		Header: header,
	}, v)
}

// Delete issues a DELETE, optionally with a JSON body (bulk removals).
func (f *Fetcher) Delete(ctx context.Context, endpoint string, body any, header http.Header, v any) error {
	return f.call(ctx, backend.Request{
		Method: http.MethodDelete,
		Path:   endpoint,
		JSON:   body,
		Header: header,
	}, v)
}

func (f *Fetcher) call(ctx context.Context, req backend.Request, v any) error {
	resp, err := f.Do(ctx, req)
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	return resp.Decode(v)
}

func (f *Fetcher) withDefaults(req backend.Request) backend.Request {
	if len(f.defaults) == 0 {
		return req
	}
	merged := http.Header{}
	for key, values := range f.defaults {
		merged[key] = values
	}
	for key, values := range req.Header {
		merged[key] = values
	}
	req.Header = merged
	return req
}

func (f *Fetcher) forceLogout(ctx context.Context) {
	f.store.Clear()
	if f.onLogout != nil {
		f.onLogout(ctx)
	}
}
