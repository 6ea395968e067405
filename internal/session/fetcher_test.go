package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynhne/storefront-gateway/internal/backend"
)

const expiredBody = `{"success":false,"error":{"code":"AUTH_002","message":"access token expired"}}`

// expiringServer fails with the expired-token error for the first failCount
// requests, then succeeds.
func expiringServer(t *testing.T, failCount int32) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if n <= failCount {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(expiredBody))
			return
		}
		w.Write([]byte(`{"success":true,"data":{"items":[{"id":1,"productId":42,"quantity":1}]}}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestFetcherRefreshesAndRetriesOnce(t *testing.T) {
	srv, calls := expiringServer(t, 1)

	var refreshes atomic.Int32
	guard := NewRefreshGuardFunc(func(ctx context.Context) error {
		refreshes.Add(1)
		return nil
	})

	store := NewMemoryStore()
	store.SetUser(&Profile{ID: 1})

	f := NewFetcher(backend.NewClient(srv.URL, time.Second), store, WithGuard(guard))

	resp, err := f.Do(context.Background(), backend.Request{Method: http.MethodGet, Path: "/cart"})
	require.NoError(t, err)

	// The caller sees the retried call's result, not the original failure.
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), calls.Load(), "original call + exactly one retry")
	assert.Equal(t, int32(1), refreshes.Load())
	assert.True(t, store.Current().Authenticated, "successful recovery keeps the session")
}

func TestFetcherLogsOutWhenRetryFailsExpired(t *testing.T) {
	srv, calls := expiringServer(t, 2)

	guard := NewRefreshGuardFunc(func(ctx context.Context) error { return nil })

	store := NewMemoryStore()
	store.SetUser(&Profile{ID: 1})

	var loggedOut atomic.Bool
	f := NewFetcher(backend.NewClient(srv.URL, time.Second), store,
		WithGuard(guard),
		WithLogoutHandler(func(ctx context.Context) { loggedOut.Store(true) }),
	)

	_, err := f.Do(context.Background(), backend.Request{Method: http.MethodGet, Path: "/cart"})
	require.Error(t, err)

	// Exactly two data calls total: no second retry, no loop.
	assert.Equal(t, int32(2), calls.Load())
	assert.True(t, loggedOut.Load())
	assert.False(t, store.Current().Authenticated)
	assert.True(t, backend.IsTokenExpired(err), "original failure is what propagates")
}

func TestFetcherLogsOutWhenRefreshFails(t *testing.T) {
	srv, calls := expiringServer(t, 99)

	refreshErr := &backend.APIError{StatusCode: http.StatusUnauthorized, Code: "AUTH_003"}
	guard := NewRefreshGuardFunc(func(ctx context.Context) error { return refreshErr })

	store := NewMemoryStore()
	store.SetUser(&Profile{ID: 1})

	var loggedOut atomic.Bool
	f := NewFetcher(backend.NewClient(srv.URL, time.Second), store,
		WithGuard(guard),
		WithLogoutHandler(func(ctx context.Context) { loggedOut.Store(true) }),
	)

	_, err := f.Do(context.Background(), backend.Request{Method: http.MethodGet, Path: "/cart"})
	require.Error(t, err)

	// Failed refresh means no retry of the original call at all.
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, loggedOut.Load())
	assert.False(t, store.Current().Authenticated)
}

func TestFetcherPropagatesOtherErrorsUnchanged(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"error":{"code":"SYS_001","message":"boom"}}`))
	}))
	t.Cleanup(srv.Close)

	var refreshes atomic.Int32
	guard := NewRefreshGuardFunc(func(ctx context.Context) error {
		refreshes.Add(1)
		return nil
	})

	store := NewMemoryStore()
	f := NewFetcher(backend.NewClient(srv.URL, time.Second), store, WithGuard(guard))

	_, err := f.Do(context.Background(), backend.Request{Method: http.MethodGet, Path: "/orders"})
	require.Error(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(0), refreshes.Load(), "non-auth errors never trigger a refresh")
	assert.Equal(t, http.StatusInternalServerError, backend.StatusOf(err))
}

func TestFetcherWithoutGuardNeverRetries(t *testing.T) {
	srv, calls := expiringServer(t, 99)

	// Server-rendered path: no guard configured.
	f := NewFetcher(backend.NewClient(srv.URL, time.Second), NewMemoryStore())

	_, err := f.Do(context.Background(), backend.Request{Method: http.MethodGet, Path: "/users/me"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetcherDefaultHeaders(t *testing.T) {
	var gotCookie, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	f := NewFetcher(backend.NewClient(srv.URL, time.Second), NewMemoryStore(),
		WithDefaultHeader("Cookie", "access_token=tok"),
		WithDefaultHeader("Accept", "application/json"),
	)

	header := http.Header{}
	header.Set("Accept", "text/plain") // per-request header wins
	_, err := f.Do(context.Background(), backend.Request{Method: http.MethodGet, Path: "/cart", Header: header})
	require.NoError(t, err)

	assert.Equal(t, "access_token=tok", gotCookie)
	assert.Equal(t, "text/plain", gotAccept)
}
