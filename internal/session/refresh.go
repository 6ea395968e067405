package session

import (
	"context"
	"net/http"

	"golang.org/x/sync/singleflight"

	"github.com/duynhne/storefront-gateway/internal/backend"
)

// Guard collapses concurrent token-refresh attempts into a single upstream
// call. The backend issues use-once refresh tokens, so two concurrent
// refresh calls would invalidate each other.
type Guard interface {
	// Refresh runs (or joins) the refresh call. For N concurrent callers
	// while a refresh is outstanding, exactly one upstream call is made and
	// all N observe its outcome. Once the call completes, the in-flight
	// state is cleared and a later 401 can trigger a fresh attempt.
	Refresh(ctx context.Context) error
}

// RefreshGuard implements Guard on top of singleflight.
type RefreshGuard struct {
	group   singleflight.Group
	refresh func(ctx context.Context) error
}

// NewRefreshGuard creates a Guard that calls the backend's refresh
// endpoint, forwarding the given cookie header (which carries the refresh
// token).
func NewRefreshGuard(client *backend.Client, cookie string) *RefreshGuard {
	return NewRefreshGuardFunc(func(ctx context.Context) error {
		header := http.Header{}
		if cookie != "" {
			header.Set("Cookie", cookie)
		}
		_, err := client.Do(ctx, backend.Request{
			Method: http.MethodPost,
			Path:   "/auth/refresh",
			Header: header,
		})
		return err
	})
}

// NewRefreshGuardFunc creates a Guard around an arbitrary refresh call.
func NewRefreshGuardFunc(refresh func(ctx context.Context) error) *RefreshGuard {
	return &RefreshGuard{refresh: refresh}
}

func (g *RefreshGuard) Refresh(ctx context.Context) error {
	// singleflight keys every caller onto the one in-flight call and
	// forgets the key when it returns, which is exactly the
	// one-outstanding-refresh invariant.
	_, err, _ := g.group.Do("refresh", func() (any, error) {
		return nil, g.refresh(ctx)
	})
	return err
}
