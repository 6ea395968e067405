// Package storefront holds the typed feature clients (cart, wishlist,
// catalog, shop info, orders, coupons, points, addresses, payments). Each is
// a thin wrapper over the authenticated fetch path: local state is only a
// cache of the last server response, never the source of truth.
package storefront

import (
	"context"
	"net/http"
	"net/url"

	"github.com/duynhne/storefront-gateway/internal/backend"
)

// api is the slice of *session.Fetcher the feature clients depend on.
// Tests substitute a fake.
type api interface {
	Do(ctx context.Context, req backend.Request) (*backend.Response, error)
	Get(ctx context.Context, endpoint string, query url.Values, header http.Header, v any) error
	Post(ctx context.Context, endpoint string, body any, header http.Header, v any) error
	Put(ctx context.Context, endpoint string, body any, header http.Header, v any) error
	Patch(ctx context.Context, endpoint string, body any, header http.Header, v any) error
	Delete(ctx context.Context, endpoint string, body any, header http.Header, v any) error
}
