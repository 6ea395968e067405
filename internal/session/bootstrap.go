package session

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/duynhne/storefront-gateway/internal/backend"
)

// Backend auth cookie names. Their presence is the cheap signal that a
// server-rendered request may belong to a logged-in member.
const (
	accessTokenCookie  = "access_token"
	refreshTokenCookie = "refresh_token"
)

const storeContextKey = "storefront.session"

// Bootstrapper populates a session holder from the backend's current-user
// endpoint, once, before a server-rendered response goes out.
type Bootstrapper struct {
	client *backend.Client
	store  Store
}

func NewBootstrapper(client *backend.Client, store Store) *Bootstrapper {
	return &Bootstrapper{client: client, store: store}
}

// Bootstrap runs the one-time profile fetch. It is a no-op when the session
// is already populated, and — so anonymous page loads cost zero backend
// calls — when the incoming request carries no auth cookie. Every failure,
// 401 included, is swallowed: the visitor is treated as anonymous.
func (b *Bootstrapper) Bootstrap(ctx context.Context, incoming *http.Request) {
	if b.store.Current().User != nil {
		return
	}
	if !HasAuthCookie(incoming) {
		return
	}

	header := http.Header{}
	header.Set("Cookie", incoming.Header.Get("Cookie"))

	resp, err := b.client.Do(ctx, backend.Request{
		Method: http.MethodGet,
		Path:   "/users/me",
		Header: header,
	})
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).Msg("Session bootstrap profile fetch failed")
		return
	}

	var profile Profile
	if err := resp.Decode(&profile); err != nil {
		log.Ctx(ctx).Debug().Err(err).Msg("Session bootstrap profile decode failed")
		return
	}
	if profile.ID == 0 {
		return
	}
	b.store.SetUser(&profile)
}

// HasAuthCookie reports whether the request carries either backend auth
// cookie.
func HasAuthCookie(r *http.Request) bool {
	if _, err := r.Cookie(accessTokenCookie); err == nil {
		return true
	}
	if _, err := r.Cookie(refreshTokenCookie); err == nil {
		return true
	}
	return false
}

// Middleware attaches a request-scoped session store to the gin context,
// bootstrapped from the incoming cookies. Handlers retrieve it with
// FromContext.
func Middleware(client *backend.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		store := NewMemoryStore()
		NewBootstrapper(client, store).Bootstrap(c.Request.Context(), c.Request)
		c.Set(storeContextKey, store)
		c.Next()
	}
}

// FromContext returns the request-scoped session store installed by
// Middleware, or a fresh anonymous store when none is present.
func FromContext(c *gin.Context) Store {
	if v, ok := c.Get(storeContextKey); ok {
		if store, ok := v.(Store); ok {
			return store
		}
	}
	return NewMemoryStore()
}
