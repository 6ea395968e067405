package session

import (
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// GuestCookieName stores the anonymous visitor's session identifier.
	GuestCookieName = "x-session-id"

	// HeaderGuestSession carries the guest identifier on cart/wishlist
	// requests.
	HeaderGuestSession = "X-Session-Id"

	guestSessionTTL = 30 * 24 * time.Hour

	guestIDContextKey = "storefront.guest-id"
)

// GetOrCreateGuestID returns the visitor's guest session identifier, minting
// and persisting one on first use. Repeated calls within the cookie's
// 30-day validity window return the identical value; within one request the
// freshly minted id is cached on the context so the same request never
// mints twice.
func GetOrCreateGuestID(c *gin.Context) string {
	if v, ok := c.Get(guestIDContextKey); ok {
		return v.(string)
	}
	if v, err := c.Cookie(GuestCookieName); err == nil && v != "" {
		c.Set(guestIDContextKey, v)
		return v
	}

	id := newGuestID()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(GuestCookieName, id, int(guestSessionTTL.Seconds()), "/", "", false, false)
	c.Set(guestIDContextKey, id)
	return id
}

// GuestID returns the existing guest identifier without creating one.
func GuestID(c *gin.Context) string {
	if v, err := c.Cookie(GuestCookieName); err == nil {
		return v
	}
	return ""
}

// newGuestID prefers a random UUID. The fallback is coarse but acceptable:
// this is a cart-correlation key, not a security token.
func newGuestID() string {
	u, err := uuid.NewRandom()
	if err != nil {
		return fmt.Sprintf("sid_%d_%x", time.Now().UnixMilli(), rand.Uint64())
	}
	return u.String()
}

// Credentials supplies the identity headers feature calls carry: a bearer
// token for members, the guest session id for anonymous visitors.
type Credentials interface {
	AuthHeaders() http.Header
}

// requestCredentials derives headers from the session store plus the
// request's cookies, the way the browser client does.
type requestCredentials struct {
	store Store
	c     *gin.Context
}

// NewRequestCredentials builds Credentials for one inbound request.
func NewRequestCredentials(store Store, c *gin.Context) Credentials {
	return &requestCredentials{store: store, c: c}
}

func (r *requestCredentials) AuthHeaders() http.Header {
	h := http.Header{}
	if token, err := r.c.Cookie(accessTokenCookie); err == nil && token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	if !r.store.Current().Authenticated {
		h.Set(HeaderGuestSession, GetOrCreateGuestID(r.c))
	}
	return h
}

// StaticCredentials is a fixed header set, used by tests and by callers
// that already resolved their identity.
type StaticCredentials http.Header

func (s StaticCredentials) AuthHeaders() http.Header {
	return http.Header(s)
}
