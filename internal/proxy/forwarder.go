// Package proxy forwards browser API traffic to the commerce backend.
//
// Browsers reject Secure/SameSite=None cookies on plain-HTTP local or
// cross-subdomain setups, so the storefront serves /api/* itself and
// rewrites every upstream Set-Cookie into a first-party-compatible form.
package proxy

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/duynhne/storefront-gateway/internal/logger"
)

// forwardedHeaders are the only request headers passed through to the
// backend. Everything else (host, origin, accept-encoding negotiation) is
// the gateway's own business.
var forwardedHeaders = []string{
	"Content-Type",
	"Cookie",
	"Authorization",
	"X-Session-Id",
}

// Forwarder proxies requests under the public /api prefix to the backend
// origin. It never retries; upstream failures are surfaced with the
// upstream's own status and body.
type Forwarder struct {
	baseURL    string
	cookiePath string
	prefix     string
	httpc      *http.Client
}

// NewForwarder creates a Forwarder targeting baseURL (origin + API prefix).
// cookiePath is the backend cookie path rewritten to "/" on the way out;
// prefix is the public proxy prefix stripped from inbound paths (e.g.
// "/api").
func NewForwarder(baseURL, cookiePath, prefix string, timeout time.Duration) *Forwarder {
	return &Forwarder{
		baseURL:    strings.TrimRight(baseURL, "/"),
		cookiePath: cookiePath,
		prefix:     strings.TrimRight(prefix, "/"),
		httpc:      &http.Client{Timeout: timeout},
	}
}

// Matches reports whether the request path falls under the public proxy
// prefix.
func (f *Forwarder) Matches(path string) bool {
	return strings.HasPrefix(path, f.prefix+"/")
}

// Handle is the catch-all gin handler for the proxy route. It accepts both
// a mounted wildcard (path parameter named "path") and NoRoute dispatch.
func (f *Forwarder) Handle(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.FromContext(ctx)

	rel := c.Param("path")
	if rel == "" {
		rel = strings.TrimPrefix(c.Request.URL.Path, f.prefix)
	}
	target := f.baseURL + "/" + strings.TrimPrefix(rel, "/")
	if raw := c.Request.URL.RawQuery; raw != "" {
		target += "?" + raw
	}

	var body io.Reader
	method := c.Request.Method
	if method != http.MethodGet && method != http.MethodHead {
		// Raw passthrough keeps multipart bodies (boundary included) intact.
		body = c.Request.Body
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		log.Error().Err(err).Str("target", target).Msg("Proxy request build failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": gin.H{"message": "upstream request failed"}})
		return
	}
	for _, name := range forwardedHeaders {
		if v := c.GetHeader(name); v != "" {
			req.Header.Set(name, v)
		}
	}

	resp, err := f.httpc.Do(req)
	if err != nil {
		log.Error().Err(err).Str("target", target).Msg("Proxy upstream call failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": gin.H{"message": "upstream unreachable"}})
		return
	}
	defer resp.Body.Close()

	header := c.Writer.Header()
	for _, cookie := range resp.Header.Values("Set-Cookie") {
		header.Add("Set-Cookie", RewriteSetCookie(cookie, f.cookiePath))
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		header.Set("Content-Type", ct)
	}

	c.Status(resp.StatusCode)
	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		log.Warn().Err(err).Str("target", target).Msg("Proxy response copy interrupted")
	}
}
