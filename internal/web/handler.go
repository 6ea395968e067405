// Package web hosts the gateway's own HTTP surface: the server-only session
// endpoints under /api/_internal. Each auth endpoint pairs a backend action
// with an immediate profile fetch so the profile call never shows up as a
// separate request in the browser's network inspector.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/storefront-gateway/internal/backend"
	"github.com/duynhne/storefront-gateway/internal/logger"
	"github.com/duynhne/storefront-gateway/internal/proxy"
	"github.com/duynhne/storefront-gateway/internal/session"
	"github.com/duynhne/storefront-gateway/middleware"
)

// Handler groups the internal session endpoints. Dependencies are injected
// via the constructor — no global state.
type Handler struct {
	client     *backend.Client
	cookiePath string
}

// NewHandler creates a Handler talking to the given backend client.
// cookiePath is the backend cookie path rewritten to "/" on responses.
func NewHandler(client *backend.Client, cookiePath string) *Handler {
	return &Handler{client: client, cookiePath: cookiePath}
}

// RegisterRoutes registers the internal endpoints on the given group
// (mounted at /api/_internal).
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/login", h.Login)
	rg.GET("/session", session.Middleware(h.client), h.Session)
	rg.GET("/me", h.Me)
	rg.PATCH("/me", h.UpdateMe)
	rg.DELETE("/me", h.DeleteMe)
	rg.POST("/oauth/google", h.oauthProvider("google"))
	rg.POST("/oauth/naver", h.oauthProvider("naver"))
	rg.POST("/oauth/link", h.OAuthLink)
	rg.POST("/oauth/signup", h.OAuthSignup)
	rg.GET("/theme", h.Theme)
	rg.PUT("/theme", h.SetTheme)
}

// Login performs the backend login and, on success, immediately fetches the
// member profile with the cookies just obtained. The response is the login
// result with a "user" field added (null when the profile fetch failed —
// the login itself still succeeded).
func (h *Handler) Login(c *gin.Context) {
	h.authAction(c, "auth.login", http.MethodPost, "/auth/login", nil)
}

// Session returns the bootstrapped session state for this request: the
// server-rendered page's initial auth state. Anonymous requests cost zero
// backend calls (the bootstrap middleware short-circuits on missing auth
// cookies).
func (h *Handler) Session(c *gin.Context) {
	cur := session.FromContext(c).Current()
	c.JSON(http.StatusOK, gin.H{
		"isAuthenticated": cur.Authenticated,
		"user":            cur.User,
	})
}

// Me proxies the backend's current-user endpoint, forwarding the incoming
// cookies and rewriting any Set-Cookie on the way back.
func (h *Handler) Me(c *gin.Context) {
	h.passthrough(c, "auth.me", http.MethodGet, "/users/me", false)
}

// UpdateMe forwards a profile update.
func (h *Handler) UpdateMe(c *gin.Context) {
	h.passthrough(c, "auth.me_update", http.MethodPatch, "/users/me", true)
}

// DeleteMe forwards account deletion. The backend clears the session
// cookies in its response, which pass through rewritten.
func (h *Handler) DeleteMe(c *gin.Context) {
	h.passthrough(c, "auth.me_delete", http.MethodDelete, "/users/me", false)
}

// oauthProvider builds the completion handler for one OAuth provider.
// A brand-new user has no profile yet, so the isNewUser short-circuit skips
// the profile fetch.
func (h *Handler) oauthProvider(provider string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.authAction(c, "auth.oauth."+provider, http.MethodPost, "/auth/oauth2/"+provider, isNewUser)
	}
}

// OAuthLink links a social account to the logged-in member. The request
// body carries a "provider" field selecting the backend route.
func (h *Handler) OAuthLink(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "unreadable body"}})
		return
	}
	var probe struct {
		Provider string `json:"provider"`
	}
	_ = json.Unmarshal(body, &probe)
	if probe.Provider == "" {
		span.SetAttributes(attribute.Bool("request.valid", false))
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "provider is required"}})
		return
	}

	h.runAuthAction(c, span, http.MethodPost, "/auth/oauth2/"+probe.Provider+"/link", body, nil)
}

// OAuthSignup completes a social signup and logs the new member in.
func (h *Handler) OAuthSignup(c *gin.Context) {
	h.authAction(c, "auth.oauth.signup", http.MethodPost, "/auth/oauth2/signup", nil)
}

// skipProfile decides from the action result whether the follow-up profile
// fetch should be skipped.
type skipProfile func(result map[string]any) bool

func isNewUser(result map[string]any) bool {
	data, ok := result["data"].(map[string]any)
	if !ok {
		return false
	}
	v, ok := data["isNewUser"].(bool)
	return ok && v
}

// authAction is the shared action-then-profile flow.
func (h *Handler) authAction(c *gin.Context, spanName, method, path string, skip skipProfile) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("action", spanName),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "unreadable body"}})
		return
	}

	h.runAuthAction(c, span, method, path, body, skip)
}

func (h *Handler) runAuthAction(c *gin.Context, span trace.Span, method, path string, body []byte, skip skipProfile) {
	ctx := c.Request.Context()
	log := logger.FromContext(ctx)

	req := backend.Request{Method: method, Path: path}
	if len(body) > 0 {
		req.JSON = json.RawMessage(body)
	}

	resp, err := h.client.Do(ctx, req)
	if err != nil {
		span.RecordError(err)
		log.Warn().Err(err).Str("path", path).Msg("Auth action failed")
		h.respondUpstreamError(c, err)
		return
	}

	cookiePairs := h.forwardSetCookies(c, resp.SetCookies())

	var result map[string]any
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		// Unparseable success body: hand it through untouched.
		c.Data(resp.StatusCode, "application/json", resp.Body)
		return
	}

	if success, ok := result["success"].(bool); ok && !success {
		c.JSON(resp.StatusCode, result)
		return
	}
	if skip != nil && skip(result) {
		c.JSON(resp.StatusCode, result)
		return
	}

	// Profile fetch failure is non-fatal: the action already succeeded and
	// the client can re-fetch the profile later.
	profile := h.fetchProfile(ctx, strings.Join(cookiePairs, "; "))
	if profile == nil {
		span.SetAttributes(attribute.Bool("profile.fetched", false))
		result["user"] = nil
	} else {
		span.SetAttributes(attribute.Bool("profile.fetched", true))
		result["user"] = profile
	}

	c.JSON(resp.StatusCode, result)
}

// passthrough forwards one request to the backend with its cookies and
// returns the response verbatim (status, body, rewritten Set-Cookie).
func (h *Handler) passthrough(c *gin.Context, spanName, method, path string, withBody bool) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("action", spanName),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()
	log := logger.FromContext(ctx)

	req := backend.Request{Method: method, Path: path, Header: http.Header{}}
	if cookie := c.GetHeader("Cookie"); cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	if withBody {
		body, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "unreadable body"}})
			return
		}
		if len(body) > 0 {
			req.JSON = json.RawMessage(body)
		}
	}

	resp, err := h.client.Do(ctx, req)
	if err != nil {
		span.RecordError(err)
		log.Debug().Err(err).Str("path", path).Msg("Internal passthrough failed")
		h.respondUpstreamError(c, err)
		return
	}

	h.forwardSetCookies(c, resp.SetCookies())
	c.Data(resp.StatusCode, "application/json", resp.Body)
}

// fetchProfile loads the member profile with the given cookie header.
// Returns nil on any failure.
func (h *Handler) fetchProfile(ctx context.Context, cookie string) *session.Profile {
	header := http.Header{}
	if cookie != "" {
		header.Set("Cookie", cookie)
	}
	resp, err := h.client.Do(ctx, backend.Request{
		Method: http.MethodGet,
		Path:   "/users/me",
		Header: header,
	})
	if err != nil {
		logger.FromContext(ctx).Debug().Err(err).Msg("Profile fetch after auth action failed")
		return nil
	}
	var profile session.Profile
	if err := resp.Decode(&profile); err != nil || profile.ID == 0 {
		return nil
	}
	return &profile
}

// forwardSetCookies rewrites upstream cookies onto the response and returns
// their name=value pairs for the follow-up profile fetch.
func (h *Handler) forwardSetCookies(c *gin.Context, raw []string) []string {
	pairs := make([]string, 0, len(raw))
	for _, cookie := range raw {
		rewritten := proxy.RewriteSetCookie(cookie, h.cookiePath)
		c.Writer.Header().Add("Set-Cookie", rewritten)
		if nameValue, _, ok := strings.Cut(rewritten, ";"); ok {
			pairs = append(pairs, strings.TrimSpace(nameValue))
		} else {
			pairs = append(pairs, strings.TrimSpace(rewritten))
		}
	}
	return pairs
}

// respondUpstreamError surfaces a backend failure with the backend's own
// status and body, forwarding rewritten Set-Cookie headers (e.g. cleared
// session cookies on a rejected login).
func (h *Handler) respondUpstreamError(c *gin.Context, err error) {
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) {
		c.JSON(http.StatusBadGateway, gin.H{"error": gin.H{"message": "upstream unreachable"}})
		return
	}
	if apiErr.Header != nil {
		h.forwardSetCookies(c, apiErr.Header.Values("Set-Cookie"))
	}
	if len(apiErr.Body) > 0 {
		c.Data(apiErr.StatusCode, "application/json", apiErr.Body)
		return
	}
	c.Status(apiErr.StatusCode)
}
