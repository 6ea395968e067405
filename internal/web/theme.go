package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Theme preference is a plain long-lived cookie; the gateway stores it so
// the first server-rendered paint already knows the visitor's choice.

const (
	themeCookieName = "theme"
	themeCookieTTL  = 365 * 24 * time.Hour
	defaultTheme    = "light"
)

var validThemes = map[string]bool{
	"light":  true,
	"dark":   true,
	"system": true,
}

// Theme returns the visitor's theme preference.
func (h *Handler) Theme(c *gin.Context) {
	theme, err := c.Cookie(themeCookieName)
	if err != nil || !validThemes[theme] {
		theme = defaultTheme
	}
	c.JSON(http.StatusOK, gin.H{"theme": theme})
}

// SetTheme persists a theme preference.
func (h *Handler) SetTheme(c *gin.Context) {
	var req struct {
		Theme string `json:"theme" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": err.Error()}})
		return
	}
	if !validThemes[req.Theme] {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "unknown theme"}})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(themeCookieName, req.Theme, int(themeCookieTTL.Seconds()), "/", "", false, false)
	c.JSON(http.StatusOK, gin.H{"theme": req.Theme})
}

// Robots serves the crawl policy for the storefront host.
func Robots(c *gin.Context) {
	c.String(http.StatusOK, "User-agent: *\nDisallow: /api/\nDisallow: /checkout\nAllow: /\n")
}
