package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kvartplata/kvartplata/internal/config"
)

const DefaultCookieName = "_sid"

// CookieManager manages the session token cookie on the web dashboard.
type CookieManager struct {
	cookieName string
	secure     bool
}

func NewCookieManager(cfg config.Config) *CookieManager {
	return &CookieManager{
		cookieName: DefaultCookieName,
		secure:     cfg.Environment == "production",
	}
}

func (m *CookieManager) CookieName() string {
	return m.cookieName
}

func (m *CookieManager) ReadToken(c *gin.Context) (string, bool) {
	token, err := c.Cookie(m.cookieName)
	if err != nil {
		return "", false
	}
	if strings.TrimSpace(token) == "" {
		return "", false
	}
	return token, true
}

func (m *CookieManager) Set(c *gin.Context, value string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, value, maxAge, "/", "", m.secure, true)
}

func (m *CookieManager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, "", -1, "/", "", m.secure, true)
}
