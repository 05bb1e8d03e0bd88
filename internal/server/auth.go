package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Login exchanges a one-time link token (issued by the bot's /web_login)
// for the session cookie.
func (s *Server) Login(c *gin.Context) {
	limit, err := s.loginLimit.Allow(c.Request.Context(), c.ClientIP())
	if err != nil {
		s.log.Warn("login rate limiter unavailable", zap.Error(err))
	} else if !limit.Allowed {
		c.Header("Retry-After", strconv.Itoa(int(limit.RetryAfter.Seconds())+1))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too_many_attempts"})
		return
	}

	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	session, err := s.sessionSvc.Validate(c.Request.Context(), token)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.cookies.Set(c, token, session.Expires)
	c.Redirect(http.StatusFound, "/api/dashboard")
}

func (s *Server) Logout(c *gin.Context) {
	s.cookies.Clear(c)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
