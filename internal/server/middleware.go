package server

import (
	"time"

	"github.com/gin-gonic/gin"
	sessiondomain "github.com/kvartplata/kvartplata/internal/session/domain"
	"go.uber.org/zap"
)

const contextSessionKey = "session"

// AuthRequired resolves the session cookie to its payload. Never logged in
// and expired present identically: both are routed to /login.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.cookies.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		session, err := s.sessionSvc.Validate(c.Request.Context(), token)
		if err != nil {
			s.cookies.Clear(c)
			AbortWithError(c, err)
			return
		}

		c.Set(contextSessionKey, session)
		c.Next()
	}
}

func sessionFromContext(c *gin.Context) (sessiondomain.Session, bool) {
	value, ok := c.Get(contextSessionKey)
	if !ok {
		return sessiondomain.Session{}, false
	}
	session, ok := value.(sessiondomain.Session)
	return session, ok
}

// requireAdmin re-verifies admin status against the ledger on every
// privileged mutation; a session issued before revocation grants no writes.
func (s *Server) requireAdmin(c *gin.Context) (sessiondomain.Session, bool) {
	session, ok := sessionFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return sessiondomain.Session{}, false
	}
	isAdmin, err := s.residentSvc.IsAdmin(c.Request.Context(), session.TelegramID, session.ApartmentID)
	if err != nil {
		AbortWithError(c, err)
		return sessiondomain.Session{}, false
	}
	if !isAdmin {
		AbortWithError(c, ErrForbidden)
		return sessiondomain.Session{}, false
	}
	return session, true
}

// RequestLogger logs each request with zap.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
