package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	residentdomain "github.com/kvartplata/kvartplata/internal/resident/domain"
)

type addResidentRequest struct {
	TelegramID int64  `json:"telegram_id"`
	FullName   string `json:"full_name"`
	IsAdmin    bool   `json:"is_admin"`
}

func (s *Server) ListResidents(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	residents, err := s.residentSvc.List(c.Request.Context(), session.ApartmentID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": residents})
}

func (s *Server) AddResident(c *gin.Context) {
	session, ok := s.requireAdmin(c)
	if !ok {
		return
	}

	var req addResidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resident, err := s.residentSvc.Add(c.Request.Context(), residentdomain.AddResidentRequest{
		ApartmentID: session.ApartmentID,
		TelegramID:  req.TelegramID,
		FullName:    strings.TrimSpace(req.FullName),
		IsAdmin:     req.IsAdmin,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resident})
}
