package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	tariffdomain "github.com/kvartplata/kvartplata/internal/tariff/domain"
	"github.com/kvartplata/kvartplata/internal/utility"
)

type saveTariffRequest struct {
	UtilityType string  `json:"utility_type"`
	Rate        float64 `json:"rate"`
	ValidFrom   string  `json:"valid_from"`
}

func (s *Server) ListTariffs(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	tariffs, err := s.tariffSvc.List(c.Request.Context(), session.ApartmentID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tariffs})
}

func (s *Server) SaveTariff(c *gin.Context) {
	session, ok := s.requireAdmin(c)
	if !ok {
		return
	}

	var req saveTariffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	utilityType, err := utility.Parse(strings.TrimSpace(req.UtilityType))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	validFrom, err := time.Parse("2006-01-02", strings.TrimSpace(req.ValidFrom))
	if err != nil {
		AbortWithError(c, tariffdomain.ErrInvalidValidFrom)
		return
	}

	tariff, err := s.tariffSvc.Upsert(c.Request.Context(), tariffdomain.UpsertTariffRequest{
		ApartmentID: session.ApartmentID,
		UtilityType: utilityType,
		Rate:        req.Rate,
		ValidFrom:   validFrom,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tariff})
}
