package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	billingdomain "github.com/kvartplata/kvartplata/internal/billing/domain"
	"github.com/kvartplata/kvartplata/internal/utility"
)

type generateChargeRequest struct {
	UtilityType string `json:"utility_type"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
}

func (s *Server) GenerateCharge(c *gin.Context) {
	session, ok := s.requireAdmin(c)
	if !ok {
		return
	}

	var req generateChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	utilityType, err := utility.Parse(strings.TrimSpace(req.UtilityType))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	periodStart, err := time.Parse("2006-01-02", strings.TrimSpace(req.PeriodStart))
	if err != nil {
		AbortWithError(c, billingdomain.ErrInvalidPeriod)
		return
	}
	periodEnd, err := time.Parse("2006-01-02", strings.TrimSpace(req.PeriodEnd))
	if err != nil {
		AbortWithError(c, billingdomain.ErrInvalidPeriod)
		return
	}

	charge, err := s.billingSvc.GenerateCharge(c.Request.Context(), billingdomain.GenerateChargeRequest{
		ApartmentID: session.ApartmentID,
		UtilityType: utilityType,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": charge})
}
