package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) Dashboard(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	apartment, err := s.residentSvc.GetApartment(c.Request.Context(), session.ApartmentID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	unpaid, err := s.billingSvc.ListUnpaidCharges(c.Request.Context(), session.ApartmentID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	totalDebt := 0.0
	for _, u := range unpaid {
		totalDebt += u.Debt()
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"apartment":  apartment,
		"unpaid":     unpaid,
		"total_debt": totalDebt,
	}})
}
