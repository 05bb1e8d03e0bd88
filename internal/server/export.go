package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kvartplata/kvartplata/internal/export"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) ExportExcel(c *gin.Context) {
	session, ok := s.requireAdmin(c)
	if !ok {
		return
	}

	rows, err := s.billingSvc.StatementRows(c.Request.Context(), session.ApartmentID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	workbook, err := export.Excel(rows)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if workbook == nil {
		c.JSON(http.StatusOK, gin.H{"data": nil, "message": "nothing to export"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="statement.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, workbook)
}
