package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rfujimura/koden-tracker/internal/common"
)

// exportDonations renders a funeral's donations in the requested format:
// xlsx (default), csv, or summary.
func (s *Server) exportDonations(c *gin.Context) {
	id, ok := s.pathUUID(c, "id")
	if !ok {
		return
	}

	var fromDate, toDate *time.Time
	if fd := strings.TrimSpace(c.Query("from")); fd != "" {
		from, err := time.Parse("2006-01-02", fd)
		if err != nil {
			s.respondError(c, common.InvalidArgumentErrorf("from invalid (YYYY-MM-DD): %v", err))
			return
		}
		fromDate = &from
	}
	if td := strings.TrimSpace(c.Query("to")); td != "" {
		to, err := time.Parse("2006-01-02", td)
		if err != nil {
			s.respondError(c, common.InvalidArgumentErrorf("to invalid (YYYY-MM-DD): %v", err))
			return
		}
		toDate = &to
	}

	format := strings.ToLower(c.DefaultQuery("format", "xlsx"))
	switch format {
	case "xlsx":
		raw, err := s.exports.ExportXLSX(c.Request.Context(), id, fromDate, toDate)
		if err != nil {
			s.respondError(c, err)
			return
		}
		name := fmt.Sprintf("koden-%s.xlsx", id)
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", raw)
	case "csv":
		raw, err := s.exports.ExportCSV(c.Request.Context(), id, fromDate, toDate)
		if err != nil {
			s.respondError(c, err)
			return
		}
		name := fmt.Sprintf("koden-%s.csv", id)
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		c.Data(http.StatusOK, "text/csv; charset=utf-8", raw)
	case "summary":
		summary, err := s.exports.Summarize(c.Request.Context(), id, fromDate, toDate)
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	default:
		s.respondError(c, common.InvalidArgumentErrorf("format must be xlsx, csv or summary"))
	}
}
