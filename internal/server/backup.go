package server

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rfujimura/koden-tracker/internal/common"
)

const maxBackupBytes = 64 << 20

func (s *Server) exportBackup(c *gin.Context) {
	raw, err := s.backups.Export(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	name := "koden-backup-" + time.Now().UTC().Format("20060102") + ".json"
	c.Header("Content-Disposition", "attachment; filename="+name)
	c.Data(http.StatusOK, "application/json", raw)
}

func (s *Server) importBackup(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBackupBytes))
	if err != nil {
		s.respondError(c, common.WrapError(err, "read backup body"))
		return
	}
	funerals, donations, err := s.backups.Import(c.Request.Context(), raw)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"funerals_imported":  funerals,
		"donations_imported": donations,
	})
}
