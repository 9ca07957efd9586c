// Package server exposes the donation store and the capture pipeline over
// HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rfujimura/koden-tracker/internal/backup"
	"github.com/rfujimura/koden-tracker/internal/common"
	"github.com/rfujimura/koden-tracker/internal/export"
	"github.com/rfujimura/koden-tracker/internal/pipeline"
	"github.com/rfujimura/koden-tracker/internal/repository"
)

type Server struct {
	logger    *slog.Logger
	funerals  repository.FuneralRepository
	donations repository.DonationRepository
	capture   *pipeline.Capture
	exports   *export.Service
	backups   *backup.Service
	db        *repository.DB

	httpServer *http.Server
}

type Deps struct {
	Logger    *slog.Logger
	Funerals  repository.FuneralRepository
	Donations repository.DonationRepository
	Capture   *pipeline.Capture
	Exports   *export.Service
	Backups   *backup.Service
	DB        *repository.DB
}

func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		logger:    logger,
		funerals:  deps.Funerals,
		donations: deps.Donations,
		capture:   deps.Capture,
		exports:   deps.Exports,
		backups:   deps.Backups,
		db:        deps.DB,
	}
}

// Router builds the gin engine with every route mounted.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLog())

	router.GET("/healthz", s.healthz)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/funerals", s.createFuneral)
		v1.GET("/funerals", s.listFunerals)
		v1.GET("/funerals/:id", s.getFuneral)
		v1.PUT("/funerals/:id", s.updateFuneral)
		v1.DELETE("/funerals/:id", s.deleteFuneral)

		v1.GET("/funerals/:id/donations", s.listDonations)
		v1.POST("/funerals/:id/donations", s.createDonation)
		v1.POST("/funerals/:id/capture", s.captureDonation)
		v1.GET("/funerals/:id/export", s.exportDonations)

		v1.GET("/donations/:id", s.getDonation)
		v1.PUT("/donations/:id", s.updateDonation)
		v1.DELETE("/donations/:id", s.deleteDonation)

		v1.POST("/extract", s.extractFields)

		v1.GET("/backup", s.exportBackup)
		v1.POST("/backup", s.importBackup)
	}
	return router
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, cfg common.ServerConfig) error {
	s.httpServer = &http.Server{
		Addr:    cfg.Addr,
		Handler: s.Router(),
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", cfg.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(shutdownCtx)
}

func (s *Server) healthz(c *gin.Context) {
	if s.db != nil {
		if err := s.db.HealthCheck(c.Request.Context(), 0, s.logger); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := uuid.NewString()
		c.Request = c.Request.WithContext(common.WithRequestID(c.Request.Context(), reqID))
		c.Header("X-Request-Id", reqID)
		c.Next()
		s.logger.Info("http request",
			"request_id", reqID,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
		)
	}
}

// respondError maps domain errors onto HTTP statuses.
func (s *Server) respondError(c *gin.Context, err error) {
	status := common.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// pathUUID parses the named path parameter as a UUID.
func (s *Server) pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		s.respondError(c, common.InvalidArgumentErrorf("%s must be a UUID", name))
		return uuid.Nil, false
	}
	return id, true
}
