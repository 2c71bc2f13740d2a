package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/config"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/jobs"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/templates"
	"github.com/MrEmanAhmad/ffmpeg-video-api/pkg/logger"
)

const (
	maxHeaderBytes = 1 << 20
	ctxTimeout     = 5
)

type Server struct {
	echo      *echo.Echo
	cfg       *config.Config
	queue     jobs.Queue
	registry  jobs.Registry
	templates templates.Repository
	logger    logger.Logger
}

func NewServer(cfg *config.Config, queue jobs.Queue, registry jobs.Registry, tplRepo templates.Repository, logger logger.Logger) *Server {
	return &Server{
		echo:      echo.New(),
		cfg:       cfg,
		queue:     queue,
		registry:  registry,
		templates: tplRepo,
		logger:    logger,
	}
}

func (s *Server) Run() error {
	if err := s.MapHandlers(s.echo); err != nil {
		return err
	}
	s.echo.Server.MaxHeaderBytes = maxHeaderBytes
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Content-Type", "X-API-Key"},
		MaxAge:       300,
	}))

	s.queue.Start()

	go func() {
		s.logger.Infof("server listening on %s", s.cfg.Server.Port)
		if err := s.echo.Start(s.cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("error starting server: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, os.Interrupt)
	<-quit

	s.logger.Infof("shutting down server")
	ctx, shutdown := context.WithTimeout(context.Background(), time.Second*ctxTimeout)
	defer shutdown()
	if err := s.echo.Server.Shutdown(ctx); err != nil {
		s.logger.Errorf("http shutdown: %v", err)
	}
	// Let in-flight renders finish before the process exits.
	s.queue.Shutdown(true)
	return nil
}
