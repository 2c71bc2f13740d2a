package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"

	jobsHttp "github.com/MrEmanAhmad/ffmpeg-video-api/internal/jobs/delivery/http"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/middleware"
	templatesHttp "github.com/MrEmanAhmad/ffmpeg-video-api/internal/templates/delivery/http"
	"github.com/MrEmanAhmad/ffmpeg-video-api/pkg/ffmpeg"
	"github.com/MrEmanAhmad/ffmpeg-video-api/pkg/utils"
)

func (s *Server) MapHandlers(e *echo.Echo) error {
	jobHandlers := jobsHttp.NewJobHandlers(s.cfg, s.queue, s.registry, s.templates, s.logger)
	templateHandlers := templatesHttp.NewTemplateHandlers(s.templates, s.logger)

	mw := middleware.NewMiddlewareManager(s.cfg, []string{"*"}, s.logger)

	e.Use(echoMw.RequestID())
	e.Use(mw.RequestLoggerMiddleware)

	root := e.Group("")
	templateGroup := e.Group("/templates")

	jobsHttp.MapJobRoutes(root, jobHandlers, mw)
	templatesHttp.MapTemplateRoutes(root, templateGroup, templateHandlers, mw)

	e.GET("/health", s.healthHandler())
	return nil
}

// healthHandler reports tool availability, queue load and disk usage in one
// place for probes and dashboards.
func (s *Server) healthHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		ffmpegInstalled := ffmpeg.Installed()

		templateCount := 0
		if summaries, err := s.templates.List(c.Request().Context()); err == nil {
			templateCount = len(summaries)
		}

		status := "healthy"
		code := http.StatusOK
		if !ffmpegInstalled {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		return c.JSON(code, map[string]interface{}{
			"status":           status,
			"version":          s.cfg.Server.AppVersion,
			"ffmpeg_installed": ffmpegInstalled,
			"ffmpeg_version":   ffmpeg.Version(),
			"queue":            s.registry.Stats(s.cfg.Queue.MaxConcurrentJobs, s.cfg.Queue.MaxQueueSize),
			"templates_count":  templateCount,
			"temp_dir":         utils.TempDirStats(s.cfg.Render.TempDir),
		})
	}
}
