package http

import (
	"github.com/labstack/echo/v4"

	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/jobs"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/middleware"
)

func MapJobRoutes(group *echo.Group, h jobs.Handlers, mw *middleware.MiddlewareManager) {
	group.Use(mw.APIKeyMiddleware)
	group.POST("/render-video", h.SubmitRender())
	group.GET("/status/:job_id", h.GetStatus())
	group.GET("/download/:job_id", h.Download())
	group.GET("/jobs", h.ListJobs())
	group.POST("/cleanup", h.Cleanup())
}
