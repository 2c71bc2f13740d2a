package http

import (
	"github.com/labstack/echo/v4"

	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/middleware"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/templates"
)

func MapTemplateRoutes(root, group *echo.Group, h templates.Handlers, mw *middleware.MiddlewareManager) {
	// Legacy alias kept alongside the collection route.
	root.POST("/create-template", h.Create(), mw.APIKeyMiddleware)

	group.Use(mw.APIKeyMiddleware)
	group.POST("", h.Create())
	group.GET("", h.List())
	group.GET("/:template_id", h.GetByID())
	group.PUT("/:template_id", h.Update())
	group.DELETE("/:template_id", h.Delete())
	group.POST("/:template_id/clone", h.Clone())
}
