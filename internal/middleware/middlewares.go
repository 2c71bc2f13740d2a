package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/config"
	"github.com/MrEmanAhmad/ffmpeg-video-api/pkg/logger"
	"github.com/MrEmanAhmad/ffmpeg-video-api/pkg/utils"
)

type MiddlewareManager struct {
	cfg     *config.Config
	origins []string
	logger  logger.Logger
}

// Middleware manager constructor
func NewMiddlewareManager(cfg *config.Config, origins []string, logger logger.Logger) *MiddlewareManager {
	return &MiddlewareManager{cfg: cfg, origins: origins, logger: logger}
}

// RequestLoggerMiddleware logs method, uri, status and latency per request.
func (mw *MiddlewareManager) RequestLoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		req := c.Request()
		res := c.Response()
		status := res.Status
		size := res.Size
		s := time.Since(start).String()
		requestID := utils.GetRequestID(c)

		mw.logger.Infof("RequestID: %s, Method: %s, URI: %s, Status: %v, Size: %v, Time: %s",
			requestID, req.Method, req.URL, status, size, s,
		)
		return err
	}
}

// APIKeyMiddleware rejects requests without a configured key. Open when no
// keys are configured.
func (mw *MiddlewareManager) APIKeyMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if len(mw.cfg.Server.APIKeys) == 0 {
			return next(c)
		}
		key := c.Request().Header.Get("X-API-Key")
		for _, allowed := range mw.cfg.Server.APIKeys {
			if key == allowed {
				return next(c)
			}
		}
		mw.logger.Warnf("rejected request with invalid api key, uri: %s", c.Request().URL)
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
}
