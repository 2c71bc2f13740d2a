package jobs

import "github.com/labstack/echo/v4"

// Handlers is the HTTP surface of the job orchestrator.
type Handlers interface {
	SubmitRender() echo.HandlerFunc
	GetStatus() echo.HandlerFunc
	Download() echo.HandlerFunc
	ListJobs() echo.HandlerFunc
	Cleanup() echo.HandlerFunc
}
