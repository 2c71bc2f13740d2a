package http

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/config"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/jobs"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/models"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/pkg/errors"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/render"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/templates"
	"github.com/MrEmanAhmad/ffmpeg-video-api/pkg/logger"
	"github.com/MrEmanAhmad/ffmpeg-video-api/pkg/utils"
)

const minEstimatedSeconds = 30

type jobHandlers struct {
	cfg       *config.Config
	queue     jobs.Queue
	registry  jobs.Registry
	templates templates.Repository
	logger    logger.Logger
}

func NewJobHandlers(cfg *config.Config, queue jobs.Queue, registry jobs.Registry, tplRepo templates.Repository, log logger.Logger) jobs.Handlers {
	return &jobHandlers{
		cfg:       cfg,
		queue:     queue,
		registry:  registry,
		templates: tplRepo,
		logger:    log,
	}
}

// SubmitRender validates the request against its template and admits the job.
// Replies 202 with a status URL; the heavy work happens on the worker pool.
func (h *jobHandlers) SubmitRender() echo.HandlerFunc {
	return func(c echo.Context) error {
		request := &models.RenderRequest{}
		if err := c.Bind(request); err != nil {
			return utils.RespondError(c, errors.Validationf(errors.CodeInvalidRequest, "invalid request payload"))
		}
		if err := utils.ValidateStruct(c.Request().Context(), request); err != nil {
			return utils.RespondError(c, errors.Validationf(errors.CodeInvalidRequest, "%s", err))
		}

		template, err := h.templates.GetByID(c.Request().Context(), request.TemplateID)
		if err != nil {
			return utils.RespondError(c, err)
		}
		if err := render.ValidateRenderRequest(template, request, h.cfg.Download.AllowedDomains); err != nil {
			return utils.RespondError(c, err)
		}

		job, err := h.queue.Submit(c.Request().Context(), request)
		if err != nil {
			return utils.RespondError(c, err)
		}

		estimated := int(template.TotalDuration())
		if estimated < minEstimatedSeconds {
			estimated = minEstimatedSeconds
		}
		return c.JSON(http.StatusAccepted, models.SubmitResponse{
			Status:               string(models.JobStatusQueued),
			JobID:                job.JobID,
			TemplateID:           job.TemplateID,
			EstimatedTimeSeconds: estimated,
			CheckStatusURL:       "/status/" + job.JobID,
		})
	}
}

func (h *jobHandlers) GetStatus() echo.HandlerFunc {
	return func(c echo.Context) error {
		job, err := h.registry.GetByID(c.Param("job_id"))
		if err != nil {
			return utils.RespondError(c, err)
		}
		return c.JSON(http.StatusOK, job.ToResponse())
	}
}

// Download serves the finished artifact: a redirect when it lives in external
// storage, a file attachment otherwise.
func (h *jobHandlers) Download() echo.HandlerFunc {
	return func(c echo.Context) error {
		job, err := h.registry.GetByID(c.Param("job_id"))
		if err != nil {
			return utils.RespondError(c, err)
		}
		if job.Status != models.JobStatusCompleted {
			return utils.RespondError(c, errors.Validationf(errors.CodeVideoNotReady,
				"video is not ready, current status: %s", job.Status))
		}
		if job.OutputRef != "" {
			return c.Redirect(http.StatusFound, job.OutputRef)
		}
		if _, err := os.Stat(job.OutputPath); err != nil {
			return utils.RespondError(c, errors.NotFoundf(errors.CodeVideoNotFound,
				"video file no longer exists"))
		}
		return c.Attachment(job.OutputPath, fmt.Sprintf("video_%s.mp4", job.JobID))
	}
}

func (h *jobHandlers) ListJobs() echo.HandlerFunc {
	return func(c echo.Context) error {
		list := h.registry.List()
		responses := make([]*models.JobResponse, 0, len(list))
		for _, job := range list {
			responses = append(responses, job.ToResponse())
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"jobs":  responses,
			"stats": h.registry.Stats(h.cfg.Queue.MaxConcurrentJobs, h.cfg.Queue.MaxQueueSize),
		})
	}
}

// Cleanup runs the retention sweep on demand: old render directories plus
// terminal job records past the retention window.
func (h *jobHandlers) Cleanup() echo.HandlerFunc {
	return func(c echo.Context) error {
		retention := time.Duration(h.cfg.Cleanup.RetentionHours) * time.Hour
		result, err := utils.CleanupOldFiles(h.cfg.Render.TempDir, retention)
		if err != nil {
			h.logger.Errorf("cleanup sweep: %v", err)
			return utils.RespondError(c, errors.Unexpected(err))
		}
		evicted := h.registry.EvictCompletedBefore(retention)
		h.logger.Infof("cleanup: %d files removed, %.2f MB freed, %d job records evicted",
			result.Removed, result.SpaceFreedMB, evicted)
		return c.JSON(http.StatusOK, map[string]interface{}{
			"files_deleted":  result.Removed,
			"space_freed_mb": result.SpaceFreedMB,
			"jobs_evicted":   evicted,
		})
	}
}
