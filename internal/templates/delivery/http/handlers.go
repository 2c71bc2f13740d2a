package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/models"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/templates"
	"github.com/MrEmanAhmad/ffmpeg-video-api/pkg/logger"
	"github.com/MrEmanAhmad/ffmpeg-video-api/pkg/utils"
)

type templateHandlers struct {
	repo   templates.Repository
	logger logger.Logger
}

func NewTemplateHandlers(repo templates.Repository, log logger.Logger) templates.Handlers {
	return &templateHandlers{repo: repo, logger: log}
}

func (h *templateHandlers) Create() echo.HandlerFunc {
	return func(c echo.Context) error {
		template := &models.Template{}
		if err := utils.ReadRequest(c, template); err != nil {
			return utils.RespondError(c, err)
		}
		created, err := h.repo.Create(c.Request().Context(), template)
		if err != nil {
			return utils.RespondError(c, err)
		}
		h.logger.Infof("template %s created", created.TemplateID)
		return c.JSON(http.StatusCreated, created)
	}
}

func (h *templateHandlers) List() echo.HandlerFunc {
	return func(c echo.Context) error {
		summaries, err := h.repo.List(c.Request().Context())
		if err != nil {
			return utils.RespondError(c, err)
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"templates": summaries,
			"count":     len(summaries),
		})
	}
}

func (h *templateHandlers) GetByID() echo.HandlerFunc {
	return func(c echo.Context) error {
		template, err := h.repo.GetByID(c.Request().Context(), c.Param("template_id"))
		if err != nil {
			return utils.RespondError(c, err)
		}
		return c.JSON(http.StatusOK, template)
	}
}

func (h *templateHandlers) Update() echo.HandlerFunc {
	return func(c echo.Context) error {
		updates := &models.TemplateUpdate{}
		if err := utils.ReadRequest(c, updates); err != nil {
			return utils.RespondError(c, err)
		}
		updated, err := h.repo.Update(c.Request().Context(), c.Param("template_id"), updates)
		if err != nil {
			return utils.RespondError(c, err)
		}
		h.logger.Infof("template %s updated", updated.TemplateID)
		return c.JSON(http.StatusOK, updated)
	}
}

func (h *templateHandlers) Delete() echo.HandlerFunc {
	return func(c echo.Context) error {
		templateID := c.Param("template_id")
		if err := h.repo.Delete(c.Request().Context(), templateID); err != nil {
			return utils.RespondError(c, err)
		}
		h.logger.Infof("template %s deleted", templateID)
		return c.JSON(http.StatusOK, map[string]string{
			"status":      "deleted",
			"template_id": templateID,
		})
	}
}

func (h *templateHandlers) Clone() echo.HandlerFunc {
	return func(c echo.Context) error {
		input := &struct {
			NewName string `json:"new_name" validate:"required"`
		}{}
		if err := utils.ReadRequest(c, input); err != nil {
			return utils.RespondError(c, err)
		}
		cloned, err := h.repo.Clone(c.Request().Context(), c.Param("template_id"), input.NewName)
		if err != nil {
			return utils.RespondError(c, err)
		}
		h.logger.Infof("template %s cloned to %s", c.Param("template_id"), cloned.TemplateID)
		return c.JSON(http.StatusCreated, cloned)
	}
}
