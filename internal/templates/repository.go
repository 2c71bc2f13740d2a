package templates

import (
	"context"

	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/models"
)

// Repository manages the declarative scene templates consumed by the render
// pipeline.
type Repository interface {
	Create(ctx context.Context, template *models.Template) (*models.Template, error)
	GetByID(ctx context.Context, templateID string) (*models.Template, error)
	List(ctx context.Context) ([]models.TemplateSummary, error)
	Update(ctx context.Context, templateID string, updates *models.TemplateUpdate) (*models.Template, error)
	Delete(ctx context.Context, templateID string) error
	Clone(ctx context.Context, templateID, newName string) (*models.Template, error)
}
