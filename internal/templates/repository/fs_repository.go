package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/models"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/pkg/errors"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/templates"
	"github.com/MrEmanAhmad/ffmpeg-video-api/pkg/logger"
)

var templateNameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateTemplateName rejects names unsafe for file storage.
func ValidateTemplateName(name string) error {
	if name == "" {
		return errors.Validationf(errors.CodeInvalidTemplateName, "template name is required")
	}
	if !templateNameRe.MatchString(name) {
		return errors.Validationf(errors.CodeInvalidTemplateName,
			"template name can only contain letters, numbers, underscores, and hyphens")
	}
	if len(name) > 100 {
		return errors.Validationf(errors.CodeInvalidTemplateName,
			"template name must be 100 characters or less")
	}
	return nil
}

// ValidateTemplate checks the structural rules shared by create and update.
func ValidateTemplate(template *models.Template) error {
	if err := ValidateTemplateName(template.TemplateName); err != nil {
		return err
	}
	if len(template.Scenes) == 0 {
		return errors.Validationf(errors.CodeInvalidTemplate, "template must have at least one scene")
	}
	for i, scene := range template.Scenes {
		if scene.SceneNumber == 0 {
			return errors.Validationf(errors.CodeInvalidTemplate, "scene %d missing scene_number", i+1)
		}
		if len(scene.Segments) == 0 {
			return errors.Validationf(errors.CodeInvalidTemplate,
				"scene %d must have at least one segment", scene.SceneNumber)
		}
		for j, segment := range scene.Segments {
			if segment.Type == "" {
				return errors.Validationf(errors.CodeInvalidTemplate,
					"segment %d in scene %d missing type", j+1, scene.SceneNumber)
			}
			if segment.Duration <= 0 {
				return errors.Validationf(errors.CodeInvalidTemplate,
					"segment %d in scene %d missing duration", j+1, scene.SceneNumber)
			}
		}
	}
	settings := template.OutputSettings
	if settings.Width != 0 && (settings.Width < 100 || settings.Width > 4096) {
		return errors.Validationf(errors.CodeInvalidTemplate, "width must be between 100 and 4096")
	}
	if settings.Height != 0 && (settings.Height < 100 || settings.Height > 4096) {
		return errors.Validationf(errors.CodeInvalidTemplate, "height must be between 100 and 4096")
	}
	if settings.FPS != 0 && (settings.FPS < 1 || settings.FPS > 120) {
		return errors.Validationf(errors.CodeInvalidTemplate, "fps must be between 1 and 120")
	}
	return nil
}

type fsRepository struct {
	dir    string
	mu     sync.Mutex
	logger logger.Logger
}

// NewFsRepository stores templates as JSON files under dir and seeds the
// default template when missing.
func NewFsRepository(dir string, log logger.Logger) (templates.Repository, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create templates directory: %w", err)
	}
	repo := &fsRepository{dir: dir, logger: log}
	if err := repo.ensureDefaultTemplate(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *fsRepository) ensureDefaultTemplate() error {
	tpl := DefaultFightVideoTemplate()
	if _, err := os.Stat(r.templatePath(tpl.TemplateID)); err == nil {
		return nil
	}
	if err := r.saveFile(tpl); err != nil {
		return err
	}
	r.logger.Infof("created default template: %s", tpl.TemplateID)
	return nil
}

func (r *fsRepository) templatePath(templateID string) string {
	return filepath.Join(r.dir, templateID+".json")
}

func (r *fsRepository) saveFile(template *models.Template) error {
	data, err := json.MarshalIndent(template, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal template: %w", err)
	}
	return os.WriteFile(r.templatePath(template.TemplateID), data, 0644)
}

func (r *fsRepository) loadFile(templateID string) (*models.Template, error) {
	if err := ValidateTemplateName(templateID); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(r.templatePath(templateID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundf(errors.CodeTemplateNotFound, "template not found: %s", templateID)
		}
		return nil, fmt.Errorf("failed to read template %s: %w", templateID, err)
	}
	var template models.Template
	if err := json.Unmarshal(data, &template); err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", templateID, err)
	}
	return &template, nil
}

func (r *fsRepository) Create(ctx context.Context, template *models.Template) (*models.Template, error) {
	if err := ValidateTemplate(template); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if template.TemplateID == "" {
		template.TemplateID = template.TemplateName
	}
	if _, err := r.loadFile(template.TemplateID); err == nil {
		return nil, errors.Validationf(errors.CodeTemplateExists,
			"template already exists: %s", template.TemplateID)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	template.CreatedAt = now
	template.UpdatedAt = now
	template.IsDefault = false

	if err := r.saveFile(template); err != nil {
		return nil, err
	}
	r.logger.Infof("saved template: %s", template.TemplateID)
	return template, nil
}

func (r *fsRepository) GetByID(ctx context.Context, templateID string) (*models.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadFile(templateID)
}

func (r *fsRepository) List(ctx context.Context) ([]models.TemplateSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := filepath.Glob(filepath.Join(r.dir, "*.json"))
	if err != nil {
		return nil, err
	}

	summaries := make([]models.TemplateSummary, 0, len(entries))
	for _, entry := range entries {
		data, err := os.ReadFile(entry)
		if err != nil {
			r.logger.Errorf("failed to read template file %s: %v", entry, err)
			continue
		}
		var template models.Template
		if err := json.Unmarshal(data, &template); err != nil {
			r.logger.Errorf("failed to parse template file %s: %v", entry, err)
			continue
		}
		summaries = append(summaries, template.Summary())
	}

	// Default templates first, then by name.
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].IsDefault != summaries[j].IsDefault {
			return summaries[i].IsDefault
		}
		return summaries[i].TemplateName < summaries[j].TemplateName
	})

	return summaries, nil
}

func (r *fsRepository) Update(ctx context.Context, templateID string, updates *models.TemplateUpdate) (*models.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	template, err := r.loadFile(templateID)
	if err != nil {
		return nil, err
	}
	if template.IsDefault {
		return nil, errors.Validationf(errors.CodeCannotDelete, "cannot modify default templates")
	}

	if updates.Description != nil {
		template.Description = *updates.Description
	}
	if updates.Scenes != nil {
		template.Scenes = updates.Scenes
	}
	if updates.OutputSettings != nil {
		template.OutputSettings = *updates.OutputSettings
	}
	if updates.Audio != nil {
		template.Audio = *updates.Audio
	}
	if updates.Transitions != nil {
		template.Transitions = *updates.Transitions
	}
	template.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	if err := ValidateTemplate(template); err != nil {
		return nil, err
	}
	if err := r.saveFile(template); err != nil {
		return nil, err
	}
	return template, nil
}

func (r *fsRepository) Delete(ctx context.Context, templateID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	template, err := r.loadFile(templateID)
	if err != nil {
		return err
	}
	if template.IsDefault {
		return errors.Validationf(errors.CodeCannotDelete, "cannot delete default templates")
	}
	if err := os.Remove(r.templatePath(templateID)); err != nil {
		return fmt.Errorf("failed to delete template %s: %w", templateID, err)
	}
	r.logger.Infof("deleted template: %s", templateID)
	return nil
}

func (r *fsRepository) Clone(ctx context.Context, templateID, newName string) (*models.Template, error) {
	if err := ValidateTemplateName(newName); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	source, err := r.loadFile(templateID)
	if err != nil {
		return nil, err
	}
	if _, err := r.loadFile(newName); err == nil {
		return nil, errors.Validationf(errors.CodeTemplateExists, "template already exists: %s", newName)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	clone := *source
	clone.TemplateID = newName
	clone.TemplateName = newName
	clone.Description = strings.TrimSpace(fmt.Sprintf("Clone of %s: %s", templateID, source.Description))
	clone.CreatedAt = now
	clone.UpdatedAt = now
	clone.IsDefault = false
	clone.ClonedFrom = templateID

	if err := r.saveFile(&clone); err != nil {
		return nil, err
	}
	return &clone, nil
}
