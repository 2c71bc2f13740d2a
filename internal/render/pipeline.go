package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/config"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/jobs"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/models"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/pkg/errors"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/storage"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/templates"
	"github.com/MrEmanAhmad/ffmpeg-video-api/pkg/ffmpeg"
	"github.com/MrEmanAhmad/ffmpeg-video-api/pkg/logger"
)

// pipeline is the end-to-end processor for one job: fetch assets, render
// scenes, concatenate in template order, mux audio, store the artifact and
// mark the job completed.
type pipeline struct {
	cfg         *config.Config
	registry    jobs.Registry
	templates   templates.Repository
	fetcher     *Fetcher
	coordinator *Coordinator
	runner      ffmpeg.Runner
	store       storage.ArtifactStore
	logger      logger.Logger
}

func NewPipeline(cfg *config.Config, registry jobs.Registry, tplRepo templates.Repository, runner ffmpeg.Runner, store storage.ArtifactStore, log logger.Logger) jobs.Processor {
	return &pipeline{
		cfg:         cfg,
		registry:    registry,
		templates:   tplRepo,
		fetcher:     NewFetcher(cfg, registry, log),
		coordinator: NewCoordinator(cfg, runner, registry, log),
		runner:      runner,
		store:       store,
		logger:      log,
	}
}

func (p *pipeline) Process(ctx context.Context, job *models.Job) error {
	template, err := p.templates.GetByID(ctx, job.TemplateID)
	if err != nil {
		return err
	}

	jobDir := filepath.Join(p.cfg.Render.TempDir, job.JobID)
	if err := os.MkdirAll(jobDir, 0755); err != nil {
		return errors.Wrap(err, errors.KindUnexpected, errors.CodeUnexpected, "create job directory")
	}

	reqs, err := Requirements(template, job.Request, p.cfg.Download.AllowedDomains)
	if err != nil {
		return err
	}
	assets, err := p.fetcher.FetchAll(ctx, job, reqs, jobDir)
	if err != nil {
		return err
	}
	p.logger.Infof("job %s: %d assets fetched", job.JobID, len(reqs))

	tasks, err := BuildRenderTasks(template, assets, job.Request.CustomText)
	if err != nil {
		return err
	}
	builder := ffmpeg.NewBuilder(p.outputSettings(template))
	results, err := p.coordinator.RenderScenes(ctx, job, builder, tasks, jobDir)
	if err != nil {
		return err
	}
	p.logger.Infof("job %s: %d scenes rendered", job.JobID, len(results))

	finalPath, err := p.finalize(ctx, job, builder, template, results, jobDir)
	if err != nil {
		return err
	}
	p.removeIntermediates(jobDir, finalPath)

	ref := ""
	if p.store != nil {
		ref, err = p.store.Store(ctx, job.JobID, finalPath)
		if err != nil {
			// The artifact is intact on disk; degrade to local serving.
			p.logger.Warnf("job %s: artifact store failed, serving locally: %v", job.JobID, err)
			ref = ""
		}
	}

	info, err := os.Stat(finalPath)
	if err != nil {
		return errors.Wrap(err, errors.KindUnexpected, errors.CodeUnexpected, "final artifact missing")
	}
	return p.registry.MarkCompleted(job.JobID, finalPath, ref, info.Size(), template.TotalDuration())
}

func (p *pipeline) outputSettings(template *models.Template) models.OutputSettings {
	settings := template.OutputSettings
	if settings.Width <= 0 {
		settings.Width = p.cfg.Render.Width
	}
	if settings.Height <= 0 {
		settings.Height = p.cfg.Render.Height
	}
	if settings.FPS <= 0 {
		settings.FPS = p.cfg.Render.FPS
	}
	if settings.Codec == "" {
		settings.Codec = p.cfg.Render.Codec
	}
	return settings
}

// finalize concatenates the ordered scene clips and muxes audio when
// requested. Audio failures degrade to a silent video rather than failing the
// job.
func (p *pipeline) finalize(ctx context.Context, job *models.Job, builder *ffmpeg.Builder, template *models.Template, results []models.SceneResult, jobDir string) (string, error) {
	var clips []string
	for _, result := range results {
		clips = append(clips, result.Clips...)
	}

	concatPath := filepath.Join(jobDir, "concat_list.txt")
	if err := ffmpeg.WriteConcatFile(clips, concatPath); err != nil {
		return "", errors.Wrap(err, errors.KindUnexpected, errors.CodeUnexpected, "write concat manifest")
	}

	format := template.OutputSettings.Format
	if format == "" {
		format = "mp4"
	}
	finalPath := filepath.Join(jobDir, fmt.Sprintf("final_%s.%s", job.JobID, format))

	audioURL, audioSettings := p.audioSource(job, template)
	if audioURL != "" {
		audioPath, err := p.fetcher.FetchAudio(ctx, audioURL, jobDir)
		if err != nil {
			p.logger.Warnf("job %s: audio download failed, rendering silent: %v", job.JobID, err)
		} else {
			args := builder.ConcatWithAudioArgs(concatPath, audioPath, finalPath, audioSettings, template.TotalDuration())
			result := p.runner.Run(ctx, args)
			if result.OK {
				return finalPath, nil
			}
			p.logger.Warnf("job %s: audio mux failed, rendering silent: %s", job.JobID, result.Diagnostic)
		}
	}

	result := p.runner.Run(ctx, builder.ConcatArgs(concatPath, finalPath))
	if result.TimedOut {
		return "", errors.ExternalToolf(errors.CodeFFmpegTimeout, "FFmpeg timed out: %s", result.Diagnostic)
	}
	if !result.OK {
		return "", errors.ExternalToolf(errors.CodeFFmpegError, "FFmpeg error: %s", result.Diagnostic)
	}
	return finalPath, nil
}

// audioSource picks the audio track: a request-level URL overrides the
// template's audio settings.
func (p *pipeline) audioSource(job *models.Job, template *models.Template) (string, models.AudioSettings) {
	if job.Request.AudioURL != "" {
		settings := template.Audio
		settings.Enabled = true
		return job.Request.AudioURL, settings
	}
	if template.Audio.Enabled && template.Audio.SourceURL != "" {
		return template.Audio.SourceURL, template.Audio
	}
	return "", models.AudioSettings{}
}

// removeIntermediates deletes the per-scene clips, downloaded assets and
// manifest, keeping only the final artifact.
func (p *pipeline) removeIntermediates(jobDir, finalPath string) {
	entries, err := os.ReadDir(jobDir)
	if err != nil {
		p.logger.Warnf("cleanup %s: %v", jobDir, err)
		return
	}
	for _, entry := range entries {
		path := filepath.Join(jobDir, entry.Name())
		if path == finalPath || entry.IsDir() {
			continue
		}
		if err := os.Remove(path); err != nil {
			p.logger.Warnf("cleanup %s: %v", path, err)
		}
	}
}
