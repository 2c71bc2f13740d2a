package render

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/config"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/jobs"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/models"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/pkg/errors"
	"github.com/MrEmanAhmad/ffmpeg-video-api/pkg/ffmpeg"
	"github.com/MrEmanAhmad/ffmpeg-video-api/pkg/logger"
)

// Render phase progress runs from fetchProgressWeight up to 75.
const renderProgressWeight = 55

// Coordinator renders scene tasks with bounded parallelism. Units inside one
// scene run sequentially; scenes run concurrently up to the configured limit.
// The first failing invocation stops dispatch of new scenes.
type Coordinator struct {
	cfg      *config.Config
	runner   ffmpeg.Runner
	registry jobs.Registry
	logger   logger.Logger
}

func NewCoordinator(cfg *config.Config, runner ffmpeg.Runner, registry jobs.Registry, log logger.Logger) *Coordinator {
	return &Coordinator{cfg: cfg, runner: runner, registry: registry, logger: log}
}

// RenderScenes executes every task and returns results sorted by scene number,
// so the finalize phase concatenates in template order regardless of which
// scene finished first.
func (c *Coordinator) RenderScenes(ctx context.Context, job *models.Job, builder *ffmpeg.Builder, tasks []models.RenderTask, jobDir string) ([]models.SceneResult, error) {
	totalUnits := 0
	for _, task := range tasks {
		totalUnits += len(task.Units)
	}
	if totalUnits == 0 {
		return nil, errors.Validationf(errors.CodeInvalidTemplate, "no render units to execute")
	}

	sem := make(chan struct{}, c.cfg.Render.Concurrency)
	errOnce := make(chan error, 1)
	var aborted atomic.Bool
	var wg sync.WaitGroup

	var mu sync.Mutex
	var results []models.SceneResult
	unitsDone := 0

	for _, task := range tasks {
		if aborted.Load() {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(task models.RenderTask) {
			defer wg.Done()
			defer func() { <-sem }()

			if aborted.Load() {
				return
			}
			clips := make([]string, 0, len(task.Units))
			for i, unit := range task.Units {
				if aborted.Load() {
					return
				}
				clip := filepath.Join(jobDir, fmt.Sprintf("scene%d_clip%d.mp4", task.SceneNumber, i))
				if err := c.renderUnit(ctx, builder, unit, clip); err != nil {
					aborted.Store(true)
					select {
					case errOnce <- err:
					default:
						// A sibling already claimed the failure.
						c.logger.Warnf("job %s: additional render failure: %v", job.JobID, err)
					}
					return
				}
				clips = append(clips, clip)

				mu.Lock()
				unitsDone++
				progress := fetchProgressWeight + unitsDone*renderProgressWeight/totalUnits
				mu.Unlock()
				c.registry.UpdateProgress(job.JobID, progress)
			}

			mu.Lock()
			results = append(results, models.SceneResult{
				SceneNumber: task.SceneNumber,
				Clips:       clips,
			})
			mu.Unlock()
			c.logger.Debugf("job %s: scene %d rendered (%d clips)", job.JobID, task.SceneNumber, len(clips))
		}(task)
	}
	wg.Wait()

	select {
	case err := <-errOnce:
		return nil, err
	default:
	}

	sort.Slice(results, func(i, k int) bool {
		return results[i].SceneNumber < results[k].SceneNumber
	})
	return results, nil
}

func (c *Coordinator) renderUnit(ctx context.Context, builder *ffmpeg.Builder, unit models.RenderUnit, outputPath string) error {
	var args []string
	switch unit.Kind {
	case models.UnitSplitPair:
		args = builder.SplitScreenArgs(unit.TopAsset, unit.BottomAsset, outputPath, unit.Duration)
	case models.UnitFullFrame:
		args = builder.FullScreenArgs(unit.Asset, outputPath, unit.Duration, unit.TextOverlay)
	default:
		return errors.Newf(errors.KindUnexpected, errors.CodeUnexpected, "unknown render unit kind %s", unit.Kind)
	}

	result := c.runner.Run(ctx, args)
	if result.TimedOut {
		return errors.ExternalToolf(errors.CodeFFmpegTimeout, "FFmpeg timed out: %s", result.Diagnostic)
	}
	if !result.OK {
		return errors.ExternalToolf(errors.CodeFFmpegError, "FFmpeg error: %s", result.Diagnostic)
	}
	return nil
}
