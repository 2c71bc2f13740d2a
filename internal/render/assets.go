package render

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/config"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/jobs"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/models"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/pkg/errors"
	"github.com/MrEmanAhmad/ffmpeg-video-api/pkg/logger"
	"github.com/MrEmanAhmad/ffmpeg-video-api/pkg/utils"
)

// fetchProgressWeight is the share of total job progress the fetch phase owns.
const fetchProgressWeight = 20

// Fetcher downloads job assets with bounded parallelism. The first failure
// stops dispatch of new downloads; in-flight ones finish and are discarded.
type Fetcher struct {
	cfg      *config.Config
	client   *http.Client
	registry jobs.Registry
	logger   logger.Logger
}

func NewFetcher(cfg *config.Config, registry jobs.Registry, log logger.Logger) *Fetcher {
	return &Fetcher{
		cfg:      cfg,
		client:   &http.Client{},
		registry: registry,
		logger:   log,
	}
}

// FetchAll downloads every requirement into jobDir and returns the resolved
// local paths keyed by scene and segment type. Progress advances with each
// completed download.
func (f *Fetcher) FetchAll(ctx context.Context, job *models.Job, reqs []models.AssetRequirement, jobDir string) (map[string]map[string]string, error) {
	if len(reqs) == 0 {
		return map[string]map[string]string{}, nil
	}

	sem := make(chan struct{}, f.cfg.Download.Concurrency)
	errOnce := make(chan error, 1)
	var aborted atomic.Bool
	var wg sync.WaitGroup

	var mu sync.Mutex
	results := make(map[string]map[string]string)
	done := 0
	total := len(reqs)

	for _, req := range reqs {
		if aborted.Load() {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(req models.AssetRequirement) {
			defer wg.Done()
			defer func() { <-sem }()

			if aborted.Load() {
				return
			}
			localPath, err := f.downloadImage(ctx, req, jobDir)
			if err != nil {
				aborted.Store(true)
				select {
				case errOnce <- err:
				default:
					// A sibling already claimed the failure.
					f.logger.Warnf("job %s: additional fetch failure: %v", job.JobID, err)
				}
				return
			}

			mu.Lock()
			if results[req.SceneKey] == nil {
				results[req.SceneKey] = make(map[string]string)
			}
			results[req.SceneKey][req.SegmentType] = localPath
			done++
			progress := done * fetchProgressWeight / total
			mu.Unlock()

			f.registry.UpdateProgress(job.JobID, progress)
		}(req)
	}
	wg.Wait()

	select {
	case err := <-errOnce:
		return nil, err
	default:
		return results, nil
	}
}

func (f *Fetcher) downloadImage(ctx context.Context, req models.AssetRequirement, jobDir string) (string, error) {
	filename := fmt.Sprintf("%s_%s%s", req.SceneKey, req.SegmentType, utils.URLExtension(req.URL))
	localPath := filepath.Join(jobDir, filename)
	return localPath, f.download(ctx, req.URL, localPath, "image/")
}

// FetchAudio downloads the background audio track into jobDir.
func (f *Fetcher) FetchAudio(ctx context.Context, rawURL, jobDir string) (string, error) {
	if err := utils.ValidateAssetURL(rawURL, f.cfg.Download.AllowedDomains); err != nil {
		return "", err
	}
	ext := utils.URLExtension(rawURL)
	if ext == ".png" {
		ext = ".mp3"
	}
	localPath := filepath.Join(jobDir, "audio"+ext)
	return localPath, f.download(ctx, rawURL, localPath, "audio/")
}

// download streams one remote asset to disk, checking the content-type prefix
// against the expected media class. Each download is bounded by its own
// timeout.
func (f *Fetcher) download(ctx context.Context, rawURL, localPath, wantPrefix string) error {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.DownloadTimeout())
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return errors.AssetFetchf(errors.CodeImageDownloadFailed, "invalid request for %s", rawURL)
	}

	resp, err := f.client.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return errors.AssetFetchf(errors.CodeImageDownloadTimeout,
				"download timed out after %s: %s", f.cfg.DownloadTimeout(), rawURL)
		}
		return errors.AssetFetchf(errors.CodeImageDownloadFailed, "failed to download %s", rawURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.AssetFetchf(errors.CodeImageDownloadFailed,
			"failed to download %s: HTTP %d", rawURL, resp.StatusCode)
	}
	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, wantPrefix) {
		return errors.AssetFetchf(errors.CodeInvalidImage,
			"URL does not point to %s content (got %s): %s", strings.TrimSuffix(wantPrefix, "/"), contentType, rawURL)
	}

	out, err := os.Create(localPath)
	if err != nil {
		return errors.Wrap(err, errors.KindUnexpected, errors.CodeUnexpected, "create asset file")
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return errors.AssetFetchf(errors.CodeImageDownloadTimeout,
				"download timed out after %s: %s", f.cfg.DownloadTimeout(), rawURL)
		}
		return errors.AssetFetchf(errors.CodeImageDownloadFailed, "failed to download %s", rawURL)
	}
	return nil
}
