package render

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/config"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/jobs"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/jobs/repository"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/models"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/pkg/errors"
	"github.com/MrEmanAhmad/ffmpeg-video-api/pkg/logger"
)

func testLogger() logger.Logger {
	cfg := &config.Config{}
	cfg.Logger.Level = "error"
	cfg.Logger.Encoding = "console"
	log := logger.NewApiLogger(cfg)
	log.InitLogger()
	return log
}

func fetchConfig(concurrency int) *config.Config {
	cfg := &config.Config{}
	cfg.Download.Concurrency = concurrency
	cfg.Download.TimeoutSec = 5
	return cfg
}

func processingJob(t *testing.T, reg jobs.Registry, id string) *models.Job {
	t.Helper()
	job := &models.Job{
		JobID:      id,
		TemplateID: "test",
		Status:     models.JobStatusQueued,
		CreatedAt:  time.Now(),
	}
	if err := reg.Create(job, 10); err != nil {
		t.Fatalf("create job: %v", err)
	}
	if err := reg.MarkProcessing(id); err != nil {
		t.Fatalf("mark processing: %v", err)
	}
	return job
}

func assetServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing.png":
			w.WriteHeader(http.StatusNotFound)
		case "/page.png":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("<html></html>"))
		case "/slow.png":
			time.Sleep(30 * time.Millisecond)
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte("slowpng"))
		default:
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte("png-bytes"))
		}
	}))
}

func TestFetchAllDownloadsAssets(t *testing.T) {
	srv := assetServer()
	defer srv.Close()

	reg := repository.NewMemoryRegistry(nil, testLogger())
	job := processingJob(t, reg, "fetch-ok")
	fetcher := NewFetcher(fetchConfig(2), reg, testLogger())

	reqs := []models.AssetRequirement{
		{SceneKey: "scene_1", SegmentType: models.SegmentSplitTop, URL: srv.URL + "/top.png"},
		{SceneKey: "scene_1", SegmentType: models.SegmentSplitBottom, URL: srv.URL + "/bottom.png"},
		{SceneKey: "scene_2", SegmentType: models.SegmentFullWinner, URL: srv.URL + "/winner.png"},
	}
	assets, err := fetcher.FetchAll(context.Background(), job, reqs, t.TempDir())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	for _, req := range reqs {
		path := assets[req.SceneKey][req.SegmentType]
		if path == "" {
			t.Fatalf("no local path for %s/%s", req.SceneKey, req.SegmentType)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		if string(data) != "png-bytes" {
			t.Fatalf("unexpected content %q", data)
		}
	}

	j, _ := reg.GetByID(job.JobID)
	if j.Progress != 20 {
		t.Fatalf("progress after fetch = %d, want 20", j.Progress)
	}
}

func TestFetchAllRejectsNonImageContent(t *testing.T) {
	srv := assetServer()
	defer srv.Close()

	reg := repository.NewMemoryRegistry(nil, testLogger())
	job := processingJob(t, reg, "fetch-html")
	fetcher := NewFetcher(fetchConfig(1), reg, testLogger())

	reqs := []models.AssetRequirement{
		{SceneKey: "scene_1", SegmentType: models.SegmentFull, URL: srv.URL + "/page.png"},
	}
	_, err := fetcher.FetchAll(context.Background(), job, reqs, t.TempDir())
	if errors.CodeOf(err) != errors.CodeInvalidImage {
		t.Fatalf("err = %v, want %s", err, errors.CodeInvalidImage)
	}
}

func TestFetchAllReportsHTTPFailure(t *testing.T) {
	srv := assetServer()
	defer srv.Close()

	reg := repository.NewMemoryRegistry(nil, testLogger())
	job := processingJob(t, reg, "fetch-404")
	fetcher := NewFetcher(fetchConfig(1), reg, testLogger())

	reqs := []models.AssetRequirement{
		{SceneKey: "scene_1", SegmentType: models.SegmentFull, URL: srv.URL + "/missing.png"},
	}
	_, err := fetcher.FetchAll(context.Background(), job, reqs, t.TempDir())
	if errors.CodeOf(err) != errors.CodeImageDownloadFailed {
		t.Fatalf("err = %v, want %s", err, errors.CodeImageDownloadFailed)
	}
	if errors.KindOf(err) != errors.KindAssetFetch {
		t.Fatalf("kind = %s, want %s", errors.KindOf(err), errors.KindAssetFetch)
	}
}

func TestFetchAllFirstErrorWins(t *testing.T) {
	srv := assetServer()
	defer srv.Close()

	reg := repository.NewMemoryRegistry(nil, testLogger())
	job := processingJob(t, reg, "fetch-mixed")
	fetcher := NewFetcher(fetchConfig(2), reg, testLogger())

	reqs := []models.AssetRequirement{
		{SceneKey: "scene_1", SegmentType: models.SegmentFull, URL: srv.URL + "/missing.png"},
		{SceneKey: "scene_2", SegmentType: models.SegmentFull, URL: srv.URL + "/slow.png"},
		{SceneKey: "scene_3", SegmentType: models.SegmentFull, URL: srv.URL + "/slow.png"},
		{SceneKey: "scene_4", SegmentType: models.SegmentFull, URL: srv.URL + "/slow.png"},
	}
	_, err := fetcher.FetchAll(context.Background(), job, reqs, t.TempDir())
	if err == nil {
		t.Fatal("expected failure")
	}
	if errors.CodeOf(err) != errors.CodeImageDownloadFailed {
		t.Fatalf("err = %v, want the 404 failure first", err)
	}
}
