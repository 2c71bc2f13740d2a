package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/config"
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

func testNotifier(retries int) *WebhookNotifier {
	cfg := &config.Config{}
	cfg.Webhook.Retries = retries
	cfg.Webhook.TimeoutSec = 2
	n := NewWebhookNotifier(cfg, testLogger())
	n.Backoff = 5 * time.Millisecond
	return n
}

func terminalJob(status models.JobStatus, webhookURL string) *models.Job {
	now := time.Now()
	job := &models.Job{
		JobID:       "job-1",
		TemplateID:  "default",
		Status:      status,
		Progress:    100,
		CreatedAt:   now,
		CompletedAt: &now,
		Request: &models.RenderRequest{
			TemplateID: "default",
			WebhookURL: webhookURL,
		},
	}
	if status == models.JobStatusFailed {
		job.Error = &models.JobError{Message: "FFmpeg error: boom", Code: errors.CodeFFmpegError}
	}
	return job
}

func TestWebhookDeliversCompletedPayload(t *testing.T) {
	var got models.WebhookPayload
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	testNotifier(3).Notify(context.Background(), terminalJob(models.JobStatusCompleted, srv.URL))

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("server called %d times, want 1", n)
	}
	if got.Event != "job_completed" || got.Status != models.JobStatusCompleted {
		t.Fatalf("payload = %+v", got)
	}
	if got.JobID != "job-1" || got.DownloadURL != "/download/job-1" {
		t.Fatalf("payload = %+v", got)
	}
	if got.Error != nil {
		t.Fatalf("completed payload carries error: %+v", got.Error)
	}
}

func TestWebhookRetriesThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	testNotifier(3).Notify(context.Background(), terminalJob(models.JobStatusFailed, srv.URL))

	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Fatalf("server called %d times, want 3", n)
	}
}

func TestWebhookStopsAfterMaxAttempts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	testNotifier(3).Notify(context.Background(), terminalJob(models.JobStatusCompleted, srv.URL))

	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Fatalf("server called %d times, want exactly 3", n)
	}
}

func TestWebhookSkipsJobsWithoutCallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("server should not be called")
	}))
	defer srv.Close()

	testNotifier(3).Notify(context.Background(), terminalJob(models.JobStatusCompleted, ""))
}

func TestWebhookFailedPayloadCarriesError(t *testing.T) {
	var got models.WebhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	testNotifier(1).Notify(context.Background(), terminalJob(models.JobStatusFailed, srv.URL))

	if got.Event != "job_failed" {
		t.Fatalf("event = %q", got.Event)
	}
	if got.Error == nil || got.Error.Code != errors.CodeFFmpegError {
		t.Fatalf("error = %+v, want code %s", got.Error, errors.CodeFFmpegError)
	}
	if got.DownloadURL != "" {
		t.Fatalf("failed payload carries download url %q", got.DownloadURL)
	}
}
