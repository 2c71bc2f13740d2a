package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/config"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/models"
	"github.com/MrEmanAhmad/ffmpeg-video-api/pkg/logger"
)

// WebhookNotifier posts the terminal payload to the job's callback URL.
// Delivery is best-effort: a bounded number of attempts, each with its own
// timeout, and the outcome is only logged.
type WebhookNotifier struct {
	cfg    *config.Config
	client *http.Client
	logger logger.Logger

	// Backoff between attempts; tests shorten it.
	Backoff time.Duration
}

func NewWebhookNotifier(cfg *config.Config, log logger.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		cfg:     cfg,
		client:  &http.Client{},
		logger:  log,
		Backoff: time.Second,
	}
}

func (n *WebhookNotifier) Notify(ctx context.Context, job *models.Job) {
	if job.Request == nil || job.Request.WebhookURL == "" {
		return
	}

	event := "job_failed"
	if job.Status == models.JobStatusCompleted {
		event = "job_completed"
	}
	payload := models.WebhookPayload{
		Event:      event,
		JobID:      job.JobID,
		Status:     job.Status,
		TemplateID: job.TemplateID,
	}
	if job.Status == models.JobStatusCompleted {
		payload.DownloadURL = job.DownloadRef()
	}
	if job.Status == models.JobStatusFailed {
		payload.Error = job.Error
	}

	body, err := json.Marshal(payload)
	if err != nil {
		n.logger.Errorf("webhook: job %s: marshal payload: %v", job.JobID, err)
		return
	}

	attempts := n.cfg.Webhook.Retries
	if attempts <= 0 {
		attempts = 1
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := n.post(ctx, job.Request.WebhookURL, body); err == nil {
			n.logger.Infof("webhook: job %s delivered to %s (attempt %d)",
				job.JobID, job.Request.WebhookURL, attempt)
			return
		} else {
			n.logger.Warnf("webhook: job %s attempt %d/%d: %v", job.JobID, attempt, attempts, err)
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(n.Backoff):
		}
	}
	n.logger.Errorf("webhook: job %s: giving up after %d attempts", job.JobID, attempts)
}

func (n *WebhookNotifier) post(ctx context.Context, url string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, n.cfg.WebhookTimeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &statusError{code: resp.StatusCode}
	}
	return nil
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return http.StatusText(e.code)
}
