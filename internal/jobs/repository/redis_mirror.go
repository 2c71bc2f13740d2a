package repository

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/jobs"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/models"
	"github.com/MrEmanAhmad/ffmpeg-video-api/pkg/logger"
)

const mirrorOpTimeout = 2 * time.Second

// redisMirror copies job snapshots into redis hashes so external pollers can
// read progress without going through the API. Every operation is best-effort
// and bounded by a short timeout.
type redisMirror struct {
	client    *redis.Client
	keyPrefix string
	logger    logger.Logger
}

func NewRedisMirror(client *redis.Client, keyPrefix string, log logger.Logger) jobs.StatusMirror {
	return &redisMirror{client: client, keyPrefix: keyPrefix, logger: log}
}

func (m *redisMirror) key(jobID string) string {
	return m.keyPrefix + jobID
}

func (m *redisMirror) Publish(ctx context.Context, job *models.Job) {
	ctx, cancel := context.WithTimeout(ctx, mirrorOpTimeout)
	defer cancel()

	fields := map[string]interface{}{
		"job_id":      job.JobID,
		"template_id": job.TemplateID,
		"status":      string(job.Status),
		"progress":    job.Progress,
		"created_at":  job.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if job.StartedAt != nil {
		fields["started_at"] = job.StartedAt.UTC().Format(time.RFC3339Nano)
	}
	if job.CompletedAt != nil {
		fields["completed_at"] = job.CompletedAt.UTC().Format(time.RFC3339Nano)
	}
	if job.Status == models.JobStatusCompleted {
		fields["download_url"] = job.DownloadRef()
	}
	if job.Error != nil {
		fields["error_message"] = job.Error.Message
		fields["error_code"] = job.Error.Code
	}

	if err := m.client.HSet(ctx, m.key(job.JobID), fields).Err(); err != nil {
		m.logger.Warnf("redisMirror.Publish: job %s: %v", job.JobID, err)
	}
}

func (m *redisMirror) Evict(ctx context.Context, jobID string) {
	ctx, cancel := context.WithTimeout(ctx, mirrorOpTimeout)
	defer cancel()

	if err := m.client.Del(ctx, m.key(jobID)).Err(); err != nil {
		m.logger.Warnf("redisMirror.Evict: job %s: %v", jobID, err)
	}
}
