package jobs

import (
	"context"

	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/models"
)

// StatusMirror publishes job snapshots to an external store so pollers can
// read status without hitting this process. Best-effort: failures are logged,
// never returned.
type StatusMirror interface {
	Publish(ctx context.Context, job *models.Job)
	Evict(ctx context.Context, jobID string)
}
