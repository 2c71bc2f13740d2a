package jobs

import (
	"context"

	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/models"
)

// Notifier delivers the terminal webhook. Strictly best-effort: it runs after
// the job record is already terminal and its outcome never feeds back into
// job status.
type Notifier interface {
	Notify(ctx context.Context, job *models.Job)
}
