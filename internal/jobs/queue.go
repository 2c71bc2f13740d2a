package jobs

import (
	"context"

	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/models"
)

// Queue is the admission gate plus worker pool scheduler. A submitted job
// starts immediately when a slot is free, otherwise waits in FIFO order.
type Queue interface {
	// Submit admits a job in Queued state, immediately visible to status
	// polls. Fails with a queue_full error at capacity.
	Submit(ctx context.Context, request *models.RenderRequest) (*models.Job, error)
	Start()
	Shutdown(wait bool)
}
