package jobs

import (
	"context"

	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/models"
)

// Processor executes one job end-to-end: fetch assets, render scenes,
// finalize, store the artifact and mark the job completed. A returned error
// means the job failed; the scheduler records it.
type Processor interface {
	Process(ctx context.Context, job *models.Job) error
}
