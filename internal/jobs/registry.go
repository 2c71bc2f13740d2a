package jobs

import (
	"time"

	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/models"
)

// Registry is the authoritative job store. Implementations must allow
// concurrent status polls without blocking writers of unrelated jobs, keep
// progress monotonic, and enforce the
// Queued -> Processing -> {Completed | Failed} lifecycle.
type Registry interface {
	// Create admits a new job, failing when the number of active
	// (queued + processing) jobs has reached maxActive. The admission check
	// and the insert are atomic.
	Create(job *models.Job, maxActive int) error
	GetByID(jobID string) (*models.Job, error)
	List() []*models.Job
	Stats(maxWorkers, maxQueueSize int) models.QueueStats

	MarkProcessing(jobID string) error
	// UpdateProgress applies max(current, proposed) clamped to [0,100] so
	// out-of-order task completions can never regress the displayed value.
	UpdateProgress(jobID string, progress int)
	MarkCompleted(jobID string, outputPath, outputRef string, fileSizeBytes int64, durationSeconds float64) error
	// MarkFailed records the job's terminal error. The first error wins;
	// calls against an already-terminal job are ignored.
	MarkFailed(jobID string, jobErr *models.JobError) error

	// EvictCompletedBefore removes terminal jobs older than age and returns
	// how many were dropped.
	EvictCompletedBefore(age time.Duration) int
}
