package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/jobs"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/models"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/pkg/errors"
	"github.com/MrEmanAhmad/ffmpeg-video-api/pkg/logger"
)

// memoryRegistry keeps all job records in process memory behind a single
// RWMutex. Reads take the read lock so status polls never wait on each other;
// every mutation hands a deep copy to the optional status mirror after the
// lock is released.
type memoryRegistry struct {
	mu     sync.RWMutex
	byID   map[string]*models.Job
	mirror jobs.StatusMirror
	logger logger.Logger
}

// NewMemoryRegistry builds the in-process job registry. mirror may be nil.
func NewMemoryRegistry(mirror jobs.StatusMirror, log logger.Logger) jobs.Registry {
	return &memoryRegistry{
		byID:   make(map[string]*models.Job),
		mirror: mirror,
		logger: log,
	}
}

func (r *memoryRegistry) Create(job *models.Job, maxActive int) error {
	r.mu.Lock()
	active := 0
	for _, j := range r.byID {
		if j.Active() {
			active++
		}
	}
	if active >= maxActive {
		r.mu.Unlock()
		return errors.QueueFullf("queue is full (max %d jobs)", maxActive)
	}
	r.byID[job.JobID] = job.Clone()
	snapshot := job.Clone()
	r.mu.Unlock()

	r.publish(snapshot)
	return nil
}

func (r *memoryRegistry) GetByID(jobID string) (*models.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.byID[jobID]
	if !ok {
		return nil, errors.NotFoundf(errors.CodeJobNotFound, "job %s not found", jobID)
	}
	return j.Clone(), nil
}

func (r *memoryRegistry) List() []*models.Job {
	r.mu.RLock()
	out := make([]*models.Job, 0, len(r.byID))
	for _, j := range r.byID {
		out = append(out, j.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, k int) bool {
		return out[i].CreatedAt.After(out[k].CreatedAt)
	})
	return out
}

func (r *memoryRegistry) Stats(maxWorkers, maxQueueSize int) models.QueueStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := models.QueueStats{
		TotalJobs:    len(r.byID),
		MaxWorkers:   maxWorkers,
		MaxQueueSize: maxQueueSize,
	}
	for _, j := range r.byID {
		switch j.Status {
		case models.JobStatusQueued:
			stats.Queued++
		case models.JobStatusProcessing:
			stats.Processing++
		case models.JobStatusCompleted:
			stats.Completed++
		case models.JobStatusFailed:
			stats.Failed++
		}
	}
	return stats
}

func (r *memoryRegistry) MarkProcessing(jobID string) error {
	r.mu.Lock()
	j, ok := r.byID[jobID]
	if !ok {
		r.mu.Unlock()
		return errors.NotFoundf(errors.CodeJobNotFound, "job %s not found", jobID)
	}
	if j.Status != models.JobStatusQueued {
		r.mu.Unlock()
		return errors.Newf(errors.KindUnexpected, errors.CodeUnexpected,
			"job %s cannot start from status %s", jobID, j.Status)
	}
	now := time.Now()
	j.Status = models.JobStatusProcessing
	j.StartedAt = &now
	snapshot := j.Clone()
	r.mu.Unlock()

	r.publish(snapshot)
	return nil
}

func (r *memoryRegistry) UpdateProgress(jobID string, progress int) {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}

	r.mu.Lock()
	j, ok := r.byID[jobID]
	if !ok || j.Status.Terminal() || progress <= j.Progress {
		r.mu.Unlock()
		return
	}
	j.Progress = progress
	snapshot := j.Clone()
	r.mu.Unlock()

	r.publish(snapshot)
}

func (r *memoryRegistry) MarkCompleted(jobID string, outputPath, outputRef string, fileSizeBytes int64, durationSeconds float64) error {
	r.mu.Lock()
	j, ok := r.byID[jobID]
	if !ok {
		r.mu.Unlock()
		return errors.NotFoundf(errors.CodeJobNotFound, "job %s not found", jobID)
	}
	if j.Status.Terminal() {
		r.mu.Unlock()
		return nil
	}
	now := time.Now()
	j.Status = models.JobStatusCompleted
	j.Progress = 100
	j.CompletedAt = &now
	j.OutputPath = outputPath
	j.OutputRef = outputRef
	j.FileSizeBytes = fileSizeBytes
	j.DurationSeconds = durationSeconds
	snapshot := j.Clone()
	r.mu.Unlock()

	r.publish(snapshot)
	return nil
}

func (r *memoryRegistry) MarkFailed(jobID string, jobErr *models.JobError) error {
	r.mu.Lock()
	j, ok := r.byID[jobID]
	if !ok {
		r.mu.Unlock()
		return errors.NotFoundf(errors.CodeJobNotFound, "job %s not found", jobID)
	}
	if j.Status.Terminal() {
		r.mu.Unlock()
		return nil
	}
	now := time.Now()
	j.Status = models.JobStatusFailed
	j.CompletedAt = &now
	j.Error = jobErr
	snapshot := j.Clone()
	r.mu.Unlock()

	r.publish(snapshot)
	return nil
}

func (r *memoryRegistry) EvictCompletedBefore(age time.Duration) int {
	cutoff := time.Now().Add(-age)

	r.mu.Lock()
	evicted := make([]string, 0)
	for id, j := range r.byID {
		if j.Status.Terminal() && j.CompletedAt != nil && j.CompletedAt.Before(cutoff) {
			delete(r.byID, id)
			evicted = append(evicted, id)
		}
	}
	r.mu.Unlock()

	for _, id := range evicted {
		r.evict(id)
	}
	return len(evicted)
}

func (r *memoryRegistry) publish(job *models.Job) {
	if r.mirror == nil {
		return
	}
	r.mirror.Publish(context.Background(), job)
}

func (r *memoryRegistry) evict(jobID string) {
	if r.mirror == nil {
		return
	}
	r.mirror.Evict(context.Background(), jobID)
}
