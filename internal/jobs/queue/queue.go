package queue

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/config"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/jobs"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/models"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/pkg/errors"
	"github.com/MrEmanAhmad/ffmpeg-video-api/pkg/logger"
	"github.com/MrEmanAhmad/ffmpeg-video-api/pkg/utils"
)

const cpuRecheckInterval = 5 * time.Second

// jobQueue schedules admitted jobs onto a fixed pool of workers. Admission is
// delegated to the registry so capacity checks and inserts stay atomic; the
// buffered channel then preserves FIFO start order.
type jobQueue struct {
	cfg       *config.Config
	registry  jobs.Registry
	processor jobs.Processor
	notifier  jobs.Notifier
	logger    logger.Logger

	pending chan string
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// NewJobQueue builds the scheduler. Call Start before submitting.
func NewJobQueue(cfg *config.Config, registry jobs.Registry, processor jobs.Processor, notifier jobs.Notifier, log logger.Logger) jobs.Queue {
	ctx, cancel := context.WithCancel(context.Background())
	return &jobQueue{
		cfg:       cfg,
		registry:  registry,
		processor: processor,
		notifier:  notifier,
		logger:    log,
		pending:   make(chan string, cfg.Queue.MaxQueueSize),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (q *jobQueue) Start() {
	for i := 0; i < q.cfg.Queue.MaxConcurrentJobs; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	q.logger.Infof("job queue started: %d workers, capacity %d",
		q.cfg.Queue.MaxConcurrentJobs, q.cfg.Queue.MaxQueueSize)
}

func (q *jobQueue) Submit(ctx context.Context, request *models.RenderRequest) (*models.Job, error) {
	job := &models.Job{
		JobID:      uuid.New().String(),
		TemplateID: request.TemplateID,
		Request:    request,
		Status:     models.JobStatusQueued,
		CreatedAt:  time.Now(),
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil, errors.New(errors.KindUnexpected, errors.CodeServerError, "queue is shut down")
	}
	if err := q.registry.Create(job, q.cfg.Queue.MaxQueueSize); err != nil {
		q.mu.Unlock()
		return nil, err
	}
	// The buffer matches admission capacity, so a successful Create always has
	// room here.
	q.pending <- job.JobID
	q.mu.Unlock()

	q.logger.Infof("job %s queued (template %s)", job.JobID, job.TemplateID)
	return job, nil
}

// Shutdown stops accepting submissions. With wait set it blocks until the
// workers drain the pending queue; otherwise in-flight work is cancelled.
func (q *jobQueue) Shutdown(wait bool) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.pending)
	q.mu.Unlock()

	if wait {
		q.wg.Wait()
		q.cancel()
		return
	}
	q.cancel()
	q.wg.Wait()
}

func (q *jobQueue) worker(id int) {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case jobID, ok := <-q.pending:
			if !ok {
				return
			}
			q.runJob(id, jobID)
		}
	}
}

func (q *jobQueue) runJob(workerID int, jobID string) {
	defer func() {
		if rec := recover(); rec != nil {
			q.logger.Errorf("worker %d: job %s panicked: %v", workerID, jobID, rec)
			if err := q.registry.MarkFailed(jobID, &models.JobError{
				Message: "internal error during processing",
				Code:    errors.CodeUnexpected,
			}); err != nil {
				q.logger.Errorf("worker %d: job %s: record panic failure: %v", workerID, jobID, err)
			}
		}
		q.notifyTerminal(jobID)
	}()

	q.waitForCPU()

	job, err := q.registry.GetByID(jobID)
	if err != nil {
		q.logger.Warnf("worker %d: job %s vanished before start: %v", workerID, jobID, err)
		return
	}
	if err := q.registry.MarkProcessing(jobID); err != nil {
		q.logger.Errorf("worker %d: job %s: %v", workerID, jobID, err)
		return
	}
	q.logger.Infof("worker %d: job %s started", workerID, jobID)

	if err := q.processor.Process(q.ctx, job); err != nil {
		q.logger.Errorf("worker %d: job %s failed: %v", workerID, jobID, err)
		if markErr := q.registry.MarkFailed(jobID, &models.JobError{
			Message: errors.MessageOf(err),
			Code:    errors.CodeOf(err),
		}); markErr != nil {
			q.logger.Errorf("worker %d: job %s: record failure: %v", workerID, jobID, markErr)
		}
		return
	}
	q.logger.Infof("worker %d: job %s finished", workerID, jobID)
}

// notifyTerminal fires the webhook after the job record is terminal. Runs in
// the worker goroutine so a slow callback endpoint delays only this worker.
func (q *jobQueue) notifyTerminal(jobID string) {
	job, err := q.registry.GetByID(jobID)
	if err != nil || !job.Status.Terminal() {
		return
	}
	q.notifier.Notify(q.ctx, job)
}

// waitForCPU holds a claimed slot while the host is above the configured CPU
// ceiling. Disabled when no ceiling is set.
func (q *jobQueue) waitForCPU() {
	if q.cfg.Queue.MaxCPUUsage <= 0 {
		return
	}
	for {
		ok, usage := utils.CheckCPUUsage(q.cfg.Queue.MaxCPUUsage)
		if ok {
			return
		}
		q.logger.Warnf("cpu usage %.1f%% above ceiling %.1f%%, delaying job start",
			usage, q.cfg.Queue.MaxCPUUsage)
		select {
		case <-q.ctx.Done():
			return
		case <-time.After(cpuRecheckInterval):
		}
	}
}
