package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/config"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/jobs"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/jobs/repository"
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

func testConfig(capacity, workers int) *config.Config {
	cfg := &config.Config{}
	cfg.Queue.MaxQueueSize = capacity
	cfg.Queue.MaxConcurrentJobs = workers
	return cfg
}

// fakeProcessor records processing order and marks jobs completed the way the
// real pipeline does, unless behave reports an error or panics.
type fakeProcessor struct {
	registry jobs.Registry
	behave   func(job *models.Job) error

	mu    sync.Mutex
	order []string
}

func (p *fakeProcessor) Process(_ context.Context, job *models.Job) error {
	p.mu.Lock()
	p.order = append(p.order, job.JobID)
	p.mu.Unlock()

	if p.behave != nil {
		if err := p.behave(job); err != nil {
			return err
		}
	}
	return p.registry.MarkCompleted(job.JobID, "/tmp/"+job.JobID+".mp4", "", 1, 1)
}

func (p *fakeProcessor) processed() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []models.JobStatus
}

func (n *fakeNotifier) Notify(_ context.Context, job *models.Job) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, job.Status)
}

func (n *fakeNotifier) notified() []models.JobStatus {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]models.JobStatus, len(n.calls))
	copy(out, n.calls)
	return out
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func request() *models.RenderRequest {
	return &models.RenderRequest{
		TemplateID: "default",
		Images:     map[string]map[string]string{},
	}
}

func TestQueueProcessesInSubmissionOrder(t *testing.T) {
	reg := repository.NewMemoryRegistry(nil, testLogger())
	proc := &fakeProcessor{registry: reg}
	notif := &fakeNotifier{}
	q := NewJobQueue(testConfig(10, 1), reg, proc, notif, testLogger())
	q.Start()
	defer q.Shutdown(true)

	var submitted []string
	for i := 0; i < 3; i++ {
		job, err := q.Submit(context.Background(), request())
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		if job.Status != models.JobStatusQueued {
			t.Fatalf("submit %d: status = %s, want queued", i, job.Status)
		}
		submitted = append(submitted, job.JobID)
	}

	waitFor(t, "all jobs notified", func() bool { return len(notif.notified()) == 3 })

	got := proc.processed()
	for i, id := range submitted {
		if got[i] != id {
			t.Fatalf("processing order %v does not match submission order %v", got, submitted)
		}
		j, err := reg.GetByID(id)
		if err != nil {
			t.Fatalf("get %s: %v", id, err)
		}
		if j.Status != models.JobStatusCompleted {
			t.Fatalf("job %s status = %s, want completed", id, j.Status)
		}
	}
	for _, status := range notif.notified() {
		if status != models.JobStatusCompleted {
			t.Fatalf("notified with status %s, want completed", status)
		}
	}
}

func TestQueueRejectsWhenFull(t *testing.T) {
	reg := repository.NewMemoryRegistry(nil, testLogger())
	release := make(chan struct{})
	proc := &fakeProcessor{
		registry: reg,
		behave: func(*models.Job) error {
			<-release
			return nil
		},
	}
	q := NewJobQueue(testConfig(1, 1), reg, proc, &fakeNotifier{}, testLogger())
	q.Start()
	defer q.Shutdown(true)

	first, err := q.Submit(context.Background(), request())
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	waitFor(t, "first job running", func() bool { return len(proc.processed()) == 1 })

	// The running job still counts as active, so capacity 1 is exhausted.
	if _, err := q.Submit(context.Background(), request()); errors.KindOf(err) != errors.KindQueueFull {
		t.Fatalf("second submit err = %v, want queue_full", err)
	}

	close(release)
	waitFor(t, "first job terminal", func() bool {
		j, err := reg.GetByID(first.JobID)
		return err == nil && j.Status.Terminal()
	})

	if _, err := q.Submit(context.Background(), request()); err != nil {
		t.Fatalf("submit after slot freed: %v", err)
	}
}

func TestQueueRecordsProcessorError(t *testing.T) {
	reg := repository.NewMemoryRegistry(nil, testLogger())
	proc := &fakeProcessor{
		registry: reg,
		behave: func(*models.Job) error {
			return errors.AssetFetchf(errors.CodeImageDownloadFailed, "failed to download image for scene_1")
		},
	}
	notif := &fakeNotifier{}
	q := NewJobQueue(testConfig(5, 1), reg, proc, notif, testLogger())
	q.Start()
	defer q.Shutdown(true)

	job, err := q.Submit(context.Background(), request())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	waitFor(t, "failure notified", func() bool { return len(notif.notified()) == 1 })

	j, err := reg.GetByID(job.JobID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if j.Status != models.JobStatusFailed {
		t.Fatalf("status = %s, want failed", j.Status)
	}
	if j.Error == nil || j.Error.Code != errors.CodeImageDownloadFailed {
		t.Fatalf("error = %+v, want code %s", j.Error, errors.CodeImageDownloadFailed)
	}
	if notif.notified()[0] != models.JobStatusFailed {
		t.Fatalf("notified with status %s, want failed", notif.notified()[0])
	}
}

func TestQueueRecoversFromPanic(t *testing.T) {
	reg := repository.NewMemoryRegistry(nil, testLogger())
	panicked := false
	proc := &fakeProcessor{
		registry: reg,
		behave: func(*models.Job) error {
			if !panicked {
				panicked = true
				panic("nil filter graph")
			}
			return nil
		},
	}
	notif := &fakeNotifier{}
	q := NewJobQueue(testConfig(5, 1), reg, proc, notif, testLogger())
	q.Start()
	defer q.Shutdown(true)

	bad, err := q.Submit(context.Background(), request())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	waitFor(t, "panicked job notified", func() bool { return len(notif.notified()) == 1 })

	j, _ := reg.GetByID(bad.JobID)
	if j.Status != models.JobStatusFailed || j.Error == nil || j.Error.Code != errors.CodeUnexpected {
		t.Fatalf("panicked job = %+v, want failed with code %s", j, errors.CodeUnexpected)
	}

	// The worker survives and keeps draining the queue.
	good, err := q.Submit(context.Background(), request())
	if err != nil {
		t.Fatalf("submit after panic: %v", err)
	}
	waitFor(t, "follow-up job completed", func() bool {
		j, err := reg.GetByID(good.JobID)
		return err == nil && j.Status == models.JobStatusCompleted
	})
}
