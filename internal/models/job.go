package models

import (
	"fmt"
	"time"
)

type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether a status can no longer change.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// JobError is the stable (message, code) pair a failed job exposes.
type JobError struct {
	Message string `json:"message" redis:"message"`
	Code    string `json:"code" redis:"code"`
}

// Job is one request to produce a video from a template and supplied assets.
// All mutation happens inside the registry; everything handed out is a copy.
type Job struct {
	JobID           string         `json:"job_id" redis:"job_id"`
	TemplateID      string         `json:"template_id" redis:"template_id"`
	Request         *RenderRequest `json:"-"`
	Status          JobStatus      `json:"status" redis:"status"`
	Progress        int            `json:"progress" redis:"progress"`
	CreatedAt       time.Time      `json:"created_at" redis:"created_at"`
	StartedAt       *time.Time     `json:"started_at,omitempty" redis:"started_at"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty" redis:"completed_at"`
	OutputPath      string         `json:"-"`
	OutputRef       string         `json:"-"`
	FileSizeBytes   int64          `json:"-"`
	DurationSeconds float64        `json:"-"`
	Error           *JobError      `json:"error,omitempty" redis:"error"`
}

// Active reports whether the job counts against admission capacity.
func (j *Job) Active() bool {
	return j.Status == JobStatusQueued || j.Status == JobStatusProcessing
}

// Clone returns a deep copy safe to hand outside the registry lock.
func (j *Job) Clone() *Job {
	c := *j
	if j.StartedAt != nil {
		t := *j.StartedAt
		c.StartedAt = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	if j.Error != nil {
		e := *j.Error
		c.Error = &e
	}
	return &c
}

// JobResponse is the status-poll DTO.
type JobResponse struct {
	JobID           string    `json:"job_id"`
	TemplateID      string    `json:"template_id"`
	Status          JobStatus `json:"status"`
	Progress        int       `json:"progress"`
	CreatedAt       string    `json:"created_at"`
	StartedAt       string    `json:"started_at,omitempty"`
	CompletedAt     string    `json:"completed_at,omitempty"`
	DownloadURL     string    `json:"download_url,omitempty"`
	FileSizeMB      float64   `json:"file_size_mb,omitempty"`
	DurationSeconds float64   `json:"duration_seconds,omitempty"`
	Error           *JobError `json:"error,omitempty"`
}

const timestampLayout = "2006-01-02T15:04:05.000000Z"

// ToResponse builds the API view of the job.
func (j *Job) ToResponse() *JobResponse {
	resp := &JobResponse{
		JobID:      j.JobID,
		TemplateID: j.TemplateID,
		Status:     j.Status,
		Progress:   j.Progress,
		CreatedAt:  j.CreatedAt.UTC().Format(timestampLayout),
	}
	if j.StartedAt != nil {
		resp.StartedAt = j.StartedAt.UTC().Format(timestampLayout)
	}
	if j.CompletedAt != nil {
		resp.CompletedAt = j.CompletedAt.UTC().Format(timestampLayout)
	}
	if j.Status == JobStatusCompleted {
		resp.DownloadURL = j.DownloadRef()
		if j.FileSizeBytes > 0 {
			resp.FileSizeMB = roundMB(j.FileSizeBytes)
		}
		if j.DurationSeconds > 0 {
			resp.DurationSeconds = j.DurationSeconds
		}
	}
	if j.Status == JobStatusFailed {
		resp.Error = j.Error
	}
	return resp
}

// DownloadRef is the reference callers use to retrieve the artifact: the
// storage provider URL when the artifact was uploaded, the local download
// route otherwise.
func (j *Job) DownloadRef() string {
	if j.OutputRef != "" {
		return j.OutputRef
	}
	return fmt.Sprintf("/download/%s", j.JobID)
}

func roundMB(bytes int64) float64 {
	mb := float64(bytes) / (1024 * 1024)
	return float64(int(mb*100+0.5)) / 100
}

// QueueStats is the queue summary surfaced by health and jobs endpoints.
type QueueStats struct {
	TotalJobs    int `json:"total_jobs"`
	Queued       int `json:"queued"`
	Processing   int `json:"processing"`
	Completed    int `json:"completed"`
	Failed       int `json:"failed"`
	MaxWorkers   int `json:"max_workers"`
	MaxQueueSize int `json:"max_queue_size"`
}

// WebhookPayload is posted to the callback URL when a job reaches a terminal
// state.
type WebhookPayload struct {
	Event       string    `json:"event"`
	JobID       string    `json:"job_id"`
	Status      JobStatus `json:"status"`
	TemplateID  string    `json:"template_id"`
	DownloadURL string    `json:"download_url,omitempty"`
	Error       *JobError `json:"error,omitempty"`
}
