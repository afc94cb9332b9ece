package models

import (
	"encoding/json"
	"time"
)

// JobStatus is the lifecycle state of a queued job.
type JobStatus string

const (
	JobQueued   JobStatus = "queued"
	JobStarted  JobStatus = "started"
	JobFinished JobStatus = "finished"
	JobFailed   JobStatus = "failed"
)

// Done reports whether the job has stopped running.
func (s JobStatus) Done() bool {
	return s == JobFinished || s == JobFailed
}

// Job is the transient handle for a queued unit of work.
//
// Result holds the JSON outcome once the job is finished. Error is set when the worker could not
// produce an outcome at all.
type Job struct {
	ID         string          `json:"job_id"`
	URL        string          `json:"url"`
	Status     JobStatus       `json:"status"`
	Result     json.RawMessage `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
	StartedAt  *time.Time      `json:"started_at,omitempty"`
	EndedAt    *time.Time      `json:"ended_at,omitempty"`
	TTL        time.Duration   `json:"-"`
}
