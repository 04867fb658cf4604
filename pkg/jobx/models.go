package jobx

import (
	"encoding/json"
	"time"
)

// JobStatus represents the current state of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusActive    JobStatus = "active"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Job represents a unit of work to be enqueued.
type Job struct {
	Type    string          `json:"type"`
	Queue   string          `json:"queue"`
	Payload json.RawMessage `json:"payload"`

	// MaxAttempts bounds how often the job is handed to a handler. Zero means one attempt.
	MaxAttempts int `json:"max_attempts"`

	// Sensitive payloads are dropped from the stored record once the job
	// completes or finally fails.
	Sensitive bool `json:"sensitive,omitempty"`
	// TTL expires the record while it waits. Zero keeps it until processed.
	TTL time.Duration `json:"ttl,omitempty"`
}

// JobInfo is the stored form of a job.
type JobInfo struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Queue       string          `json:"queue"`
	Payload     json.RawMessage `json:"payload"`
	Status      JobStatus       `json:"status"`
	Error       string          `json:"error,omitempty"`
	MaxAttempts int             `json:"max_attempts"`
	Attempts    int             `json:"attempts"`
	Sensitive   bool            `json:"sensitive,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CanRetry reports whether another attempt is allowed.
func (j *JobInfo) CanRetry() bool {
	return j.Attempts < j.MaxAttempts
}

// Redact drops the payload of a sensitive job.
func (j *JobInfo) Redact() {
	if j.Sensitive {
		j.Payload = nil
	}
}

// Decode unmarshals the payload into v.
func (j *JobInfo) Decode(v any) error {
	if err := json.Unmarshal(j.Payload, v); err != nil {
		return ErrRegistry.NewWithCause(CodeInvalidJob, err).WithDetail("job_id", j.ID)
	}
	return nil
}
