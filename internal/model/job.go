package model

import "time"

// JobStatus is the terminal-or-not state of a discovery job.
type JobStatus string

const (
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// JobCounters tallies how candidates resolved. At Complete,
// Succeeded + Failed + Skipped must equal UrlsFound.
type JobCounters struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// Job is the process-local record of one discovery run. Jobs are never
// persisted — they live only as long as the process. Only a job's event
// bus is reaped a grace period past its terminal event; the job record
// itself stays in the orchestrator's registry until the process exits.
type Job struct {
	JobID      string
	Query      string
	Center     Point
	Radius     int
	Variants   []string
	Status     JobStatus
	UrlsFound  int
	Counters   JobCounters
	CreatedAt  time.Time
	FinishedAt *time.Time
}

// Snapshot is a read-only copy of a Job safe to hand to callers without
// risking a data race on the live job.
type Snapshot struct {
	JobID      string      `json:"job_id"`
	Query      string      `json:"query"`
	Status     JobStatus   `json:"status"`
	UrlsFound  int         `json:"urls_found"`
	Counters   JobCounters `json:"counters"`
	CreatedAt  time.Time   `json:"created_at"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
}
