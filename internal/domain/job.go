package domain

import "time"

// JobStatus tracks the lifecycle of a scheduled generation job.
// Transitions are one-directional: pending -> processing -> completed|failed.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// JobPriority is an operator-facing sort hint. The batch processor does not
// consult it when ordering work.
type JobPriority string

const (
	PriorityLow    JobPriority = "low"
	PriorityMedium JobPriority = "medium"
	PriorityHigh   JobPriority = "high"
)

// ScheduledJob is a persisted request to generate one article at or after
// ScheduledFor. IsActive is an independent visibility axis from Status: an
// inactive completed job is excluded from every query.
type ScheduledJob struct {
	ID           string
	Title        string
	Category     string
	CustomPrompt string
	ScheduledFor time.Time
	Priority     JobPriority
	Status       JobStatus
	CreatedBy    string
	Notes        string
	ArticleID    string
	ErrorMessage string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// JobPatch carries a partial update for a job. Nil fields are left untouched.
// Status is deliberately absent: lifecycle transitions go through the
// store's internal status path only.
type JobPatch struct {
	Title        *string
	Category     *string
	CustomPrompt *string
	ScheduledFor *time.Time
	Priority     *JobPriority
	Notes        *string
}

// JobStats aggregates queue state for operator dashboards.
type JobStats struct {
	Total        int
	ByStatus     map[JobStatus]int
	ByCategory   map[string]int
	ByPriority   map[JobPriority]int
	Overdue      int
	DueToday     int
	UpcomingWeek int
}
