package domain

import "time"

// StepStatus is the outcome of a single workflow step.
type StepStatus string

const (
	StepPending    StepStatus = "PENDING"
	StepInProgress StepStatus = "IN_PROGRESS"
	StepCompleted  StepStatus = "COMPLETED"
	StepFailed     StepStatus = "FAILED"
	StepSkipped    StepStatus = "SKIPPED"
)

// StepTrace is one entry of the write-once step log. Entries are appended
// in execution order and never mutated after the step finishes; the slice
// the coordinator returns is the audit-grade record of what happened.
type StepTrace struct {
	StepName  string
	Status    StepStatus
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Description holds the human-readable outcome for completed steps.
	Description string
	// ErrorMessage holds the triggering error for failed steps.
	ErrorMessage string
}
