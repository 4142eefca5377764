// Package auditlog records one durable processing-log entry per saga
// invocation, independent of the in-memory step trace.
//
// An entry is written with status PROCESSING before the first step runs and
// finalized exactly once (completion time, final status, error message)
// when the saga ends, whether it completed or aborted. Each row also stores
// the W3C trace and span ids active at open time, so an audit row can be
// joined directly with its distributed trace.
package auditlog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the overall lifecycle state of one saga invocation.
type Status string

const (
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// Entry is one row of the processing log.
type Entry struct {
	// ID is a generated UUID; it doubles as the saga invocation id.
	ID string

	CustomerID  int64
	ProductID   string
	TotalAmount decimal.Decimal

	Status       Status
	StartedAt    time.Time
	CompletedAt  *time.Time
	ErrorMessage string

	TraceID string
	SpanID  string
}
