package saga

import (
	"time"

	"github.com/threedfly/order-orchestrator/internal/orchestrator/domain"
)

// Step names, in execution order. These strings appear verbatim in the
// trace handed back to the caller.
const (
	StepFindSupplier   = "Find Closest Supplier"
	StepCreateOrder    = "Create Order"
	StepCreatePayment  = "Create Payment"
	StepExecutePayment = "Execute Payment"
)

var stepOrder = []string{StepFindSupplier, StepCreateOrder, StepCreatePayment, StepExecutePayment}

// traceRecorder builds the ordered step trace for one execution. An entry
// is appended IN_PROGRESS when its step starts and sealed exactly once when
// the step ends; sealed entries are never touched again. The recorder is
// per-invocation and needs no locking.
type traceRecorder struct {
	now     func() time.Time
	entries []domain.StepTrace
}

func newTraceRecorder(now func() time.Time) *traceRecorder {
	return &traceRecorder{now: now, entries: make([]domain.StepTrace, 0, len(stepOrder))}
}

// begin appends an in-progress entry for the step and returns its index.
func (t *traceRecorder) begin(name string) int {
	t.entries = append(t.entries, domain.StepTrace{
		StepName:  name,
		Status:    domain.StepInProgress,
		StartTime: t.now(),
	})
	return len(t.entries) - 1
}

// complete seals entry i as COMPLETED with a human-readable outcome.
func (t *traceRecorder) complete(i int, description string) {
	t.seal(i, domain.StepCompleted)
	t.entries[i].Description = description
}

// fail seals entry i as FAILED with the triggering error.
func (t *traceRecorder) fail(i int, err error) {
	t.seal(i, domain.StepFailed)
	t.entries[i].ErrorMessage = err.Error()
}

func (t *traceRecorder) seal(i int, status domain.StepStatus) {
	end := t.now()
	t.entries[i].Status = status
	t.entries[i].EndTime = end
	t.entries[i].Duration = end.Sub(t.entries[i].StartTime)
}

// skipRemaining appends a SKIPPED entry for every step after the one that
// failed, so the caller sees the whole planned workflow.
func (t *traceRecorder) skipRemaining(failed string) {
	skip := false
	for _, name := range stepOrder {
		if skip {
			now := t.now()
			t.entries = append(t.entries, domain.StepTrace{
				StepName:  name,
				Status:    domain.StepSkipped,
				StartTime: now,
				EndTime:   now,
			})
		}
		if name == failed {
			skip = true
		}
	}
}

// all returns the accumulated trace.
func (t *traceRecorder) all() []domain.StepTrace {
	return t.entries
}
