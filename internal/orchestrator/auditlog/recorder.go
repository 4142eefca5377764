package auditlog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/threedfly/order-orchestrator/internal/orchestrator/domain"
)

// Handle identifies one open processing-log entry. Close is idempotent per
// handle, so the exactly-once finalize contract holds even if a defensive
// caller closes twice.
type Handle struct {
	id   string
	once sync.Once
}

// ID returns the invocation id, or "" for the nil handle.
func (h *Handle) ID() string {
	if h == nil {
		return ""
	}
	return h.id
}

// Recorder opens and finalizes processing-log entries around saga
// executions. A persistence failure is logged, never propagated: losing an
// audit row must not take down order processing.
type Recorder struct {
	repo Repository
	now  func() time.Time
}

// NewRecorder builds a recorder over the given repository. repo may be nil,
// in which case recording is skipped entirely.
func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo, now: time.Now}
}

// WithClock replaces the recorder's clock. Intended for tests.
func (r *Recorder) WithClock(now func() time.Time) *Recorder {
	r.now = now
	return r
}

// Open persists a PROCESSING entry for the given request and returns its
// handle. On persistence failure it returns a nil handle, which Close
// accepts silently.
func (r *Recorder) Open(ctx context.Context, req *domain.OrderRequest) *Handle {
	if r == nil || r.repo == nil {
		return nil
	}

	sc := trace.SpanContextFromContext(ctx)
	entry := &Entry{
		ID:          uuid.NewString(),
		CustomerID:  req.CustomerID,
		ProductID:   req.ProductID,
		TotalAmount: req.Payment.TotalAmount,
		Status:      StatusProcessing,
		StartedAt:   r.now().UTC(),
	}
	if sc.IsValid() {
		entry.TraceID = sc.TraceID().String()
		entry.SpanID = sc.SpanID().String()
	}

	if err := r.repo.Insert(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "audit open failed", "customer_id", req.CustomerID, "error", err)
		return nil
	}
	return &Handle{id: entry.ID}
}

// Close finalizes the entry behind h exactly once. A nil handle (failed or
// skipped Open) is a no-op. cause may be nil for successful runs.
func (r *Recorder) Close(ctx context.Context, h *Handle, status Status, cause error) {
	if r == nil || r.repo == nil || h == nil {
		return
	}
	h.once.Do(func() {
		msg := ""
		if cause != nil {
			msg = cause.Error()
		}
		// The entry must leave PROCESSING even when the saga ended because
		// the caller's context was cancelled, so finalize runs detached
		// from that cancellation.
		ctx := context.WithoutCancel(ctx)
		if err := r.repo.Finalize(ctx, h.id, status, r.now().UTC(), msg); err != nil {
			slog.ErrorContext(ctx, "audit close failed", "entry_id", h.id, "error", err)
		}
	})
}
