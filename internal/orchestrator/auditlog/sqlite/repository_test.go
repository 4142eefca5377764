package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threedfly/order-orchestrator/internal/orchestrator/auditlog"
	"github.com/threedfly/order-orchestrator/internal/orchestrator/domain"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestInsertFinalizeRoundtrip(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	started := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	entry := &auditlog.Entry{
		ID:          uuid.NewString(),
		CustomerID:  42,
		ProductID:   "prod-7",
		TotalAmount: decimal.RequireFromString("199.99"),
		Status:      auditlog.StatusProcessing,
		StartedAt:   started,
		TraceID:     "4bf92f3577b34da6a3ce929d0e0e4736",
		SpanID:      "00f067aa0ba902b7",
	}
	require.NoError(t, repo.Insert(ctx, entry))

	got, err := repo.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, auditlog.StatusProcessing, got.Status)
	assert.Equal(t, int64(42), got.CustomerID)
	assert.True(t, got.TotalAmount.Equal(entry.TotalAmount))
	assert.True(t, got.StartedAt.Equal(started))
	assert.Nil(t, got.CompletedAt)
	assert.Equal(t, entry.TraceID, got.TraceID)

	completed := started.Add(5 * time.Second)
	require.NoError(t, repo.Finalize(ctx, entry.ID, auditlog.StatusFailed, completed, "payment declined"))

	got, err = repo.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, auditlog.StatusFailed, got.Status)
	assert.Equal(t, "payment declined", got.ErrorMessage)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, got.CompletedAt.Equal(completed))
}

func TestRecorderFinalizesUnderCancelledContext(t *testing.T) {
	repo := openTestRepo(t)
	rec := auditlog.NewRecorder(repo)

	ctx, cancel := context.WithCancel(context.Background())
	h := rec.Open(ctx, &domain.OrderRequest{
		CustomerID: 42,
		ProductID:  "prod-7",
		Payment:    domain.PaymentInformation{TotalAmount: decimal.RequireFromString("199.99")},
	})
	require.NotNil(t, h)

	// A client disconnect cancels the request context mid-saga. The close
	// must still land, or the entry stays PROCESSING forever.
	cancel()
	rec.Close(ctx, h, auditlog.StatusFailed, context.Canceled)

	got, err := repo.GetByID(context.Background(), h.ID())
	require.NoError(t, err)
	assert.Equal(t, auditlog.StatusFailed, got.Status)
	require.NotNil(t, got.CompletedAt)
}

func TestFinalizeUnknownID(t *testing.T) {
	repo := openTestRepo(t)

	err := repo.Finalize(context.Background(), uuid.NewString(), auditlog.StatusCompleted, time.Now(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestGetUnknownID(t *testing.T) {
	repo := openTestRepo(t)

	_, err := repo.GetByID(context.Background(), uuid.NewString())
	require.Error(t, err)
}
