package auditlog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threedfly/order-orchestrator/internal/orchestrator/domain"
)

type memRepo struct {
	insertErr   error
	finalizeErr error

	inserted  []*Entry
	finalized []finalizeCall
}

type finalizeCall struct {
	id     string
	status Status
	errMsg string
}

func (m *memRepo) Insert(ctx context.Context, entry *Entry) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.inserted = append(m.inserted, entry)
	return nil
}

func (m *memRepo) Finalize(ctx context.Context, id string, status Status, completedAt time.Time, errMsg string) error {
	if m.finalizeErr != nil {
		return m.finalizeErr
	}
	m.finalized = append(m.finalized, finalizeCall{id: id, status: status, errMsg: errMsg})
	return nil
}

func testRequest() *domain.OrderRequest {
	return &domain.OrderRequest{
		CustomerID: 42,
		ProductID:  "prod-7",
		Payment:    domain.PaymentInformation{TotalAmount: decimal.NewFromInt(200)},
	}
}

func TestRecorderOpenThenClose(t *testing.T) {
	repo := &memRepo{}
	rec := NewRecorder(repo)

	h := rec.Open(context.Background(), testRequest())
	require.NotNil(t, h)
	require.Len(t, repo.inserted, 1)

	entry := repo.inserted[0]
	assert.Equal(t, h.ID(), entry.ID)
	assert.Equal(t, int64(42), entry.CustomerID)
	assert.Equal(t, StatusProcessing, entry.Status)

	rec.Close(context.Background(), h, StatusCompleted, nil)
	require.Len(t, repo.finalized, 1)
	assert.Equal(t, entry.ID, repo.finalized[0].id)
	assert.Equal(t, StatusCompleted, repo.finalized[0].status)
	assert.Empty(t, repo.finalized[0].errMsg)
}

func TestRecorderCloseIsIdempotent(t *testing.T) {
	repo := &memRepo{}
	rec := NewRecorder(repo)

	h := rec.Open(context.Background(), testRequest())
	rec.Close(context.Background(), h, StatusFailed, errors.New("step failed"))
	rec.Close(context.Background(), h, StatusCompleted, nil)

	require.Len(t, repo.finalized, 1, "only the first close may finalize")
	assert.Equal(t, StatusFailed, repo.finalized[0].status)
	assert.Equal(t, "step failed", repo.finalized[0].errMsg)
}

func TestRecorderToleratesInsertFailure(t *testing.T) {
	repo := &memRepo{insertErr: errors.New("disk full")}
	rec := NewRecorder(repo)

	h := rec.Open(context.Background(), testRequest())
	assert.Nil(t, h, "failed open returns a nil handle")

	// Closing a nil handle must be a no-op, not a panic.
	rec.Close(context.Background(), h, StatusCompleted, nil)
	assert.Empty(t, repo.finalized)
}

func TestRecorderWithoutRepository(t *testing.T) {
	rec := NewRecorder(nil)

	h := rec.Open(context.Background(), testRequest())
	assert.Nil(t, h)
	rec.Close(context.Background(), h, StatusCompleted, nil)
}
