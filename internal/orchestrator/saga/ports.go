package saga

import (
	"context"

	"github.com/threedfly/order-orchestrator/internal/orchestrator/auditlog"
	"github.com/threedfly/order-orchestrator/internal/orchestrator/domain"
)

// SupplierOrders is what the coordinator needs from the order service.
type SupplierOrders interface {
	FindClosestSupplier(ctx context.Context, productID string, lat, lon float64) (domain.SupplierCandidate, error)
	CreateOrder(ctx context.Context, draft domain.OrderDraft) (domain.OrderRecord, error)
}

// Payments is what the coordinator needs from the payment service.
type Payments interface {
	CreatePayment(ctx context.Context, draft domain.PaymentDraft) (domain.PaymentRecord, error)
	ExecutePayment(ctx context.Context, providerPaymentID string, details domain.PaymentExecution) (domain.PaymentRecord, error)
}

// Audit records the durable processing-log entry around each execution.
type Audit interface {
	Open(ctx context.Context, req *domain.OrderRequest) *auditlog.Handle
	Close(ctx context.Context, h *auditlog.Handle, status auditlog.Status, cause error)
}
