// Package saga runs the order fulfilment workflow: locate the closest
// supplier, create the order, create the payment, execute the payment.
//
// Steps run strictly sequentially; each step's output feeds the next. The
// saga is forward-only: the first step failure marks the remaining steps
// SKIPPED and aborts. There is no compensation and no cross-step retry;
// per-call retry lives entirely inside the resilience layer wrapping each
// client operation.
package saga

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/threedfly/order-orchestrator/internal/orchestrator/auditlog"
	"github.com/threedfly/order-orchestrator/internal/orchestrator/domain"
	"github.com/threedfly/order-orchestrator/internal/pkg/apperr"
)

// State is the coordinator's position in the order lifecycle.
type State string

const (
	StateStarted         State = "STARTED"
	StateSupplierLocated State = "SUPPLIER_LOCATED"
	StateOrderCreated    State = "ORDER_CREATED"
	StatePaymentCreated  State = "PAYMENT_CREATED"
	StatePaymentExecuted State = "PAYMENT_EXECUTED"
	StateAborted         State = "ABORTED"
)

// Coordinator owns one workflow definition and is safe for concurrent use:
// all per-invocation state lives on the Process stack.
type Coordinator struct {
	orders   SupplierOrders
	payments Payments
	audit    Audit
	now      func() time.Time
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClock replaces the coordinator's clock. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// NewCoordinator wires the workflow. audit may be a no-op recorder but must
// not be nil.
func NewCoordinator(orders SupplierOrders, payments Payments, audit Audit, opts ...Option) *Coordinator {
	c := &Coordinator{
		orders:   orders,
		payments: payments,
		audit:    audit,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Process runs the full saga for one request. It always returns a non-nil
// result carrying the complete step trace; on abort the result explains the
// failure and the returned error is the typed saga-aborted error.
func (c *Coordinator) Process(ctx context.Context, req *domain.OrderRequest) (*domain.OrderResult, error) {
	slog.InfoContext(ctx, "starting order orchestration",
		"customer_id", req.CustomerID, "product_id", req.ProductID)

	handle := c.audit.Open(ctx, req)
	rec := newTraceRecorder(c.now)
	state := StateStarted

	// The processing log is finalized exactly once no matter how we leave
	// this function; an abort (or a panic unwinding through here) closes
	// it as FAILED.
	status := auditlog.StatusFailed
	var finalErr error
	defer func() {
		c.audit.Close(ctx, handle, status, finalErr)
	}()

	// Step 1: locate the closest supplier.
	i := rec.begin(StepFindSupplier)
	lat, lon := req.Coordinates()
	slog.InfoContext(ctx, "locating supplier", "product_id", req.ProductID, "lat", lat, "lon", lon)
	supplier, err := c.orders.FindClosestSupplier(ctx, req.ProductID, lat, lon)
	if err != nil {
		rec.fail(i, err)
		finalErr = apperr.Abort(StepFindSupplier, err)
		return c.abortResult(ctx, req, rec, StepFindSupplier, err), finalErr
	}
	rec.complete(i, fmt.Sprintf("Found supplier: %s (Distance: %.1f miles)", supplier.Name, supplier.DistanceFromCustomer))
	state = c.advance(ctx, state, StateSupplierLocated)

	// Step 2: create the order with that supplier.
	i = rec.begin(StepCreateOrder)
	order, err := c.orders.CreateOrder(ctx, orderDraft(req, supplier))
	if err != nil {
		rec.fail(i, err)
		finalErr = apperr.Abort(StepCreateOrder, err)
		return c.abortResult(ctx, req, rec, StepCreateOrder, err), finalErr
	}
	rec.complete(i, fmt.Sprintf("Order created with ID: %d", order.ID))
	state = c.advance(ctx, state, StateOrderCreated)

	// Step 3: create the payment for the order.
	i = rec.begin(StepCreatePayment)
	payment, err := c.payments.CreatePayment(ctx, paymentDraft(req, order))
	if err != nil {
		rec.fail(i, err)
		finalErr = apperr.Abort(StepCreatePayment, err)
		return c.abortResult(ctx, req, rec, StepCreatePayment, err), finalErr
	}
	rec.complete(i, fmt.Sprintf("Payment created with ID: %d", payment.ID))
	state = c.advance(ctx, state, StatePaymentCreated)

	// Step 4: execute the payment at the provider.
	i = rec.begin(StepExecutePayment)
	executed, err := c.payments.ExecutePayment(ctx, payment.ProviderPaymentID, domain.PaymentExecution{
		ProviderPaymentID: payment.ProviderPaymentID,
		// The customer id doubles as the payer id when the provider did
		// not hand one back.
		ProviderPayerID: strconv.FormatInt(req.CustomerID, 10),
	})
	if err != nil {
		rec.fail(i, err)
		finalErr = apperr.Abort(StepExecutePayment, err)
		return c.abortResult(ctx, req, rec, StepExecutePayment, err), finalErr
	}
	rec.complete(i, fmt.Sprintf("Payment executed successfully. Status: %s", executed.Status))
	state = c.advance(ctx, state, StatePaymentExecuted)

	status = auditlog.StatusCompleted
	result := c.assemble(req, supplier, order, executed, rec.all())
	slog.InfoContext(ctx, "order orchestration completed",
		"order_id", result.OrderID, "status", string(result.Status))
	return result, nil
}

func (c *Coordinator) advance(ctx context.Context, from, to State) State {
	slog.DebugContext(ctx, "saga state transition", "from", string(from), "to", string(to))
	return to
}

func (c *Coordinator) abortResult(ctx context.Context, req *domain.OrderRequest, rec *traceRecorder, step string, cause error) *domain.OrderResult {
	rec.skipRemaining(step)
	slog.ErrorContext(ctx, "order orchestration aborted", "step", step, "error", cause)
	return c.assembleFailure(req, rec.all(), step, cause)
}

// orderDraft threads the request and the located supplier into the
// create-order payload.
func orderDraft(req *domain.OrderRequest, supplier domain.SupplierCandidate) domain.OrderDraft {
	return domain.OrderDraft{
		ProductID:       req.ProductID,
		SupplierID:      supplier.ID,
		CustomerID:      req.CustomerID,
		SellerID:        req.PreferredSellerID,
		Quantity:        req.Quantity,
		STLFileURL:      req.STLFileURL,
		ShippingAddress: req.ShippingAddress,
	}
}

// paymentDraft threads the request and the created order into the
// create-payment payload, flattening method-specific data into the
// provider data map.
func paymentDraft(req *domain.OrderRequest, order domain.OrderRecord) domain.PaymentDraft {
	providerData := map[string]any{}
	if md := req.Payment.MethodData; md != nil {
		if md.PaypalEmail != "" {
			providerData["email"] = md.PaypalEmail
		}
		if md.CardToken != "" {
			providerData["card_token"] = md.CardToken
		}
		for k, v := range md.AdditionalData {
			providerData[k] = v
		}
	}
	return domain.PaymentDraft{
		OrderID:      order.ID,
		Method:       req.Payment.Method,
		TotalAmount:  req.Payment.TotalAmount,
		Currency:     req.Payment.Currency,
		Description:  req.Payment.Description,
		SuccessURL:   req.Payment.SuccessURL,
		CancelURL:    req.Payment.CancelURL,
		ProviderData: providerData,
	}
}
