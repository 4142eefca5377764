package devstack

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threedfly/order-orchestrator/internal/orchestrator/domain"
	"github.com/threedfly/order-orchestrator/internal/orderservice"
	"github.com/threedfly/order-orchestrator/internal/paymentservice"
	"github.com/threedfly/order-orchestrator/internal/pkg/apperr"
	"github.com/threedfly/order-orchestrator/internal/pkg/resilience"
)

// These tests run the real dependency clients against the stubs, so the
// wire contract between them stays honest.

func testRegistry() *resilience.Registry {
	cfg := resilience.DefaultConfig()
	cfg.RetryBaseDelay = time.Millisecond
	return resilience.NewRegistry(cfg, nil, apperr.Transient)
}

func TestOrderStubWithRealClient(t *testing.T) {
	srv := httptest.NewServer(NewOrderService().Routes())
	defer srv.Close()

	c := orderservice.New(srv.URL, testRegistry(), nil, 0)
	ctx := context.Background()

	sup, err := c.FindClosestSupplier(ctx, "prod-7", 40.7128, -74.0060)
	require.NoError(t, err)
	assert.Equal(t, "Brooklyn Print Works", sup.Name, "nearest active supplier to lower Manhattan")
	assert.True(t, sup.Active)
	assert.Greater(t, sup.DistanceFromCustomer, 0.0)

	order, err := c.CreateOrder(ctx, domain.OrderDraft{
		ProductID:  "prod-7",
		SupplierID: sup.ID,
		CustomerID: 42,
		Quantity:   4,
		ShippingAddress: domain.ShippingAddress{
			Street: "1 Main St", City: "Brooklyn", Country: "US",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPending, order.Status)

	got, err := c.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	updated, err := c.UpdateOrderStatus(ctx, order.ID, domain.OrderAccepted)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderAccepted, updated.Status)

	suppliers, err := c.SuppliersForProduct(ctx, "prod-7")
	require.NoError(t, err)
	assert.Len(t, suppliers, 3, "inactive suppliers are filtered out")
}

func TestPaymentStubWithRealClient(t *testing.T) {
	srv := httptest.NewServer(NewPaymentService().Routes())
	defer srv.Close()

	c := paymentservice.New(srv.URL, testRegistry())
	ctx := context.Background()

	created, err := c.CreatePayment(ctx, domain.PaymentDraft{
		OrderID:     1001,
		Method:      domain.MethodPayPal,
		TotalAmount: decimal.NewFromInt(200),
		Currency:    "USD",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, created.Status)
	assert.NotEmpty(t, created.ProviderPaymentID)
	assert.True(t, created.PlatformFee.Equal(decimal.NewFromInt(20)))
	assert.True(t, created.SellerAmount.Equal(decimal.NewFromInt(180)))

	executed, err := c.ExecutePayment(ctx, created.ProviderPaymentID, domain.PaymentExecution{
		ProviderPaymentID: created.ProviderPaymentID,
		ProviderPayerID:   "42",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCompleted, executed.Status)
	assert.NotEmpty(t, executed.PlatformTransactionID)
	require.NotNil(t, executed.CompletedAt)

	got, err := c.GetPayment(ctx, executed.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCompleted, got.Status)

	byOrder, err := c.PaymentsByOrder(ctx, 1001)
	require.NoError(t, err)
	require.Len(t, byOrder, 1)
	assert.Equal(t, executed.ID, byOrder[0].ID)

	product, err := c.GetProduct(ctx, "prod-7")
	require.NoError(t, err)
	assert.Equal(t, "Articulated Wall Bracket", product.Name)
	assert.True(t, product.Active)

	_, err = c.GetProduct(ctx, "prod-gone")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestPaymentStubDeclinesLargeAmounts(t *testing.T) {
	srv := httptest.NewServer(NewPaymentService().Routes())
	defer srv.Close()

	c := paymentservice.New(srv.URL, testRegistry())
	ctx := context.Background()

	created, err := c.CreatePayment(ctx, domain.PaymentDraft{
		OrderID:     1001,
		Method:      domain.MethodPayPal,
		TotalAmount: decimal.NewFromInt(9000),
		Currency:    "USD",
	})
	require.NoError(t, err)

	_, err = c.ExecutePayment(ctx, created.ProviderPaymentID, domain.PaymentExecution{
		ProviderPaymentID: created.ProviderPaymentID,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindRejected, apperr.KindOf(err))
}
