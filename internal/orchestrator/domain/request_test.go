package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() *OrderRequest {
	return &OrderRequest{
		CustomerID: 42,
		ProductID:  "prod-7",
		Quantity:   4,
		ShippingAddress: ShippingAddress{
			Street:  "1 Main St",
			City:    "Brooklyn",
			Country: "US",
		},
		Payment: PaymentInformation{
			Method:      MethodPayPal,
			TotalAmount: decimal.NewFromInt(200),
			Currency:    "USD",
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*OrderRequest)
		wantErr string
	}{
		{"valid", func(r *OrderRequest) {}, ""},
		{"missing customer", func(r *OrderRequest) { r.CustomerID = 0 }, "customer id"},
		{"missing product", func(r *OrderRequest) { r.ProductID = "" }, "product id"},
		{"zero quantity", func(r *OrderRequest) { r.Quantity = 0 }, "quantity"},
		{"excessive quantity", func(r *OrderRequest) { r.Quantity = 101 }, "quantity"},
		{"missing method", func(r *OrderRequest) { r.Payment.Method = "" }, "payment method"},
		{"zero amount", func(r *OrderRequest) { r.Payment.TotalAmount = decimal.Zero }, "total amount"},
		{"negative amount", func(r *OrderRequest) { r.Payment.TotalAmount = decimal.NewFromInt(-5) }, "total amount"},
		{"bad currency", func(r *OrderRequest) { r.Payment.Currency = "DOLLARS" }, "currency"},
		{"missing street", func(r *OrderRequest) { r.ShippingAddress.Street = "" }, "shipping"},
		{"missing country", func(r *OrderRequest) { r.ShippingAddress.Country = "" }, "shipping"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			err := req.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDeliverySpeedDays(t *testing.T) {
	assert.Equal(t, 1, DeliveryOvernight.Days())
	assert.Equal(t, 3, DeliveryExpedited.Days())
	assert.Equal(t, 0, DeliverySameDay.Days())
	assert.Equal(t, 7, DeliveryStandard.Days())
	assert.Equal(t, 7, DeliverySpeed("WARP").Days())
}

func TestSpeedDefaultsToStandard(t *testing.T) {
	req := validRequest()
	assert.Equal(t, DeliveryStandard, req.Speed())

	req.Delivery = &DeliveryPreferences{}
	assert.Equal(t, DeliveryStandard, req.Speed())

	req.Delivery.Speed = DeliveryOvernight
	assert.Equal(t, DeliveryOvernight, req.Speed())
}

func TestCoordinatesDefault(t *testing.T) {
	req := validRequest()
	lat, lon := req.Coordinates()
	assert.InDelta(t, 40.7128, lat, 1e-9)
	assert.InDelta(t, -74.0060, lon, 1e-9)

	la, lo := 34.0522, -118.2437
	req.ShippingAddress.Latitude = &la
	req.ShippingAddress.Longitude = &lo
	lat, lon = req.Coordinates()
	assert.InDelta(t, la, lat, 1e-9)
	assert.InDelta(t, lo, lon, 1e-9)
}

func TestOrderStatusFromPayment(t *testing.T) {
	tests := []struct {
		payment PaymentStatus
		want    ResultStatus
	}{
		{PaymentPending, ResultPaymentPending},
		{PaymentProcessing, ResultPaymentPending},
		{PaymentCompleted, ResultPaymentCompleted},
		{PaymentFailed, ResultPaymentFailed},
		{PaymentCancelled, ResultCancelled},
		{PaymentStatus("MYSTERY"), ResultPending},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OrderStatusFromPayment(tt.payment), string(tt.payment))
	}
}
