package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the lifecycle state of a payment. Status only moves
// forward: PENDING → PROCESSING → COMPLETED | FAILED | CANCELLED.
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "PENDING"
	PaymentProcessing PaymentStatus = "PROCESSING"
	PaymentCompleted  PaymentStatus = "COMPLETED"
	PaymentFailed     PaymentStatus = "FAILED"
	PaymentCancelled  PaymentStatus = "CANCELLED"
)

// PaymentDraft is the create-payment payload sent to the payment service.
type PaymentDraft struct {
	OrderID     int64
	Method      PaymentMethod
	TotalAmount decimal.Decimal
	Currency    string
	Description string
	SuccessURL  string
	CancelURL   string

	// ProviderData carries method-specific fields (paypal email, card
	// token, ...) in the shape the payment provider expects.
	ProviderData map[string]any
}

// PaymentExecution identifies the provider-side authorization to capture.
type PaymentExecution struct {
	ProviderPaymentID string
	ProviderPayerID   string
}

// PaymentRecord is a point-in-time snapshot of a payment as the payment
// service reports it. Execute returns a new snapshot of the same logical
// payment with an advanced status.
type PaymentRecord struct {
	ID       int64
	OrderID  int64
	SellerID int64

	TotalAmount  decimal.Decimal
	PlatformFee  decimal.Decimal
	SellerAmount decimal.Decimal

	Status PaymentStatus
	Method PaymentMethod

	ProviderPaymentID     string
	ProviderPayerID       string
	PlatformTransactionID string
	SellerTransactionID   string

	CreatedAt    time.Time
	CompletedAt  *time.Time
	ErrorMessage string
}
