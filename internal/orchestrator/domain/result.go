package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ResultStatus is the order-level status reported back to the caller.
type ResultStatus string

const (
	ResultPending          ResultStatus = "PENDING"
	ResultPaymentPending   ResultStatus = "PAYMENT_PENDING"
	ResultPaymentCompleted ResultStatus = "PAYMENT_COMPLETED"
	ResultPaymentFailed    ResultStatus = "PAYMENT_FAILED"
	ResultCancelled        ResultStatus = "CANCELLED"
	ResultAborted          ResultStatus = "ABORTED"
)

// OrderStatusFromPayment maps the final payment status to the order-level
// status. Unrecognized payment statuses map to PENDING.
func OrderStatusFromPayment(s PaymentStatus) ResultStatus {
	switch s {
	case PaymentPending, PaymentProcessing:
		return ResultPaymentPending
	case PaymentCompleted:
		return ResultPaymentCompleted
	case PaymentFailed:
		return ResultPaymentFailed
	case PaymentCancelled:
		return ResultCancelled
	default:
		return ResultPending
	}
}

// OrderResult is the single assembled outcome of one saga execution. On
// success the summaries are populated; on abort FailedStep/FailureReason
// explain what went wrong and Steps still carries the full partial trace.
type OrderResult struct {
	OrderID     int64
	OrderNumber string
	Status      ResultStatus

	OrderDate             time.Time
	EstimatedDeliveryDate time.Time

	Customer *CustomerSummary
	Product  *ProductSummary
	Shipping *ShippingSummary
	Payment  *PaymentSummary
	Pricing  *PricingBreakdown

	Steps []StepTrace

	FailedStep    string
	FailureReason string

	OrderNotes  string
	LastUpdated time.Time
}

// CustomerSummary identifies the customer on the result.
type CustomerSummary struct {
	CustomerID int64
	Email      string
	FirstName  string
	LastName   string
	Phone      string
}

// ProductSummary describes what was ordered.
type ProductSummary struct {
	ProductID  string
	Quantity   int
	STLFileURL string
	UnitPrice  decimal.Decimal
}

// ShippingSummary describes where and how fast the order ships.
type ShippingSummary struct {
	Address               ShippingAddress
	DeliverySpeed         DeliverySpeed
	EstimatedDeliveryDate time.Time
	Supplier              *SupplierCandidate
}

// PaymentSummary surfaces the payment outcome.
type PaymentSummary struct {
	PaymentID         int64
	Status            PaymentStatus
	Method            PaymentMethod
	TotalAmount       decimal.Decimal
	Currency          string
	TransactionID     string
	ProviderPaymentID string
	PaymentDate       *time.Time
	FailureReason     string
}

// PricingBreakdown splits the total into its platform and supplier shares.
type PricingBreakdown struct {
	ProductCost    decimal.Decimal
	PlatformFee    decimal.Decimal
	SupplierAmount decimal.Decimal
	TotalAmount    decimal.Decimal
	Currency       string
}
