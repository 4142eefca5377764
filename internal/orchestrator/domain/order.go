package domain

import "time"

// OrderStatus is the lifecycle state the order service reports for an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderAccepted   OrderStatus = "ACCEPTED"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderSent       OrderStatus = "SENT"
	OrderCancelled  OrderStatus = "CANCELLED"
)

// OrderDraft is the create-order payload sent to the order service, built
// from the inbound request plus the supplier located in the previous step.
type OrderDraft struct {
	ProductID  string
	SupplierID int64
	CustomerID int64
	SellerID   int64
	Quantity   int
	STLFileURL string

	ShippingAddress ShippingAddress
}

// OrderRecord is the order as the order service persisted it.
type OrderRecord struct {
	ID         int64
	ProductID  string
	SupplierID int64
	CustomerID int64
	SellerID   int64
	Quantity   int
	STLFileURL string
	OrderDate  time.Time
	Status     OrderStatus
}
