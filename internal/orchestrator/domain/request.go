// Package domain holds the core types the orchestrator works with: the
// inbound order request, the entities produced by each workflow step, the
// step trace, and the assembled result. Everything here is transport-free;
// wire formats live at the httpx boundary and inside the service clients.
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod enumerates the payment methods the payment service accepts.
type PaymentMethod string

const (
	MethodPayPal       PaymentMethod = "PAYPAL"
	MethodStripe       PaymentMethod = "STRIPE"
	MethodCreditCard   PaymentMethod = "CREDIT_CARD"
	MethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	MethodApplePay     PaymentMethod = "APPLE_PAY"
	MethodGooglePay    PaymentMethod = "GOOGLE_PAY"
	MethodShopify      PaymentMethod = "SHOPIFY"
)

// DeliverySpeed selects the shipping tier the customer asked for.
type DeliverySpeed string

const (
	DeliveryStandard  DeliverySpeed = "STANDARD"
	DeliveryExpedited DeliverySpeed = "EXPEDITED"
	DeliveryOvernight DeliverySpeed = "OVERNIGHT"
	DeliverySameDay   DeliverySpeed = "SAME_DAY"
)

// Days returns how many days the given speed adds to the order date when
// estimating delivery. Unknown speeds fall back to the standard tier.
func (s DeliverySpeed) Days() int {
	switch s {
	case DeliveryOvernight:
		return 1
	case DeliveryExpedited:
		return 3
	case DeliverySameDay:
		return 0
	default:
		return 7
	}
}

// OrderRequest is the single inbound request that drives one saga execution.
// It is owned by the caller and read-only to the orchestrator.
type OrderRequest struct {
	CustomerID    int64
	CustomerEmail string

	ProductID string
	Quantity  int

	// Optional STL file for custom 3D printing jobs.
	STLFileURL string

	ShippingAddress ShippingAddress
	Payment         PaymentInformation

	PreferredSellerID int64
	Delivery          *DeliveryPreferences
	OrderNotes        string
}

// ShippingAddress carries the destination plus the coordinates used for
// supplier distance ranking.
type ShippingAddress struct {
	FirstName string
	LastName  string
	Street    string
	Street2   string
	City      string
	State     string
	ZipCode   string
	Country   string
	Phone     string

	// Latitude/Longitude are optional; zero values mean "not provided".
	Latitude  *float64
	Longitude *float64
}

// PaymentInformation describes how the order is to be paid.
type PaymentInformation struct {
	Method      PaymentMethod
	TotalAmount decimal.Decimal
	Currency    string
	Description string

	MethodData *PaymentMethodData

	// Redirect URLs for provider-hosted flows (PayPal et al).
	SuccessURL string
	CancelURL  string
}

// PaymentMethodData holds method-specific fields. Only the fields relevant
// to the chosen method are set; AdditionalData catches everything else.
type PaymentMethodData struct {
	PaypalEmail string

	CardToken string
	CardLast4 string
	CardBrand string

	BankAccountNumber string
	RoutingNumber     string

	AdditionalData map[string]any
}

// DeliveryPreferences are optional shipping options.
type DeliveryPreferences struct {
	Speed                 DeliverySpeed
	PreferredDeliveryDate *time.Time
	Instructions          string
	SignatureRequired     bool
	LeaveAtDoor           bool
}

// Speed returns the requested delivery speed, defaulting to STANDARD when
// no preferences were supplied.
func (r *OrderRequest) Speed() DeliverySpeed {
	if r.Delivery == nil || r.Delivery.Speed == "" {
		return DeliveryStandard
	}
	return r.Delivery.Speed
}

// Coordinates returns the shipping coordinates, falling back to a default
// metro location when the caller did not geocode the address.
func (r *OrderRequest) Coordinates() (lat, lon float64) {
	lat, lon = 40.7128, -74.0060
	if r.ShippingAddress.Latitude != nil {
		lat = *r.ShippingAddress.Latitude
	}
	if r.ShippingAddress.Longitude != nil {
		lon = *r.ShippingAddress.Longitude
	}
	return lat, lon
}

// Validate checks the request before any saga work starts. It returns a
// plain descriptive error; the caller boundary wraps it into its taxonomy.
func (r *OrderRequest) Validate() error {
	switch {
	case r.CustomerID <= 0:
		return fmt.Errorf("customer id is required")
	case r.ProductID == "":
		return fmt.Errorf("product id is required")
	case r.Quantity < 1 || r.Quantity > 100:
		return fmt.Errorf("quantity must be between 1 and 100, got %d", r.Quantity)
	case r.Payment.Method == "":
		return fmt.Errorf("payment method is required")
	case !r.Payment.TotalAmount.IsPositive():
		return fmt.Errorf("total amount must be greater than zero")
	case len(r.Payment.Currency) != 3:
		return fmt.Errorf("currency must be a 3-letter code, got %q", r.Payment.Currency)
	case r.ShippingAddress.Street == "" || r.ShippingAddress.City == "" || r.ShippingAddress.Country == "":
		return fmt.Errorf("shipping street, city and country are required")
	}
	return nil
}
