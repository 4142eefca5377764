package httpx

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/threedfly/order-orchestrator/internal/orchestrator/domain"
)

type processOrderRequest struct {
	CustomerID    int64  `json:"customerId"`
	CustomerEmail string `json:"customerEmail"`

	ProductID  string `json:"productId"`
	Quantity   int    `json:"quantity"`
	STLFileURL string `json:"stlFileUrl,omitempty"`

	ShippingAddress shippingAddressDTO `json:"shippingAddress"`
	PaymentInfo     paymentInfoDTO     `json:"paymentInfo"`

	PreferredSellerID   int64                   `json:"preferredSellerId,omitempty"`
	DeliveryPreferences *deliveryPreferencesDTO `json:"deliveryPreferences,omitempty"`
	OrderNotes          string                  `json:"orderNotes,omitempty"`
}

type shippingAddressDTO struct {
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Street    string   `json:"street"`
	Street2   string   `json:"street2,omitempty"`
	City      string   `json:"city"`
	State     string   `json:"state,omitempty"`
	ZipCode   string   `json:"zipCode,omitempty"`
	Country   string   `json:"country"`
	Phone     string   `json:"phone,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

type paymentInfoDTO struct {
	Method      string          `json:"method"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Currency    string          `json:"currency"`
	Description string          `json:"description,omitempty"`

	PaypalEmail       string         `json:"paypalEmail,omitempty"`
	CardToken         string         `json:"cardToken,omitempty"`
	CardLast4         string         `json:"cardLast4,omitempty"`
	CardBrand         string         `json:"cardBrand,omitempty"`
	BankAccountNumber string         `json:"bankAccountNumber,omitempty"`
	RoutingNumber     string         `json:"routingNumber,omitempty"`
	AdditionalData    map[string]any `json:"additionalData,omitempty"`

	SuccessURL string `json:"successUrl,omitempty"`
	CancelURL  string `json:"cancelUrl,omitempty"`
}

type deliveryPreferencesDTO struct {
	Speed                 string     `json:"speed,omitempty"`
	PreferredDeliveryDate *time.Time `json:"preferredDeliveryDate,omitempty"`
	Instructions          string     `json:"deliveryInstructions,omitempty"`
	SignatureRequired     bool       `json:"signatureRequired,omitempty"`
	LeaveAtDoor           bool       `json:"leaveAtDoor,omitempty"`
}

func (r *processOrderRequest) toDomain() *domain.OrderRequest {
	req := &domain.OrderRequest{
		CustomerID:    r.CustomerID,
		CustomerEmail: r.CustomerEmail,
		ProductID:     r.ProductID,
		Quantity:      r.Quantity,
		STLFileURL:    r.STLFileURL,
		ShippingAddress: domain.ShippingAddress{
			FirstName: r.ShippingAddress.FirstName,
			LastName:  r.ShippingAddress.LastName,
			Street:    r.ShippingAddress.Street,
			Street2:   r.ShippingAddress.Street2,
			City:      r.ShippingAddress.City,
			State:     r.ShippingAddress.State,
			ZipCode:   r.ShippingAddress.ZipCode,
			Country:   r.ShippingAddress.Country,
			Phone:     r.ShippingAddress.Phone,
			Latitude:  r.ShippingAddress.Latitude,
			Longitude: r.ShippingAddress.Longitude,
		},
		Payment: domain.PaymentInformation{
			Method:      domain.PaymentMethod(r.PaymentInfo.Method),
			TotalAmount: r.PaymentInfo.TotalAmount,
			Currency:    r.PaymentInfo.Currency,
			Description: r.PaymentInfo.Description,
			SuccessURL:  r.PaymentInfo.SuccessURL,
			CancelURL:   r.PaymentInfo.CancelURL,
		},
		PreferredSellerID: r.PreferredSellerID,
		OrderNotes:        r.OrderNotes,
	}

	if r.PaymentInfo.PaypalEmail != "" || r.PaymentInfo.CardToken != "" ||
		r.PaymentInfo.BankAccountNumber != "" || len(r.PaymentInfo.AdditionalData) > 0 {
		req.Payment.MethodData = &domain.PaymentMethodData{
			PaypalEmail:       r.PaymentInfo.PaypalEmail,
			CardToken:         r.PaymentInfo.CardToken,
			CardLast4:         r.PaymentInfo.CardLast4,
			CardBrand:         r.PaymentInfo.CardBrand,
			BankAccountNumber: r.PaymentInfo.BankAccountNumber,
			RoutingNumber:     r.PaymentInfo.RoutingNumber,
			AdditionalData:    r.PaymentInfo.AdditionalData,
		}
	}

	if r.DeliveryPreferences != nil {
		req.Delivery = &domain.DeliveryPreferences{
			Speed:                 domain.DeliverySpeed(r.DeliveryPreferences.Speed),
			PreferredDeliveryDate: r.DeliveryPreferences.PreferredDeliveryDate,
			Instructions:          r.DeliveryPreferences.Instructions,
			SignatureRequired:     r.DeliveryPreferences.SignatureRequired,
			LeaveAtDoor:           r.DeliveryPreferences.LeaveAtDoor,
		}
	}

	return req
}

type orderResultResponse struct {
	OrderID     int64  `json:"orderId,omitempty"`
	OrderNumber string `json:"orderNumber,omitempty"`
	Status      string `json:"status"`

	OrderDate             time.Time  `json:"orderDate"`
	EstimatedDeliveryDate *time.Time `json:"estimatedDeliveryDate,omitempty"`

	Customer *customerInfoDTO `json:"customerInfo,omitempty"`
	Product  *productInfoDTO  `json:"productInfo,omitempty"`
	Shipping *shippingInfoDTO `json:"shippingInfo,omitempty"`
	Payment  *paymentInfoOut  `json:"paymentInfo,omitempty"`
	Pricing  *pricingDTO      `json:"pricing,omitempty"`

	Steps []stepTraceDTO `json:"processingSteps"`

	FailedStep    string `json:"failedStep,omitempty"`
	FailureReason string `json:"failureReason,omitempty"`

	OrderNotes  string    `json:"orderNotes,omitempty"`
	LastUpdated time.Time `json:"lastUpdated"`
}

type customerInfoDTO struct {
	CustomerID int64  `json:"customerId"`
	Email      string `json:"email,omitempty"`
	FirstName  string `json:"firstName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

type productInfoDTO struct {
	ProductID  string          `json:"productId"`
	Quantity   int             `json:"quantity"`
	STLFileURL string          `json:"stlFileUrl,omitempty"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
}

type shippingInfoDTO struct {
	Address               shippingAddressDTO `json:"address"`
	DeliverySpeed         string             `json:"deliverySpeed"`
	EstimatedDeliveryDate time.Time          `json:"estimatedDeliveryDate"`
	Supplier              *supplierDTO       `json:"supplier,omitempty"`
}

type supplierDTO struct {
	ID                   int64   `json:"id"`
	Name                 string  `json:"name"`
	City                 string  `json:"city,omitempty"`
	State                string  `json:"state,omitempty"`
	Country              string  `json:"country,omitempty"`
	DistanceFromCustomer float64 `json:"distanceFromCustomer"`
	QualityRating        int     `json:"qualityRating,omitempty"`
}

type paymentInfoOut struct {
	PaymentID         int64           `json:"paymentId"`
	Status            string          `json:"status"`
	Method            string          `json:"method"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	Currency          string          `json:"currency,omitempty"`
	TransactionID     string          `json:"transactionId,omitempty"`
	ProviderPaymentID string          `json:"providerPaymentId,omitempty"`
	PaymentDate       *time.Time      `json:"paymentDate,omitempty"`
	FailureReason     string          `json:"failureReason,omitempty"`
}

type productResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency,omitempty"`
	Available   bool            `json:"available"`
	ImageURL    string          `json:"imageUrl,omitempty"`
}

type pricingDTO struct {
	ProductCost    decimal.Decimal `json:"productCost"`
	PlatformFee    decimal.Decimal `json:"platformFee"`
	SupplierAmount decimal.Decimal `json:"supplierAmount"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	Currency       string          `json:"currency"`
}

type stepTraceDTO struct {
	StepName     string    `json:"stepName"`
	Status       string    `json:"status"`
	StartTime    time.Time `json:"startTime"`
	EndTime      time.Time `json:"endTime,omitempty"`
	DurationMs   int64     `json:"durationMs"`
	Description  string    `json:"description,omitempty"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
}

type orderStatusResponse struct {
	ID         int64     `json:"id"`
	ProductID  string    `json:"productId"`
	SupplierID int64     `json:"supplierId"`
	CustomerID int64     `json:"customerId"`
	Quantity   int       `json:"quantity"`
	OrderDate  time.Time `json:"orderDate"`
	Status     string    `json:"status"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func mapResult(res *domain.OrderResult) orderResultResponse {
	out := orderResultResponse{
		OrderID:       res.OrderID,
		OrderNumber:   res.OrderNumber,
		Status:        string(res.Status),
		OrderDate:     res.OrderDate,
		Steps:         mapSteps(res.Steps),
		FailedStep:    res.FailedStep,
		FailureReason: res.FailureReason,
		OrderNotes:    res.OrderNotes,
		LastUpdated:   res.LastUpdated,
	}
	if !res.EstimatedDeliveryDate.IsZero() {
		d := res.EstimatedDeliveryDate
		out.EstimatedDeliveryDate = &d
	}
	if c := res.Customer; c != nil {
		out.Customer = &customerInfoDTO{
			CustomerID: c.CustomerID,
			Email:      c.Email,
			FirstName:  c.FirstName,
			LastName:   c.LastName,
			Phone:      c.Phone,
		}
	}
	if p := res.Product; p != nil {
		out.Product = &productInfoDTO{
			ProductID:  p.ProductID,
			Quantity:   p.Quantity,
			STLFileURL: p.STLFileURL,
			UnitPrice:  p.UnitPrice,
		}
	}
	if s := res.Shipping; s != nil {
		out.Shipping = &shippingInfoDTO{
			Address: shippingAddressDTO{
				FirstName: s.Address.FirstName,
				LastName:  s.Address.LastName,
				Street:    s.Address.Street,
				Street2:   s.Address.Street2,
				City:      s.Address.City,
				State:     s.Address.State,
				ZipCode:   s.Address.ZipCode,
				Country:   s.Address.Country,
				Phone:     s.Address.Phone,
				Latitude:  s.Address.Latitude,
				Longitude: s.Address.Longitude,
			},
			DeliverySpeed:         string(s.DeliverySpeed),
			EstimatedDeliveryDate: s.EstimatedDeliveryDate,
		}
		if sup := s.Supplier; sup != nil {
			out.Shipping.Supplier = &supplierDTO{
				ID:                   sup.ID,
				Name:                 sup.Name,
				City:                 sup.City,
				State:                sup.State,
				Country:              sup.Country,
				DistanceFromCustomer: sup.DistanceFromCustomer,
				QualityRating:        sup.QualityRating,
			}
		}
	}
	if p := res.Payment; p != nil {
		out.Payment = &paymentInfoOut{
			PaymentID:         p.PaymentID,
			Status:            string(p.Status),
			Method:            string(p.Method),
			TotalAmount:       p.TotalAmount,
			Currency:          p.Currency,
			TransactionID:     p.TransactionID,
			ProviderPaymentID: p.ProviderPaymentID,
			PaymentDate:       p.PaymentDate,
			FailureReason:     p.FailureReason,
		}
	}
	if pr := res.Pricing; pr != nil {
		out.Pricing = &pricingDTO{
			ProductCost:    pr.ProductCost,
			PlatformFee:    pr.PlatformFee,
			SupplierAmount: pr.SupplierAmount,
			TotalAmount:    pr.TotalAmount,
			Currency:       pr.Currency,
		}
	}
	return out
}

func mapSteps(steps []domain.StepTrace) []stepTraceDTO {
	out := make([]stepTraceDTO, len(steps))
	for i, s := range steps {
		out[i] = stepTraceDTO{
			StepName:     s.StepName,
			Status:       string(s.Status),
			StartTime:    s.StartTime,
			EndTime:      s.EndTime,
			DurationMs:   s.Duration.Milliseconds(),
			Description:  s.Description,
			ErrorMessage: s.ErrorMessage,
		}
	}
	return out
}

func mapOrder(o domain.OrderRecord) orderStatusResponse {
	return orderStatusResponse{
		ID:         o.ID,
		ProductID:  o.ProductID,
		SupplierID: o.SupplierID,
		CustomerID: o.CustomerID,
		Quantity:   o.Quantity,
		OrderDate:  o.OrderDate,
		Status:     string(o.Status),
	}
}
