package paymentservice

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/threedfly/order-orchestrator/internal/orchestrator/domain"
)

// Wire representations of the payment service's REST contract.

type createPaymentDTO struct {
	OrderID      int64           `json:"orderId"`
	Method       string          `json:"method"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Currency     string          `json:"currency"`
	Description  string          `json:"description,omitempty"`
	SuccessURL   string          `json:"successUrl,omitempty"`
	CancelURL    string          `json:"cancelUrl,omitempty"`
	ProviderData map[string]any  `json:"providerData,omitempty"`
}

func newCreatePaymentDTO(draft domain.PaymentDraft) createPaymentDTO {
	return createPaymentDTO{
		OrderID:      draft.OrderID,
		Method:       string(draft.Method),
		TotalAmount:  draft.TotalAmount,
		Currency:     draft.Currency,
		Description:  draft.Description,
		SuccessURL:   draft.SuccessURL,
		CancelURL:    draft.CancelURL,
		ProviderData: draft.ProviderData,
	}
}

type executePaymentDTO struct {
	ProviderPaymentID string `json:"providerPaymentId"`
	ProviderPayerID   string `json:"providerPayerId"`
}

type paymentDTO struct {
	ID                    int64           `json:"id"`
	OrderID               int64           `json:"orderId"`
	SellerID              int64           `json:"sellerId"`
	TotalAmount           decimal.Decimal `json:"totalAmount"`
	PlatformFee           decimal.Decimal `json:"platformFee"`
	SellerAmount          decimal.Decimal `json:"sellerAmount"`
	Status                string          `json:"status"`
	Method                string          `json:"method"`
	ProviderPaymentID     string          `json:"providerPaymentId"`
	ProviderPayerID       string          `json:"providerPayerId"`
	PlatformTransactionID string          `json:"platformTransactionId"`
	SellerTransactionID   string          `json:"sellerTransactionId"`
	CreatedAt             time.Time       `json:"createdAt"`
	CompletedAt           *time.Time      `json:"completedAt"`
	ErrorMessage          string          `json:"errorMessage"`
}

type productDTO struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	IsActive    bool            `json:"isActive"`
	ImageURL    string          `json:"imageUrl"`
	STLFileURL  string          `json:"stlFileUrl"`
}

func (d productDTO) toDomain() domain.ProductRecord {
	return domain.ProductRecord{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Category:    d.Category,
		Price:       d.Price,
		Currency:    d.Currency,
		Active:      d.IsActive,
		ImageURL:    d.ImageURL,
		STLFileURL:  d.STLFileURL,
	}
}

func (d paymentDTO) toDomain() domain.PaymentRecord {
	return domain.PaymentRecord{
		ID:                    d.ID,
		OrderID:               d.OrderID,
		SellerID:              d.SellerID,
		TotalAmount:           d.TotalAmount,
		PlatformFee:           d.PlatformFee,
		SellerAmount:          d.SellerAmount,
		Status:                domain.PaymentStatus(d.Status),
		Method:                domain.PaymentMethod(d.Method),
		ProviderPaymentID:     d.ProviderPaymentID,
		ProviderPayerID:       d.ProviderPayerID,
		PlatformTransactionID: d.PlatformTransactionID,
		SellerTransactionID:   d.SellerTransactionID,
		CreatedAt:             d.CreatedAt,
		CompletedAt:           d.CompletedAt,
		ErrorMessage:          d.ErrorMessage,
	}
}
