package saga

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/threedfly/order-orchestrator/internal/orchestrator/domain"
)

// assemble builds the success result from the artifacts of the four steps.
func (c *Coordinator) assemble(req *domain.OrderRequest, supplier domain.SupplierCandidate, order domain.OrderRecord, payment domain.PaymentRecord, steps []domain.StepTrace) *domain.OrderResult {
	now := c.now()
	delivery := now.AddDate(0, 0, req.Speed().Days())

	unitPrice := decimal.Zero
	if req.Quantity > 0 {
		unitPrice = payment.TotalAmount.Div(decimal.NewFromInt(int64(req.Quantity))).Round(2)
	}

	return &domain.OrderResult{
		OrderID:     payment.OrderID,
		OrderNumber: fmt.Sprintf("ORD-%d", payment.OrderID),
		Status:      domain.OrderStatusFromPayment(payment.Status),

		OrderDate:             order.OrderDate,
		EstimatedDeliveryDate: delivery,

		Customer: &domain.CustomerSummary{
			CustomerID: req.CustomerID,
			Email:      req.CustomerEmail,
			FirstName:  req.ShippingAddress.FirstName,
			LastName:   req.ShippingAddress.LastName,
			Phone:      req.ShippingAddress.Phone,
		},
		Product: &domain.ProductSummary{
			ProductID:  req.ProductID,
			Quantity:   req.Quantity,
			STLFileURL: req.STLFileURL,
			UnitPrice:  unitPrice,
		},
		Shipping: &domain.ShippingSummary{
			Address:               req.ShippingAddress,
			DeliverySpeed:         req.Speed(),
			EstimatedDeliveryDate: delivery,
			Supplier:              &supplier,
		},
		Payment: &domain.PaymentSummary{
			PaymentID:         payment.ID,
			Status:            payment.Status,
			Method:            payment.Method,
			TotalAmount:       payment.TotalAmount,
			Currency:          req.Payment.Currency,
			TransactionID:     payment.PlatformTransactionID,
			ProviderPaymentID: payment.ProviderPaymentID,
			PaymentDate:       payment.CompletedAt,
			FailureReason:     payment.ErrorMessage,
		},
		Pricing: &domain.PricingBreakdown{
			ProductCost:    payment.TotalAmount.Sub(payment.PlatformFee),
			PlatformFee:    payment.PlatformFee,
			SupplierAmount: payment.SellerAmount,
			TotalAmount:    payment.TotalAmount,
			Currency:       req.Payment.Currency,
		},

		Steps:       steps,
		OrderNotes:  req.OrderNotes,
		LastUpdated: now,
	}
}

// assembleFailure builds the abort result: no order was placed, but the
// caller still gets the full trace and what went wrong where.
func (c *Coordinator) assembleFailure(req *domain.OrderRequest, steps []domain.StepTrace, step string, cause error) *domain.OrderResult {
	now := c.now()
	return &domain.OrderResult{
		Status:    domain.ResultAborted,
		OrderDate: now,

		Customer: &domain.CustomerSummary{
			CustomerID: req.CustomerID,
			Email:      req.CustomerEmail,
			FirstName:  req.ShippingAddress.FirstName,
			LastName:   req.ShippingAddress.LastName,
			Phone:      req.ShippingAddress.Phone,
		},
		Product: &domain.ProductSummary{
			ProductID:  req.ProductID,
			Quantity:   req.Quantity,
			STLFileURL: req.STLFileURL,
		},

		Steps:         steps,
		FailedStep:    step,
		FailureReason: cause.Error(),

		OrderNotes:  req.OrderNotes,
		LastUpdated: now,
	}
}
