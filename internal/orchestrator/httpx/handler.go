// Package httpx is the caller boundary: it decodes inbound JSON, validates
// it, runs the saga synchronously, and maps typed errors to HTTP statuses.
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/threedfly/order-orchestrator/internal/orchestrator/domain"
	"github.com/threedfly/order-orchestrator/internal/pkg/apperr"
)

// Orchestrator runs one order workflow end to end.
type Orchestrator interface {
	Process(ctx context.Context, req *domain.OrderRequest) (*domain.OrderResult, error)
}

// OrderReader serves the lookup endpoints that go straight to the order
// service, outside the saga.
type OrderReader interface {
	GetOrder(ctx context.Context, orderID int64) (domain.OrderRecord, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (domain.OrderRecord, error)
	SuppliersForProduct(ctx context.Context, productID string) ([]domain.SupplierCandidate, error)
}

// PaymentReader serves the lookups that go straight to the payment
// service, outside the saga. That service also owns the product catalog.
type PaymentReader interface {
	GetPayment(ctx context.Context, paymentID int64) (domain.PaymentRecord, error)
	PaymentsByOrder(ctx context.Context, orderID int64) ([]domain.PaymentRecord, error)
	GetProduct(ctx context.Context, productID string) (domain.ProductRecord, error)
}

// Handler handles incoming HTTP requests for order processing.
type Handler struct {
	saga     Orchestrator
	orders   OrderReader
	payments PaymentReader
}

func NewHandler(saga Orchestrator, orders OrderReader, payments PaymentReader) *Handler {
	return &Handler{saga: saga, orders: orders, payments: payments}
}

// ProcessOrder decodes the request, validates it, and runs the saga to
// completion before responding. An aborted saga still returns the result
// body so the caller can see which step failed and why.
func (h *Handler) ProcessOrder(w http.ResponseWriter, r *http.Request) {
	var dto processOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	req := dto.toDomain()
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.saga.Process(r.Context(), req)
	if err != nil {
		status := apperr.HTTPStatus(err)
		step, _ := apperr.AbortedStep(err)
		slog.WarnContext(r.Context(), "order processing aborted",
			"status", status, "step", step, "error", err)
		writeJSON(w, status, mapResult(result))
		return
	}

	writeJSON(w, http.StatusCreated, mapResult(result))
}

// GetOrder retrieves a single order by its ID.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(order))
}

// UpdateOrderStatus moves an order to a new lifecycle state.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if body.Status == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "status is required")
		return
	}

	order, err := h.orders.UpdateOrderStatus(r.Context(), id, domain.OrderStatus(body.Status))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(order))
}

// SuppliersForProduct lists the suppliers able to produce a product.
func (h *Handler) SuppliersForProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	if productID == "" {
		writeError(w, http.StatusBadRequest, "product_id_required", "")
		return
	}

	suppliers, err := h.orders.SuppliersForProduct(r.Context(), productID)
	if err != nil {
		writeAppError(w, err)
		return
	}

	out := make([]supplierDTO, len(suppliers))
	for i, s := range suppliers {
		out[i] = supplierDTO{
			ID:                   s.ID,
			Name:                 s.Name,
			City:                 s.City,
			State:                s.State,
			Country:              s.Country,
			DistanceFromCustomer: s.DistanceFromCustomer,
			QualityRating:        s.QualityRating,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// GetPayment retrieves a payment snapshot by its ID.
func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	payment, err := h.payments.GetPayment(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paymentInfoOut{
		PaymentID:         payment.ID,
		Status:            string(payment.Status),
		Method:            string(payment.Method),
		TotalAmount:       payment.TotalAmount,
		TransactionID:     payment.PlatformTransactionID,
		ProviderPaymentID: payment.ProviderPaymentID,
		PaymentDate:       payment.CompletedAt,
		FailureReason:     payment.ErrorMessage,
	})
}

// PaymentsForOrder lists the payments recorded against an order.
func (h *Handler) PaymentsForOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	payments, err := h.payments.PaymentsByOrder(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}

	out := make([]paymentInfoOut, len(payments))
	for i, p := range payments {
		out[i] = paymentInfoOut{
			PaymentID:         p.ID,
			Status:            string(p.Status),
			Method:            string(p.Method),
			TotalAmount:       p.TotalAmount,
			TransactionID:     p.PlatformTransactionID,
			ProviderPaymentID: p.ProviderPaymentID,
			PaymentDate:       p.CompletedAt,
			FailureReason:     p.ErrorMessage,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// GetProduct retrieves a catalog entry by its ID.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	if productID == "" {
		writeError(w, http.StatusBadRequest, "product_id_required", "")
		return
	}

	product, err := h.payments.GetProduct(r.Context(), productID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, productResponse{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Category:    product.Category,
		Price:       product.Price,
		Currency:    product.Currency,
		Available:   product.Active,
		ImageURL:    product.ImageURL,
	})
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "UP"})
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_id", "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func writeAppError(w http.ResponseWriter, err error) {
	var appErr *apperr.Error
	code := "internal_error"
	if errors.As(err, &appErr) {
		code = string(appErr.Kind)
	}
	writeError(w, apperr.HTTPStatus(err), code, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: code, Message: msg})
}
