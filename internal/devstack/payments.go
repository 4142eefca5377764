package devstack

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// declineAbove is the amount past which the stub declines execution, so the
// abort path can be exercised end to end.
var declineAbove = decimal.NewFromInt(5000)

// platformFeeRate is the cut the platform keeps on every payment.
var platformFeeRate = decimal.NewFromFloat(0.10)

type payment struct {
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
	ErrorMessage          string          `json:"errorMessage,omitempty"`
}

type product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	IsActive    bool            `json:"isActive"`
}

// PaymentService is the in-memory payment stub. It also serves the small
// product catalog the payment side owns.
type PaymentService struct {
	mu         sync.Mutex
	payments   map[int64]*payment
	byProvider map[string]int64
	products   map[string]product
	nextID     int64
}

func NewPaymentService() *PaymentService {
	return &PaymentService{
		payments:   make(map[int64]*payment),
		byProvider: make(map[string]int64),
		products: map[string]product{
			"prod-7": {ID: "prod-7", Name: "Articulated Wall Bracket", Category: "mounts",
				Price: decimal.RequireFromString("49.99"), Currency: "USD", IsActive: true},
			"prod-12": {ID: "prod-12", Name: "Drone Landing Gear Set", Category: "drones",
				Price: decimal.RequireFromString("24.50"), Currency: "USD", IsActive: true},
		},
		nextID: 5000,
	}
}

func (s *PaymentService) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Post("/payments", s.createPayment)
	r.Post("/payments/{providerPaymentId}/execute", s.executePayment)
	r.Get("/payments/order/{orderId}", s.paymentsByOrder)
	r.Get("/payments/{id}", s.getPayment)
	r.Get("/products/{id}", s.getProduct)
	return r
}

func (s *PaymentService) createPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID     int64           `json:"orderId"`
		Method      string          `json:"method"`
		TotalAmount decimal.Decimal `json:"totalAmount"`
		Currency    string          `json:"currency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.OrderID == 0 || req.Method == "" || !req.TotalAmount.IsPositive() {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "orderId, method and a positive totalAmount are required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fee := req.TotalAmount.Mul(platformFeeRate).Round(2)
	s.nextID++
	p := &payment{
		ID:                s.nextID,
		OrderID:           req.OrderID,
		TotalAmount:       req.TotalAmount,
		PlatformFee:       fee,
		SellerAmount:      req.TotalAmount.Sub(fee),
		Status:            "PENDING",
		Method:            req.Method,
		ProviderPaymentID: "PAY-" + uuid.NewString(),
		CreatedAt:         time.Now().UTC(),
	}
	s.payments[p.ID] = p
	s.byProvider[p.ProviderPaymentID] = p.ID
	slog.Info("devstack payment created", "payment_id", p.ID, "order_id", p.OrderID)
	writeJSON(w, http.StatusCreated, p)
}

func (s *PaymentService) executePayment(w http.ResponseWriter, r *http.Request) {
	providerID := chi.URLParam(r, "providerPaymentId")

	var req struct {
		ProviderPayerID string `json:"providerPayerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byProvider[providerID]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "payment not found"})
		return
	}
	p := s.payments[id]

	if p.TotalAmount.GreaterThan(declineAbove) {
		p.Status = "FAILED"
		p.ErrorMessage = "amount exceeds provider limit"
		slog.Warn("devstack payment declined", "payment_id", p.ID, "amount", p.TotalAmount)
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": p.ErrorMessage})
		return
	}

	now := time.Now().UTC()
	p.Status = "COMPLETED"
	p.ProviderPayerID = req.ProviderPayerID
	p.PlatformTransactionID = "TXN-" + uuid.NewString()
	p.SellerTransactionID = "TXN-" + uuid.NewString()
	p.CompletedAt = &now
	slog.Info("devstack payment executed", "payment_id", p.ID)
	writeJSON(w, http.StatusOK, p)
}

func (s *PaymentService) paymentsByOrder(w http.ResponseWriter, r *http.Request) {
	orderID, _ := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*payment{}
	for _, p := range s.payments {
		if p.OrderID == orderID {
			out = append(out, p)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *PaymentService) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *PaymentService) getPayment(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "payment not found"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}
