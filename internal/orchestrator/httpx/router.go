package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/threedfly/order-orchestrator/internal/pkg/requestmeta"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestmeta.Middleware)
	r.Use(Tracing)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/orders", handler.ProcessOrder)
		r.Get("/orders/health", handler.Health)
		r.Get("/orders/{id}", handler.GetOrder)
		r.Put("/orders/{id}/status", handler.UpdateOrderStatus)
		r.Get("/orders/{id}/payments", handler.PaymentsForOrder)
		r.Get("/suppliers/product/{productId}", handler.SuppliersForProduct)
		r.Get("/payments/{id}", handler.GetPayment)
		r.Get("/products/{productId}", handler.GetProduct)
	})
	return r
}
