// Package paymentservice is the client for the external payment service.
// Both state-changing operations (create, execute) re-raise an unavailable
// error from their fallback: a payment must never be reported as made when
// the dependency could not confirm it.
package paymentservice

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/threedfly/order-orchestrator/internal/orchestrator/domain"
	"github.com/threedfly/order-orchestrator/internal/pkg/apperr"
	"github.com/threedfly/order-orchestrator/internal/pkg/resilience"
	"github.com/threedfly/order-orchestrator/internal/pkg/restclient"
)

// Operation keys, also the circuit-breaker registry keys.
const (
	OpCreatePayment   = "payment-service.create-payment"
	OpExecutePayment  = "payment-service.execute-payment"
	OpGetPayment      = "payment-service.get-payment"
	OpPaymentsByOrder = "payment-service.payments-by-order"
	OpGetProduct      = "payment-service.get-product"
)

// Client talks to the payment service, which also hosts the product
// catalog.
type Client struct {
	rest *restclient.Client

	create      *resilience.Executor
	execute     *resilience.Executor
	get         *resilience.Executor
	listByOrder *resilience.Executor
	product     *resilience.Executor
}

// New builds the client over the per-operation executors from reg.
func New(baseURL string, reg *resilience.Registry) *Client {
	return &Client{
		rest:        restclient.New(baseURL),
		create:      reg.For(OpCreatePayment),
		execute:     reg.For(OpExecutePayment),
		get:         reg.For(OpGetPayment),
		listByOrder: reg.For(OpPaymentsByOrder),
		product:     reg.For(OpGetProduct),
	}
}

// CreatePayment registers a pending payment for the order.
func (c *Client) CreatePayment(ctx context.Context, draft domain.PaymentDraft) (domain.PaymentRecord, error) {
	op := func(ctx context.Context) (domain.PaymentRecord, error) {
		var dto paymentDTO
		if err := c.rest.Do(ctx, OpCreatePayment, http.MethodPost, "/payments", nil, newCreatePaymentDTO(draft), &dto); err != nil {
			return domain.PaymentRecord{}, err
		}
		return dto.toDomain(), nil
	}

	return resilience.Do(ctx, c.create, op, func(ctx context.Context, cause error) (domain.PaymentRecord, error) {
		return domain.PaymentRecord{}, normalize(OpCreatePayment, cause)
	})
}

// ExecutePayment captures a previously created payment at the provider and
// returns the advanced snapshot.
func (c *Client) ExecutePayment(ctx context.Context, providerPaymentID string, details domain.PaymentExecution) (domain.PaymentRecord, error) {
	op := func(ctx context.Context) (domain.PaymentRecord, error) {
		var dto paymentDTO
		path := "/payments/" + providerPaymentID + "/execute"
		body := executePaymentDTO{
			ProviderPaymentID: details.ProviderPaymentID,
			ProviderPayerID:   details.ProviderPayerID,
		}
		if err := c.rest.Do(ctx, OpExecutePayment, http.MethodPost, path, nil, body, &dto); err != nil {
			return domain.PaymentRecord{}, err
		}
		return dto.toDomain(), nil
	}

	return resilience.Do(ctx, c.execute, op, func(ctx context.Context, cause error) (domain.PaymentRecord, error) {
		return domain.PaymentRecord{}, normalize(OpExecutePayment, cause)
	})
}

// GetPayment fetches one payment by id.
func (c *Client) GetPayment(ctx context.Context, paymentID int64) (domain.PaymentRecord, error) {
	op := func(ctx context.Context) (domain.PaymentRecord, error) {
		var dto paymentDTO
		path := "/payments/" + strconv.FormatInt(paymentID, 10)
		if err := c.rest.Do(ctx, OpGetPayment, http.MethodGet, path, nil, nil, &dto); err != nil {
			return domain.PaymentRecord{}, err
		}
		return dto.toDomain(), nil
	}

	return resilience.Do(ctx, c.get, op, func(ctx context.Context, cause error) (domain.PaymentRecord, error) {
		return domain.PaymentRecord{}, normalize(OpGetPayment, cause)
	})
}

// PaymentsByOrder lists every payment recorded for an order. Degrades to
// an empty list when the dependency is down.
func (c *Client) PaymentsByOrder(ctx context.Context, orderID int64) ([]domain.PaymentRecord, error) {
	op := func(ctx context.Context) ([]domain.PaymentRecord, error) {
		var dtos []paymentDTO
		path := "/payments/order/" + strconv.FormatInt(orderID, 10)
		if err := c.rest.Do(ctx, OpPaymentsByOrder, http.MethodGet, path, nil, nil, &dtos); err != nil {
			return nil, err
		}
		out := make([]domain.PaymentRecord, len(dtos))
		for i, d := range dtos {
			out[i] = d.toDomain()
		}
		return out, nil
	}

	return resilience.Do(ctx, c.listByOrder, op, func(ctx context.Context, cause error) ([]domain.PaymentRecord, error) {
		slog.WarnContext(ctx, "degraded read: empty payment list", "order_id", orderID, "cause", cause.Error())
		return []domain.PaymentRecord{}, nil
	})
}

// GetProduct fetches one catalog entry by id. The fallback degrades to the
// typed error, never a placeholder product.
func (c *Client) GetProduct(ctx context.Context, productID string) (domain.ProductRecord, error) {
	op := func(ctx context.Context) (domain.ProductRecord, error) {
		var dto productDTO
		path := "/products/" + url.PathEscape(productID)
		if err := c.rest.Do(ctx, OpGetProduct, http.MethodGet, path, nil, nil, &dto); err != nil {
			return domain.ProductRecord{}, err
		}
		return dto.toDomain(), nil
	}

	return resilience.Do(ctx, c.product, op, func(ctx context.Context, cause error) (domain.ProductRecord, error) {
		return domain.ProductRecord{}, normalize(OpGetProduct, cause)
	})
}

func normalize(op string, cause error) error {
	if apperr.KindOf(cause) != apperr.KindInternal && !resilience.IsCircuitOpen(cause) {
		return cause
	}
	return apperr.Unavailable(op, "payment service temporarily unavailable", cause)
}
