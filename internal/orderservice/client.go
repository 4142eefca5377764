// Package orderservice is the client for the external supplier/order
// service. It exposes coarse domain operations, each wrapped by its own
// resilience executor so "find closest supplier" and "create order" trip
// and recover independently.
//
// Fallback policy: reads degrade (last known good supplier from the cache,
// empty supplier list, not-found for single-entity lookups); writes never
// synthesize success: their fallback re-raises an unavailable error so the
// saga aborts instead of reporting a phantom order.
package orderservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/threedfly/order-orchestrator/internal/orchestrator/domain"
	"github.com/threedfly/order-orchestrator/internal/pkg/apperr"
	"github.com/threedfly/order-orchestrator/internal/pkg/cache"
	"github.com/threedfly/order-orchestrator/internal/pkg/resilience"
	"github.com/threedfly/order-orchestrator/internal/pkg/restclient"
)

// Operation keys, also the circuit-breaker registry keys.
const (
	OpFindClosestSupplier  = "order-service.find-closest-supplier"
	OpCreateOrder          = "order-service.create-order"
	OpGetOrder             = "order-service.get-order"
	OpUpdateOrderStatus    = "order-service.update-order-status"
	OpSuppliersForProduct  = "order-service.suppliers-for-product"
	supplierCacheKeyPrefix = "supplier:last-good"
)

// Client talks to the order service.
type Client struct {
	rest *restclient.Client

	find    *resilience.Executor
	create  *resilience.Executor
	get     *resilience.Executor
	update  *resilience.Executor
	listSup *resilience.Executor

	// suppliers caches the last supplier successfully returned per
	// product; nil disables the degraded-read fallback.
	suppliers   cache.Cache
	supplierTTL time.Duration
}

// New builds the client. reg provides the per-operation executors;
// suppliers may be nil.
func New(baseURL string, reg *resilience.Registry, suppliers cache.Cache, supplierTTL time.Duration) *Client {
	return &Client{
		rest:        restclient.New(baseURL),
		find:        reg.For(OpFindClosestSupplier),
		create:      reg.For(OpCreateOrder),
		get:         reg.For(OpGetOrder),
		update:      reg.For(OpUpdateOrderStatus),
		listSup:     reg.For(OpSuppliersForProduct),
		suppliers:   suppliers,
		supplierTTL: supplierTTL,
	}
}

// FindClosestSupplier ranks suppliers for the product by distance from the
// given coordinates and returns the closest active one.
func (c *Client) FindClosestSupplier(ctx context.Context, productID string, lat, lon float64) (domain.SupplierCandidate, error) {
	op := func(ctx context.Context) (domain.SupplierCandidate, error) {
		query := url.Values{}
		query.Set("productId", productID)
		query.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
		query.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))

		var dto supplierDTO
		if err := c.rest.Do(ctx, OpFindClosestSupplier, http.MethodGet, "/suppliers/closest", query, nil, &dto); err != nil {
			return domain.SupplierCandidate{}, err
		}
		sup := dto.toDomain()
		c.rememberSupplier(ctx, productID, sup)
		return sup, nil
	}

	return resilience.Do(ctx, c.find, op, func(ctx context.Context, cause error) (domain.SupplierCandidate, error) {
		// Only dependency failures degrade to the cached supplier. A
		// business answer (no supplier for the product, request rejected)
		// surfaces unchanged; serving stale cache there would feed a
		// write with a supplier the dependency just said is gone.
		if apperr.Transient(cause) || resilience.IsCircuitOpen(cause) {
			if sup, ok := c.lastKnownSupplier(ctx, productID); ok {
				slog.WarnContext(ctx, "degraded read: using last known supplier",
					"product_id", productID, "supplier_id", sup.ID, "cause", cause.Error())
				return sup, nil
			}
		}
		return domain.SupplierCandidate{}, normalize(OpFindClosestSupplier, cause)
	})
}

// CreateOrder registers the order with the located supplier.
func (c *Client) CreateOrder(ctx context.Context, draft domain.OrderDraft) (domain.OrderRecord, error) {
	op := func(ctx context.Context) (domain.OrderRecord, error) {
		var dto orderDTO
		if err := c.rest.Do(ctx, OpCreateOrder, http.MethodPost, "/orders", nil, newCreateOrderDTO(draft), &dto); err != nil {
			return domain.OrderRecord{}, err
		}
		return dto.toDomain(), nil
	}

	return resilience.Do(ctx, c.create, op, func(ctx context.Context, cause error) (domain.OrderRecord, error) {
		return domain.OrderRecord{}, normalize(OpCreateOrder, cause)
	})
}

// GetOrder fetches one order by id. The fallback degrades to the typed
// error rather than a placeholder record.
func (c *Client) GetOrder(ctx context.Context, orderID int64) (domain.OrderRecord, error) {
	op := func(ctx context.Context) (domain.OrderRecord, error) {
		var dto orderDTO
		path := "/orders/" + strconv.FormatInt(orderID, 10)
		if err := c.rest.Do(ctx, OpGetOrder, http.MethodGet, path, nil, nil, &dto); err != nil {
			return domain.OrderRecord{}, err
		}
		return dto.toDomain(), nil
	}

	return resilience.Do(ctx, c.get, op, func(ctx context.Context, cause error) (domain.OrderRecord, error) {
		return domain.OrderRecord{}, normalize(OpGetOrder, cause)
	})
}

// UpdateOrderStatus transitions an order to the given status.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (domain.OrderRecord, error) {
	op := func(ctx context.Context) (domain.OrderRecord, error) {
		var dto orderDTO
		path := "/orders/" + strconv.FormatInt(orderID, 10) + "/status"
		body := map[string]string{"status": string(status)}
		if err := c.rest.Do(ctx, OpUpdateOrderStatus, http.MethodPut, path, nil, body, &dto); err != nil {
			return domain.OrderRecord{}, err
		}
		return dto.toDomain(), nil
	}

	return resilience.Do(ctx, c.update, op, func(ctx context.Context, cause error) (domain.OrderRecord, error) {
		return domain.OrderRecord{}, normalize(OpUpdateOrderStatus, cause)
	})
}

// SuppliersForProduct lists every supplier able to produce the product.
// Degrades to an empty list when the dependency is down.
func (c *Client) SuppliersForProduct(ctx context.Context, productID string) ([]domain.SupplierCandidate, error) {
	op := func(ctx context.Context) ([]domain.SupplierCandidate, error) {
		var dtos []supplierDTO
		path := "/suppliers/product/" + url.PathEscape(productID)
		if err := c.rest.Do(ctx, OpSuppliersForProduct, http.MethodGet, path, nil, nil, &dtos); err != nil {
			return nil, err
		}
		out := make([]domain.SupplierCandidate, len(dtos))
		for i, d := range dtos {
			out[i] = d.toDomain()
		}
		return out, nil
	}

	return resilience.Do(ctx, c.listSup, op, func(ctx context.Context, cause error) ([]domain.SupplierCandidate, error) {
		slog.WarnContext(ctx, "degraded read: empty supplier list", "product_id", productID, "cause", cause.Error())
		return []domain.SupplierCandidate{}, nil
	})
}

func (c *Client) rememberSupplier(ctx context.Context, productID string, sup domain.SupplierCandidate) {
	if c.suppliers == nil {
		return
	}
	raw, err := json.Marshal(sup)
	if err != nil {
		return
	}
	key := c.suppliers.Key(supplierCacheKeyPrefix, productID)
	if err := c.suppliers.Set(ctx, key, string(raw), c.supplierTTL); err != nil {
		slog.WarnContext(ctx, "supplier cache write failed", "product_id", productID, "error", err)
	}
}

func (c *Client) lastKnownSupplier(ctx context.Context, productID string) (domain.SupplierCandidate, bool) {
	if c.suppliers == nil {
		return domain.SupplierCandidate{}, false
	}
	key := c.suppliers.Key(supplierCacheKeyPrefix, productID)
	raw, err := c.suppliers.Get(ctx, key)
	if err != nil || raw == "" {
		return domain.SupplierCandidate{}, false
	}
	var sup domain.SupplierCandidate
	if err := json.Unmarshal([]byte(raw), &sup); err != nil {
		return domain.SupplierCandidate{}, false
	}
	return sup, true
}

// normalize keeps errors typed on the way out of a fallback: taxonomy
// errors pass through, breaker rejections and everything untyped become
// unavailable.
func normalize(op string, cause error) error {
	if apperr.KindOf(cause) != apperr.KindInternal && !resilience.IsCircuitOpen(cause) {
		return cause
	}
	return apperr.Unavailable(op, "order service temporarily unavailable", cause)
}
