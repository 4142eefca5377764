// Package requestmeta propagates the request id and idempotency key from
// the inbound HTTP request, through the context, onto every outbound call
// to a dependency service.
package requestmeta

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

const (
	HeaderRequestID      = "X-Request-Id"
	HeaderIdempotencyKey = "X-Idempotency-Key"
)

// contextKey is an unexported type so our keys cannot collide with keys
// from other packages carrying the same string value.
type contextKey string

const (
	ctxKeyRequestID      contextKey = "request_id"
	ctxKeyIdempotencyKey contextKey = "idempotency_key"
)

// Middleware lifts the chi request id and the caller-supplied idempotency
// key into the context. Mount it after chi's middleware.RequestID.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = context.WithValue(ctx, ctxKeyRequestID, middleware.GetReqID(ctx))
		ctx = context.WithValue(ctx, ctxKeyIdempotencyKey, r.Header.Get(HeaderIdempotencyKey))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithValues returns a context carrying the given request id and
// idempotency key, for callers not entering through the HTTP middleware.
func WithValues(ctx context.Context, requestID, idempotencyKey string) context.Context {
	ctx = context.WithValue(ctx, ctxKeyRequestID, requestID)
	return context.WithValue(ctx, ctxKeyIdempotencyKey, idempotencyKey)
}

// RequestID returns the request id carried by ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID).(string)
	return id
}

// IdempotencyKey returns the idempotency key carried by ctx, if any.
func IdempotencyKey(ctx context.Context) string {
	key, _ := ctx.Value(ctxKeyIdempotencyKey).(string)
	return key
}

// Inject copies the metadata from ctx onto the headers of an outbound
// request. Empty values are skipped.
func Inject(ctx context.Context, h http.Header) {
	if id := RequestID(ctx); id != "" {
		h.Set(HeaderRequestID, id)
	}
	if key := IdempotencyKey(ctx); key != "" {
		h.Set(HeaderIdempotencyKey, key)
	}
}
