package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unavailable", Unavailable("op", "down", nil), true},
		{"not found", NotFound("op", "missing"), false},
		{"rejected", Rejected("op", "invalid"), false},
		{"validation", Validation("bad input"), false},
		{"wrapped unavailable", fmt.Errorf("call: %w", Unavailable("op", "down", nil)), true},
		{"untyped transport error", errors.New("connection refused"), true},
		{"context canceled", context.Canceled, false},
		{"wrapped cancellation", fmt.Errorf("call: %w", context.Canceled), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Transient(tt.err))
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"not found", NotFound("op", "missing"), http.StatusNotFound},
		{"validation", Validation("bad"), http.StatusBadRequest},
		{"rejected", Rejected("op", "invalid"), http.StatusUnprocessableEntity},
		{"unavailable", Unavailable("op", "down", nil), http.StatusServiceUnavailable},
		{"abort over unavailable", Abort("Create Order", Unavailable("op", "down", nil)), http.StatusServiceUnavailable},
		{"abort over rejected", Abort("Create Order", Rejected("op", "invalid")), http.StatusInternalServerError},
		{"untyped", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestAbortedStep(t *testing.T) {
	step, ok := AbortedStep(Abort("Execute Payment", errors.New("declined")))
	assert.True(t, ok)
	assert.Equal(t, "Execute Payment", step)

	_, ok = AbortedStep(NotFound("op", "missing"))
	assert.False(t, ok)

	_, ok = AbortedStep(nil)
	assert.False(t, ok)
}

func TestKindMatchingWithErrorsIs(t *testing.T) {
	err := fmt.Errorf("outer: %w", NotFound("op", "missing"))
	assert.True(t, errors.Is(err, &Error{Kind: KindNotFound}))
	assert.False(t, errors.Is(err, &Error{Kind: KindUnavailable}))
}

func TestErrorStringIncludesOpAndKind(t *testing.T) {
	err := Unavailable("order-service.create-order", "request failed", errors.New("dial tcp: refused"))
	assert.Contains(t, err.Error(), "order-service.create-order")
	assert.Contains(t, err.Error(), "unavailable")
}
