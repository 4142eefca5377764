package restclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threedfly/order-orchestrator/internal/pkg/apperr"
)

func TestDoDecodesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "v", r.URL.Query().Get("k"))
		_ = json.NewEncoder(w).Encode(map[string]string{"name": "ok"})
	}))
	defer srv.Close()

	var out struct {
		Name string `json:"name"`
	}
	q := url.Values{}
	q.Set("k", "v")
	err := New(srv.URL).Do(context.Background(), "test.op", http.MethodGet, "/thing", q, nil, &out)
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Name)
}

func TestDoStatusClassification(t *testing.T) {
	tests := []struct {
		status int
		want   apperr.Kind
	}{
		{http.StatusNotFound, apperr.KindNotFound},
		{http.StatusBadRequest, apperr.KindRejected},
		{http.StatusConflict, apperr.KindRejected},
		{http.StatusUnprocessableEntity, apperr.KindRejected},
		{http.StatusInternalServerError, apperr.KindUnavailable},
		{http.StatusBadGateway, apperr.KindUnavailable},
		{http.StatusServiceUnavailable, apperr.KindUnavailable},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))
		err := New(srv.URL).Do(context.Background(), "test.op", http.MethodGet, "/thing", nil, nil, nil)
		srv.Close()
		require.Error(t, err, "status %d", tt.status)
		assert.Equal(t, tt.want, apperr.KindOf(err), "status %d", tt.status)
	}
}

func TestDoConnectionFailureIsUnavailable(t *testing.T) {
	// Nothing listens here.
	err := New("http://127.0.0.1:1").Do(context.Background(), "test.op", http.MethodGet, "/thing", nil, nil, nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnavailable, apperr.KindOf(err))
	assert.True(t, apperr.Transient(err))
}

func TestDoErrorIncludesBodySnippet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	err := New(srv.URL).Do(context.Background(), "test.op", http.MethodGet, "/thing", nil, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream exploded")
	assert.Contains(t, err.Error(), "test.op")
}
