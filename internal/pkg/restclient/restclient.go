// Package restclient is the thin HTTP/JSON transport under the dependency
// clients. It owns request building, serialization and the translation of
// HTTP failures into the apperr taxonomy; retries and circuit breaking
// belong to the resilience layer wrapped around it, never here.
package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/threedfly/order-orchestrator/internal/pkg/apperr"
	"github.com/threedfly/order-orchestrator/internal/pkg/requestmeta"
)

// maxErrBody bounds how much of an error response body ends up in error
// messages and, from there, in audit rows.
const maxErrBody = 512

// Client issues JSON requests against one service base URL.
type Client struct {
	base string
	http *http.Client
}

// New builds a client for the given base URL. The underlying http.Client
// carries no timeout of its own; per-attempt deadlines arrive via context
// from the resilience layer.
func New(baseURL string) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{},
	}
}

// Do issues one request and decodes the JSON response into out (skipped
// when out is nil). op names the operation for error reporting, e.g.
// "order-service.create-order".
func (c *Client) Do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestmeta.Inject(ctx, req.Header)

	resp, err := c.http.Do(req)
	if err != nil {
		// Connection failures and attempt timeouts both land here; the
		// wrapped context error keeps them distinguishable upstream.
		return apperr.Unavailable(op, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return apperr.Unavailable(op, "decode response", err)
		}
		return nil
	}

	snippet := readSnippet(resp.Body)
	switch resp.StatusCode {
	case http.StatusNotFound:
		return apperr.NotFound(op, orDefault(snippet, "entity not found"))
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return apperr.Rejected(op, orDefault(snippet, fmt.Sprintf("request rejected with status %d", resp.StatusCode)))
	default:
		return apperr.Unavailable(op, fmt.Sprintf("status %d: %s", resp.StatusCode, snippet), nil)
	}
}

func readSnippet(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrBody))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
