package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threedfly/order-orchestrator/internal/orderservice"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, "http://localhost:8081", cfg.OrderService.BaseURL)
	assert.Equal(t, "http://localhost:8082", cfg.PaymentService.BaseURL)
	assert.Equal(t, 24*time.Hour, cfg.Redis.SupplierTTL.Std())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Listen)
}

func TestLoadYAMLWithOverrides(t *testing.T) {
	raw := `
listen: ":9999"
order_service:
  base_url: "http://orders:8081"
redis:
  addr: "redis:6379"
  supplier_ttl: 1h
resilience:
  defaults:
    failure_rate_threshold: 40
    sliding_window_size: 20
    open_state_wait: 30s
    max_attempts: 5
    retry_base_delay: 250ms
    attempt_timeout: 2s
  operations:
    order-service.find-closest-supplier:
      failure_rate_threshold: 60
      max_attempts: 2
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Listen)
	assert.Equal(t, "http://orders:8081", cfg.OrderService.BaseURL)
	assert.Equal(t, time.Hour, cfg.Redis.SupplierTTL.Std())

	defaults := cfg.ResilienceDefaults()
	assert.Equal(t, float64(40), defaults.FailureRateThreshold)
	assert.Equal(t, uint32(20), defaults.SlidingWindowSize)
	assert.Equal(t, 30*time.Second, defaults.OpenStateWait)
	assert.Equal(t, uint64(5), defaults.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, defaults.RetryBaseDelay)

	overrides := cfg.ResilienceOverrides()
	sup, ok := overrides[orderservice.OpFindClosestSupplier]
	require.True(t, ok)
	assert.Equal(t, float64(60), sup.FailureRateThreshold)
	assert.Equal(t, uint64(2), sup.MaxAttempts)
	// Unset override fields inherit the configured defaults.
	assert.Equal(t, uint32(20), sup.SlidingWindowSize)
	assert.Equal(t, 2*time.Second, sup.AttemptTimeout)
}

func TestEnvOverridesWinOverYAML(t *testing.T) {
	raw := "listen: \":9999\"\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	t.Setenv("LISTEN_ADDR", ":7777")
	t.Setenv("ORDER_SERVICE_URL", "http://elsewhere:8081")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7777", cfg.Listen)
	assert.Equal(t, "http://elsewhere:8081", cfg.OrderService.BaseURL)
}

func TestDurationRejectsGarbage(t *testing.T) {
	raw := "redis:\n  supplier_ttl: banana\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
