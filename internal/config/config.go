// Package config loads the orchestrator configuration: a YAML file with
// env-var overrides for the values that change per environment. Every
// resilience knob has a default, so an empty config is runnable.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/threedfly/order-orchestrator/internal/pkg/resilience"
)

// Duration wraps time.Duration so YAML values can be written as "250ms",
// "5s" and so on.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("config: parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full orchestrator configuration.
type Config struct {
	Listen string `yaml:"listen"`

	OrderService   Service `yaml:"order_service"`
	PaymentService Service `yaml:"payment_service"`

	Audit Audit `yaml:"audit"`
	Redis Redis `yaml:"redis"`

	Resilience Resilience `yaml:"resilience"`
}

// Service points at one external dependency.
type Service struct {
	BaseURL string `yaml:"base_url"`
}

// Audit configures the processing-log store.
type Audit struct {
	// Path is the SQLite database file.
	Path string `yaml:"path"`
}

// Redis configures the last-known-good supplier cache. An empty Addr
// disables the cache.
type Redis struct {
	Addr        string   `yaml:"addr"`
	SupplierTTL Duration `yaml:"supplier_ttl"`
}

// Resilience holds the default policy plus per-operation overrides keyed
// like "order-service.create-order".
type Resilience struct {
	Defaults   Policy            `yaml:"defaults"`
	Operations map[string]Policy `yaml:"operations"`
}

// Policy mirrors resilience.Config with YAML tags. Zero fields inherit
// from the defaults (and the defaults inherit from the built-ins).
type Policy struct {
	FailureRateThreshold   float64  `yaml:"failure_rate_threshold"`
	SlidingWindowSize      uint32   `yaml:"sliding_window_size"`
	OpenStateWait          Duration `yaml:"open_state_wait"`
	HalfOpenTrialCalls     uint32   `yaml:"half_open_trial_calls"`
	MaxAttempts            uint64   `yaml:"max_attempts"`
	RetryBaseDelay         Duration `yaml:"retry_base_delay"`
	RetryBackoffMultiplier float64  `yaml:"retry_backoff_multiplier"`
	AttemptTimeout         Duration `yaml:"attempt_timeout"`
}

// over lays p on top of base, field by field.
func (p Policy) over(base resilience.Config) resilience.Config {
	out := base
	if p.FailureRateThreshold > 0 {
		out.FailureRateThreshold = p.FailureRateThreshold
	}
	if p.SlidingWindowSize > 0 {
		out.SlidingWindowSize = p.SlidingWindowSize
	}
	if p.OpenStateWait > 0 {
		out.OpenStateWait = p.OpenStateWait.Std()
	}
	if p.HalfOpenTrialCalls > 0 {
		out.HalfOpenTrialCalls = p.HalfOpenTrialCalls
	}
	if p.MaxAttempts > 0 {
		out.MaxAttempts = p.MaxAttempts
	}
	if p.RetryBaseDelay > 0 {
		out.RetryBaseDelay = p.RetryBaseDelay.Std()
	}
	if p.RetryBackoffMultiplier > 0 {
		out.RetryBackoffMultiplier = p.RetryBackoffMultiplier
	}
	if p.AttemptTimeout > 0 {
		out.AttemptTimeout = p.AttemptTimeout.Std()
	}
	return out
}

// ResilienceDefaults resolves the default policy against the built-ins.
func (c *Config) ResilienceDefaults() resilience.Config {
	return c.Resilience.Defaults.over(resilience.DefaultConfig())
}

// ResilienceOverrides resolves every per-operation policy against the
// defaults, ready to hand to resilience.NewRegistry.
func (c *Config) ResilienceOverrides() map[string]resilience.Config {
	defaults := c.ResilienceDefaults()
	out := make(map[string]resilience.Config, len(c.Resilience.Operations))
	for key, p := range c.Resilience.Operations {
		out[key] = p.over(defaults)
	}
	return out
}

// Load reads the YAML file at path (skipped when path is empty or the file
// does not exist) and then applies env-var overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Listen:         ":8080",
		OrderService:   Service{BaseURL: "http://localhost:8081"},
		PaymentService: Service{BaseURL: "http://localhost:8082"},
		Audit:          Audit{Path: "./data/orchestrator.db"},
		Redis:          Redis{SupplierTTL: Duration(24 * time.Hour)},
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	cfg.Listen = getEnv("LISTEN_ADDR", cfg.Listen)
	cfg.OrderService.BaseURL = getEnv("ORDER_SERVICE_URL", cfg.OrderService.BaseURL)
	cfg.PaymentService.BaseURL = getEnv("PAYMENT_SERVICE_URL", cfg.PaymentService.BaseURL)
	cfg.Audit.Path = getEnv("AUDIT_DB_PATH", cfg.Audit.Path)
	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
