package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threedfly/order-orchestrator/internal/pkg/apperr"
)

func fastConfig() Config {
	return Config{
		FailureRateThreshold:   50,
		SlidingWindowSize:      4,
		OpenStateWait:          50 * time.Millisecond,
		HalfOpenTrialCalls:     1,
		MaxAttempts:            3,
		RetryBaseDelay:         time.Millisecond,
		RetryBackoffMultiplier: 1.0,
		AttemptTimeout:         time.Second,
	}
}

func TestDoRetriesTransientErrors(t *testing.T) {
	e := NewExecutor("test.retry", fastConfig(), apperr.Transient)

	calls := 0
	op := func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", apperr.Unavailable("test.retry", "flaky", nil)
		}
		return "ok", nil
	}

	res, err := Do(context.Background(), e, op, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", res)
	assert.Equal(t, 3, calls)
}

func TestDoGivesUpAfterMaxAttempts(t *testing.T) {
	e := NewExecutor("test.exhaust", fastConfig(), apperr.Transient)

	calls := 0
	op := func(ctx context.Context) (string, error) {
		calls++
		return "", apperr.Unavailable("test.exhaust", "down", nil)
	}

	_, err := Do(context.Background(), e, op, nil)
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, apperr.KindUnavailable, apperr.KindOf(err))
}

func TestDoDoesNotRetryBusinessOutcomes(t *testing.T) {
	e := NewExecutor("test.noretry", fastConfig(), apperr.Transient)

	calls := 0
	op := func(ctx context.Context) (string, error) {
		calls++
		return "", apperr.Rejected("test.noretry", "bad request")
	}

	_, err := Do(context.Background(), e, op, nil)
	require.Error(t, err)
	assert.Equal(t, 1, calls, "non-transient errors must not be retried")
	assert.Equal(t, apperr.KindRejected, apperr.KindOf(err))
}

func TestBreakerOpensAndShortCircuits(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxAttempts = 1
	e := NewExecutor("test.breaker", cfg, apperr.Transient)

	failing := func(ctx context.Context) (int, error) {
		return 0, apperr.Unavailable("test.breaker", "down", nil)
	}

	// Fill the window with failures until the breaker trips.
	for i := 0; i < int(cfg.SlidingWindowSize); i++ {
		_, err := Do(context.Background(), e, failing, nil)
		require.Error(t, err)
	}
	require.Equal(t, gobreaker.StateOpen, e.State())

	// While open the operation must not be invoked at all.
	calls := 0
	counting := func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	}
	_, err := Do(context.Background(), e, counting, nil)
	require.Error(t, err)
	assert.True(t, IsCircuitOpen(errors.Unwrap(err)) || IsCircuitOpen(err))
	assert.Equal(t, 0, calls)
}

func TestBreakerRecoversAfterOpenWait(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxAttempts = 1
	e := NewExecutor("test.recover", cfg, apperr.Transient)

	failing := func(ctx context.Context) (int, error) {
		return 0, apperr.Unavailable("test.recover", "down", nil)
	}
	for i := 0; i < int(cfg.SlidingWindowSize); i++ {
		_, _ = Do(context.Background(), e, failing, nil)
	}
	require.Equal(t, gobreaker.StateOpen, e.State())

	time.Sleep(cfg.OpenStateWait + 10*time.Millisecond)

	// Half-open: one successful trial call closes the circuit again.
	res, err := Do(context.Background(), e, func(ctx context.Context) (int, error) {
		return 7, nil
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 7, res)
	assert.Equal(t, gobreaker.StateClosed, e.State())
}

func TestBreakerJudgesRecentTrafficNotLifetimeTotals(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxAttempts = 1
	e := NewExecutor("test.window", cfg, apperr.Transient)

	healthy := func(ctx context.Context) (int, error) { return 42, nil }
	failing := func(ctx context.Context) (int, error) {
		return 0, apperr.Unavailable("test.window", "down", nil)
	}

	// A long stretch of healthy traffic must not dilute a fresh burst of
	// failures once the counting interval has rolled over.
	for i := 0; i < 20; i++ {
		_, err := Do(context.Background(), e, healthy, nil)
		require.NoError(t, err)
	}
	time.Sleep(cfg.OpenStateWait + 20*time.Millisecond)

	for i := 0; i < int(cfg.SlidingWindowSize); i++ {
		_, err := Do(context.Background(), e, failing, nil)
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, e.State())
}

func TestBusinessOutcomesDoNotTripBreaker(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxAttempts = 1
	e := NewExecutor("test.business", cfg, apperr.Transient)

	notFound := func(ctx context.Context) (int, error) {
		return 0, apperr.NotFound("test.business", "missing")
	}
	for i := 0; i < int(cfg.SlidingWindowSize)*2; i++ {
		_, err := Do(context.Background(), e, notFound, nil)
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateClosed, e.State())
}

func TestAttemptTimeoutBoundsEachAttempt(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxAttempts = 2
	cfg.AttemptTimeout = 20 * time.Millisecond
	e := NewExecutor("test.timeout", cfg, apperr.Transient)

	calls := 0
	op := func(ctx context.Context) (int, error) {
		calls++
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(time.Second):
			return 1, nil
		}
	}

	start := time.Now()
	_, err := Do(context.Background(), e, op, nil)
	require.Error(t, err)
	assert.Equal(t, 2, calls, "a timed-out attempt should be retried")
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFallbackReceivesFinalError(t *testing.T) {
	e := NewExecutor("test.fallback", fastConfig(), apperr.Transient)

	cause := apperr.Unavailable("test.fallback", "down", nil)
	op := func(ctx context.Context) (string, error) {
		return "", cause
	}

	res, err := Do(context.Background(), e, op, func(ctx context.Context, got error) (string, error) {
		assert.ErrorIs(t, got, cause)
		return "degraded", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "degraded", res)
}

func TestDoHonorsContextCancellation(t *testing.T) {
	e := NewExecutor("test.cancel", fastConfig(), apperr.Transient)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	op := func(ctx context.Context) (string, error) {
		calls++
		cancel()
		return "", apperr.Unavailable("test.cancel", "down", nil)
	}

	_, err := Do(ctx, e, op, nil)
	require.Error(t, err)
	assert.Equal(t, 1, calls, "no retry after the caller context is cancelled")
}

func TestRegistrySharesExecutorPerKey(t *testing.T) {
	r := NewRegistry(DefaultConfig(), map[string]Config{
		"special": {MaxAttempts: 9},
	}, apperr.Transient)

	a := r.For("op.a")
	assert.Same(t, a, r.For("op.a"))
	assert.NotSame(t, a, r.For("op.b"))

	assert.Equal(t, uint64(9), r.For("special").cfg.MaxAttempts)
	assert.Equal(t, DefaultConfig().MaxAttempts, r.For("op.a").cfg.MaxAttempts)
}
