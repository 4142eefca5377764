// Package resilience wraps a single remote operation in the policy chain
// applied to every outbound dependency call: per-attempt timeout, circuit
// breaker, retry with exponential backoff, and an explicit fallback.
//
// The chain is composed so that every individual attempt passes through the
// circuit breaker and is bounded by its own timeout:
//
//	fallback( retry( breaker( timeout( op ) ) ) )
//
// An open breaker short-circuits the retry loop (the rejection is permanent
// from the retry engine's point of view), and whatever error survives the
// chain is handed to the fallback, which must produce either an explicit
// value or an explicit error.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
)

// Config is the policy for one (dependency, operation) pair.
type Config struct {
	// FailureRateThreshold is the failure percentage within the sliding
	// window that trips the breaker, in (0, 100].
	FailureRateThreshold float64
	// SlidingWindowSize is the minimum number of recorded calls before the
	// failure rate is evaluated.
	SlidingWindowSize uint32
	// OpenStateWait is how long the breaker stays open before allowing
	// half-open trial calls.
	OpenStateWait time.Duration
	// HalfOpenTrialCalls is how many trial calls must succeed in half-open
	// state before the breaker closes again.
	HalfOpenTrialCalls uint32

	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts uint64
	// RetryBaseDelay is the wait before the first re-attempt.
	RetryBaseDelay time.Duration
	// RetryBackoffMultiplier grows the delay between attempts.
	RetryBackoffMultiplier float64

	// AttemptTimeout bounds each individual attempt. Exceeding it counts
	// as a failure for both retry and breaker accounting.
	AttemptTimeout time.Duration
}

// DefaultConfig mirrors the values the external services are tuned for.
func DefaultConfig() Config {
	return Config{
		FailureRateThreshold:   50,
		SlidingWindowSize:      10,
		OpenStateWait:          10 * time.Second,
		HalfOpenTrialCalls:     3,
		MaxAttempts:            3,
		RetryBaseDelay:         100 * time.Millisecond,
		RetryBackoffMultiplier: 2.0,
		AttemptTimeout:         3 * time.Second,
	}
}

// Classifier reports whether an error is transient: retryable, and counted
// as a failure by the circuit breaker. Business outcomes such as not-found
// must classify as non-transient so they neither retry nor trip the breaker.
type Classifier func(error) bool

// Operation is a single remote call bounded by the attempt context.
type Operation[T any] func(ctx context.Context) (T, error)

// Fallback produces the substitute outcome when the policy chain gives up.
// It receives the error that triggered it and returns either a degraded
// value or an explicit error to propagate.
type Fallback[T any] func(ctx context.Context, cause error) (T, error)

// Executor applies one Config to calls of one operation. Its circuit state
// is shared by every saga invocation using the same operation key, so all
// methods are safe for concurrent use.
type Executor struct {
	name      string
	cfg       Config
	transient Classifier
	cb        *gobreaker.CircuitBreaker
}

// NewExecutor builds an executor for the named operation. A nil classifier
// treats everything except context cancellation as transient.
func NewExecutor(name string, cfg Config, transient Classifier) *Executor {
	if transient == nil {
		transient = func(err error) bool { return !errors.Is(err, context.Canceled) }
	}
	e := &Executor{name: name, cfg: cfg, transient: transient}
	e.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.HalfOpenTrialCalls,
		Timeout:     cfg.OpenStateWait,
		// Interval clears closed-state counts periodically so a failure
		// burst is judged against recent traffic, not the breaker's
		// lifetime totals.
		Interval: cfg.OpenStateWait,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.SlidingWindowSize {
				return false
			}
			rate := float64(counts.TotalFailures) / float64(counts.Requests) * 100
			return rate >= cfg.FailureRateThreshold
		},
		// Non-transient errors are reported as successes so business
		// outcomes never open the circuit.
		IsSuccessful: func(err error) bool {
			return err == nil || !transient(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit state change", "operation", name, "from", from.String(), "to", to.String())
		},
	})
	return e
}

// Name returns the operation key this executor guards.
func (e *Executor) Name() string { return e.name }

// State exposes the current circuit state.
func (e *Executor) State() gobreaker.State { return e.cb.State() }

// IsCircuitOpen reports whether err is a breaker rejection: the call was
// refused without contacting the dependency.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// Do runs op through e's policy chain. When the chain gives up and fb is
// non-nil, fb decides the outcome; otherwise the final error propagates.
func Do[T any](ctx context.Context, e *Executor, op Operation[T], fb Fallback[T]) (T, error) {
	res, err := execute(ctx, e, op)
	if err == nil {
		return res, nil
	}
	if fb == nil {
		var zero T
		return zero, err
	}
	return fb(ctx, err)
}

func execute[T any](ctx context.Context, e *Executor, op Operation[T]) (T, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = e.cfg.RetryBaseDelay
	policy.Multiplier = e.cfg.RetryBackoffMultiplier
	policy.RandomizationFactor = 0
	policy.MaxElapsedTime = 0

	maxRetries := uint64(0)
	if e.cfg.MaxAttempts > 0 {
		maxRetries = e.cfg.MaxAttempts - 1
	}

	return backoff.RetryWithData(func() (T, error) {
		res, err := attempt(ctx, e, op)
		if err == nil {
			return res, nil
		}
		if IsCircuitOpen(err) {
			return res, backoff.Permanent(fmt.Errorf("%s: circuit open: %w", e.name, err))
		}
		if !e.transient(err) {
			return res, backoff.Permanent(err)
		}
		return res, err
	}, backoff.WithContext(backoff.WithMaxRetries(policy, maxRetries), ctx))
}

// attempt makes one call through the breaker with its own timeout. The
// breaker records the raw outcome of every attempt, which keeps the sliding
// window accounting per attempt rather than per retried sequence.
func attempt[T any](ctx context.Context, e *Executor, op Operation[T]) (T, error) {
	var zero T
	res, err := e.cb.Execute(func() (any, error) {
		actx := ctx
		if e.cfg.AttemptTimeout > 0 {
			var cancel context.CancelFunc
			actx, cancel = context.WithTimeout(ctx, e.cfg.AttemptTimeout)
			defer cancel()
		}
		v, opErr := op(actx)
		if opErr != nil {
			if errors.Is(opErr, context.DeadlineExceeded) && ctx.Err() == nil {
				opErr = fmt.Errorf("%s: attempt timed out after %v: %w", e.name, e.cfg.AttemptTimeout, opErr)
			}
			return nil, opErr
		}
		return v, nil
	})
	if err != nil {
		return zero, err
	}
	out, ok := res.(T)
	if !ok {
		return zero, fmt.Errorf("%s: unexpected result type %T", e.name, res)
	}
	return out, nil
}
