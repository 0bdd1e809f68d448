// Package retry runs remote calls with a bounded number of attempts.
package retry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spigell/jobnado/internal/utils"
	"go.uber.org/zap"
)

const (
	StrategyLinear = "linear"
	StrategyNone   = "none"
)

// Backoff returns the delay to wait after the given failed attempt (1-based).
type Backoff func(attempt int) time.Duration

// Linear waits attempt × base between attempts.
func Linear(base time.Duration) Backoff {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * base
	}
}

// None never waits between attempts.
func None() Backoff {
	return func(int) time.Duration { return 0 }
}

// Policy bounds a retried operation.
type Policy struct {
	MaxAttempts int
	Backoff     Backoff
	// Wait blocks between attempts. Defaults to utils.WaitFor.
	Wait func(ctx context.Context, d time.Duration) error
}

// New builds a policy from configuration values.
func New(attempts int, strategy string, base time.Duration) (Policy, error) {
	if attempts <= 0 {
		return Policy{}, fmt.Errorf("retry attempts must be positive, got %d", attempts)
	}

	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case "", StrategyLinear:
		return Policy{MaxAttempts: attempts, Backoff: Linear(base)}, nil
	case StrategyNone, "fast":
		return Policy{MaxAttempts: attempts, Backoff: None()}, nil
	default:
		return Policy{}, fmt.Errorf("unknown retry strategy: %s", strategy)
	}
}

// Do calls op until it succeeds or the policy is exhausted. The error of the
// last attempt is returned as is.
func Do[T any](ctx context.Context, logger *zap.Logger, policy Policy, op func(ctx context.Context) (T, error)) (T, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	attempts := policy.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	wait := policy.Wait
	if wait == nil {
		wait = utils.WaitFor
	}

	var zero T
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		logger.Warn("attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Error(err),
		)

		if attempt == attempts {
			break
		}

		var delay time.Duration
		if policy.Backoff != nil {
			delay = policy.Backoff(attempt)
		}

		if err := wait(ctx, delay); err != nil {
			logger.Debug("retry wait interrupted", zap.Error(err))
			break
		}
	}

	return zero, lastErr
}
