package providers

import (
	"context"
	"time"

	"github.com/haasonsaas/nexus/internal/retry"
)

// BaseProvider holds shared retry configuration for LLM providers.
type BaseProvider struct {
	name       string
	maxRetries int
	retryDelay time.Duration
}

// NewBaseProvider creates a base provider with sane defaults.
func NewBaseProvider(name string, maxRetries int, retryDelay time.Duration) BaseProvider {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelay <= 0 {
		retryDelay = time.Second
	}
	return BaseProvider{
		name:       name,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

// Retry executes op with linear backoff, retrying only errors isRetryable
// accepts. Non-retryable errors are returned immediately via retry.Permanent.
func (b *BaseProvider) Retry(ctx context.Context, isRetryable func(error) bool, op func() error) error {
	if op == nil {
		return nil
	}
	config := retry.Linear(b.maxRetries, b.retryDelay)
	result := retry.Do(ctx, config, func() error {
		err := op()
		if err != nil && isRetryable != nil && !isRetryable(err) {
			return retry.Permanent(err)
		}
		return err
	})
	if permanent, ok := result.Err.(*retry.PermanentError); ok {
		return permanent.Unwrap()
	}
	return result.Err
}
