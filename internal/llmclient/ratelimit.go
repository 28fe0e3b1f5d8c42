// internal/llmclient/ratelimit.go
package llmclient

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/xkilldash9x/scout-cli/api/schemas"
)

// RateLimitedClient caps how often the wrapped client is called. Generate
// blocks until a token is available or ctx is done.
type RateLimitedClient struct {
	next    schemas.LLMClient
	limiter *rate.Limiter
}

var _ schemas.LLMClient = (*RateLimitedClient)(nil)

// NewRateLimitedClient allows requestsPerMinute calls per minute with a burst of one.
func NewRateLimitedClient(next schemas.LLMClient, requestsPerMinute int) (*RateLimitedClient, error) {
	if next == nil {
		return nil, fmt.Errorf("a client to wrap is required")
	}
	if requestsPerMinute <= 0 {
		return nil, fmt.Errorf("requests per minute must be positive, got %d", requestsPerMinute)
	}
	every := rate.Every(time.Minute / time.Duration(requestsPerMinute))
	return &RateLimitedClient{next: next, limiter: rate.NewLimiter(every, 1)}, nil
}

func (c *RateLimitedClient) Generate(ctx context.Context, req schemas.GenerationRequest) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait: %w", err)
	}
	return c.next.Generate(ctx, req)
}

func (c *RateLimitedClient) Close() error { return c.next.Close() }
