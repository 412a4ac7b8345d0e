package agents

import (
	"context"

	"golang.org/x/time/rate"

	"trademind/internal/resilience"
)

// GuardedClient wraps an LLMClient with a client-side rate limit and a
// circuit breaker. While the circuit is open, Generate returns
// resilience.ErrCircuitOpen without a network call and the advisor falls
// back to its fixed text.
type GuardedClient struct {
	inner   LLMClient
	breaker *resilience.CircuitBreaker
	limiter *rate.Limiter
}

// NewGuardedClient wraps client with cb. A nil limiter means no rate limit.
func NewGuardedClient(client LLMClient, cb *resilience.CircuitBreaker, limiter *rate.Limiter) *GuardedClient {
	return &GuardedClient{inner: client, breaker: cb, limiter: limiter}
}

// Provider implements LLMClient.
func (g *GuardedClient) Provider() string { return g.inner.Provider() }

// Generate implements LLMClient. It blocks until the limiter admits the call
// or ctx is done.
func (g *GuardedClient) Generate(ctx context.Context, p Prompt) (Completion, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return Completion{}, err
		}
	}
	return resilience.ExecuteWithResult(g.breaker, ctx, func(ctx context.Context) (Completion, error) {
		return g.inner.Generate(ctx, p)
	})
}

// Breaker returns the wrapped circuit breaker.
func (g *GuardedClient) Breaker() *resilience.CircuitBreaker { return g.breaker }
