package embedding

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"discourse-ai/internal/contextutil"
)

// Result is one embedding with its provenance.
type Result struct {
	Vector   []float32
	Provider string
	// Fallback marks vectors produced by the deterministic content-derived
	// pseudo-embedding rather than a real model.
	Fallback bool
}

// ChainOptions tunes the provider chain's retry and budget behavior.
type ChainOptions struct {
	Dimension      int
	MaxRetries     int
	AttemptTimeout time.Duration
	Budget         time.Duration
}

// Chain tries an ordered list of embedding providers and degrades to a
// deterministic pseudo-embedding when all of them fail. It never returns an
// error: callers always get a usable unit vector of the configured dimension.
type Chain struct {
	providers []Provider
	limiters  map[string]*LimiterState
	opts      ChainOptions
	// sleep is swappable so retry tests don't wait on real backoff.
	sleep func(time.Duration)
}

// NewChain creates a provider chain. Providers are tried in the given order;
// each gets its own limiter state so one throttled backend never blocks the
// others.
func NewChain(providers []Provider, opts ChainOptions) *Chain {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 5
	}
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = 5 * time.Second
	}
	if opts.Budget <= 0 {
		opts.Budget = 15 * time.Second
	}

	limiters := make(map[string]*LimiterState, len(providers))
	for _, p := range providers {
		limiters[p.Name()] = NewLimiterState(0)
	}

	return &Chain{
		providers: providers,
		limiters:  limiters,
		opts:      opts,
		sleep:     time.Sleep,
	}
}

// Limiter exposes a provider's limiter state, mainly for health reporting.
func (c *Chain) Limiter(provider string) *LimiterState {
	return c.limiters[provider]
}

// HasProviders reports whether any network provider is configured.
func (c *Chain) HasProviders() bool {
	return len(c.providers) > 0
}

// Dimension returns the configured output dimension.
func (c *Chain) Dimension() int {
	return c.opts.Dimension
}

// Embed produces one unit vector for text. Empty or whitespace-only input
// never reaches a network provider; it maps straight to the stable
// pseudo-embedding.
func (c *Chain) Embed(ctx context.Context, text string, kind Kind) Result {
	results := c.EmbedBatch(ctx, []string{text}, kind)
	return results[0]
}

// EmbedBatch produces one unit vector per input text, splitting the batch to
// each provider's limit. A single failed item degrades to its own fallback
// vector without failing sibling items.
func (c *Chain) EmbedBatch(ctx context.Context, texts []string, kind Kind) []Result {
	logger := contextutil.LoggerFromContext(ctx)

	results := make([]Result, len(texts))

	// Partition out blank inputs up front.
	pending := make([]int, 0, len(texts))
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			results[i] = Result{Vector: FallbackVector("", c.opts.Dimension), Provider: "fallback", Fallback: true}
			continue
		}
		pending = append(pending, i)
	}
	if len(pending) == 0 {
		return results
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.Budget)
	defer cancel()

	for start := 0; start < len(pending); {
		end := start + c.maxBatch()
		if end > len(pending) {
			end = len(pending)
		}
		chunk := pending[start:end]

		batch := make([]string, len(chunk))
		for j, idx := range chunk {
			batch[j] = texts[idx]
		}

		vectors, provider, err := c.embedOnce(ctx, batch, kind)
		if err != nil {
			logger.WarnContext(ctx, "all embedding providers failed, using deterministic fallback",
				"batch_size", len(batch), "error", err)
			for _, idx := range chunk {
				results[idx] = Result{Vector: FallbackVector(texts[idx], c.opts.Dimension), Provider: "fallback", Fallback: true}
			}
		} else {
			for j, idx := range chunk {
				results[idx] = Result{Vector: c.correctDim(ctx, vectors[j]), Provider: provider}
			}
		}

		start = end
	}

	return results
}

// embedOnce walks the provider chain once for a batch of texts.
func (c *Chain) embedOnce(ctx context.Context, texts []string, kind Kind) ([][]float32, string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var lastErr error
	for _, provider := range c.providers {
		if err := ctx.Err(); err != nil {
			// Budget exhausted; the caller degrades to fallback vectors.
			return nil, "", err
		}

		limiter := c.limiters[provider.Name()]
		if limiter.ShouldSkip() {
			logger.DebugContext(ctx, "skipping throttled provider",
				"provider", provider.Name(), "backoff_remaining", limiter.BackoffRemaining())
			continue
		}

		vectors, err := c.tryProvider(ctx, provider, limiter, texts, kind)
		if err == nil {
			limiter.RecordSuccess()
			return vectors, provider.Name(), nil
		}
		lastErr = err

		var pe *ProviderError
		if errors.As(err, &pe) && pe.Kind == ErrRateLimited {
			limiter.RecordRateLimit(pe.RetryAfter)
			logger.WarnContext(ctx, "provider rate limited, rotating",
				"provider", provider.Name(), "retry_after", pe.RetryAfter)
			continue
		}
		logger.WarnContext(ctx, "provider failed, rotating",
			"provider", provider.Name(), "error", err)
	}

	if lastErr == nil {
		lastErr = errors.New("no embedding provider available")
	}
	return nil, "", lastErr
}

// tryProvider calls one provider with the per-provider retry policy:
// transient failures (network, 502/503/504) retry with exponential backoff
// and jitter; rate limits and non-retryable errors fail the provider attempt
// immediately so the chain can rotate.
func (c *Chain) tryProvider(ctx context.Context, provider Provider, limiter *LimiterState, texts []string, kind Kind) ([][]float32, error) {
	var lastErr error
	for attempt := 0; attempt < c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			c.sleep(backoffWithJitter(attempt))
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.opts.AttemptTimeout)
		limiter.RecordRequest()
		vectors, err := provider.Embed(attemptCtx, texts, kind)
		cancel()

		if err == nil {
			return vectors, nil
		}
		lastErr = err

		var pe *ProviderError
		if errors.As(err, &pe) {
			if pe.Kind == ErrRateLimited {
				return nil, err
			}
			if !retryable(pe.Kind, pe.StatusCode) {
				return nil, err
			}
			continue
		}
		// Unclassified errors (decode failures, contract violations) are
		// not transient.
		return nil, err
	}
	return nil, lastErr
}

func (c *Chain) correctDim(ctx context.Context, vec []float32) []float32 {
	if c.opts.Dimension > 0 && len(vec) != c.opts.Dimension {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "embedding dimension mismatch, correcting",
			"got", len(vec), "want", c.opts.Dimension)
		return NormalizeDim(vec, c.opts.Dimension)
	}
	return L2Normalize(vec)
}

func (c *Chain) maxBatch() int {
	limit := 64
	for _, p := range c.providers {
		if bl := p.BatchLimit(); bl > 0 && bl < limit {
			limit = bl
		}
	}
	return limit
}

func backoffWithJitter(attempt int) time.Duration {
	base := backoffBase << uint(attempt-1)
	if base > backoffCap {
		base = backoffCap
	}
	jitter := time.Duration(rand.Int63n(int64(base) / 2))
	return base/2 + jitter
}
