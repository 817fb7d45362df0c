package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"go.uber.org/mock/gomock"
)

// stubProvider is a scriptable provider for chain tests.
type stubProvider struct {
	name  string
	limit int
	calls int
	embed func(texts []string) ([][]float32, error)
}

func (s *stubProvider) Name() string { return s.name }
func (s *stubProvider) BatchLimit() int {
	if s.limit > 0 {
		return s.limit
	}
	return 64
}
func (s *stubProvider) Embed(_ context.Context, texts []string, _ Kind) ([][]float32, error) {
	s.calls++
	return s.embed(texts)
}

func constantVectors(dim int, fill float32) func(texts []string) ([][]float32, error) {
	return func(texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i := range texts {
			vec := make([]float32, dim)
			for j := range vec {
				vec[j] = fill
			}
			out[i] = vec
		}
		return out, nil
	}
}

func newTestChain(providers ...Provider) *Chain {
	c := NewChain(providers, ChainOptions{Dimension: 8, MaxRetries: 3})
	c.sleep = func(time.Duration) {}
	return c
}

func TestChainProviderRotationOnRateLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	providerA := NewMockProvider(ctrl)
	providerA.EXPECT().Name().Return("a").AnyTimes()
	providerA.EXPECT().BatchLimit().Return(64).AnyTimes()
	providerA.EXPECT().Embed(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, Classify("a", 429, 0, fmt.Errorf("too many requests"))).
		Times(1)

	providerB := NewMockProvider(ctrl)
	providerB.EXPECT().Name().Return("b").AnyTimes()
	providerB.EXPECT().BatchLimit().Return(64).AnyTimes()
	providerB.EXPECT().Embed(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([][]float32{{1, 0, 0, 0, 0, 0, 0, 0}}, nil).
		Times(1)

	chain := newTestChain(providerA, providerB)

	result := chain.Embed(context.Background(), "test", KindQuery)

	if result.Provider != "b" {
		t.Errorf("expected result from provider b, got %q", result.Provider)
	}
	if result.Fallback {
		t.Error("result should not be marked as fallback")
	}
	if chain.Limiter("a").BackoffRemaining() <= 0 {
		t.Error("expected a backoff window recorded for provider a")
	}
	if chain.Limiter("b").BackoffRemaining() != 0 {
		t.Error("provider b should not be in backoff")
	}
}

func TestChainSkipsProviderInBackoff(t *testing.T) {
	throttled := &stubProvider{name: "throttled", embed: func([]string) ([][]float32, error) {
		return nil, Classify("throttled", 429, time.Minute, errors.New("slow down"))
	}}
	healthy := &stubProvider{name: "healthy", embed: constantVectors(8, 0.5)}

	chain := newTestChain(throttled, healthy)

	chain.Embed(context.Background(), "first", KindQuery)
	chain.Embed(context.Background(), "second", KindQuery)

	if throttled.calls != 1 {
		t.Errorf("throttled provider should be skipped after backoff, got %d calls", throttled.calls)
	}
	if healthy.calls != 2 {
		t.Errorf("healthy provider should serve both requests, got %d calls", healthy.calls)
	}
}

func TestChainRetriesTransientErrors(t *testing.T) {
	attempts := 0
	flaky := &stubProvider{name: "flaky", embed: func(texts []string) ([][]float32, error) {
		attempts++
		if attempts < 3 {
			return nil, Classify("flaky", 503, 0, errors.New("unavailable"))
		}
		return constantVectors(8, 0.25)(texts)
	}}

	chain := newTestChain(flaky)
	result := chain.Embed(context.Background(), "retry me", KindPassage)

	if result.Fallback {
		t.Fatal("expected success after retries, got fallback")
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestChainAuthErrorsDoNotRetry(t *testing.T) {
	denied := &stubProvider{name: "denied", embed: func([]string) ([][]float32, error) {
		return nil, Classify("denied", 401, 0, errors.New("bad key"))
	}}

	chain := newTestChain(denied)
	result := chain.Embed(context.Background(), "text", KindQuery)

	if denied.calls != 1 {
		t.Errorf("auth failure should not retry, got %d calls", denied.calls)
	}
	if !result.Fallback {
		t.Error("expected fallback result when the only provider is misconfigured")
	}
}

func TestChainFallbackWhenAllProvidersFail(t *testing.T) {
	broken := &stubProvider{name: "broken", embed: func([]string) ([][]float32, error) {
		return nil, Classify("broken", 500, 0, errors.New("boom"))
	}}

	chain := newTestChain(broken)
	result := chain.Embed(context.Background(), "degraded mode text", KindQuery)

	if !result.Fallback {
		t.Fatal("expected fallback result")
	}
	if result.Provider != "fallback" {
		t.Errorf("expected provider tag 'fallback', got %q", result.Provider)
	}
	if len(result.Vector) != 8 {
		t.Errorf("expected configured dimension 8, got %d", len(result.Vector))
	}
}

func TestChainEmptyTextSkipsProviders(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	provider := NewMockProvider(ctrl)
	provider.EXPECT().Name().Return("net").AnyTimes()
	provider.EXPECT().BatchLimit().Return(64).AnyTimes()
	// No Embed expectation: any network call fails the test.

	chain := newTestChain(provider)

	a := chain.Embed(context.Background(), "", KindQuery)
	b := chain.Embed(context.Background(), "   ", KindQuery)

	if !a.Fallback || !b.Fallback {
		t.Fatal("blank input must produce fallback vectors")
	}
	for i := range a.Vector {
		if a.Vector[i] != b.Vector[i] {
			t.Fatal("blank inputs must share the fixed-seed vector")
		}
	}
}

func TestChainBatchPartialFailure(t *testing.T) {
	// Batch limit 1 forces one provider call per item; the second item's
	// failure must not fail its siblings.
	call := 0
	provider := &stubProvider{name: "partial", limit: 1}
	provider.embed = func(texts []string) ([][]float32, error) {
		call++
		if call == 2 {
			return nil, Classify("partial", 500, 0, errors.New("intermittent failure"))
		}
		return constantVectors(8, 0.1)(texts)
	}

	chain := NewChain([]Provider{provider}, ChainOptions{Dimension: 8, MaxRetries: 1})
	chain.sleep = func(time.Duration) {}

	results := chain.EmbedBatch(context.Background(), []string{"one", "two", "three"}, KindPassage)

	if results[0].Fallback {
		t.Error("first item should succeed")
	}
	if !results[1].Fallback {
		t.Error("failed item should degrade to its own fallback vector")
	}
	if results[2].Fallback {
		t.Error("third item should succeed")
	}
}

func TestChainCorrectsDimensionMismatch(t *testing.T) {
	// Provider returns 4-dim vectors for an 8-dim collection.
	short := &stubProvider{name: "short", embed: constantVectors(4, 0.5)}

	chain := newTestChain(short)
	result := chain.Embed(context.Background(), "text", KindQuery)

	if len(result.Vector) != 8 {
		t.Fatalf("expected corrected dimension 8, got %d", len(result.Vector))
	}
	norm := vectorNorm(result.Vector)
	if math.Abs(norm-1.0) > 1e-5 {
		t.Errorf("corrected vector norm = %f, want 1.0", norm)
	}
}
