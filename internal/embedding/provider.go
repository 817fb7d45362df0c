package embedding

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_provider.go -package=mocks discourse-ai/internal/embedding Provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Kind distinguishes query embeddings from passage embeddings. Asymmetric
// models (bge, e5) produce better retrieval when the two sides are prefixed
// differently.
type Kind string

const (
	KindQuery   Kind = "query"
	KindPassage Kind = "passage"
)

// Provider generates embeddings from a single backend.
type Provider interface {
	// Name identifies the provider in logs and result provenance.
	Name() string
	// Embed generates one vector per input text.
	Embed(ctx context.Context, texts []string, kind Kind) ([][]float32, error)
	// BatchLimit returns the maximum number of texts per Embed call.
	BatchLimit() int
}

// ErrorKind classifies a provider failure so the chain can decide whether to
// back off, retry, or rotate to the next provider.
type ErrorKind int

const (
	ErrUnknown ErrorKind = iota
	ErrRateLimited
	ErrAuth
	ErrNetwork
	ErrServer
)

func (k ErrorKind) String() string {
	switch k {
	case ErrRateLimited:
		return "rate_limited"
	case ErrAuth:
		return "auth"
	case ErrNetwork:
		return "network"
	case ErrServer:
		return "server"
	default:
		return "unknown"
	}
}

// ProviderError wraps a provider failure with its classification.
type ProviderError struct {
	Provider   string
	Kind       ErrorKind
	StatusCode int
	// RetryAfter is the backoff the provider requested, zero when the
	// response carried no Retry-After header.
	RetryAfter time.Duration
	Err        error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Classify maps an error to a ProviderError, inspecting HTTP status codes and
// network error types.
func Classify(provider string, statusCode int, retryAfter time.Duration, err error) *ProviderError {
	pe := &ProviderError{Provider: provider, StatusCode: statusCode, RetryAfter: retryAfter, Err: err}

	switch {
	case statusCode == http.StatusTooManyRequests:
		pe.Kind = ErrRateLimited
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		pe.Kind = ErrAuth
	case statusCode >= 500:
		pe.Kind = ErrServer
	case statusCode == 0 && isNetworkError(err):
		pe.Kind = ErrNetwork
	default:
		pe.Kind = ErrUnknown
	}
	return pe
}

// retryable reports whether the failure is worth retrying on the same
// provider. Rate limits rotate to the next provider instead (the backoff
// window covers future requests), so they are not retryable here.
func retryable(kind ErrorKind, statusCode int) bool {
	if kind == ErrNetwork {
		return true
	}
	switch statusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func isNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
