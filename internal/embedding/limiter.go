package embedding

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	backoffBase = 500 * time.Millisecond
	backoffCap  = 30 * time.Second
)

// LimiterState tracks one provider's quota health: a smoothed request pacer,
// a request counter over a fixed window, and the backoff window imposed after
// a rate-limit response. It is shared across requests and safe for concurrent
// use; all updates hold the lock only long enough to touch the counters,
// never across a network call.
type LimiterState struct {
	mu sync.Mutex

	pacer *rate.Limiter

	windowStart     time.Time
	windowLength    time.Duration
	requestsInWindow int

	backoffUntil          time.Time
	consecutiveRateLimits int

	now func() time.Time // injectable for tests
}

// NewLimiterState creates limiter state pacing requests at requestsPerMinute.
// A non-positive value disables pacing.
func NewLimiterState(requestsPerMinute int) *LimiterState {
	s := &LimiterState{
		windowLength: time.Minute,
		now:          time.Now,
	}
	if requestsPerMinute > 0 {
		s.pacer = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), requestsPerMinute)
	}
	return s
}

// ShouldSkip reports whether the provider is inside a backoff window or has
// no pacer tokens available, meaning a call now would be wasted latency.
func (s *LimiterState) ShouldSkip() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.now().Before(s.backoffUntil) {
		return true
	}
	if s.pacer != nil && !s.pacer.Allow() {
		return true
	}
	return false
}

// RecordRequest counts one outbound request against the current window.
func (s *LimiterState) RecordRequest() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.windowStart) >= s.windowLength {
		s.windowStart = now
		s.requestsInWindow = 0
	}
	s.requestsInWindow++
}

// RecordRateLimit opens a backoff window for this provider. retryAfter comes
// from the response headers when available; otherwise exponential backoff on
// the consecutive rate-limit count applies, capped at backoffCap. The count
// resets on RecordSuccess, so a persistently throttled provider waits longer
// each time it is retried.
func (s *LimiterState) RecordRateLimit(retryAfter time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wait := retryAfter
	if wait <= 0 {
		shift := s.consecutiveRateLimits
		if shift > 10 {
			shift = 10
		}
		wait = backoffBase << uint(shift)
		if wait > backoffCap {
			wait = backoffCap
		}
	}
	s.consecutiveRateLimits++
	until := s.now().Add(wait)
	if until.After(s.backoffUntil) {
		s.backoffUntil = until
	}
}

// RecordSuccess clears any active backoff window and the consecutive
// rate-limit count.
func (s *LimiterState) RecordSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backoffUntil = time.Time{}
	s.consecutiveRateLimits = 0
}

// BackoffRemaining returns how long the provider's backoff window has left,
// zero when the provider is healthy.
func (s *LimiterState) BackoffRemaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := s.backoffUntil.Sub(s.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RequestsInWindow returns the request count for the current window.
func (s *LimiterState) RequestsInWindow() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.now().Sub(s.windowStart) >= s.windowLength {
		return 0
	}
	return s.requestsInWindow
}
