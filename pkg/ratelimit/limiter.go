package ratelimit

import (
	"sync"
	"time"
)

// MinRequestsPerSecond is the floor enforced on configured rates. Anything
// lower would make a large comment thread take hours and usually means a
// mistyped value.
const MinRequestsPerSecond = 0.1

// Limiter defines the interface for rate limiting
type Limiter interface {
	// Wait blocks until the rate limit allows another request
	Wait()
	// Reset resets the rate limiter state
	Reset()
}

// Interval enforces a minimum wall-clock interval between the start times of
// consecutive requests. Concurrent callers serialize through a single mutex:
// each caller sleeps out the remainder of the interval since the last granted
// request, then stamps the new grant time before releasing the gate. Unused
// capacity does not carry over.
type Interval struct {
	interval time.Duration
	last     time.Time
	mu       sync.Mutex
}

// NewInterval creates an interval limiter for the given requests-per-second
// rate. Rates below MinRequestsPerSecond are clamped up to it.
func NewInterval(requestsPerSecond float64) *Interval {
	if requestsPerSecond < MinRequestsPerSecond {
		requestsPerSecond = MinRequestsPerSecond
	}
	return &Interval{
		interval: time.Duration(float64(time.Second) / requestsPerSecond),
	}
}

// Wait blocks until the minimum interval since the last granted request has
// elapsed, then records the new grant. The first call never blocks.
func (l *Interval) Wait() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.last.IsZero() {
		if wait := l.interval - time.Since(l.last); wait > 0 {
			time.Sleep(wait)
		}
	}
	l.last = time.Now()
}

// Reset forgets the last grant so the next Wait proceeds immediately
func (l *Interval) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.last = time.Time{}
}

// IntervalDuration returns the enforced minimum spacing between requests
func (l *Interval) IntervalDuration() time.Duration {
	return l.interval
}
