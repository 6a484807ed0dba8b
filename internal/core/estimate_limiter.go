package core

// estimate_limiter.go bounds concurrent estimator calls.
//
// Summaries are recomputed on every builder edit. An Estimator backed by a
// warehouse query can be slow, so callers share a fixed number of slots and
// wait up to maxWait for one before failing with ErrTooManyEstimates.
// WaitForDrain lets shutdown wait for calls in flight.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyEstimates is returned when no estimator slot frees up within
// the wait time.
var ErrTooManyEstimates = errors.New("too many concurrent estimates")

const (
	// DefaultMaxConcurrentEstimates is the default number of estimator slots.
	DefaultMaxConcurrentEstimates = 8

	// DefaultEstimateWait is how long to wait for a slot before rejecting.
	DefaultEstimateWait = 5 * time.Second
)

// EstimateLimiter is a counting semaphore around estimator calls.
type EstimateLimiter struct {
	slots   chan struct{}
	maxWait time.Duration

	mu     sync.RWMutex
	active int
}

// NewEstimateLimiter allows at most maxConcurrent calls at once.
func NewEstimateLimiter(maxConcurrent int, maxWait time.Duration) *EstimateLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentEstimates
	}
	if maxWait <= 0 {
		maxWait = DefaultEstimateWait
	}
	return &EstimateLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot, waiting up to the limiter's wait time. A nil error
// must be paired with exactly one Release.
func (l *EstimateLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyEstimates
	}
}

// Release returns a slot taken by Acquire.
func (l *EstimateLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()
	<-l.slots
}

// ActiveCount returns the number of calls in flight.
func (l *EstimateLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// WaitForDrain blocks until no call is in flight or ctx is done.
func (l *EstimateLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// EstimateLimiterStatus is a snapshot for health reporting.
type EstimateLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"maxConcurrent"`
}

// Status returns the current limiter state.
func (l *EstimateLimiter) Status() EstimateLimiterStatus {
	l.mu.RLock()
	active := l.active
	l.mu.RUnlock()

	return EstimateLimiterStatus{
		Active:        active,
		Available:     cap(l.slots) - len(l.slots),
		MaxConcurrent: cap(l.slots),
	}
}
