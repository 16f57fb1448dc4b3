package imageproxy

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// breakerState is the state of the blob store circuit
type breakerState int

const (
	breakerClosed   breakerState = iota // reads go through
	breakerOpen                         // reads fail fast
	breakerHalfOpen                     // one probe read allowed
)

func (s breakerState) String() string {
	switch s {
	case breakerOpen:
		return "open"
	case breakerHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// breaker stops hammering the blob store after consecutive infrastructure
// failures. Missing or oversized assets are not failures of the store and
// must not be recorded.
type breaker struct {
	lastFailure time.Time
	now         func() time.Time
	failures    int
	threshold   int
	openFor     time.Duration
	state       breakerState
	mu          sync.Mutex
}

func newBreaker(threshold int, openFor time.Duration) *breaker {
	return &breaker{
		threshold: threshold,
		openFor:   openFor,
		now:       time.Now,
	}
}

// allow reports whether a read may be attempted. After openFor has elapsed an
// open circuit lets exactly one probe through.
func (b *breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case breakerOpen:
		retryAt := b.lastFailure.Add(b.openFor)
		if b.now().Before(retryAt) {
			return fmt.Errorf("blob store circuit open after %d failures, next attempt at %s",
				b.failures, retryAt.Format(time.TimeOnly))
		}
		b.transition(breakerHalfOpen)
		return nil
	case breakerHalfOpen:
		return fmt.Errorf("blob store circuit half-open, probe in flight")
	default:
		return nil
	}
}

func (b *breaker) success() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	if b.state != breakerClosed {
		b.transition(breakerClosed)
	}
}

func (b *breaker) failure(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.lastFailure = b.now()

	if b.state == breakerHalfOpen || b.failures >= b.threshold {
		if b.state != breakerOpen {
			slog.Warn("[IMAGE-PROXY] opening blob store circuit",
				"failures", b.failures,
				"error", err)
		}
		b.state = breakerOpen
		return
	}
	slog.Debug("[IMAGE-PROXY] blob store read failed",
		"failures", b.failures,
		"threshold", b.threshold,
		"error", err)
}

// transition must be called with mu held
func (b *breaker) transition(to breakerState) {
	slog.Info("[IMAGE-PROXY] blob store circuit state change", "from", b.state.String(), "to", to.String())
	b.state = to
}

func (b *breaker) current() breakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
