package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// CircuitBreaker stops calls to a dependency after FailureThreshold
// consecutive failures. Once OpenTimeout has passed it lets up to
// HalfOpenMaxReq trial calls through. The breaker closes when they all
// succeed and reopens on the first trial failure.
type CircuitBreaker struct {
	cfg   CircuitBreakerConfig
	clock func() time.Time

	mu        sync.Mutex
	state     CircuitState
	failures  int
	openedAt  time.Time
	trials    int
	successes int
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		cfg:   cfg.Normalize(),
		clock: time.Now,
		state: CircuitStateClosed,
	}
}

// Allow reserves a call. Every nil return must be followed by RecordSuccess
// or RecordFailure.
func (b *CircuitBreaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.current() {
	case CircuitStateOpen:
		return ErrCircuitOpen
	case CircuitStateHalfOpen:
		if b.state == CircuitStateOpen {
			b.reset(CircuitStateHalfOpen)
		}
		if b.trials >= b.cfg.HalfOpenMaxReq {
			return ErrCircuitOpen
		}
		b.trials++
	}
	return nil
}

func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		b.failures = 0
	case CircuitStateHalfOpen:
		b.successes++
		if b.successes >= b.cfg.HalfOpenMaxReq {
			b.reset(CircuitStateClosed)
		}
	}
}

func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		b.failures++
		if b.failures < b.cfg.FailureThreshold {
			return
		}
	}
	b.reset(CircuitStateOpen)
	b.openedAt = b.clock()
}

// State reports an expired open breaker as half open.
func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current()
}

func (b *CircuitBreaker) current() CircuitState {
	if b.state == CircuitStateOpen && b.clock().Sub(b.openedAt) >= b.cfg.OpenTimeout {
		return CircuitStateHalfOpen
	}
	return b.state
}

func (b *CircuitBreaker) reset(state CircuitState) {
	b.state = state
	b.failures = 0
	b.trials = 0
	b.successes = 0
	if state != CircuitStateOpen {
		b.openedAt = time.Time{}
	}
}
