package source

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CircuitState represents the state of a circuit breaker
type CircuitState int

const (
	CircuitClosed   CircuitState = iota // Normal operation, requests allowed
	CircuitOpen                         // Failures exceeded threshold, requests blocked
	CircuitHalfOpen                     // Testing if service recovered
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig configures the circuit breaker
type CircuitBreakerConfig struct {
	FailureThreshold int           // Number of failures to open circuit (default: 5)
	SuccessThreshold int           // Number of successes in half-open to close (default: 2)
	Timeout          time.Duration // Time to wait before half-open (default: 30s)
	FailureWindow    time.Duration // Window to count failures (default: 1 minute)
}

// DefaultCircuitBreakerConfig returns the default circuit breaker configuration
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Timeout:          30 * time.Second,
		FailureWindow:    1 * time.Minute,
	}
}

// CircuitBreaker stops fetching from a host that keeps failing
type CircuitBreaker struct {
	name   string
	config CircuitBreakerConfig
	logger *zap.Logger

	mu              sync.Mutex
	state           CircuitState
	failures        []time.Time // Recent failure timestamps
	successes       int         // Consecutive successes in half-open state
	lastStateChange time.Time
}

// NewCircuitBreaker creates a new circuit breaker
func NewCircuitBreaker(name string, config CircuitBreakerConfig, logger *zap.Logger) *CircuitBreaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CircuitBreaker{
		name:            name,
		config:          config,
		logger:          logger,
		state:           CircuitClosed,
		lastStateChange: time.Now(),
	}
}

// Allow returns a CircuitOpenError when requests are blocked.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitOpen:
		if time.Since(cb.lastStateChange) >= cb.config.Timeout {
			cb.transitionTo(CircuitHalfOpen)
			return nil
		}
		return &CircuitOpenError{Source: cb.name}
	default:
		return nil
	}
}

// Record updates the breaker with the result of a request. Client errors
// (4xx, invalid URLs) and cancellation do not count as failures.
func (cb *CircuitBreaker) Record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil {
		cb.recordSuccess()
	} else if isHostFailure(err) {
		cb.recordFailure(time.Now())
	}
}

func isHostFailure(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.IsRetryable()
	}
	var validationErr *ValidationError
	var circuitErr *CircuitOpenError
	if errors.As(err, &validationErr) || errors.As(err, &circuitErr) {
		return false
	}
	return !errors.Is(err, context.Canceled)
}

func (cb *CircuitBreaker) recordSuccess() {
	switch cb.state {
	case CircuitHalfOpen:
		cb.successes++
		if cb.successes >= cb.config.SuccessThreshold {
			cb.transitionTo(CircuitClosed)
		}
	case CircuitClosed:
		cb.failures = cb.failures[:0]
	}
}

func (cb *CircuitBreaker) recordFailure(now time.Time) {
	cb.failures = append(cb.failures, now)

	cutoff := now.Add(-cb.config.FailureWindow)
	recent := cb.failures[:0]
	for _, t := range cb.failures {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	cb.failures = recent

	switch cb.state {
	case CircuitClosed:
		if len(cb.failures) >= cb.config.FailureThreshold {
			cb.transitionTo(CircuitOpen)
		}
	case CircuitHalfOpen:
		cb.transitionTo(CircuitOpen)
	}
}

func (cb *CircuitBreaker) transitionTo(newState CircuitState) {
	if cb.state == newState {
		return
	}

	oldState := cb.state
	cb.state = newState
	cb.lastStateChange = time.Now()
	cb.successes = 0
	if newState == CircuitClosed {
		cb.failures = cb.failures[:0]
	}

	cb.logger.Info("circuit state changed",
		zap.String("host", cb.name),
		zap.Stringer("from", oldState),
		zap.Stringer("to", newState))
}

// State returns the current circuit state
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset forces the circuit breaker to closed state
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = CircuitClosed
	cb.failures = cb.failures[:0]
	cb.successes = 0
	cb.lastStateChange = time.Now()
}
