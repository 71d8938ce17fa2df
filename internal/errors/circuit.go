package errors

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned when the circuit breaker rejects a call.
var ErrCircuitOpen = New(ErrCodeCircuitOpen, "icon API circuit breaker is open", nil).
	WithSuggestion("the icon API failed repeatedly; wait and retry")

// State represents the circuit breaker state.
type State int

const (
	// StateClosed is the normal state where requests are allowed.
	StateClosed State = iota
	// StateOpen is when the circuit is tripped and requests are blocked.
	StateOpen
	// StateHalfOpen lets a trial request through after the reset timeout.
	StateHalfOpen
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker fails fast once an upstream has failed maxFailures times in a row.
type CircuitBreaker struct {
	name         string
	maxFailures  int
	resetTimeout time.Duration
	onChange     func(name string, from, to State)
	now          func() time.Time

	mu          sync.Mutex
	state       State
	failures    int
	lastFailure time.Time
}

// CircuitBreakerOption configures a CircuitBreaker.
type CircuitBreakerOption func(*CircuitBreaker)

// WithMaxFailures sets the number of consecutive failures before opening the circuit.
func WithMaxFailures(n int) CircuitBreakerOption {
	return func(cb *CircuitBreaker) {
		if n > 0 {
			cb.maxFailures = n
		}
	}
}

// WithResetTimeout sets the time to wait before letting a trial request through.
func WithResetTimeout(d time.Duration) CircuitBreakerOption {
	return func(cb *CircuitBreaker) {
		if d > 0 {
			cb.resetTimeout = d
		}
	}
}

// WithStateChange registers a callback invoked on every state transition.
// It is called without the breaker lock held.
func WithStateChange(fn func(name string, from, to State)) CircuitBreakerOption {
	return func(cb *CircuitBreaker) {
		cb.onChange = fn
	}
}

// NewCircuitBreaker creates a new circuit breaker with the given name.
// Default: 5 failures, 30 second reset timeout.
func NewCircuitBreaker(name string, opts ...CircuitBreakerOption) *CircuitBreaker {
	cb := &CircuitBreaker{
		name:         name,
		maxFailures:  5,
		resetTimeout: 30 * time.Second,
		now:          time.Now,
		state:        StateClosed,
	}
	for _, opt := range opts {
		opt(cb)
	}
	return cb
}

// Name returns the circuit breaker name.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// State returns the current state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentState()
}

// currentState must be called with mu held.
func (cb *CircuitBreaker) currentState() State {
	if cb.state == StateOpen && cb.now().Sub(cb.lastFailure) > cb.resetTimeout {
		return StateHalfOpen
	}
	return cb.state
}

// Failures returns the current consecutive failure count.
func (cb *CircuitBreaker) Failures() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failures
}

// Allow reports whether a request should be let through.
func (cb *CircuitBreaker) Allow() bool {
	return cb.State() != StateOpen
}

// RecordSuccess closes the circuit and resets the failure count.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	from := cb.currentState()
	cb.failures = 0
	cb.state = StateClosed
	cb.mu.Unlock()
	cb.notify(from, StateClosed)
}

// RecordFailure counts a failure. A failed half-open trial reopens immediately.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	from := cb.currentState()
	cb.failures++
	cb.lastFailure = cb.now()
	if from == StateHalfOpen || cb.failures >= cb.maxFailures {
		cb.state = StateOpen
	}
	to := cb.state
	cb.mu.Unlock()
	cb.notify(from, to)
}

func (cb *CircuitBreaker) notify(from, to State) {
	if cb.onChange != nil && from != to {
		cb.onChange(cb.name, from, to)
	}
}

// Execute runs fn through the circuit breaker.
// Returns ErrCircuitOpen without calling fn if the circuit is open.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	_, err := CircuitExecute(cb, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// CircuitExecute runs fn through cb and returns its result.
// Only errors accepted by ShouldTrip count against the circuit.
func CircuitExecute[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	var zero T
	if !cb.Allow() {
		return zero, ErrCircuitOpen
	}

	result, err := fn()
	if err != nil {
		if ShouldTrip(err) {
			cb.RecordFailure()
		}
		return zero, err
	}

	cb.RecordSuccess()
	return result, nil
}

// ShouldTrip reports whether err indicates an unhealthy upstream.
// Plain errors count; IconifyErrors count only when retryable. Cancellation never counts.
func ShouldTrip(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if _, ok := asIconifyError(err); ok {
		return IsRetryable(err)
	}
	return true
}
