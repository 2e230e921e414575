// Package circuit implements a connect-time circuit breaker for remote
// backend adapters (HDFS, S3): LifecycleController wraps each remote
// backend's connect/health-check call so a flapping namenode or endpoint
// doesn't retry-storm on every Init.
package circuit

import (
	"errors"
	"sync"
	"time"
)

// State is one of the three circuit breaker states.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// ErrOpen is returned by Execute when the breaker is open.
var ErrOpen = errors.New("circuit breaker is open")

// Config configures a Breaker.
type Config struct {
	// FailureThreshold is the number of consecutive failures in the closed
	// state that trips the breaker open.
	FailureThreshold int
	// OpenTimeout is how long the breaker stays open before allowing a
	// single half-open probe.
	OpenTimeout time.Duration
}

// DefaultConfig returns sensible defaults for backend connect checks.
func DefaultConfig() Config {
	return Config{FailureThreshold: 3, OpenTimeout: 30 * time.Second}
}

// Breaker is a simple consecutive-failure circuit breaker.
type Breaker struct {
	mu          sync.Mutex
	config      Config
	state       State
	failures    int
	openedAt    time.Time
}

// New creates a Breaker in the closed state.
func New(config Config) *Breaker {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 3
	}
	if config.OpenTimeout <= 0 {
		config.OpenTimeout = 30 * time.Second
	}
	return &Breaker{config: config, state: StateClosed}
}

// State reports the breaker's current state, allowing an open breaker whose
// OpenTimeout has elapsed to transition to half-open.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maybeHalfOpenLocked()
	return b.state
}

func (b *Breaker) maybeHalfOpenLocked() {
	if b.state == StateOpen && time.Since(b.openedAt) >= b.config.OpenTimeout {
		b.state = StateHalfOpen
	}
}

// Execute runs fn if the breaker allows it (closed, or half-open for a
// single probe), recording success/failure to drive state transitions.
func (b *Breaker) Execute(fn func() error) error {
	b.mu.Lock()
	b.maybeHalfOpenLocked()
	if b.state == StateOpen {
		b.mu.Unlock()
		return ErrOpen
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.failures++
		if b.state == StateHalfOpen || b.failures >= b.config.FailureThreshold {
			b.state = StateOpen
			b.openedAt = time.Now()
		}
		return err
	}

	b.failures = 0
	b.state = StateClosed
	return nil
}
