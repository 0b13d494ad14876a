package resilience

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrCircuitOpen     = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("too many requests")
)

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Settings configures the circuit breaker behavior
type Settings struct {
	// FailureThreshold is the number of consecutive failures that opens the circuit
	FailureThreshold int
	// Cooldown is how long the circuit stays open before probing
	Cooldown time.Duration
	// HalfOpenSuccesses is the number of probe successes needed to close again
	HalfOpenSuccesses int
	// IsFailure decides whether an error counts against the circuit.
	// Defaults to any non-nil error.
	IsFailure func(err error) bool
	// OnStateChange is called whenever the state changes
	OnStateChange func(name string, from State, to State)
	// Clock returns the current time
	Clock func() time.Time
}

// Breaker guards calls to a dependency that may be down.
type Breaker struct {
	name     string
	settings Settings

	mu        sync.Mutex
	state     State
	failures  int
	successes int
	inFlight  int
	openedAt  time.Time
}

// New creates a new circuit breaker with the given settings
func New(name string, settings Settings) *Breaker {
	if settings.FailureThreshold <= 0 {
		settings.FailureThreshold = 5
	}
	if settings.Cooldown <= 0 {
		settings.Cooldown = 30 * time.Second
	}
	if settings.HalfOpenSuccesses <= 0 {
		settings.HalfOpenSuccesses = 1
	}
	if settings.IsFailure == nil {
		settings.IsFailure = func(err error) bool { return err != nil }
	}
	if settings.Clock == nil {
		settings.Clock = time.Now
	}
	return &Breaker{name: name, settings: settings}
}

// Name returns the name of the circuit breaker
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state, moving an expired open circuit to half-open.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refresh()
	return b.state
}

// Do runs fn unless the circuit is open. fn's error is returned unchanged.
func (b *Breaker) Do(fn func() error) error {
	if err := b.acquire(); err != nil {
		return err
	}

	defer func() {
		if e := recover(); e != nil {
			b.release(true)
			panic(e)
		}
	}()

	err := fn()
	b.release(err != nil && b.settings.IsFailure(err))
	return err
}

func (b *Breaker) acquire() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refresh()

	switch b.state {
	case StateOpen:
		return ErrCircuitOpen
	case StateHalfOpen:
		// One probe at a time.
		if b.inFlight > 0 {
			return ErrTooManyRequests
		}
	}
	b.inFlight++
	return nil
}

func (b *Breaker) release(failed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inFlight--

	switch b.state {
	case StateClosed:
		if !failed {
			b.failures = 0
			return
		}
		b.failures++
		if b.failures >= b.settings.FailureThreshold {
			b.transition(StateOpen)
		}
	case StateHalfOpen:
		if failed {
			b.transition(StateOpen)
			return
		}
		b.successes++
		if b.successes >= b.settings.HalfOpenSuccesses {
			b.transition(StateClosed)
		}
	}
}

// refresh moves an open circuit to half-open once the cooldown has passed.
// The caller holds b.mu.
func (b *Breaker) refresh() {
	if b.state == StateOpen && !b.settings.Clock().Before(b.openedAt.Add(b.settings.Cooldown)) {
		b.transition(StateHalfOpen)
	}
}

// transition changes state and resets counters. The caller holds b.mu.
func (b *Breaker) transition(to State) {
	if b.state == to {
		return
	}
	from := b.state
	b.state = to
	b.failures = 0
	b.successes = 0
	if to == StateOpen {
		b.openedAt = b.settings.Clock()
	}
	if b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, from, to)
	}
}
