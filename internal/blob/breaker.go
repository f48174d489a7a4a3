package blob

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"
)

// BreakerState is the circuit state of a Breaker.
type BreakerState int

const (
	Closed   BreakerState = iota // calls reach the backend
	Open                         // calls fail fast with ErrCircuitOpen
	HalfOpen                     // one trial call is let through
)

// ErrCircuitOpen is returned while the backend is considered unavailable.
var ErrCircuitOpen = errors.New("blob store circuit is open")

// Breaker wraps a Store and stops calling it after maxFailures consecutive
// backend errors, until resetTimeout has passed. It never retries.
// ErrNotFound and context cancellation do not count as backend failures.
type Breaker struct {
	next Store

	mu           sync.Mutex
	state        BreakerState
	failures     int
	maxFailures  int
	resetTimeout time.Duration
	lastFailure  time.Time
	trialRunning bool
	now          func() time.Time
}

func NewBreaker(next Store, maxFailures int, resetTimeout time.Duration) *Breaker {
	return &Breaker{
		next:         next,
		state:        Closed,
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		now:          time.Now,
	}
}

func (b *Breaker) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	return b.execute(func() error {
		return b.next.Put(ctx, key, body, size, contentType)
	})
}

func (b *Breaker) Get(ctx context.Context, key string) (*Object, error) {
	var obj *Object
	err := b.execute(func() error {
		var err error
		obj, err = b.next.Get(ctx, key)
		return err
	})
	return obj, err
}

func (b *Breaker) Delete(ctx context.Context, key string) error {
	return b.execute(func() error {
		return b.next.Delete(ctx, key)
	})
}

// State returns the current circuit state.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) execute(fn func() error) error {
	b.mu.Lock()
	trial := false
	switch b.state {
	case Open:
		if b.now().Sub(b.lastFailure) <= b.resetTimeout {
			b.mu.Unlock()
			return ErrCircuitOpen
		}
		b.state = HalfOpen
		b.trialRunning = true
		trial = true
	case HalfOpen:
		if b.trialRunning {
			b.mu.Unlock()
			return ErrCircuitOpen
		}
		b.trialRunning = true
		trial = true
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if trial {
		b.trialRunning = false
	}

	if err != nil && countsAsFailure(err) {
		b.failures++
		b.lastFailure = b.now()
		if b.state == HalfOpen || b.failures >= b.maxFailures {
			b.state = Open
		}
		return err
	}

	b.failures = 0
	b.state = Closed
	return err
}

func countsAsFailure(err error) bool {
	return !errors.Is(err, ErrNotFound) &&
		!errors.Is(err, context.Canceled)
}
