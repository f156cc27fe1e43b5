package rest

import (
	"errors"
	"math"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

// RetryConfig controls the GET retry policy. Mutations are exempt.
type RetryConfig struct {
	// MaxAttempts is the total number of tries, first attempt included.
	MaxAttempts int
	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration
	// MaxBackoff caps the exponential growth.
	MaxBackoff time.Duration
	// Jitter randomises each delay by +/- this fraction.
	Jitter float64
	// RetryableStatusCodes are responses worth a second try.
	RetryableStatusCodes []int
}

// DefaultRetryConfig returns the documented policy: three attempts,
// exponential backoff with jitter, on rate limiting and server faults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		Jitter:         0.2,
		RetryableStatusCodes: []int{
			http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout,
		},
	}
}

func (rc RetryConfig) retryable(status int) bool {
	for _, code := range rc.RetryableStatusCodes {
		if status == code {
			return true
		}
	}
	return false
}

func (rc RetryConfig) backoff(attempt int) time.Duration {
	d := float64(rc.InitialBackoff) * math.Pow(2, float64(attempt-1))
	if max := float64(rc.MaxBackoff); d > max {
		d = max
	}
	if rc.Jitter > 0 {
		d += d * rc.Jitter * (rand.Float64()*2 - 1)
	}
	return time.Duration(d)
}

// ErrCircuitOpen is returned while the breaker is refusing requests.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// BreakerConfig controls the circuit breaker in front of the API.
type BreakerConfig struct {
	// FailureThreshold is the consecutive-failure count that opens the
	// circuit. Zero disables the breaker.
	FailureThreshold int
	// Cooldown is how long the circuit stays open before a probe request
	// is allowed through.
	Cooldown time.Duration
}

// DefaultBreakerConfig returns the default breaker policy.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{FailureThreshold: 5, Cooldown: 30 * time.Second}
}

// Breaker is a minimal consecutive-failure circuit breaker. After
// FailureThreshold transport failures in a row it refuses requests for
// Cooldown, then lets one probe through; a success closes it again.
type Breaker struct {
	mu       sync.Mutex
	cfg      BreakerConfig
	failures int
	openedAt time.Time
}

// NewBreaker creates a breaker; a zero config disables it.
func NewBreaker(cfg BreakerConfig) *Breaker {
	return &Breaker{cfg: cfg}
}

// Allow reports whether a request may proceed.
func (b *Breaker) Allow() error {
	if b.cfg.FailureThreshold <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failures < b.cfg.FailureThreshold {
		return nil
	}
	if time.Since(b.openedAt) >= b.cfg.Cooldown {
		// Half-open: admit a single probe by resetting to one-below
		// threshold. A failure reopens immediately.
		b.failures = b.cfg.FailureThreshold - 1
		return nil
	}
	return ErrCircuitOpen
}

// RecordSuccess closes the circuit.
func (b *Breaker) RecordSuccess() {
	if b.cfg.FailureThreshold <= 0 {
		return
	}
	b.mu.Lock()
	b.failures = 0
	b.mu.Unlock()
}

// RecordFailure counts a transport failure.
func (b *Breaker) RecordFailure() {
	if b.cfg.FailureThreshold <= 0 {
		return
	}
	b.mu.Lock()
	b.failures++
	if b.failures == b.cfg.FailureThreshold {
		b.openedAt = time.Now()
	}
	b.mu.Unlock()
}
