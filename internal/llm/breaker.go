package llm

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	breakerThreshold = 5
	breakerCooldown  = time.Minute
)

// Breaker is a circuit breaker over LLM calls: it opens after a run of
// consecutive failures and lets a probe through once the cooldown expires.
type Breaker struct {
	mu          sync.Mutex
	failures    int
	open        bool
	lastFailure time.Time
	now         func() time.Time // injectable for tests
}

// NewBreaker returns a closed breaker.
func NewBreaker() *Breaker {
	return &Breaker{now: time.Now}
}

// Allow reports whether a call may proceed. An open breaker half-opens after
// the cooldown: the next call is allowed through as a probe.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		return true
	}
	if b.now().Sub(b.lastFailure) > breakerCooldown {
		log.Info().Msg("Circuit breaker cooldown expired, allowing probe")
		b.open = false
		return true
	}
	return false
}

// RecordSuccess resets the failure run and closes the breaker.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.open {
		log.Info().Msg("Call succeeded, closing circuit breaker")
	}
	b.failures = 0
	b.open = false
}

// RecordFailure counts a failure and opens the breaker once the run reaches
// the threshold.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	if b.failures >= breakerThreshold && !b.open {
		log.Error().Int("failures", b.failures).Msg("Opening circuit breaker")
		b.open = true
	}
	b.lastFailure = b.now()
}
