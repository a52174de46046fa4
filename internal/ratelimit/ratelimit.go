package ratelimit

import (
	"errors"
	"sync"
	"time"

	"github.com/deusflow/pabot/internal/logger"
)

var ErrBudgetExhausted = errors.New("ai request budget exhausted")

// Budget caps AI generation requests per reset window (daily by default).
type Budget struct {
	mu        sync.Mutex
	name      string
	max       int // 0 = unlimited
	count     int
	window    time.Duration
	resetTime time.Time
	now       func() time.Time
}

// NewBudget creates a budget that allows max requests per window.
func NewBudget(name string, max int, window time.Duration) *Budget {
	if window <= 0 {
		window = 24 * time.Hour
	}
	b := &Budget{
		name:   name,
		max:    max,
		window: window,
		now:    time.Now,
	}
	b.resetTime = b.now().Add(window)
	return b
}

// SetClock replaces the time source. Intended for tests.
func (b *Budget) SetClock(now func() time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
	b.resetTime = now().Add(b.window)
}

// Use consumes one request or returns ErrBudgetExhausted.
func (b *Budget) Use() error {
	if b == nil {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.checkReset()

	if b.max > 0 && b.count >= b.max {
		logger.Warn("AI rate limit reached", "provider", b.name, "used", b.count, "max", b.max)
		return ErrBudgetExhausted
	}

	b.count++
	logger.Debug("AI usage", "provider", b.name, "used", b.count, "max", b.max)
	return nil
}

// Remaining returns how many requests are left, or -1 when unlimited.
func (b *Budget) Remaining() int {
	if b == nil {
		return -1
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.checkReset()

	if b.max <= 0 {
		return -1
	}
	return b.max - b.count
}

// checkReset must be called with mu held.
func (b *Budget) checkReset() {
	now := b.now()
	if now.After(b.resetTime) {
		b.count = 0
		b.resetTime = now.Add(b.window)
	}
}
