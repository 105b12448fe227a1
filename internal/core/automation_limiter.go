package core

// automation_limiter.go bounds how many automation webhooks (title
// generation, translation, competition lookups, imports) run at once across
// all sessions. A caller that cannot get a slot within maxWait gets
// ErrTooManyAutomations.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/JonMunkholm/listingdesk/internal/logging"
)

// ErrTooManyAutomations is returned when no automation slot frees up in time.
var ErrTooManyAutomations = errors.New("too many concurrent automations, please try again later")

const (
	DefaultMaxConcurrentAutomations = 4
	DefaultAutomationWait           = 20 * time.Second
)

// AutomationLimiter is a counting semaphore with a bounded wait.
type AutomationLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int64
}

// NewAutomationLimiter allows maxConcurrent automations at once. Zero or
// negative arguments select the defaults.
func NewAutomationLimiter(maxConcurrent int, maxWait time.Duration) *AutomationLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentAutomations
	}
	if maxWait <= 0 {
		maxWait = DefaultAutomationWait
	}
	return &AutomationLimiter{slots: make(chan struct{}, maxConcurrent), maxWait: maxWait}
}

// Acquire takes a slot, waiting at most maxWait. Every nil return must be
// paired with Release.
func (l *AutomationLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyAutomations
	}
}

// TryAcquire takes a slot only if one is free right now.
func (l *AutomationLimiter) TryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return true
	default:
		return false
	}
}

// Release frees a slot taken by Acquire or TryAcquire.
func (l *AutomationLimiter) Release() {
	l.active.Add(-1)
	<-l.slots
}

// Do runs fn inside a slot. name labels the log lines.
func (l *AutomationLimiter) Do(ctx context.Context, name string, fn func(context.Context) error) error {
	logger := logging.WithFields(ctx, "automation", name)
	if err := l.Acquire(ctx); err != nil {
		logger.Warn("automation rejected", "error", err, "active", l.ActiveCount())
		return err
	}
	defer l.Release()

	start := time.Now()
	err := fn(ctx)
	logger.Info("automation finished",
		"duration_ms", time.Since(start).Milliseconds(),
		"ok", err == nil,
		"client_ip", ClientIP(ctx),
	)
	return err
}

// ActiveCount returns the number of held slots.
func (l *AutomationLimiter) ActiveCount() int { return int(l.active.Load()) }

// MaxConcurrent returns the slot count.
func (l *AutomationLimiter) MaxConcurrent() int { return cap(l.slots) }

// Available returns the number of free slots.
func (l *AutomationLimiter) Available() int { return cap(l.slots) - len(l.slots) }

// WaitForDrain blocks until no slot is held or ctx ends. Used on shutdown.
func (l *AutomationLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// LimiterStatus is exposed on the health endpoint.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status snapshots the limiter.
func (l *AutomationLimiter) Status() LimiterStatus {
	return LimiterStatus{
		Active:        l.ActiveCount(),
		Available:     l.Available(),
		MaxConcurrent: l.MaxConcurrent(),
	}
}
