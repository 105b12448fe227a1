package core

import (
	"context"
	"sync"
	"time"
)

// Debouncer coalesces bursts of calls: only the last caller within the
// window proceeds. Arming a new wait always cancels the pending one.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	pending chan struct{}
}

// NewDebouncer returns a debouncer with the given quiet window.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Wait blocks for the quiet window. It returns true when no later call
// arrived in the meantime, and false when superseded or when ctx ends.
func (d *Debouncer) Wait(ctx context.Context) bool {
	superseded := make(chan struct{})

	d.mu.Lock()
	if d.pending != nil {
		close(d.pending)
	}
	d.pending = superseded
	d.mu.Unlock()

	if d.delay <= 0 {
		return d.release(superseded)
	}

	timer := time.NewTimer(d.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return d.release(superseded)
	case <-superseded:
		return false
	case <-ctx.Done():
		d.mu.Lock()
		if d.pending == superseded {
			d.pending = nil
		}
		d.mu.Unlock()
		return false
	}
}

// release clears the pending slot when it still belongs to ch.
func (d *Debouncer) release(ch chan struct{}) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending != ch {
		return false
	}
	d.pending = nil
	return true
}
