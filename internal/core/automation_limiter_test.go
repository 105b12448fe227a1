package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestAutomationLimiter_AcquireRelease(t *testing.T) {
	l := NewAutomationLimiter(2, time.Second)
	ctx := context.Background()

	if got := l.Available(); got != 2 {
		t.Errorf("initial Available = %d, want 2", got)
	}
	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("second Acquire: %v", err)
	}
	if got := l.ActiveCount(); got != 2 {
		t.Errorf("ActiveCount = %d, want 2", got)
	}
	if got := l.Available(); got != 0 {
		t.Errorf("Available = %d, want 0", got)
	}

	l.Release()
	l.Release()
	if got := l.ActiveCount(); got != 0 {
		t.Errorf("final ActiveCount = %d, want 0", got)
	}
}

func TestAutomationLimiter_TimesOutWhenFull(t *testing.T) {
	l := NewAutomationLimiter(1, 50*time.Millisecond)
	ctx := context.Background()

	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer l.Release()

	start := time.Now()
	err := l.Acquire(ctx)
	if !errors.Is(err, ErrTooManyAutomations) {
		t.Errorf("Acquire on full limiter = %v, want ErrTooManyAutomations", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("gave up after %v, want about 50ms", elapsed)
	}
}

func TestAutomationLimiter_ContextCancel(t *testing.T) {
	l := NewAutomationLimiter(1, 5*time.Second)
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer l.Release()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Acquire(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Acquire = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Acquire did not return after cancel")
	}
}

func TestAutomationLimiter_TryAcquire(t *testing.T) {
	l := NewAutomationLimiter(1, time.Second)
	if !l.TryAcquire() {
		t.Fatal("first TryAcquire should succeed")
	}
	if l.TryAcquire() {
		t.Error("second TryAcquire should fail")
		l.Release()
	}
	l.Release()
	if !l.TryAcquire() {
		t.Error("TryAcquire after Release should succeed")
	}
	l.Release()
}

func TestAutomationLimiter_NeverExceedsMax(t *testing.T) {
	const limit = 3
	l := NewAutomationLimiter(limit, time.Second)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		observed int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.Do(context.Background(), "test", func(context.Context) error {
				mu.Lock()
				observed = max(observed, l.ActiveCount())
				mu.Unlock()
				time.Sleep(5 * time.Millisecond)
				return nil
			})
			if err != nil {
				t.Errorf("Do: %v", err)
			}
		}()
	}
	wg.Wait()

	if observed > limit {
		t.Errorf("observed %d concurrent automations, max %d", observed, limit)
	}
	if got := l.ActiveCount(); got != 0 {
		t.Errorf("final ActiveCount = %d, want 0", got)
	}
}

func TestAutomationLimiter_DoReturnsFnError(t *testing.T) {
	l := NewAutomationLimiter(1, time.Second)
	want := errors.New("boom")
	if got := l.Do(context.Background(), "test", func(context.Context) error { return want }); !errors.Is(got, want) {
		t.Errorf("Do = %v, want %v", got, want)
	}
	if got := l.Available(); got != 1 {
		t.Errorf("Available after Do = %d, want 1", got)
	}
}

func TestAutomationLimiter_WaitForDrain(t *testing.T) {
	l := NewAutomationLimiter(2, time.Second)
	_ = l.Acquire(context.Background())

	done := make(chan error, 1)
	go func() { done <- l.WaitForDrain(context.Background()) }()

	select {
	case <-done:
		t.Fatal("WaitForDrain returned while a slot was held")
	case <-time.After(30 * time.Millisecond):
	}

	l.Release()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("WaitForDrain = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("WaitForDrain did not return after release")
	}
}

func TestAutomationLimiter_Defaults(t *testing.T) {
	l := NewAutomationLimiter(0, 0)
	if got := l.MaxConcurrent(); got != DefaultMaxConcurrentAutomations {
		t.Errorf("MaxConcurrent = %d, want %d", got, DefaultMaxConcurrentAutomations)
	}
	s := l.Status()
	if s.Available != DefaultMaxConcurrentAutomations || s.Active != 0 {
		t.Errorf("Status = %+v", s)
	}
}
