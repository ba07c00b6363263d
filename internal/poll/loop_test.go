// internal/poll/loop_test.go
package poll

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestLoopStopsWhenTickReportsDone(t *testing.T) {
	t.Parallel()

	var ticks atomic.Int32
	loop := New(time.Millisecond, 0, func(ctx context.Context) (bool, error) {
		return ticks.Add(1) >= 3, nil
	})

	if err := loop.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := loop.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	if got := ticks.Load(); got != 3 {
		t.Fatalf("expected exactly 3 ticks, got %d", got)
	}
	if loop.Phase() != PhaseDone {
		t.Fatalf("expected done phase, got %s", loop.Phase())
	}

	// No further ticks after the loop is done.
	before := ticks.Load()
	time.Sleep(20 * time.Millisecond)
	if after := ticks.Load(); after != before {
		t.Fatalf("loop kept ticking after done: %d -> %d", before, after)
	}
}

func TestLoopSwallowsCycleErrors(t *testing.T) {
	t.Parallel()

	var ticks atomic.Int32
	loop := New(time.Millisecond, 0, func(ctx context.Context) (bool, error) {
		n := ticks.Add(1)
		if n < 3 {
			return false, errors.New("transient")
		}
		return true, nil
	})

	if err := loop.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := loop.Wait(ctx); err != nil {
		t.Fatalf("cycle errors must not end the loop: %v", err)
	}
	if got := ticks.Load(); got != 3 {
		t.Fatalf("expected loop to continue through errors, got %d ticks", got)
	}
}

func TestLoopTerminalError(t *testing.T) {
	t.Parallel()

	fatal := errors.New("fatal")
	loop := New(time.Millisecond, 0, func(ctx context.Context) (bool, error) {
		return false, Terminal(fatal)
	})

	if err := loop.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := loop.Wait(ctx); !errors.Is(err, fatal) {
		t.Fatalf("expected terminal error, got %v", err)
	}
	if loop.Phase() != PhaseError {
		t.Fatalf("expected error phase, got %s", loop.Phase())
	}
}

func TestLoopStop(t *testing.T) {
	t.Parallel()

	loop := New(time.Millisecond, 0, func(ctx context.Context) (bool, error) {
		return false, nil
	})
	if err := loop.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	loop.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := loop.Wait(ctx); err != nil {
		t.Fatalf("Wait after Stop: %v", err)
	}
	if loop.Phase() != PhaseDone {
		t.Fatalf("expected done phase after Stop, got %s", loop.Phase())
	}
}

func TestLoopStartTwice(t *testing.T) {
	t.Parallel()

	loop := New(time.Millisecond, 0, func(ctx context.Context) (bool, error) {
		return true, nil
	})
	if err := loop.Start(context.Background()); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if err := loop.Start(context.Background()); !errors.Is(err, ErrNotIdle) {
		t.Fatalf("second Start should fail with ErrNotIdle, got %v", err)
	}
}

func TestLoopInitialDelay(t *testing.T) {
	t.Parallel()

	started := time.Now()
	var firstTick atomic.Int64
	loop := New(time.Millisecond, 50*time.Millisecond, func(ctx context.Context) (bool, error) {
		firstTick.CompareAndSwap(0, time.Since(started).Nanoseconds())
		return true, nil
	})
	if err := loop.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := loop.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if elapsed := time.Duration(firstTick.Load()); elapsed < 50*time.Millisecond {
		t.Fatalf("first tick ran before the initial delay elapsed: %v", elapsed)
	}
}
