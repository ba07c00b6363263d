// internal/poll/loop.go
// Package poll implements the cancellable polling loop shared by the job
// tracker and the comparison session. A Loop owns its timer outright: the
// phases are idle -> starting -> polling -> {done, error}, polling is the
// only phase with an active timer, and entering done or error stops the
// timer unconditionally.
package poll

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/boxworks/labelhub/internal/logging"
)

// Phase is the lifecycle state of a Loop.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseStarting
	PhasePolling
	PhaseDone
	PhaseError
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseStarting:
		return "starting"
	case PhasePolling:
		return "polling"
	case PhaseDone:
		return "done"
	case PhaseError:
		return "error"
	}
	return "unknown"
}

// TickFunc runs one poll cycle. Returning done=true ends the loop normally.
// A plain error is logged and swallowed; the next tick is the retry. An
// error wrapped with Terminal ends the loop in the error phase.
type TickFunc func(ctx context.Context) (done bool, err error)

type terminalError struct {
	err error
}

func (e terminalError) Error() string { return e.err.Error() }
func (e terminalError) Unwrap() error { return e.err }

// Terminal marks err as fatal to the loop: the loop stops and reports it
// instead of retrying on the next tick.
func Terminal(err error) error {
	return terminalError{err: err}
}

// ErrNotIdle is returned when Start is called on a loop that already ran.
var ErrNotIdle = errors.New("poll: loop already started")

// Loop drives a TickFunc on a fixed cadence with an optional initial delay.
// Starting and stopping go through this single handle; there is no other
// timer to leak.
type Loop struct {
	interval     time.Duration
	initialDelay time.Duration
	tick         TickFunc

	mu     sync.Mutex
	phase  Phase
	err    error
	cancel context.CancelFunc
	done   chan struct{}
}

// New constructs a Loop. initialDelay may be zero for an immediate first tick.
func New(interval, initialDelay time.Duration, tick TickFunc) *Loop {
	return &Loop{
		interval:     interval,
		initialDelay: initialDelay,
		tick:         tick,
		phase:        PhaseIdle,
		done:         make(chan struct{}),
	}
}

// Start launches the loop. It may be called once; a Loop is not reusable.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	if l.phase != PhaseIdle {
		l.mu.Unlock()
		return ErrNotIdle
	}
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.phase = PhaseStarting
	l.mu.Unlock()

	go l.run(ctx)
	return nil
}

func (l *Loop) run(ctx context.Context) {
	defer close(l.done)

	if l.initialDelay > 0 {
		timer := time.NewTimer(l.initialDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			l.finish(PhaseDone, nil)
			return
		}
	}

	l.setPhase(PhasePolling)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		done, err := l.tick(ctx)
		if err != nil {
			var terminal terminalError
			if errors.As(err, &terminal) {
				l.finish(PhaseError, terminal.err)
				return
			}
			// Cycle errors self-heal on the next tick.
			logging.LogEvent("poll cycle error: %v", err)
		}
		if done {
			l.finish(PhaseDone, nil)
			return
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			l.finish(PhaseDone, nil)
			return
		}
	}
}

func (l *Loop) setPhase(p Phase) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.phase == PhaseDone || l.phase == PhaseError {
		return
	}
	l.phase = p
}

func (l *Loop) finish(p Phase, err error) {
	l.mu.Lock()
	if l.phase != PhaseDone && l.phase != PhaseError {
		l.phase = p
		l.err = err
	}
	cancel := l.cancel
	l.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Stop cancels the loop. Stopping never cancels server-side jobs; it only
// clears the client's timer. Safe to call more than once and before Start.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel := l.cancel
	l.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Phase returns the loop's current phase.
func (l *Loop) Phase() Phase {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.phase
}

// Done is closed once the loop has fully stopped.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Err reports the terminal error, if the loop ended in the error phase.
func (l *Loop) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Wait blocks until the loop stops or ctx expires.
func (l *Loop) Wait(ctx context.Context) error {
	select {
	case <-l.done:
		return l.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}
