// internal/poller/poller.go
// Package poller tracks inference jobs against the backend on a fixed
// cadence. The tracked state is always a projection of the last successful
// poll; the poller never writes job fields, it only mirrors what the server
// reports.
package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/boxworks/labelhub/internal/api"
	"github.com/boxworks/labelhub/internal/appconfig"
	"github.com/boxworks/labelhub/internal/poll"
)

// Snapshot is one consistent view of the tracked jobs. Snapshots are
// idempotent copies, so a late write after the consumer has moved on is
// harmless.
type Snapshot struct {
	Jobs      []api.Job
	Watched   *api.Job
	UpdatedAt time.Time
}

// Poller follows one started job, or the whole job list, until nothing
// tracked is pending or running. Its timer lives in a single poll.Loop
// handle; there are no scattered intervals to leak.
type Poller struct {
	client    *api.Client
	interval  time.Duration
	listLimit int
	onUpdate  func(Snapshot)

	mu      sync.Mutex
	jobs    []api.Job
	watchID string
	watched *api.Job
	loop    *poll.Loop
}

// New constructs a Poller. onUpdate may be nil; when set it receives a
// snapshot after every successful poll cycle.
func New(client *api.Client, cfg *appconfig.Config, onUpdate func(Snapshot)) *Poller {
	return &Poller{
		client:    client,
		interval:  cfg.PollInterval(),
		listLimit: cfg.ListLimit(),
		onUpdate:  onUpdate,
	}
}

// StartInference submits a single job and, on success, begins polling it.
// A request-level failure is returned verbatim for the caller to surface;
// no polling starts in that case.
func (p *Poller) StartInference(ctx context.Context, req api.StartRequest) (api.StartResponse, error) {
	resp, err := p.client.StartInference(ctx, req)
	if err != nil {
		return resp, err
	}
	if !resp.Success {
		return resp, nil
	}
	if resp.JobID != "" {
		if err := p.Watch(ctx, resp.JobID); err != nil {
			return resp, err
		}
	}
	return resp, nil
}

// Watch begins polling one job plus the surrounding job list.
func (p *Poller) Watch(ctx context.Context, jobID string) error {
	return p.begin(ctx, jobID)
}

// WatchAll begins polling the job list; the loop ends once no listed job is
// pending or running.
func (p *Poller) WatchAll(ctx context.Context) error {
	return p.begin(ctx, "")
}

func (p *Poller) begin(ctx context.Context, jobID string) error {
	p.mu.Lock()
	if p.loop != nil && p.loop.Phase() != poll.PhaseDone && p.loop.Phase() != poll.PhaseError {
		p.mu.Unlock()
		return fmt.Errorf("poller: already tracking")
	}
	p.watchID = jobID
	p.watched = nil
	loop := poll.New(p.interval, 0, p.tick)
	p.loop = loop
	p.mu.Unlock()
	return loop.Start(ctx)
}

// tick runs one poll cycle: refresh the watched job's status, then the full
// job list. Fetch failures are reported upward where the loop logs and
// swallows them; the next tick self-heals.
func (p *Poller) tick(ctx context.Context) (bool, error) {
	p.mu.Lock()
	watchID := p.watchID
	p.mu.Unlock()

	var errs []error

	if watchID != "" {
		job, err := p.client.JobStatus(ctx, watchID)
		if err != nil {
			errs = append(errs, err)
		} else {
			p.mirrorWatched(job)
		}
	}

	jobs, err := p.client.Jobs(ctx, p.listLimit)
	if err != nil {
		errs = append(errs, err)
	} else {
		p.mu.Lock()
		p.jobs = jobs
		p.mu.Unlock()
	}

	if len(errs) > 0 {
		return false, errors.Join(errs...)
	}

	snapshot := p.Snapshot()
	if p.onUpdate != nil {
		p.onUpdate(snapshot)
	}
	return p.settled(snapshot), nil
}

// mirrorWatched stores the server's view of the watched job. A job that has
// already reached a terminal status is never overwritten, so displayed
// progress can never regress past completion.
func (p *Poller) mirrorWatched(job api.Job) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.watched != nil && p.watched.Status.Terminal() {
		return
	}
	p.watched = &job
}

// settled reports whether every tracked job has reached a terminal status,
// at which point polling stops.
func (p *Poller) settled(s Snapshot) bool {
	if s.Watched != nil {
		return s.Watched.Status.Terminal()
	}
	for _, job := range s.Jobs {
		if job.Status.Active() {
			return false
		}
	}
	return true
}

// Snapshot returns a copy of the tracked state.
func (p *Poller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	jobs := make([]api.Job, len(p.jobs))
	copy(jobs, p.jobs)
	var watched *api.Job
	if p.watched != nil {
		w := *p.watched
		watched = &w
	}
	return Snapshot{Jobs: jobs, Watched: watched, UpdatedAt: time.Now()}
}

// Stop clears the polling timer. The server-side job keeps running; an
// in-flight fetch that resolves later only refreshes a snapshot nobody
// reads.
func (p *Poller) Stop() {
	p.mu.Lock()
	loop := p.loop
	p.mu.Unlock()
	if loop != nil {
		loop.Stop()
	}
}

// Phase reports the underlying loop phase.
func (p *Poller) Phase() poll.Phase {
	p.mu.Lock()
	loop := p.loop
	p.mu.Unlock()
	if loop == nil {
		return poll.PhaseIdle
	}
	return loop.Phase()
}

// Wait blocks until polling stops or ctx expires.
func (p *Poller) Wait(ctx context.Context) error {
	p.mu.Lock()
	loop := p.loop
	p.mu.Unlock()
	if loop == nil {
		return nil
	}
	return loop.Wait(ctx)
}
