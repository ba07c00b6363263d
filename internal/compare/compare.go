// internal/compare/compare.go
// Package compare runs preprocessing comparison sessions: one inference job
// per preprocessing variant, polled together until every job settles, then
// ranked by overall exact-match rate.
package compare

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/boxworks/labelhub/internal/api"
	"github.com/boxworks/labelhub/internal/appconfig"
	"github.com/boxworks/labelhub/internal/logging"
	"github.com/boxworks/labelhub/internal/poll"
)

// ErrTooFewOptions rejects comparison runs before any network call is made.
var ErrTooFewOptions = errors.New("compare: at least two preprocessing options are required")

// Comparison is the transient client-side record for one variant in a batch
// run. It exists only for the duration of the session and is never persisted.
type Comparison struct {
	Preprocessing api.Preprocessing
	JobID         string
	Status        api.JobStatus
	Summary       *api.Summary
}

// NormalizeSelection reconciles a preprocessing selection with the chosen
// engine. An engine without preprocessing support is forced to exactly
// ["none"] regardless of any prior selection.
func NormalizeSelection(engine api.Engine, options []api.Preprocessing) []api.Preprocessing {
	if !engine.SupportsPreprocessing() {
		return []api.Preprocessing{api.PreprocessingNone}
	}
	return options
}

// Validate checks a comparison request client-side. It must pass before the
// batch start request is issued.
func Validate(engine api.Engine, options []api.Preprocessing) error {
	if !engine.Valid() {
		return fmt.Errorf("compare: unknown engine %q", engine)
	}
	if !engine.SupportsPreprocessing() {
		return fmt.Errorf("compare: engine %q runs end to end and cannot be compared across preprocessing variants", engine)
	}
	if len(options) < 2 {
		return ErrTooFewOptions
	}
	seen := make(map[api.Preprocessing]bool, len(options))
	for _, opt := range options {
		if !opt.Valid() {
			return fmt.Errorf("compare: unknown preprocessing option %q", opt)
		}
		if seen[opt] {
			return fmt.Errorf("compare: duplicate preprocessing option %q", opt)
		}
		seen[opt] = true
	}
	return nil
}

// Session drives one comparison run. The polling cadence is deliberately
// slower than the single-job poller, and each cycle issues exactly one
// job-list request rather than per-job status calls, to bound load on the
// shared backend.
type Session struct {
	id           string
	client       *api.Client
	interval     time.Duration
	initialDelay time.Duration
	stagger      time.Duration
	listLimit    int
	onUpdate     func([]Comparison)

	mu          sync.Mutex
	comparisons []*Comparison
	loop        *poll.Loop
}

// NewSession constructs a comparison session. onUpdate may be nil; when set
// it receives a copy of the comparison records after every poll cycle.
func NewSession(client *api.Client, cfg *appconfig.Config, onUpdate func([]Comparison)) *Session {
	return &Session{
		id:           uuid.NewString(),
		client:       client,
		interval:     cfg.ComparePollInterval(),
		initialDelay: cfg.CompareInitialDelay(),
		stagger:      cfg.CompareStagger(),
		listLimit:    cfg.ListLimit(),
		onUpdate:     onUpdate,
	}
}

// ID returns the session's identifier, used only for logging.
func (s *Session) ID() string {
	return s.id
}

// Start validates the selection, submits the batch, and begins polling. The
// first poll waits for the configured initial delay so the backend has time
// to register the new jobs.
func (s *Session) Start(ctx context.Context, engine api.Engine, datasetVersion, datasetName string, options []api.Preprocessing, useGPU bool) (api.StartBatchResponse, error) {
	if err := Validate(engine, options); err != nil {
		return api.StartBatchResponse{}, err
	}

	resp, err := s.client.StartBatch(ctx, api.StartBatchRequest{
		Engine:               engine,
		DatasetVersion:       datasetVersion,
		DatasetName:          datasetName,
		PreprocessingOptions: options,
		UseGPU:               useGPU,
	})
	if err != nil {
		return resp, err
	}
	if !resp.Success {
		return resp, nil
	}
	if len(resp.JobIDs) != len(options) {
		return resp, fmt.Errorf("compare: backend returned %d job ids for %d options", len(resp.JobIDs), len(options))
	}

	comparisons := make([]*Comparison, len(options))
	for i, opt := range options {
		comparisons[i] = &Comparison{
			Preprocessing: opt,
			JobID:         resp.JobIDs[i],
			Status:        api.StatusPending,
		}
	}

	s.mu.Lock()
	s.comparisons = comparisons
	loop := poll.New(s.interval, s.initialDelay, s.tick)
	s.loop = loop
	s.mu.Unlock()

	logging.LogEvent("comparison session %s started: engine=%s dataset=%s variants=%d", s.id, engine, datasetVersion, len(options))
	return resp, loop.Start(ctx)
}

// tick runs one poll cycle: a single job-list fetch, status reconciliation,
// then summary fetches for newly completed jobs. The list fetch always
// happens before any summary fetch that depends on it.
func (s *Session) tick(ctx context.Context) (bool, error) {
	jobs, err := s.client.Jobs(ctx, s.listLimit)
	if err != nil {
		return false, err
	}

	byID := make(map[string]api.Job, len(jobs))
	for _, job := range jobs {
		byID[job.JobID] = job
	}

	s.mu.Lock()
	var needSummary []*Comparison
	for _, c := range s.comparisons {
		job, ok := byID[c.JobID]
		if !ok {
			// Not registered yet; the initial delay usually covers this,
			// otherwise the next cycle picks it up.
			continue
		}
		if !c.Status.Terminal() {
			c.Status = job.Status
		}
		if c.Status == api.StatusCompleted && c.Summary == nil {
			needSummary = append(needSummary, c)
		}
	}
	s.mu.Unlock()

	// Stagger summary fetches so a batch finishing at once does not burst
	// the backend.
	for i, c := range needSummary {
		if i > 0 && s.stagger > 0 {
			timer := time.NewTimer(s.stagger)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return false, ctx.Err()
			}
		}
		results, err := s.client.JobResults(ctx, c.JobID)
		if err != nil {
			logging.LogEvent("comparison session %s: results fetch for %s failed: %v", s.id, c.JobID, err)
			continue
		}
		s.mu.Lock()
		c.Summary = results.Summary
		s.mu.Unlock()
	}

	snapshot := s.Comparisons()
	if s.onUpdate != nil {
		s.onUpdate(snapshot)
	}

	for _, c := range snapshot {
		if !c.Status.Terminal() {
			return false, nil
		}
	}
	return true, nil
}

// Comparisons returns a copy of the session's records in insertion order.
func (s *Session) Comparisons() []Comparison {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Comparison, len(s.comparisons))
	for i, c := range s.comparisons {
		out[i] = *c
	}
	return out
}

// Stop clears the session's polling timer. Server-side jobs keep running.
func (s *Session) Stop() {
	s.mu.Lock()
	loop := s.loop
	s.mu.Unlock()
	if loop != nil {
		loop.Stop()
	}
}

// Phase reports the underlying loop phase.
func (s *Session) Phase() poll.Phase {
	s.mu.Lock()
	loop := s.loop
	s.mu.Unlock()
	if loop == nil {
		return poll.PhaseIdle
	}
	return loop.Phase()
}

// Wait blocks until the session's polling stops or ctx expires.
func (s *Session) Wait(ctx context.Context) error {
	s.mu.Lock()
	loop := s.loop
	s.mu.Unlock()
	if loop == nil {
		return nil
	}
	return loop.Wait(ctx)
}

// Rank orders comparisons by overall exact-match rate, best first. The sort
// is stable, so ties keep insertion order, and entries without a summary
// (still loading, or failed) sink to the bottom.
func Rank(comparisons []Comparison) []Comparison {
	ranked := make([]Comparison, len(comparisons))
	copy(ranked, comparisons)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].Summary, ranked[j].Summary
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.OverallExactMatchRate > b.OverallExactMatchRate
	})
	return ranked
}

// Best returns the top-ranked comparison that has a summary, or nil when
// every entry is still loading or failed.
func Best(ranked []Comparison) *Comparison {
	for i := range ranked {
		if ranked[i].Summary != nil {
			return &ranked[i]
		}
	}
	return nil
}
