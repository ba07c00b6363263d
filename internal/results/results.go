// internal/results/results.go
// Package results fetches per-job result detail and aggregates historical
// job summaries for the dashboard views.
package results

import (
	"context"
	"sort"
	"sync"

	"github.com/boxworks/labelhub/internal/api"
	"github.com/boxworks/labelhub/internal/appconfig"
)

// Viewer tracks the job whose detailed results are currently displayed. A
// failed fetch clears the selection so the consumer never renders detail for
// a job it could not load.
type Viewer struct {
	client *api.Client

	mu      sync.Mutex
	current *api.JobResults
}

// NewViewer constructs a Viewer backed by the given client.
func NewViewer(client *api.Client) *Viewer {
	return &Viewer{client: client}
}

// Select fetches the full results payload for jobID and makes it current.
// On any error the current selection is cleared and the error returned.
func (v *Viewer) Select(ctx context.Context, jobID string) (api.JobResults, error) {
	res, err := v.client.JobResults(ctx, jobID)
	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.current = nil
		return api.JobResults{}, err
	}
	v.current = &res
	return res, nil
}

// Current returns the selected results payload, or false when none is
// selected.
func (v *Viewer) Current() (api.JobResults, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.current == nil {
		return api.JobResults{}, false
	}
	return *v.current, true
}

// Clear drops the current selection.
func (v *Viewer) Clear() {
	v.mu.Lock()
	v.current = nil
	v.mu.Unlock()
}

// Overall holds the unweighted means across all visible summaries. Each run
// counts once regardless of how many images it processed.
type Overall struct {
	Runs                int
	ExactMatchRate      float64
	NormalizedMatchRate float64
	CER                 float64
}

// EngineStats holds the per-engine means across visible summaries.
type EngineStats struct {
	Engine              api.Engine
	Runs                int
	ExactMatchRate      float64
	NormalizedMatchRate float64
	CER                 float64
}

// FieldAggregate holds the per-field means across visible summaries,
// weighted by each run's sample count for that field. A run that saw more
// samples of a field contributes proportionally more.
type FieldAggregate struct {
	Field               string
	SampleCount         int
	ExactMatchRate      float64
	NormalizedMatchRate float64
	AverageCER          float64
}

// Dashboard is the aggregated view over a window of job summaries.
type Dashboard struct {
	Summaries []api.SummaryRow
	Overall   Overall
	Engines   []EngineStats
	Fields    []FieldAggregate
}

// Build aggregates summary rows against the live job list. Rows whose job
// no longer exists are dropped first, so the dashboard stays consistent
// after deletions.
func Build(jobs []api.Job, rows []api.SummaryRow) Dashboard {
	live := make(map[string]bool, len(jobs))
	for _, job := range jobs {
		live[job.JobID] = true
	}

	var visible []api.SummaryRow
	for _, row := range rows {
		if live[row.JobID] {
			visible = append(visible, row)
		}
	}

	return Dashboard{
		Summaries: visible,
		Overall:   overall(visible),
		Engines:   byEngine(visible),
		Fields:    byField(visible),
	}
}

func overall(rows []api.SummaryRow) Overall {
	o := Overall{Runs: len(rows)}
	if o.Runs == 0 {
		return o
	}
	for _, row := range rows {
		o.ExactMatchRate += row.OverallExactMatchRate
		o.NormalizedMatchRate += row.OverallNormalizedMatchRate
		o.CER += row.OverallCER
	}
	n := float64(o.Runs)
	o.ExactMatchRate /= n
	o.NormalizedMatchRate /= n
	o.CER /= n
	return o
}

func byEngine(rows []api.SummaryRow) []EngineStats {
	groups := make(map[api.Engine]*EngineStats)
	var order []api.Engine
	for _, row := range rows {
		g, ok := groups[row.Engine]
		if !ok {
			g = &EngineStats{Engine: row.Engine}
			groups[row.Engine] = g
			order = append(order, row.Engine)
		}
		g.Runs++
		g.ExactMatchRate += row.OverallExactMatchRate
		g.NormalizedMatchRate += row.OverallNormalizedMatchRate
		g.CER += row.OverallCER
	}

	out := make([]EngineStats, 0, len(order))
	for _, engine := range order {
		g := groups[engine]
		n := float64(g.Runs)
		g.ExactMatchRate /= n
		g.NormalizedMatchRate /= n
		g.CER /= n
		out = append(out, *g)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ExactMatchRate > out[j].ExactMatchRate
	})
	return out
}

func byField(rows []api.SummaryRow) []FieldAggregate {
	groups := make(map[string]*FieldAggregate)
	for _, row := range rows {
		for field, stats := range row.PerFieldStats {
			if stats.SampleCount <= 0 {
				continue
			}
			g, ok := groups[field]
			if !ok {
				g = &FieldAggregate{Field: field}
				groups[field] = g
			}
			w := float64(stats.SampleCount)
			g.SampleCount += stats.SampleCount
			g.ExactMatchRate += stats.ExactMatchRate * w
			g.NormalizedMatchRate += stats.NormalizedMatchRate * w
			g.AverageCER += stats.AverageCER * w
		}
	}

	out := make([]FieldAggregate, 0, len(groups))
	for _, g := range groups {
		w := float64(g.SampleCount)
		g.ExactMatchRate /= w
		g.NormalizedMatchRate /= w
		g.AverageCER /= w
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

// Load fetches the live job list and the summary window, then builds the
// dashboard in one call.
func Load(ctx context.Context, client *api.Client, cfg *appconfig.Config) (Dashboard, error) {
	jobs, err := client.Jobs(ctx, cfg.ListLimit())
	if err != nil {
		return Dashboard{}, err
	}
	rows, err := client.JobSummaries(ctx, cfg.SummaryWindow())
	if err != nil {
		return Dashboard{}, err
	}
	return Build(jobs, rows), nil
}
