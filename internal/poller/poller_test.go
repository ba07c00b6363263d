// internal/poller/poller_test.go
package poller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/boxworks/labelhub/internal/api"
	"github.com/boxworks/labelhub/internal/appconfig"
	"github.com/boxworks/labelhub/internal/poll"
)

func testConfig(url string) *appconfig.Config {
	return &appconfig.Config{
		APIURL:         url,
		TimeoutSeconds: 5,
		PollIntervalMS: 1,
	}
}

// TestPollingStopsAtTerminalStatus verifies that status requests cease once
// the watched job reports a terminal status.
func TestPollingStopsAtTerminalStatus(t *testing.T) {
	t.Parallel()

	var statusCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/inference/jobs/abc/status":
			n := statusCalls.Add(1)
			status := api.StatusRunning
			if n >= 2 {
				status = api.StatusCompleted
			}
			job := api.Job{JobID: "abc", Engine: api.EngineEasyOCR, Status: status, Progress: float64(n) * 50}
			_ = json.NewEncoder(w).Encode(job)
		case "/inference/jobs":
			_ = json.NewEncoder(w).Encode([]api.Job{})
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	p := New(api.New(testConfig(server.URL)), testConfig(server.URL), nil)
	if err := p.Watch(context.Background(), "abc"); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if p.Phase() != poll.PhaseDone {
		t.Fatalf("expected done phase, got %s", p.Phase())
	}

	settled := statusCalls.Load()
	time.Sleep(20 * time.Millisecond)
	if after := statusCalls.Load(); after != settled {
		t.Fatalf("status requests continued after terminal state: %d -> %d", settled, after)
	}

	snapshot := p.Snapshot()
	if snapshot.Watched == nil || snapshot.Watched.Status != api.StatusCompleted {
		t.Fatalf("expected completed watched job, got %+v", snapshot.Watched)
	}
}

// TestStartFailureSurfacesServerMessage verifies the server's error message
// is surfaced verbatim and that no polling begins.
func TestStartFailureSurfacesServerMessage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/inference/start" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"detail": {"message": "engine busy", "error": "conflict"}}`))
	}))
	defer server.Close()

	p := New(api.New(testConfig(server.URL)), testConfig(server.URL), nil)
	_, err := p.StartInference(context.Background(), api.StartRequest{
		Engine:         api.EngineEasyOCR,
		DatasetVersion: "v3",
		Preprocessing:  api.PreprocessingNone,
	})

	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *api.Error, got %v", err)
	}
	if apiErr.Message != "engine busy" {
		t.Fatalf("expected verbatim server message, got %q", apiErr.Message)
	}
	if p.Phase() != poll.PhaseIdle {
		t.Fatalf("polling must not start after a failed start, phase=%s", p.Phase())
	}
}

// TestStartUnsuccessfulResponse verifies a success=false body is returned to
// the caller without an error and without polling.
func TestStartUnsuccessfulResponse(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": false, "message": "engine busy"}`))
	}))
	defer server.Close()

	p := New(api.New(testConfig(server.URL)), testConfig(server.URL), nil)
	resp, err := p.StartInference(context.Background(), api.StartRequest{
		Engine:         api.EngineEasyOCR,
		DatasetVersion: "v3",
		Preprocessing:  api.PreprocessingNone,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Success {
		t.Fatalf("expected success=false")
	}
	if resp.Message != "engine busy" {
		t.Fatalf("expected message passthrough, got %q", resp.Message)
	}
	if p.Phase() != poll.PhaseIdle {
		t.Fatalf("polling must not start, phase=%s", p.Phase())
	}
}

// TestPollingSurvivesCycleErrors verifies a failing cycle is swallowed and
// the loop recovers on a later tick.
func TestPollingSurvivesCycleErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/inference/jobs/abc/status":
			n := calls.Add(1)
			if n == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `{"detail": "transient"}`)
				return
			}
			_ = json.NewEncoder(w).Encode(api.Job{JobID: "abc", Status: api.StatusCompleted, Progress: 100})
		case "/inference/jobs":
			_ = json.NewEncoder(w).Encode([]api.Job{})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	p := New(api.New(testConfig(server.URL)), testConfig(server.URL), nil)
	if err := p.Watch(context.Background(), "abc"); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.Wait(ctx); err != nil {
		t.Fatalf("loop should recover from cycle errors: %v", err)
	}
	if calls.Load() < 2 {
		t.Fatalf("expected at least 2 status calls, got %d", calls.Load())
	}
}

// TestWatchAllStopsWhenListIdle verifies list-only tracking ends once no
// listed job is pending or running.
func TestWatchAllStopsWhenListIdle(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/inference/jobs" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode([]api.Job{
			{JobID: "a", Status: api.StatusCompleted},
			{JobID: "b", Status: api.StatusFailed},
		})
	}))
	defer server.Close()

	p := New(api.New(testConfig(server.URL)), testConfig(server.URL), nil)
	if err := p.WatchAll(context.Background()); err != nil {
		t.Fatalf("WatchAll: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if got := len(p.Snapshot().Jobs); got != 2 {
		t.Fatalf("expected 2 mirrored jobs, got %d", got)
	}
}
