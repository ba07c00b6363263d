// internal/api/client.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/boxworks/labelhub/internal/appconfig"
	"github.com/boxworks/labelhub/internal/logging"
)

// Client talks to the inference backend over JSON HTTP.
type Client struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

// New constructs a Client from the application configuration.
func New(cfg *appconfig.Config) *Client {
	timeout := cfg.RequestTimeout()
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL(), "/"),
		client: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{ForceAttemptHTTP2: false},
		},
		timeout: timeout,
	}
}

// BaseURL returns the backend base URL the client was configured with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health checks backend availability via GET /health.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var health HealthStatus
	if err := c.getJSON(ctx, "/health", &health); err != nil {
		return HealthStatus{}, err
	}
	return health, nil
}

// Datasets lists the dataset versions available for inference.
func (c *Client) Datasets(ctx context.Context) ([]DatasetInfo, error) {
	var datasets []DatasetInfo
	if err := c.getJSON(ctx, "/datasets", &datasets); err != nil {
		return nil, err
	}
	return datasets, nil
}

// Engines lists the OCR engines the backend can run.
func (c *Client) Engines(ctx context.Context) ([]EngineInfo, error) {
	var engines []EngineInfo
	if err := c.getJSON(ctx, "/ocr-engines", &engines); err != nil {
		return nil, err
	}
	return engines, nil
}

// PreprocessingOptions lists the preprocessing variants the backend implements.
func (c *Client) PreprocessingOptions(ctx context.Context) ([]PreprocessingOption, error) {
	var options []PreprocessingOption
	if err := c.getJSON(ctx, "/preprocessing-options", &options); err != nil {
		return nil, err
	}
	return options, nil
}

// StartInference submits a single inference job.
func (c *Client) StartInference(ctx context.Context, req StartRequest) (StartResponse, error) {
	var resp StartResponse
	if err := c.postJSON(ctx, "/inference/start", req, &resp); err != nil {
		return StartResponse{}, err
	}
	return resp, nil
}

// StartBatch submits one job per preprocessing option for comparison runs.
func (c *Client) StartBatch(ctx context.Context, req StartBatchRequest) (StartBatchResponse, error) {
	var resp StartBatchResponse
	if err := c.postJSON(ctx, "/inference/start-batch", req, &resp); err != nil {
		return StartBatchResponse{}, err
	}
	return resp, nil
}

// Jobs lists recent inference jobs, newest first.
func (c *Client) Jobs(ctx context.Context, limit int) ([]Job, error) {
	path := "/inference/jobs"
	if limit > 0 {
		path += "?limit=" + fmt.Sprint(limit)
	}
	var jobs []Job
	if err := c.getJSON(ctx, path, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// JobStatus fetches the current status of one job.
func (c *Client) JobStatus(ctx context.Context, jobID string) (Job, error) {
	var job Job
	if err := c.getJSON(ctx, "/inference/jobs/"+url.PathEscape(jobID)+"/status", &job); err != nil {
		return Job{}, err
	}
	return job, nil
}

// JobResults fetches the full results payload for a job.
func (c *Client) JobResults(ctx context.Context, jobID string) (JobResults, error) {
	var results JobResults
	if err := c.getJSON(ctx, "/inference/jobs/"+url.PathEscape(jobID)+"/results", &results); err != nil {
		return JobResults{}, err
	}
	return results, nil
}

// JobSummaries fetches a rolling window of historical job summaries.
func (c *Client) JobSummaries(ctx context.Context, limit int) ([]SummaryRow, error) {
	path := "/inference/job-summaries"
	if limit > 0 {
		path += "?limit=" + fmt.Sprint(limit)
	}
	var rows []SummaryRow
	if err := c.getJSON(ctx, path, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteJob removes one job and its related data from the backend.
func (c *Client) DeleteJob(ctx context.Context, jobID string) error {
	return c.do(ctx, http.MethodDelete, "/inference/jobs/"+url.PathEscape(jobID), nil, nil)
}

// BatchDelete removes several jobs in one request.
func (c *Client) BatchDelete(ctx context.Context, jobIDs []string) error {
	payload := map[string][]string{"job_ids": jobIDs}
	return c.do(ctx, http.MethodPost, "/inference/jobs/batch-delete", payload, nil)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	return c.do(ctx, http.MethodPost, path, payload, out)
}

// do issues one JSON request. Non-2xx responses become *Error carrying the
// server's own message.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + path

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		logging.LogRequest("HUB->API", c.baseURL, method, path, data)
		body = bytes.NewReader(data)
	} else {
		logging.LogRequest("HUB->API", c.baseURL, method, path, nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	logging.LogRequest("API->HUB", c.baseURL, method, path, respBody)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
