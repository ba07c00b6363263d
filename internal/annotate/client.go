// internal/annotate/client.go
// Package annotate talks to the annotation platform's REST API: project
// listing, image upload, and YOLO annotation upload.
package annotate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/boxworks/labelhub/internal/appconfig"
	"github.com/boxworks/labelhub/internal/logging"
)

// Project is one annotation project in the workspace.
type Project struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Images int    `json:"images"`
}

type projectList struct {
	Projects []Project `json:"projects"`
}

// UploadResult is the platform's answer to an image upload. The returned id
// keys the follow-up annotation upload.
type UploadResult struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

type annotateResult struct {
	Success bool `json:"success"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

// Client is the annotation platform HTTP client. The api key rides in the
// query string on every call, which is the platform's convention.
type Client struct {
	baseURL   string
	workspace string
	project   string
	apiKey    string
	client    *http.Client
	timeout   time.Duration
}

// New constructs a Client from configuration.
func New(cfg *appconfig.Config) *Client {
	return &Client{
		baseURL:   cfg.AnnotationBaseURL(),
		workspace: cfg.AnnotationWorkspace,
		project:   cfg.AnnotationProject,
		apiKey:    cfg.AnnotationAPIKey,
		client: &http.Client{
			Transport: &http.Transport{ForceAttemptHTTP2: false},
		},
		timeout: cfg.RequestTimeout(),
	}
}

func (c *Client) url(path string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)
	return c.baseURL + path + "?" + query.Encode()
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, contentType string, body []byte, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.url(path, query), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("annotate: build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	logging.LogRequest("HUB->ANNOTATE", c.baseURL, method, path, "")
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("annotate: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("annotate: read response: %w", err)
	}
	logging.LogRequest("ANNOTATE->HUB", c.baseURL, method, path, "")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope apiError
		if json.Unmarshal(data, &envelope) == nil {
			if envelope.Error.Message != "" {
				return fmt.Errorf("annotate: %s", envelope.Error.Message)
			}
			if envelope.Message != "" {
				return fmt.Errorf("annotate: %s", envelope.Message)
			}
		}
		return fmt.Errorf("annotate: HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("annotate: decode response: %w", err)
	}
	return nil
}

// ListProjects lists the projects in the configured workspace.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var list projectList
	if err := c.do(ctx, http.MethodGet, "/"+c.workspace, nil, "", nil, &list); err != nil {
		return nil, err
	}
	return list.Projects, nil
}

// UploadImage uploads one image under its file name and returns the
// platform-assigned image id.
func (c *Client) UploadImage(ctx context.Context, name string, image []byte) (UploadResult, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", name)
	if err != nil {
		return UploadResult{}, fmt.Errorf("annotate: build form: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return UploadResult{}, fmt.Errorf("annotate: build form: %w", err)
	}
	if err := form.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("annotate: build form: %w", err)
	}

	query := url.Values{"name": {name}}
	var result UploadResult
	err = c.do(ctx, http.MethodPost, "/dataset/"+c.project+"/upload", query, form.FormDataContentType(), buf.Bytes(), &result)
	if err != nil {
		return UploadResult{}, err
	}
	if !result.Success {
		return result, fmt.Errorf("annotate: upload of %s was not accepted", name)
	}
	return result, nil
}

// UploadAnnotation attaches a YOLO annotation file plus its labelmap to a
// previously uploaded image.
func (c *Client) UploadAnnotation(ctx context.Context, imageID, name, yoloText, labelmap string) error {
	query := url.Values{
		"name":     {name + ".txt"},
		"labelmap": {labelmap},
	}
	var result annotateResult
	err := c.do(ctx, http.MethodPost, "/dataset/"+c.project+"/annotate/"+imageID, query, "text/plain", []byte(yoloText), &result)
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("annotate: annotation for %s was not accepted", name)
	}
	return nil
}
