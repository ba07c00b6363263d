// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// legacyConfigPath is the path to the configuration file used in previous versions.
	legacyConfigPath = "config.json"
	// defaultAPIURL is the inference backend used when nothing else is configured.
	defaultAPIURL = "http://localhost:8000"
	// defaultAnnotationURL is the annotation platform endpoint.
	defaultAnnotationURL = "https://api.roboflow.com"
	// defaultRequestTimeout is the default timeout for HTTP requests.
	defaultRequestTimeout = 60 * time.Second
	// defaultPollInterval is the single-job polling cadence.
	defaultPollInterval = 2000 * time.Millisecond
	// defaultComparePollInterval is the comparison-session cadence. It is
	// longer than the single-job interval to bound load on the shared backend.
	defaultComparePollInterval = 5000 * time.Millisecond
	// defaultCompareInitialDelay gives the backend time to register batch jobs
	// before the first list fetch.
	defaultCompareInitialDelay = 2000 * time.Millisecond
	// defaultCompareStagger spaces out per-job summary fetches within a cycle.
	defaultCompareStagger = 200 * time.Millisecond
	// defaultJobListLimit caps the job list fetch.
	defaultJobListLimit = 50
	// defaultSummaryLimit is the rolling window of historical summaries shown
	// on the dashboard.
	defaultSummaryLimit = 20
)

// Config represents the top-level application configuration. The backend URL
// lives here and nowhere else; every client takes it from the loaded Config.
type Config struct {
	APIURL                string `json:"apiURL,omitempty"`
	TimeoutSeconds        int    `json:"timeout,omitempty"`
	Debug                 bool   `json:"debug"`
	LogFile               string `json:"logFile,omitempty"`
	PollIntervalMS        int    `json:"pollIntervalMs,omitempty"`
	ComparePollIntervalMS int    `json:"comparePollIntervalMs,omitempty"`
	CompareInitialDelayMS int    `json:"compareInitialDelayMs,omitempty"`
	CompareStaggerMS      int    `json:"compareStaggerMs,omitempty"`
	JobListLimit          int    `json:"jobListLimit,omitempty"`
	SummaryLimit          int    `json:"summaryLimit,omitempty"`
	UseGPU                bool   `json:"useGpu"`
	StorageBucket         string `json:"storageBucket,omitempty"`
	StorageRegion         string `json:"storageRegion,omitempty"`
	AnnotationURL         string `json:"annotationURL,omitempty"`
	AnnotationWorkspace   string `json:"annotationWorkspace,omitempty"`
	AnnotationProject     string `json:"annotationProject,omitempty"`
	AnnotationAPIKey      string `json:"annotationApiKey,omitempty"`
	ConfigPath            string `json:"-"`
}

// BaseURL returns the inference backend base URL, applying the default if unset.
func (c Config) BaseURL() string {
	if u := strings.TrimSpace(c.APIURL); u != "" {
		return u
	}
	return defaultAPIURL
}

// AnnotationBaseURL returns the annotation platform base URL, applying the
// default if unset.
func (c Config) AnnotationBaseURL() string {
	if u := strings.TrimSpace(c.AnnotationURL); u != "" {
		return u
	}
	return defaultAnnotationURL
}

// RequestTimeout returns the timeout duration for HTTP requests, falling back to the default if not specified.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// PollInterval returns the single-job polling cadence.
func (c Config) PollInterval() time.Duration {
	if c.PollIntervalMS <= 0 {
		return defaultPollInterval
	}
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// ComparePollInterval returns the comparison-session polling cadence.
func (c Config) ComparePollInterval() time.Duration {
	if c.ComparePollIntervalMS <= 0 {
		return defaultComparePollInterval
	}
	return time.Duration(c.ComparePollIntervalMS) * time.Millisecond
}

// CompareInitialDelay returns the delay before a comparison session's first poll.
func (c Config) CompareInitialDelay() time.Duration {
	if c.CompareInitialDelayMS <= 0 {
		return defaultCompareInitialDelay
	}
	return time.Duration(c.CompareInitialDelayMS) * time.Millisecond
}

// CompareStagger returns the spacing between summary fetches in one cycle.
func (c Config) CompareStagger() time.Duration {
	if c.CompareStaggerMS < 0 {
		return 0
	}
	if c.CompareStaggerMS == 0 {
		return defaultCompareStagger
	}
	return time.Duration(c.CompareStaggerMS) * time.Millisecond
}

// ListLimit returns the job list fetch cap.
func (c Config) ListLimit() int {
	if c.JobListLimit <= 0 {
		return defaultJobListLimit
	}
	return c.JobListLimit
}

// SummaryWindow returns the number of historical summaries shown on the dashboard.
func (c Config) SummaryWindow() int {
	if c.SummaryLimit <= 0 {
		return defaultSummaryLimit
	}
	return c.SummaryLimit
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return "labelhub.log"
}

// ApplyEnv overlays environment variables onto the configuration. Environment
// wins over the config file so deployments can point at a different backend
// without editing JSON.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv("LABELHUB_API_URL")); v != "" {
		c.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv("LABELHUB_BUCKET")); v != "" {
		c.StorageBucket = v
	}
	if v := strings.TrimSpace(os.Getenv("ROBOFLOW_API_KEY")); v != "" {
		c.AnnotationAPIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("ROBOFLOW_WORKSPACE")); v != "" {
		c.AnnotationWorkspace = v
	}
	if v := strings.TrimSpace(os.Getenv("ROBOFLOW_PROJECT")); v != "" {
		c.AnnotationProject = v
	}
}

// Load reads the application configuration from the specified path, with fallback to a legacy path.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	config, err := loadFromPath(path)
	if err == nil {
		config.ConfigPath = path
		config.ApplyEnv()
		return config, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		if path == DefaultConfigPath {
			config, legacyErr := loadFromPath(legacyConfigPath)
			if legacyErr == nil {
				config.ConfigPath = legacyConfigPath
				config.ApplyEnv()
				return config, nil
			}
			if errors.Is(legacyErr, os.ErrNotExist) {
				// No file at all is fine: defaults plus environment cover
				// the whole configuration surface.
				config = Config{}
				config.ApplyEnv()
				return config, nil
			}
			return Config{}, fmt.Errorf("could not read config file %q: %w", legacyConfigPath, legacyErr)
		}
		return Config{}, fmt.Errorf("no configuration file found at %q", path)
	}

	return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
}

// loadFromPath is a helper function that loads the configuration from a specific file path.
func loadFromPath(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	if err := json.NewDecoder(file).Decode(&config); err != nil {
		return Config{}, err
	}
	if config.TimeoutSeconds <= 0 {
		config.TimeoutSeconds = int(defaultRequestTimeout.Seconds())
	}

	return config, nil
}
