// internal/api/types.go
// Package api provides the HTTP client for the box label inference backend.
// All job state is owned by the backend; the client only mirrors what the
// server reports and never writes job fields itself.
package api

// JobStatus is the lifecycle state of an inference job as reported by the
// backend. pending -> running -> {completed, failed, cancelled}; the three
// terminal states are final.
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusCancelled JobStatus = "cancelled"
)

// Terminal reports whether no further status transition can occur.
func (s JobStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	case StatusPending, StatusRunning:
		return false
	}
	return false
}

// Active reports whether the job still warrants polling.
func (s JobStatus) Active() bool {
	return s == StatusPending || s == StatusRunning
}

// Engine identifies an OCR engine known to the backend.
type Engine string

const (
	EngineEasyOCR   Engine = "easyocr"
	EnginePaddleOCR Engine = "paddleocr"
	EngineSmolVLM2  Engine = "smolvlm2"
)

// Engines lists every engine the backend can run.
var Engines = []Engine{EngineEasyOCR, EnginePaddleOCR, EngineSmolVLM2}

// Valid reports whether e names a known engine.
func (e Engine) Valid() bool {
	switch e {
	case EngineEasyOCR, EnginePaddleOCR, EngineSmolVLM2:
		return true
	}
	return false
}

// SupportsPreprocessing reports whether crop-level preprocessing applies to
// this engine. smolvlm2 reads the whole label end to end, so the backend
// only accepts the "none" variant for it.
func (e Engine) SupportsPreprocessing() bool {
	switch e {
	case EngineEasyOCR, EnginePaddleOCR:
		return true
	case EngineSmolVLM2:
		return false
	}
	return false
}

// Preprocessing identifies an image-transform pipeline applied before OCR.
type Preprocessing string

const (
	PreprocessingNone            Preprocessing = "none"
	PreprocessingRescale         Preprocessing = "rescale"
	PreprocessingBinarizeOtsu    Preprocessing = "binarize_otsu"
	PreprocessingBinarizeAdapt   Preprocessing = "binarize_adaptive"
	PreprocessingBinarizeSauvola Preprocessing = "binarize_sauvola"
	PreprocessingDenoiseGaussian Preprocessing = "denoise_gaussian"
	PreprocessingDenoiseMedian   Preprocessing = "denoise_median"
	PreprocessingDilation        Preprocessing = "dilation"
	PreprocessingErosion         Preprocessing = "erosion"
	PreprocessingDeskew          Preprocessing = "deskew"
	PreprocessingAddBorder       Preprocessing = "add_border"
	PreprocessingInvert          Preprocessing = "invert"
)

// PreprocessingVariants lists every variant the backend implements.
var PreprocessingVariants = []Preprocessing{
	PreprocessingNone,
	PreprocessingRescale,
	PreprocessingBinarizeOtsu,
	PreprocessingBinarizeAdapt,
	PreprocessingBinarizeSauvola,
	PreprocessingDenoiseGaussian,
	PreprocessingDenoiseMedian,
	PreprocessingDilation,
	PreprocessingErosion,
	PreprocessingDeskew,
	PreprocessingAddBorder,
	PreprocessingInvert,
}

// Valid reports whether p names a known preprocessing variant.
func (p Preprocessing) Valid() bool {
	for _, v := range PreprocessingVariants {
		if p == v {
			return true
		}
	}
	return false
}

// Job mirrors one inference job row from the backend.
type Job struct {
	JobID           string        `json:"job_id"`
	Engine          Engine        `json:"engine"`
	DatasetVersion  string        `json:"dataset_version"`
	DatasetName     string        `json:"dataset_name"`
	Preprocessing   Preprocessing `json:"preprocessing,omitempty"`
	Status          JobStatus     `json:"status"`
	TotalImages     int           `json:"total_images"`
	ProcessedImages int           `json:"processed_images"`
	Progress        float64       `json:"progress"`
	CreatedAt       string        `json:"created_at,omitempty"`
	StartedAt       string        `json:"started_at,omitempty"`
	CompletedAt     string        `json:"completed_at,omitempty"`
	ErrorMessage    string        `json:"error_message,omitempty"`
}

// FieldStats holds per-field accuracy metrics for one run.
type FieldStats struct {
	ExactMatchRate      float64 `json:"exact_match_rate"`
	NormalizedMatchRate float64 `json:"normalized_match_rate"`
	AverageCER          float64 `json:"average_cer"`
	SampleCount         int     `json:"sample_count"`
}

// Summary holds the aggregate metrics for a completed job.
type Summary struct {
	TotalImages                int                   `json:"total_images"`
	OverallExactMatchRate      float64               `json:"overall_exact_match_rate"`
	OverallNormalizedMatchRate float64               `json:"overall_normalized_match_rate"`
	OverallCER                 float64               `json:"overall_cer"`
	PerFieldStats              map[string]FieldStats `json:"per_field_stats"`
}

// SummaryRow is one entry from the job-summaries listing used by the
// dashboard views.
type SummaryRow struct {
	SummaryID                  string                `json:"summary_id"`
	JobID                      string                `json:"job_id"`
	Engine                     Engine                `json:"engine"`
	DatasetVersion             string                `json:"dataset_version"`
	DatasetName                string                `json:"dataset_name"`
	Preprocessing              Preprocessing         `json:"preprocessing,omitempty"`
	TotalImages                int                   `json:"total_images"`
	OverallExactMatchRate      float64               `json:"overall_exact_match_rate"`
	OverallNormalizedMatchRate float64               `json:"overall_normalized_match_rate"`
	OverallCER                 float64               `json:"overall_cer"`
	PerFieldStats              map[string]FieldStats `json:"per_field_stats"`
	CreatedAt                  string                `json:"created_at,omitempty"`
}

// Detection is one detected label region on an image.
type Detection struct {
	Class      string    `json:"class"`
	Confidence float64   `json:"confidence"`
	BBox       []float64 `json:"bbox"`
}

// ImageResult is the per-image OCR output within a job's results payload.
type ImageResult struct {
	ImageFilename    string            `json:"image_filename"`
	ImagePath        string            `json:"image_path,omitempty"`
	Detections       []Detection       `json:"detections"`
	OCRResults       map[string]string `json:"ocr_results"`
	ProcessingTimeMS float64           `json:"processing_time_ms"`
}

// JobResults is the full results payload for a job.
type JobResults struct {
	Job     Job           `json:"job"`
	Summary *Summary      `json:"summary,omitempty"`
	Images  []ImageResult `json:"images"`
}

// StartRequest is the body for POST /inference/start.
type StartRequest struct {
	Engine         Engine        `json:"engine"`
	DatasetVersion string        `json:"dataset_version"`
	DatasetName    string        `json:"dataset_name"`
	Preprocessing  Preprocessing `json:"preprocessing"`
	UseGPU         bool          `json:"use_gpu"`
}

// StartResponse is the backend's answer to a single-job start.
type StartResponse struct {
	Success       bool   `json:"success"`
	JobID         string `json:"job_id,omitempty"`
	Message       string `json:"message,omitempty"`
	TotalImages   int    `json:"total_images,omitempty"`
	Queued        bool   `json:"queued,omitempty"`
	QueuePosition int    `json:"queue_position,omitempty"`
}

// StartBatchRequest is the body for POST /inference/start-batch.
type StartBatchRequest struct {
	Engine               Engine          `json:"engine"`
	DatasetVersion       string          `json:"dataset_version"`
	DatasetName          string          `json:"dataset_name"`
	PreprocessingOptions []Preprocessing `json:"preprocessing_options"`
	UseGPU               bool            `json:"use_gpu"`
}

// StartBatchResponse is the backend's answer to a batch start. JobIDs are
// returned in the same order as the requested preprocessing options.
type StartBatchResponse struct {
	Success       bool     `json:"success"`
	JobIDs        []string `json:"job_ids"`
	Message       string   `json:"message,omitempty"`
	Queued        bool     `json:"queued,omitempty"`
	QueuePosition int      `json:"queue_position,omitempty"`
}

// EngineInfo describes one OCR engine from GET /ocr-engines.
type EngineInfo struct {
	ID          Engine   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	SupportsGPU bool     `json:"supports_gpu"`
	Languages   []string `json:"languages"`
}

// PreprocessingOption describes one variant from GET /preprocessing-options.
type PreprocessingOption struct {
	ID          Preprocessing `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
}

// DatasetInfo describes one dataset version from GET /datasets.
type DatasetInfo struct {
	Version        string `json:"version"`
	Name           string `json:"name"`
	ImagesDir      string `json:"images_dir"`
	ImageCount     int    `json:"image_count"`
	HasGroundTruth bool   `json:"has_ground_truth"`
}

// HealthStatus is the payload of GET /health.
type HealthStatus struct {
	Status           string `json:"status"`
	Timestamp        string `json:"timestamp"`
	PixeltableStatus string `json:"pixeltable_status"`
}

// Online reports whether the backend considers itself healthy.
func (h HealthStatus) Online() bool {
	return h.Status == "healthy"
}
