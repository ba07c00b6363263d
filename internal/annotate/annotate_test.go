// internal/annotate/annotate_test.go
package annotate

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/boxworks/labelhub/internal/appconfig"
)

const testManifest = `{
	"images": [
		{"id": 1, "file_name": "box_001.jpg", "width": 640, "height": 480},
		{"id": 2, "file_name": "box_002.jpg", "width": 640, "height": 480}
	],
	"annotations": [
		{"id": 10, "image_id": 1, "category_id": 1, "bbox": [160, 120, 320, 240]},
		{"id": 11, "image_id": 2, "category_id": 1, "bbox": [0, 0, 64, 48]}
	],
	"categories": [{"id": 1, "name": "serial_number"}]
}`

type fakeSource struct {
	manifest string
	images   map[string]string
}

func (f *fakeSource) Manifest(ctx context.Context, version, dataset string) ([]byte, error) {
	return []byte(f.manifest), nil
}

func (f *fakeSource) ImageKeys(ctx context.Context, version, dataset string) ([]string, error) {
	keys := make([]string, 0, len(f.images))
	for key := range f.images {
		keys = append(keys, key)
	}
	return keys, nil
}

func (f *fakeSource) ImageBytes(ctx context.Context, key string) ([]byte, error) {
	body, ok := f.images[key]
	if !ok {
		return nil, fmt.Errorf("no such key %q", key)
	}
	return []byte(body), nil
}

func testClient(url string) *Client {
	return New(&appconfig.Config{
		AnnotationURL:       url,
		AnnotationWorkspace: "boxworks",
		AnnotationProject:   "labels",
		AnnotationAPIKey:    "test-key",
		TimeoutSeconds:      5,
	})
}

func TestListProjects(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/boxworks" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("api_key") != "test-key" {
			t.Errorf("api key missing from query")
		}
		_, _ = w.Write([]byte(`{"projects": [{"id": "labels", "name": "Box Labels", "type": "object-detection", "images": 42}]}`))
	}))
	defer server.Close()

	projects, err := testClient(server.URL).ListProjects(context.Background())
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(projects) != 1 || projects[0].ID != "labels" || projects[0].Images != 42 {
		t.Fatalf("unexpected projects: %+v", projects)
	}
}

func TestUploadErrorMessageSurfaced(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": {"message": "workspace quota exceeded"}}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).UploadImage(context.Background(), "box_001.jpg", []byte("jpeg"))
	if err == nil || !strings.Contains(err.Error(), "workspace quota exceeded") {
		t.Fatalf("expected platform message, got %v", err)
	}
}

// TestUploaderRun walks the full flow: manifest fetch, per-image upload,
// annotation upload keyed by the returned image id, and skip/failure
// accounting.
func TestUploaderRun(t *testing.T) {
	t.Parallel()

	var uploads, annotations int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/dataset/labels/upload":
			uploads++
			name := r.URL.Query().Get("name")
			if name == "box_002.jpg" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error": {"message": "corrupt image"}}`))
				return
			}
			fmt.Fprintf(w, `{"success": true, "id": "img-%s"}`, name)
		case strings.HasPrefix(r.URL.Path, "/dataset/labels/annotate/"):
			annotations++
			if got := r.URL.Path; got != "/dataset/labels/annotate/img-box_001.jpg" {
				t.Errorf("annotation keyed by wrong id: %s", got)
			}
			if labelmap := r.URL.Query().Get("labelmap"); !strings.Contains(labelmap, "serial_number") {
				t.Errorf("labelmap missing: %q", labelmap)
			}
			_, _ = w.Write([]byte(`{"success": true}`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	source := &fakeSource{
		manifest: testManifest,
		images: map[string]string{
			"v3/default/box_001.jpg": "jpeg1",
			"v3/default/box_002.jpg": "jpeg2",
			"v3/default/box_003.jpg": "jpeg3", // not in the manifest
		},
	}

	var progressCalls int
	u := NewUploader(source, testClient(server.URL), func(p Progress) { progressCalls++ })
	report, err := u.Run(context.Background(), "v3", "default")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Total != 3 || report.Uploaded != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(report.Skipped) != 1 || report.Skipped[0] != "box_003.jpg" {
		t.Fatalf("expected box_003.jpg skipped, got %v", report.Skipped)
	}
	if len(report.Failed) != 1 || report.Failed[0] != "box_002.jpg" {
		t.Fatalf("expected box_002.jpg failed, got %v", report.Failed)
	}
	if uploads != 2 || annotations != 1 {
		t.Fatalf("expected 2 uploads and 1 annotation, got %d/%d", uploads, annotations)
	}
	if progressCalls != 3 {
		t.Fatalf("expected 3 progress callbacks, got %d", progressCalls)
	}
}

func TestUploaderRejectsBadManifest(t *testing.T) {
	t.Parallel()

	source := &fakeSource{manifest: `{"images": []}`}
	u := NewUploader(source, testClient("http://localhost:0"), nil)
	if _, err := u.Run(context.Background(), "v3", "default"); err == nil {
		t.Fatalf("invalid manifest must abort the run")
	}
}
