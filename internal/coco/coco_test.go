// internal/coco/coco_test.go
package coco

import (
	"strings"
	"testing"
)

const sampleManifest = `{
	"images": [
		{"id": 1, "file_name": "box_001.jpg", "width": 640, "height": 480},
		{"id": 2, "file_name": "box_002.jpg", "width": 800, "height": 600}
	],
	"annotations": [
		{"id": 10, "image_id": 1, "category_id": 7, "bbox": [160, 120, 320, 240]},
		{"id": 11, "image_id": 1, "category_id": 3, "bbox": [0, 0, 64, 48]},
		{"id": 12, "image_id": 2, "category_id": 7, "bbox": [700, 500, 200, 200]}
	],
	"categories": [
		{"id": 7, "name": "serial_number"},
		{"id": 3, "name": "barcode"}
	]
}`

func TestParseManifest(t *testing.T) {
	t.Parallel()

	m, err := ParseManifest([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	if len(m.Images) != 2 || len(m.Annotations) != 3 || len(m.Categories) != 2 {
		t.Fatalf("unexpected manifest shape: %+v", m)
	}

	img, ok := m.ImageByFileName("box_002.jpg")
	if !ok || img.ID != 2 {
		t.Fatalf("ImageByFileName: %+v ok=%v", img, ok)
	}
	if got := m.AnnotationsFor(1); len(got) != 2 {
		t.Fatalf("expected 2 annotations for image 1, got %d", len(got))
	}
}

func TestParseManifestRejectsMalformed(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		data string
	}{
		{"missing sections", `{"images": []}`},
		{"short bbox", `{"images": [], "categories": [], "annotations": [{"image_id": 1, "category_id": 1, "bbox": [1, 2]}]}`},
		{"image without dimensions", `{"annotations": [], "categories": [], "images": [{"id": 1, "file_name": "a.jpg"}]}`},
		{"not json", `images: []`},
	}
	for _, tc := range cases {
		if _, err := ParseManifest([]byte(tc.data)); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestLabelmapOrderedByCategoryID(t *testing.T) {
	t.Parallel()

	m, err := ParseManifest([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}

	indexByID := m.Labelmap()
	if indexByID[3] != 0 || indexByID[7] != 1 {
		t.Fatalf("expected indices ordered by category id, got %v", indexByID)
	}
	if got := m.LabelmapText(); got != "0: barcode\n1: serial_number" {
		t.Fatalf("unexpected labelmap text:\n%s", got)
	}
}

func TestYOLOLine(t *testing.T) {
	t.Parallel()

	// A 320x240 box at (160,120) in a 640x480 image: center (320,240),
	// normalized (0.5, 0.5), size (0.5, 0.5).
	line, err := YOLOLine(1, []float64{160, 120, 320, 240}, 640, 480)
	if err != nil {
		t.Fatalf("YOLOLine: %v", err)
	}
	if line != "1 0.500000 0.500000 0.500000 0.500000" {
		t.Fatalf("unexpected line: %q", line)
	}

	if _, err := YOLOLine(0, []float64{1, 2, 3}, 640, 480); err == nil {
		t.Fatalf("short bbox must be rejected")
	}
	if _, err := YOLOLine(0, []float64{0, 0, 1, 1}, 0, 480); err == nil {
		t.Fatalf("zero-width image must be rejected")
	}
}

func TestYOLOLineClampsOverflowingBoxes(t *testing.T) {
	t.Parallel()

	line, err := YOLOLine(0, []float64{700, 500, 200, 200}, 800, 600)
	if err != nil {
		t.Fatalf("YOLOLine: %v", err)
	}
	for i, field := range strings.Fields(line)[1:] {
		if field > "1.000000" {
			t.Fatalf("field %d not clamped: %q", i, line)
		}
	}
}

func TestYOLOAnnotation(t *testing.T) {
	t.Parallel()

	m, err := ParseManifest([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	img, _ := m.ImageByFileName("box_001.jpg")

	text, err := m.YOLOAnnotation(img)
	if err != nil {
		t.Fatalf("YOLOAnnotation: %v", err)
	}
	lines := strings.Split(text, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), text)
	}
	// serial_number has index 1, barcode index 0, and manifest order is kept.
	if !strings.HasPrefix(lines[0], "1 ") || !strings.HasPrefix(lines[1], "0 ") {
		t.Fatalf("unexpected class indices:\n%s", text)
	}

	m.Annotations = append(m.Annotations, Annotation{ID: 99, ImageID: 1, CategoryID: 42, BBox: []float64{0, 0, 1, 1}})
	if _, err := m.YOLOAnnotation(img); err == nil {
		t.Fatalf("unknown category must be rejected")
	}
}
