// internal/coco/yolo.go
package coco

import (
	"fmt"
	"sort"
	"strings"
)

// Labelmap assigns each category a zero-based class index, ordered by
// category id. The same ordering must be used for every image in a dataset
// or the uploaded classes will not line up.
func (m Manifest) Labelmap() map[int]int {
	ids := make([]int, 0, len(m.Categories))
	for _, c := range m.Categories {
		ids = append(ids, c.ID)
	}
	sort.Ints(ids)

	indexByID := make(map[int]int, len(ids))
	for i, id := range ids {
		indexByID[id] = i
	}
	return indexByID
}

// LabelmapText renders the labelmap in the "index: name" form the
// annotation platform expects alongside YOLO annotation files.
func (m Manifest) LabelmapText() string {
	indexByID := m.Labelmap()
	nameByID := make(map[int]string, len(m.Categories))
	for _, c := range m.Categories {
		nameByID[c.ID] = c.Name
	}

	lines := make([]string, len(indexByID))
	for id, idx := range indexByID {
		lines[idx] = fmt.Sprintf("%d: %s", idx, nameByID[id])
	}
	return strings.Join(lines, "\n")
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// YOLOLine converts one absolute COCO box to a normalized center-format
// YOLO line: "class cx cy w h" with each value in [0, 1]. Boxes extending
// past the image edge are clamped rather than rejected.
func YOLOLine(classIndex int, bbox []float64, imageWidth, imageHeight int) (string, error) {
	if len(bbox) < 4 {
		return "", fmt.Errorf("coco: bbox needs 4 values, got %d", len(bbox))
	}
	if imageWidth <= 0 || imageHeight <= 0 {
		return "", fmt.Errorf("coco: image dimensions %dx%d are not usable", imageWidth, imageHeight)
	}

	w := float64(imageWidth)
	h := float64(imageHeight)
	cx := clamp01((bbox[0] + bbox[2]/2) / w)
	cy := clamp01((bbox[1] + bbox[3]/2) / h)
	bw := clamp01(bbox[2] / w)
	bh := clamp01(bbox[3] / h)

	return fmt.Sprintf("%d %.6f %.6f %.6f %.6f", classIndex, cx, cy, bw, bh), nil
}

// YOLOAnnotation renders the full YOLO annotation text for one image: one
// line per annotation, manifest order preserved.
func (m Manifest) YOLOAnnotation(img Image) (string, error) {
	indexByID := m.Labelmap()

	var lines []string
	for _, a := range m.AnnotationsFor(img.ID) {
		idx, ok := indexByID[a.CategoryID]
		if !ok {
			return "", fmt.Errorf("coco: annotation %d references unknown category %d", a.ID, a.CategoryID)
		}
		line, err := YOLOLine(idx, a.BBox, img.Width, img.Height)
		if err != nil {
			return "", fmt.Errorf("coco: annotation %d: %w", a.ID, err)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}
