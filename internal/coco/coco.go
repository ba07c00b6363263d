// internal/coco/coco.go
// Package coco parses COCO annotation manifests and converts their absolute
// bounding boxes to normalized YOLO lines for the annotation platform.
package coco

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Image is one image entry in a COCO manifest.
type Image struct {
	ID       int    `json:"id"`
	FileName string `json:"file_name"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// Annotation is one labeled region. BBox is the COCO convention: absolute
// pixel [x, y, width, height] with x,y at the top-left corner.
type Annotation struct {
	ID         int       `json:"id"`
	ImageID    int       `json:"image_id"`
	CategoryID int       `json:"category_id"`
	BBox       []float64 `json:"bbox"`
}

// Category is one label class.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Manifest is a parsed COCO annotation file.
type Manifest struct {
	Images      []Image      `json:"images"`
	Annotations []Annotation `json:"annotations"`
	Categories  []Category   `json:"categories"`
}

// manifestSchema is the structural contract a manifest must satisfy before
// any conversion runs. Extra keys are allowed; COCO files in the wild carry
// info/licenses blocks this tool does not read.
var manifestSchema = map[string]interface{}{
	"type":     "object",
	"required": []string{"images", "annotations", "categories"},
	"properties": map[string]interface{}{
		"images": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type":     "object",
				"required": []string{"id", "file_name", "width", "height"},
			},
		},
		"annotations": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type":     "object",
				"required": []string{"image_id", "category_id", "bbox"},
				"properties": map[string]interface{}{
					"bbox": map[string]interface{}{
						"type":     "array",
						"minItems": 4,
						"items":    map[string]interface{}{"type": "number"},
					},
				},
			},
		},
		"categories": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type":     "object",
				"required": []string{"id", "name"},
			},
		},
	},
}

// ParseManifest validates data against the COCO manifest schema and decodes
// it. Validation errors carry every failing path, not just the first.
func ParseManifest(data []byte) (Manifest, error) {
	schemaLoader := gojsonschema.NewGoLoader(manifestSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return Manifest{}, fmt.Errorf("coco: manifest validation: %w", err)
	}
	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return Manifest{}, fmt.Errorf("coco: invalid manifest: %s", strings.Join(problems, "; "))
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("coco: decode manifest: %w", err)
	}
	return m, nil
}

// ImageByFileName finds the manifest entry for an object key's base name.
func (m Manifest) ImageByFileName(name string) (Image, bool) {
	for _, img := range m.Images {
		if img.FileName == name {
			return img, true
		}
	}
	return Image{}, false
}

// AnnotationsFor returns every annotation attached to the given image id,
// in manifest order.
func (m Manifest) AnnotationsFor(imageID int) []Annotation {
	var out []Annotation
	for _, a := range m.Annotations {
		if a.ImageID == imageID {
			out = append(out, a)
		}
	}
	return out
}
