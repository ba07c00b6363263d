// internal/annotate/uploader.go
package annotate

import (
	"context"
	"fmt"
	"path"

	"github.com/boxworks/labelhub/internal/coco"
	"github.com/boxworks/labelhub/internal/logging"
)

// ObjectSource is the slice of the storage layer the uploader needs.
type ObjectSource interface {
	Manifest(ctx context.Context, version, dataset string) ([]byte, error)
	ImageKeys(ctx context.Context, version, dataset string) ([]string, error)
	ImageBytes(ctx context.Context, key string) ([]byte, error)
}

// Progress reports one image's outcome as the upload advances.
type Progress struct {
	Index    int
	Total    int
	FileName string
	Err      error
}

// Report summarizes a completed upload run.
type Report struct {
	Total    int
	Uploaded int
	Skipped  []string
	Failed   []string
}

// Uploader moves one dataset from object storage into the annotation
// platform: manifest first, then image by image with its converted YOLO
// annotation.
type Uploader struct {
	source     ObjectSource
	client     *Client
	onProgress func(Progress)
}

// NewUploader constructs an Uploader. onProgress may be nil.
func NewUploader(source ObjectSource, client *Client, onProgress func(Progress)) *Uploader {
	return &Uploader{source: source, client: client, onProgress: onProgress}
}

func (u *Uploader) report(p Progress) {
	if u.onProgress != nil {
		u.onProgress(p)
	}
}

// Run uploads every image in the dataset. Images missing from the manifest
// are skipped, individual upload failures are recorded and the run
// continues; only manifest problems and context cancellation abort it.
func (u *Uploader) Run(ctx context.Context, version, dataset string) (Report, error) {
	raw, err := u.source.Manifest(ctx, version, dataset)
	if err != nil {
		return Report{}, err
	}
	manifest, err := coco.ParseManifest(raw)
	if err != nil {
		return Report{}, err
	}
	labelmap := manifest.LabelmapText()

	keys, err := u.source.ImageKeys(ctx, version, dataset)
	if err != nil {
		return Report{}, err
	}

	report := Report{Total: len(keys)}
	for i, key := range keys {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		name := path.Base(key)

		img, ok := manifest.ImageByFileName(name)
		if !ok {
			report.Skipped = append(report.Skipped, name)
			u.report(Progress{Index: i, Total: len(keys), FileName: name})
			continue
		}

		if err := u.uploadOne(ctx, key, name, manifest, img, labelmap); err != nil {
			logging.LogEvent("upload of %s failed: %v", name, err)
			report.Failed = append(report.Failed, name)
			u.report(Progress{Index: i, Total: len(keys), FileName: name, Err: err})
			continue
		}
		report.Uploaded++
		u.report(Progress{Index: i, Total: len(keys), FileName: name})
	}
	return report, nil
}

func (u *Uploader) uploadOne(ctx context.Context, key, name string, manifest coco.Manifest, img coco.Image, labelmap string) error {
	yoloText, err := manifest.YOLOAnnotation(img)
	if err != nil {
		return err
	}
	data, err := u.source.ImageBytes(ctx, key)
	if err != nil {
		return err
	}
	result, err := u.client.UploadImage(ctx, name, data)
	if err != nil {
		return err
	}
	if err := u.client.UploadAnnotation(ctx, result.ID, name, yoloText, labelmap); err != nil {
		return fmt.Errorf("image %s uploaded but annotation failed: %w", name, err)
	}
	return nil
}
