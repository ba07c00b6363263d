// internal/hub/upload.go
package hub

import (
	"context"
	"fmt"

	"github.com/boxworks/labelhub/internal/annotate"
	"github.com/boxworks/labelhub/internal/appconfig"
	"github.com/boxworks/labelhub/internal/storage"
)

// ListProjects prints the annotation workspace's projects.
func ListProjects(ctx context.Context, cfg *appconfig.Config) error {
	projects, err := annotate.New(cfg).ListProjects(ctx)
	if err != nil {
		return err
	}
	fmt.Println(heading(fmt.Sprintf("Projects in %s", cfg.AnnotationWorkspace)))
	for _, p := range projects {
		fmt.Printf("  >>> %s (%s, %d images)\n", p.ID, p.Type, p.Images)
	}
	fmt.Println()
	return nil
}

// ListBucket prints the dataset versions available in object storage.
func ListBucket(ctx context.Context, cfg *appconfig.Config) error {
	store, err := storage.New(ctx, cfg)
	if err != nil {
		return err
	}
	versions, err := store.Versions(ctx)
	if err != nil {
		return err
	}

	fmt.Println(heading("Bucket " + cfg.StorageBucket))
	for _, version := range versions {
		datasets, err := store.Datasets(ctx, version)
		if err != nil {
			return err
		}
		for _, dataset := range datasets {
			fmt.Printf("  >>> %s/%s\n", version, dataset)
		}
	}
	fmt.Println()
	return nil
}

// UploadDataset moves one dataset from object storage into the annotation
// platform and prints a per-image progress line plus a final report.
func UploadDataset(ctx context.Context, cfg *appconfig.Config, version, dataset string) error {
	store, err := storage.New(ctx, cfg)
	if err != nil {
		return err
	}

	uploader := annotate.NewUploader(store, annotate.New(cfg), func(p annotate.Progress) {
		switch {
		case p.Err != nil:
			fmt.Printf("  [%d/%d] %s %s: %v\n", p.Index+1, p.Total, badText("failed"), p.FileName, p.Err)
		default:
			fmt.Printf("  [%d/%d] %s\n", p.Index+1, p.Total, p.FileName)
		}
	})

	report, err := uploader.Run(ctx, version, dataset)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("%s %d of %d images\n", okText("uploaded"), report.Uploaded, report.Total)
	if len(report.Skipped) > 0 {
		fmt.Printf("%s %d images missing from the manifest\n", warnText("skipped"), len(report.Skipped))
	}
	if len(report.Failed) > 0 {
		fmt.Printf("%s %d images: %v\n", badText("failed"), len(report.Failed), report.Failed)
	}
	return nil
}
