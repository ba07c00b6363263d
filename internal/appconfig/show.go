package appconfig

import (
	"fmt"
	"io"
)

// ShowConfig prints the current configuration summary.
func ShowConfig(out io.Writer, file string, cfg *Config) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	if cfg == nil {
		defaults := Config{}
		cfg = &defaults
	}

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "  API URL:              %s\n", cfg.BaseURL())
	fmt.Fprintf(out, "  Request Timeout:      %s\n", cfg.RequestTimeout())
	fmt.Fprintf(out, "  Debug:                %v\n", cfg.Debug)
	fmt.Fprintf(out, "  Log File:             %s\n", cfg.LogFilePath())
	fmt.Fprintf(out, "  Poll Interval:        %s\n", cfg.PollInterval())
	fmt.Fprintf(out, "  Compare Interval:     %s\n", cfg.ComparePollInterval())
	fmt.Fprintf(out, "  Compare Init Delay:   %s\n", cfg.CompareInitialDelay())
	fmt.Fprintf(out, "  Compare Stagger:      %s\n", cfg.CompareStagger())
	fmt.Fprintf(out, "  Job List Limit:       %d\n", cfg.ListLimit())
	fmt.Fprintf(out, "  Summary Window:       %d\n", cfg.SummaryWindow())
	fmt.Fprintf(out, "  Use GPU:              %v\n", cfg.UseGPU)
	if cfg.StorageBucket != "" {
		fmt.Fprintf(out, "  Storage Bucket:       %s\n", cfg.StorageBucket)
		fmt.Fprintf(out, "  Storage Region:       %s\n", cfg.StorageRegion)
	}
	if cfg.AnnotationWorkspace != "" || cfg.AnnotationProject != "" {
		fmt.Fprintf(out, "  Annotation URL:       %s\n", cfg.AnnotationBaseURL())
		fmt.Fprintf(out, "  Annotation Workspace: %s\n", cfg.AnnotationWorkspace)
		fmt.Fprintf(out, "  Annotation Project:   %s\n", cfg.AnnotationProject)
		if cfg.AnnotationAPIKey != "" {
			fmt.Fprintf(out, "  Annotation API Key:   (set)\n")
		} else {
			fmt.Fprintf(out, "  Annotation API Key:   (not set)\n")
		}
	}
}
