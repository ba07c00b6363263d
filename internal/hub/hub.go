// internal/hub/hub.go
// Package hub implements the command bodies: each function talks to the
// core packages and prints a human-facing view of the result.
package hub

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/boxworks/labelhub/internal/api"
	"github.com/boxworks/labelhub/internal/appconfig"
	"github.com/boxworks/labelhub/internal/compare"
	"github.com/boxworks/labelhub/internal/export"
	"github.com/boxworks/labelhub/internal/poller"
	"github.com/boxworks/labelhub/internal/results"
	"github.com/boxworks/labelhub/internal/util"
)

var (
	okText   = color.New(color.FgGreen).SprintFunc()
	badText  = color.New(color.FgRed).SprintFunc()
	warnText = color.New(color.FgYellow).SprintFunc()

	headingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true)
)

func heading(s string) string {
	return headingStyle.Render(s + ":")
}

// Health checks the backend and prints its status.
func Health(ctx context.Context, cfg *appconfig.Config) error {
	client := api.New(cfg)
	status, err := client.Health(ctx)
	if err != nil {
		fmt.Printf("%s %v\n", badText("backend unreachable:"), err)
		return err
	}
	if status.Online() {
		fmt.Printf("%s (pixeltable: %s)\n", okText("backend healthy"), status.PixeltableStatus)
	} else {
		fmt.Printf("%s status=%s pixeltable=%s\n", badText("backend degraded:"), status.Status, status.PixeltableStatus)
	}
	return nil
}

// ListDatasets prints the dataset versions the backend can run against.
func ListDatasets(ctx context.Context, cfg *appconfig.Config) error {
	datasets, err := api.New(cfg).Datasets(ctx)
	if err != nil {
		return err
	}

	fmt.Println(heading("Datasets"))
	for _, d := range datasets {
		truth := warnText("no ground truth")
		if d.HasGroundTruth {
			truth = okText("ground truth")
		}
		fmt.Printf("  >>> %s/%s  %d images  (%s)\n", d.Version, d.Name, d.ImageCount, truth)
	}
	fmt.Println()
	return nil
}

// ListEngines prints the OCR engines and the preprocessing variants the
// backend implements.
func ListEngines(ctx context.Context, cfg *appconfig.Config) error {
	client := api.New(cfg)
	engines, err := client.Engines(ctx)
	if err != nil {
		return err
	}
	options, err := client.PreprocessingOptions(ctx)
	if err != nil {
		return err
	}

	fmt.Println(heading("Engines"))
	for _, e := range engines {
		gpu := ""
		if e.SupportsGPU {
			gpu = "  [gpu]"
		}
		fmt.Printf("  >>> %s: %s%s\n", e.ID, e.Description, gpu)
		if !e.ID.SupportsPreprocessing() {
			fmt.Printf("      end to end, preprocessing fixed to %q\n", api.PreprocessingNone)
		}
	}

	fmt.Println()
	fmt.Println(heading("Preprocessing options"))
	byCategory := make(map[string][]api.PreprocessingOption)
	var categories []string
	for _, opt := range options {
		if _, ok := byCategory[opt.Category]; !ok {
			categories = append(categories, opt.Category)
		}
		byCategory[opt.Category] = append(byCategory[opt.Category], opt)
	}
	sort.Strings(categories)
	for _, cat := range categories {
		fmt.Printf("  %s\n", cat)
		for _, opt := range byCategory[cat] {
			fmt.Printf("    >>> %s: %s\n", opt.ID, opt.Description)
		}
	}
	fmt.Println()
	return nil
}

// Run starts a single inference job. With follow set it polls the job to
// completion and prints the summary.
func Run(ctx context.Context, cfg *appconfig.Config, engine, version, dataset, preprocessing string, follow bool) error {
	e := api.Engine(engine)
	if !e.Valid() {
		return fmt.Errorf("unknown engine %q (known: easyocr, paddleocr, smolvlm2)", engine)
	}
	selection := compare.NormalizeSelection(e, []api.Preprocessing{api.Preprocessing(preprocessing)})
	p := selection[0]
	if !p.Valid() {
		return fmt.Errorf("unknown preprocessing option %q", preprocessing)
	}

	client := api.New(cfg)
	track := poller.New(client, cfg, nil)
	resp, err := track.StartInference(ctx, api.StartRequest{
		Engine:         e,
		DatasetVersion: version,
		DatasetName:    dataset,
		Preprocessing:  p,
		UseGPU:         cfg.UseGPU,
	})
	if err != nil {
		return err
	}
	if !resp.Success {
		fmt.Printf("%s %s\n", badText("start rejected:"), resp.Message)
		return nil
	}

	if resp.Queued {
		fmt.Printf("job %s queued at position %d (%d images)\n", resp.JobID, resp.QueuePosition, resp.TotalImages)
	} else {
		fmt.Printf("job %s started (%d images)\n", resp.JobID, resp.TotalImages)
	}
	if !follow {
		return nil
	}

	if err := track.Wait(ctx); err != nil {
		return err
	}
	snapshot := track.Snapshot()
	if snapshot.Watched == nil {
		return nil
	}
	job := *snapshot.Watched
	switch job.Status {
	case api.StatusCompleted:
		fmt.Printf("%s %d/%d images\n", okText("completed:"), job.ProcessedImages, job.TotalImages)
		res, err := client.JobResults(ctx, job.JobID)
		if err != nil {
			return err
		}
		printSummary(res.Summary)
	case api.StatusFailed:
		fmt.Printf("%s %s\n", badText("failed:"), job.ErrorMessage)
	default:
		fmt.Printf("job ended in status %s\n", job.Status)
	}
	return nil
}

func printSummary(s *api.Summary) {
	if s == nil {
		fmt.Println(warnText("no summary available"))
		return
	}
	fmt.Println(heading("Summary"))
	fmt.Printf("  exact match:      %s\n", util.FormatPercent(s.OverallExactMatchRate))
	fmt.Printf("  normalized match: %s\n", util.FormatPercent(s.OverallNormalizedMatchRate))
	fmt.Printf("  CER:              %s\n", util.FormatRate(s.OverallCER))

	fields := make([]string, 0, len(s.PerFieldStats))
	for field := range s.PerFieldStats {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		stats := s.PerFieldStats[field]
		fmt.Printf("  %-18s exact=%s cer=%s n=%d\n",
			field, util.FormatPercent(stats.ExactMatchRate), util.FormatRate(stats.AverageCER), stats.SampleCount)
	}
}

// Compare runs one comparison session to completion and prints the ranking.
func Compare(ctx context.Context, cfg *appconfig.Config, engine, version, dataset string, optionNames []string) error {
	e := api.Engine(engine)
	options := make([]api.Preprocessing, len(optionNames))
	for i, name := range optionNames {
		options[i] = api.Preprocessing(name)
	}
	options = compare.NormalizeSelection(e, options)

	session := compare.NewSession(api.New(cfg), cfg, func(cs []compare.Comparison) {
		var done int
		for _, c := range cs {
			if c.Status.Terminal() {
				done++
			}
		}
		fmt.Printf("  ... %d/%d variants settled\n", done, len(cs))
	})

	resp, err := session.Start(ctx, e, version, dataset, options, cfg.UseGPU)
	if err != nil {
		return err
	}
	if !resp.Success {
		fmt.Printf("%s %s\n", badText("batch rejected:"), resp.Message)
		return nil
	}
	fmt.Printf("started %d jobs, polling every %s\n", len(resp.JobIDs), cfg.ComparePollInterval())

	if err := session.Wait(ctx); err != nil {
		return err
	}

	ranked := compare.Rank(session.Comparisons())
	best := compare.Best(ranked)

	fmt.Println()
	fmt.Println(heading("Ranking"))
	for i, c := range ranked {
		switch {
		case c.Summary != nil && best != nil && c.JobID == best.JobID:
			fmt.Printf("  %d. %-18s %s  %s\n", i+1, c.Preprocessing, util.FormatPercent(c.Summary.OverallExactMatchRate), okText("best performer"))
		case c.Summary != nil:
			fmt.Printf("  %d. %-18s %s\n", i+1, c.Preprocessing, util.FormatPercent(c.Summary.OverallExactMatchRate))
		default:
			fmt.Printf("  %d. %-18s %s\n", i+1, c.Preprocessing, badText(string(c.Status)))
		}
	}
	return nil
}

// ListJobs prints the backend's job list.
func ListJobs(ctx context.Context, cfg *appconfig.Config) error {
	jobs, err := api.New(cfg).Jobs(ctx, cfg.ListLimit())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "JOB\tENGINE\tDATASET\tPREPROCESSING\tSTATUS\tPROGRESS\tCREATED")
	for _, job := range jobs {
		fmt.Fprintf(w, "%s\t%s\t%s/%s\t%s\t%s\t%.0f%%\t%s\n",
			job.JobID, job.Engine, job.DatasetVersion, job.DatasetName,
			job.Preprocessing, job.Status, job.Progress,
			util.FormatTimestamp(job.CreatedAt))
	}
	return w.Flush()
}

// DeleteJobs removes the named jobs.
func DeleteJobs(ctx context.Context, cfg *appconfig.Config, ids []string) error {
	client := api.New(cfg)
	if len(ids) == 1 {
		if err := client.DeleteJob(ctx, ids[0]); err != nil {
			return err
		}
		fmt.Printf("deleted %s\n", ids[0])
		return nil
	}
	if err := client.BatchDelete(ctx, ids); err != nil {
		return err
	}
	fmt.Printf("deleted %d jobs\n", len(ids))
	return nil
}

// PruneJobs removes every job already in a terminal state.
func PruneJobs(ctx context.Context, cfg *appconfig.Config) error {
	client := api.New(cfg)
	jobs, err := client.Jobs(ctx, cfg.ListLimit())
	if err != nil {
		return err
	}

	var ids []string
	for _, job := range jobs {
		if job.Status.Terminal() {
			ids = append(ids, job.JobID)
		}
	}
	if len(ids) == 0 {
		fmt.Println("nothing to prune")
		return nil
	}
	if err := client.BatchDelete(ctx, ids); err != nil {
		return err
	}
	fmt.Printf("pruned %d finished jobs\n", len(ids))
	return nil
}

// ShowResults prints one job's summary and per-image detail.
func ShowResults(ctx context.Context, cfg *appconfig.Config, jobID string) error {
	viewer := results.NewViewer(api.New(cfg))
	res, err := viewer.Select(ctx, jobID)
	if err != nil {
		return err
	}

	job := res.Job
	fmt.Printf("job %s  %s  %s/%s  %s\n", job.JobID, job.Engine, job.DatasetVersion, job.DatasetName, job.Status)
	if d, ok := util.Duration(job.StartedAt, job.CompletedAt); ok {
		fmt.Printf("ran for %s\n", d)
	}
	printSummary(res.Summary)

	if len(res.Images) == 0 {
		return nil
	}
	fmt.Println()
	fmt.Println(heading("Images"))
	for _, img := range res.Images {
		fmt.Printf("  >>> %s  (%d detections, %.0f ms)\n", img.ImageFilename, len(img.Detections), img.ProcessingTimeMS)
		classes := make([]string, 0, len(img.OCRResults))
		for class := range img.OCRResults {
			classes = append(classes, class)
		}
		sort.Strings(classes)
		for _, class := range classes {
			fmt.Printf("      %-18s %s\n", class, img.OCRResults[class])
		}
	}
	return nil
}

// ShowDashboard prints the aggregate view over the recent summary window.
func ShowDashboard(ctx context.Context, cfg *appconfig.Config) error {
	d, err := results.Load(ctx, api.New(cfg), cfg)
	if err != nil {
		return err
	}
	if d.Overall.Runs == 0 {
		fmt.Println("no completed runs yet")
		return nil
	}

	fmt.Println(heading(fmt.Sprintf("Overall (%d runs)", d.Overall.Runs)))
	fmt.Printf("  exact match:      %s\n", util.FormatPercent(d.Overall.ExactMatchRate))
	fmt.Printf("  normalized match: %s\n", util.FormatPercent(d.Overall.NormalizedMatchRate))
	fmt.Printf("  CER:              %s\n", util.FormatRate(d.Overall.CER))

	fmt.Println()
	fmt.Println(heading("By engine"))
	for _, e := range d.Engines {
		fmt.Printf("  %-12s exact=%s cer=%s runs=%d\n",
			e.Engine, util.FormatPercent(e.ExactMatchRate), util.FormatRate(e.CER), e.Runs)
	}

	fmt.Println()
	fmt.Println(heading("By field (sample weighted)"))
	for _, f := range d.Fields {
		fmt.Printf("  %-18s exact=%s cer=%s n=%d\n",
			f.Field, util.FormatPercent(f.ExactMatchRate), util.FormatRate(f.AverageCER), f.SampleCount)
	}
	return nil
}

// ExportSummaries writes the recent summary window to an XLSX file.
func ExportSummaries(ctx context.Context, cfg *appconfig.Config, path string) error {
	rows, err := api.New(cfg).JobSummaries(ctx, cfg.SummaryWindow())
	if err != nil {
		return err
	}
	data, err := export.SummariesXLSX(rows)
	if err != nil {
		return err
	}
	if !strings.HasSuffix(path, ".xlsx") {
		path += ".xlsx"
	}
	if err := util.WriteFile(path, data); err != nil {
		return err
	}
	fmt.Printf("wrote %d summaries to %s\n", len(rows), path)
	return nil
}
