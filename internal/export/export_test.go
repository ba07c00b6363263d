// internal/export/export_test.go
package export

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/boxworks/labelhub/internal/api"
)

func TestSummariesXLSX(t *testing.T) {
	t.Parallel()

	rows := []api.SummaryRow{
		{
			JobID:                 "job-1",
			Engine:                api.EngineEasyOCR,
			DatasetVersion:        "v3",
			DatasetName:           "default",
			Preprocessing:         api.PreprocessingDeskew,
			TotalImages:           120,
			OverallExactMatchRate: 0.84,
			CreatedAt:             "2024-01-05 10:30:00.123456",
		},
		{
			JobID:          "job-2",
			Engine:         api.EnginePaddleOCR,
			DatasetVersion: "v3",
			DatasetName:    "default",
			CreatedAt:      "not-a-timestamp",
		},
	}

	data, err := SummariesXLSX(rows)
	if err != nil {
		t.Fatalf("SummariesXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("workbook does not reopen: %v", err)
	}
	defer f.Close()

	got, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(got))
	}
	if got[0][0] != "Job ID" {
		t.Fatalf("unexpected header row: %v", got[0])
	}
	if got[1][0] != "job-1" || got[1][3] != "deskew" {
		t.Fatalf("unexpected first data row: %v", got[1])
	}
	if got[1][8] != "2024-01-05 10:30:00" {
		t.Fatalf("timestamp not normalized: %q", got[1][8])
	}
	if got[2][8] != "unknown time" {
		t.Fatalf("bad timestamp must degrade, got %q", got[2][8])
	}
}

func TestSummariesXLSXEmpty(t *testing.T) {
	t.Parallel()

	data, err := SummariesXLSX(nil)
	if err != nil {
		t.Fatalf("SummariesXLSX: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("workbook does not reopen: %v", err)
	}
	defer f.Close()

	got, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected header only, got %d rows", len(got))
	}
}
