// internal/export/export.go
// Package export produces XLSX workbooks from job summary rows.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/boxworks/labelhub/internal/api"
	"github.com/boxworks/labelhub/internal/util"
)

const sheet = "Job Summaries"

var headers = []string{
	"Job ID",
	"Engine",
	"Dataset",
	"Preprocessing",
	"Images",
	"Exact Match",
	"Normalized Match",
	"CER",
	"Created",
}

// SummariesXLSX renders the summary rows into a single-sheet workbook and
// returns the file bytes.
func SummariesXLSX(rows []api.SummaryRow) ([]byte, error) {
	f := excelize.NewFile()
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if defaultIndex, _ := f.GetSheetIndex("Sheet1"); defaultIndex != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, i+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, row.JobID)
		write(2, string(row.Engine))
		write(3, row.DatasetVersion+"/"+row.DatasetName)
		write(4, string(row.Preprocessing))
		write(5, row.TotalImages)
		write(6, row.OverallExactMatchRate)
		write(7, row.OverallNormalizedMatchRate)
		write(8, row.OverallCER)
		write(9, util.FormatTimestamp(row.CreatedAt))
	}

	_ = f.SetColWidth(sheet, "A", "A", 38)
	_ = f.SetColWidth(sheet, "B", "D", 18)
	_ = f.SetColWidth(sheet, "F", "H", 16)
	_ = f.SetColWidth(sheet, "I", "I", 22)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
