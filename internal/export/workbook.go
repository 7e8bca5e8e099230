package export

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/abcd5251/PawXAI/internal/domain"
)

// WorkbookWriter implements ReportWriter by saving an XLSX workbook with one
// sheet per address.
type WorkbookWriter struct {
	path string
}

// NewWorkbookWriter creates a WorkbookWriter that saves to path.
func NewWorkbookWriter(path string) *WorkbookWriter {
	return &WorkbookWriter{path: path}
}

// Write saves all reports into a single workbook, overwriting any existing
// file at the configured path.
func (w *WorkbookWriter) Write(_ context.Context, reports []domain.AddressPortfolio) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, report := range reports {
		name := sheetName(report.Address)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("renaming sheet for %s: %w", report.Address, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet for %s: %w", report.Address, err)
		}

		for rowIdx, row := range buildHoldingRows(report) {
			for colIdx, value := range row {
				cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
				if err != nil {
					return fmt.Errorf("resolving cell: %w", err)
				}
				if err := f.SetCellValue(name, cell, value); err != nil {
					return fmt.Errorf("writing cell %s: %w", cell, err)
				}
			}
		}
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}
