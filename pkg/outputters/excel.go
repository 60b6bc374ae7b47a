package outputters

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/mvas-it/m365ops/pkg/utils"
)

// WriteWorkbook writes the given sheets, in order, to a single xlsx file at
// path. The parent directory is created if missing. Each sheet gets a header
// row from its column spec plus the configured display widths.
func WriteWorkbook(path string, sheets []Sheet) error {
	if err := utils.EnsureFileDirectory(path); err != nil {
		return fmt.Errorf("failed to create directory for workbook %s: %w", path, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	for _, sheet := range sheets {
		if err := writeSheet(f, sheet); err != nil {
			return fmt.Errorf("failed to write sheet %s: %w", sheet.Name, err)
		}
	}

	// Drop the default sheet excelize seeds new workbooks with.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet Sheet) error {
	if _, err := f.NewSheet(sheet.Name); err != nil {
		return err
	}

	for c, col := range sheet.Columns {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet.Name, cell, col.Header); err != nil {
			return err
		}
		if col.Width > 0 {
			name, err := excelize.ColumnNumberToName(c + 1)
			if err != nil {
				return err
			}
			if err := f.SetColWidth(sheet.Name, name, name, col.Width); err != nil {
				return err
			}
		}
	}

	for r, row := range sheet.Rows {
		for c, value := range row {
			if value == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet.Name, cell, value); err != nil {
				return err
			}
		}
	}
	return nil
}
