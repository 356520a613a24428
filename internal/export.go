package internal

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"
)

// maxColumnWidth caps auto-fitted spreadsheet columns.
const maxColumnWidth = 70

// ExportCSV copies the finalized result store to dst verbatim.
func ExportCSV(storePath, dst string) error {
	src, err := os.Open(storePath)
	if err != nil {
		return fmt.Errorf("open result store: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return fmt.Errorf("copy result store: %w", err)
	}
	return out.Close()
}

// ExportExcel converts the finalized result store to an .xlsx workbook
// with a bold header row and auto-fitted, capped column widths.
func ExportExcel(storePath, dst string) error {
	src, err := os.Open(storePath)
	if err != nil {
		return fmt.Errorf("open result store: %w", err)
	}
	defer src.Close()

	wb := excelize.NewFile()
	defer wb.Close()

	const sheet = "Search Results"
	if err := wb.SetSheetName(wb.GetSheetName(0), sheet); err != nil {
		return err
	}
	bold, err := wb.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	var widths []int
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	rowIdx := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read result store: %w", err)
		}
		rowIdx++
		for colIdx, value := range record {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx)
			if err != nil {
				return err
			}
			if err := wb.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
			if rowIdx == 1 {
				if err := wb.SetCellStyle(sheet, cell, cell, bold); err != nil {
					return err
				}
			}
			for len(widths) <= colIdx {
				widths = append(widths, 0)
			}
			if len(value) > widths[colIdx] {
				widths[colIdx] = len(value)
			}
		}
	}

	for colIdx, w := range widths {
		name, err := excelize.ColumnNumberToName(colIdx + 1)
		if err != nil {
			return err
		}
		width := w + 2
		if width > maxColumnWidth {
			width = maxColumnWidth
		}
		if err := wb.SetColWidth(sheet, name, name, float64(width)); err != nil {
			return err
		}
	}

	if err := wb.SaveAs(dst); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
