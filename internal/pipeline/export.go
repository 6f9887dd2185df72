package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"sheetetl/internal"
)

const CSVSeparator = ';'

// WriteCSV writes a header line and one line per record, replacing path
// only once the whole file has been written.
func WriteCSV(t internal.Table, outputPath string, sep rune) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(outputPath), ".sheetetl-*.csv")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	w := csv.NewWriter(tmp)
	w.Comma = sep
	if err := w.Write(t.Headers); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := w.WriteAll(t.Rows); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), outputPath)
}

func ExportTableToXLSX(t internal.Table, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	if err := setRow(f, sheet, 1, t.Headers); err != nil {
		return err
	}
	for r, row := range t.Rows {
		if err := setRow(f, sheet, r+2, row); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

// setRow writes cells as text so codes like "0012" keep their leading zeros.
func setRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	for c, value := range values {
		cell, err := excelize.CoordinatesToCellName(c+1, rowNum)
		if err != nil {
			return fmt.Errorf("row %d column %d: %w", rowNum, c+1, err)
		}
		if err := f.SetCellStr(sheet, cell, value); err != nil {
			return fmt.Errorf("cell %s: %w", cell, err)
		}
	}
	return nil
}

func writeOutput(t internal.Table, format, outputPath string) error {
	switch format {
	case "", "csv":
		return WriteCSV(t, outputPath, CSVSeparator)
	case "xlsx":
		return ExportTableToXLSX(t, outputPath)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}
