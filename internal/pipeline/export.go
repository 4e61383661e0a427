package pipeline

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"memclean/internal/table"
)

// WriteTableCSV writes a cleaned table as UTF-8 comma-delimited CSV with a
// header row, creating parent directories as needed.
func WriteTableCSV(t *table.Table, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return t.WriteCSV(f)
}

// ExportTableToXLSX renders a table to a single-sheet workbook.
func ExportTableToXLSX(t *table.Table, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, h := range t.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for i, row := range t.Rows {
		r := i + 2
		for j, col := range t.Columns {
			cell, _ := excelize.CoordinatesToCellName(j+1, r)
			_ = f.SetCellValue(sheet, cell, row[col])
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

// ZipCleanedCSVs bundles every .csv under dir into one archive, flat, for
// bulk delivery.
func ZipCleanedCSVs(dir, outputPath string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return 0, err
	}
	out, err := os.Create(outputPath)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	added := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		src, err := os.Open(filepath.Join(dir, entry.Name()))
		if err != nil {
			_ = zw.Close()
			return added, err
		}
		w, err := zw.Create(entry.Name())
		if err == nil {
			_, err = io.Copy(w, src)
		}
		_ = src.Close()
		if err != nil {
			_ = zw.Close()
			return added, err
		}
		added++
	}
	if err := zw.Close(); err != nil {
		return added, err
	}
	if added == 0 {
		return 0, fmt.Errorf("no csv files found in %s", dir)
	}
	return added, nil
}
