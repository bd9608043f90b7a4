package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for output paths that are neither
// .csv nor .xlsx.
var ErrUnsupportedFormat = errors.New("format de sortie non pris en charge")

// Write exports the report to path, format chosen by extension. The
// header goes first, then one line per row.
func Write(path string, header []string, rows [][]string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return writeCSV(path, header, rows)
	case ".xlsx":
		return writeXLSX(path, header, rows)
	default:
		return fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("création de %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("écriture de %s: %w", path, err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("écriture de %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("écriture de %s: %w", path, err)
	}
	return f.Close()
}

func writeXLSX(path string, header []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(f.GetSheetName(0))
	if err != nil {
		return fmt.Errorf("export xlsx: %w", err)
	}
	if err := streamRow(sw, 1, header); err != nil {
		return err
	}
	for i, row := range rows {
		if err := streamRow(sw, i+2, row); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("export xlsx: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("écriture de %s: %w", path, err)
	}
	return nil
}

func streamRow(sw *excelize.StreamWriter, n int, cells []string) error {
	ref, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return fmt.Errorf("export xlsx: %w", err)
	}
	vals := make([]any, len(cells))
	for i, c := range cells {
		vals[i] = c
	}
	if err := sw.SetRow(ref, vals); err != nil {
		return fmt.Errorf("export xlsx: %w", err)
	}
	return nil
}
