// Package input reads the user's spreadsheet of companies to reconcile.
// CSV and XLSX are supported; every cell is read as text.
package input

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"leimatch/pkg/match"
)

// ErrUnsupportedFormat is returned for input files that are neither
// .csv nor .xlsx.
var ErrUnsupportedFormat = errors.New("format de fichier non pris en charge")

// Columns names the spreadsheet headers to bind. ID, Name and Country
// are required. LEI is optional: empty means no declared-LEI column and
// every row goes through discovery.
type Columns struct {
	ID      string
	Name    string
	Country string
	LEI     string
}

// MissingColumnsError reports required headers absent from the file,
// along with the headers that were actually present.
type MissingColumnsError struct {
	Missing   []string
	Available []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("colonnes introuvables: %s (colonnes disponibles: %s)",
		strings.Join(e.Missing, ", "), strings.Join(e.Available, ", "))
}

// IsPermission reports whether err is a permission or file-locking
// failure. Spreadsheets open in Excel surface this way on Windows; the
// caller can suggest working on a copy.
func IsPermission(err error) bool {
	return errors.Is(err, fs.ErrPermission)
}

// Read loads the spreadsheet at path and binds its columns. Rows come
// back in file order; fully blank rows are dropped. Header matching is
// case-insensitive on trimmed names.
func Read(path string, cols Columns) ([]match.InputRow, error) {
	var header []string
	var rows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		header, rows, err = readCSV(path)
	case ".xlsx":
		header, rows, err = readXLSX(path)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, err
	}

	b, err := bind(header, cols)
	if err != nil {
		return nil, err
	}

	out := make([]match.InputRow, 0, len(rows))
	for _, row := range rows {
		in := match.InputRow{
			RegistrationID: cell(row, b.id),
			LegalName:      cell(row, b.name),
			Country:        cell(row, b.country),
			DeclaredLEI:    cell(row, b.lei),
		}
		if in.RegistrationID == "" && in.LegalName == "" && in.Country == "" && in.DeclaredLEI == "" {
			continue
		}
		out = append(out, in)
	}
	return out, nil
}

type binding struct {
	id, name, country, lei int
}

func bind(header []string, cols Columns) (binding, error) {
	find := func(name string) int {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				return i
			}
		}
		return -1
	}

	b := binding{
		id:      find(cols.ID),
		name:    find(cols.Name),
		country: find(cols.Country),
		lei:     -1,
	}
	if cols.LEI != "" {
		b.lei = find(cols.LEI)
	}

	var missing []string
	if b.id < 0 {
		missing = append(missing, cols.ID)
	}
	if b.name < 0 {
		missing = append(missing, cols.Name)
	}
	if b.country < 0 {
		missing = append(missing, cols.Country)
	}
	if cols.LEI != "" && b.lei < 0 {
		missing = append(missing, cols.LEI)
	}
	if len(missing) > 0 {
		avail := make([]string, 0, len(header))
		for _, h := range header {
			if h = strings.TrimSpace(h); h != "" {
				avail = append(avail, h)
			}
		}
		return binding{}, &MissingColumnsError{Missing: missing, Available: avail}
	}
	return b, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func readCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("ouverture de %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil, fmt.Errorf("%s: fichier vide", path)
		}
		return nil, nil, fmt.Errorf("lecture de l'en-tête de %s: %w", path, err)
	}

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("lecture de %s: %w", path, err)
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

func readXLSX(path string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("ouverture de %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("%s: classeur sans feuille", path)
	}
	all, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("lecture de %s: %w", path, err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("%s: fichier vide", path)
	}
	return all[0], all[1:], nil
}
