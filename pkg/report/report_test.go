package report

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"leimatch/pkg/match"
	"leimatch/pkg/refdata"
)

var hit = match.Outcome{
	Kind: match.KindExactID,
	Row:  0,
	Record: &refdata.Record{
		LEI: "529900W18LQJJN6SJ336", LegalName: "ACME", Country: "FR",
		EntityStatus: "ACTIVE", LEIStatus: "ISSUED",
		RAID: "RA000189", RAEntityID: "123456789", RenewalDate: "2027-01-01",
	},
	Score:     100,
	NameScore: -1,
}

func TestRowHit(t *testing.T) {
	cells := Row(hit)
	if len(cells) != len(Headers) {
		t.Fatalf("len(cells) = %d, want %d", len(cells), len(Headers))
	}
	if cells[0] != "529900W18LQJJN6SJ336" {
		t.Errorf("LEI cell = %q", cells[0])
	}
	if cells[8] != "Exact – N° registre" {
		t.Errorf("kind cell = %q", cells[8])
	}
	if cells[9] != "100" {
		t.Errorf("score cell = %q", cells[9])
	}
	if cells[10] != "" {
		t.Errorf("discordance cell = %q, want empty", cells[10])
	}
}

func TestRowMiss(t *testing.T) {
	cells := Row(match.Outcome{Kind: match.KindNotFound, Row: -1, NameScore: -1})
	for i := 0; i < 8; i++ {
		if cells[i] != "" {
			t.Errorf("cell %d = %q, want empty on a miss", i, cells[i])
		}
	}
	if cells[8] != "Non trouvé" {
		t.Errorf("kind cell = %q", cells[8])
	}
	if cells[9] != "" {
		t.Errorf("score cell = %q, want empty", cells[9])
	}
}

func TestRowDiscordant(t *testing.T) {
	o := hit
	o.Kind = match.KindLEIDiscordant
	o.Discordance = "Pays DE ≠ GLEIF FR"
	cells := Row(o)
	if cells[8] != "LEI discordant" || cells[10] != "Pays DE ≠ GLEIF FR" {
		t.Errorf("cells = %v", cells)
	}
}

func TestTallyAndSummary(t *testing.T) {
	outs := []match.Outcome{
		hit, hit,
		{Kind: match.KindNotFound, Row: -1},
		{Kind: match.KindLEIValid},
	}
	s := Tally(outs)
	if s.Total != 4 || s.Counts[match.KindExactID] != 2 {
		t.Fatalf("stats = %+v", s)
	}

	sum := s.Summary()
	if !strings.Contains(sum, "Exact – N° registre") || !strings.Contains(sum, "(50.0%)") {
		t.Errorf("summary missing exact-id line:\n%s", sum)
	}
	if !strings.Contains(sum, "Total") {
		t.Errorf("summary missing total:\n%s", sum)
	}
	if strings.Contains(sum, "LEI inconnu") {
		t.Errorf("summary should skip zero-count kinds:\n%s", sum)
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	header := append([]string{"RCS"}, Headers...)
	rows := [][]string{append([]string{"123456789"}, Row(hit)...)}

	if err := Write(path, header, rows); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	got, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want header + 1 row", len(got))
	}
	if got[0][0] != "RCS" || got[0][1] != "LEI" {
		t.Errorf("header = %v", got[0])
	}
	if got[1][1] != "529900W18LQJJN6SJ336" {
		t.Errorf("row = %v", got[1])
	}
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	header := append([]string{"RCS"}, Headers...)
	rows := [][]string{
		append([]string{"123456789"}, Row(hit)...),
		append([]string{"987654321"}, Row(match.Outcome{Kind: match.KindNotFound, Row: -1})...),
	}

	if err := Write(path, header, rows); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	got, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("len(got) = %d, want header + 2 rows", len(got))
	}
	if got[1][1] != "529900W18LQJJN6SJ336" {
		t.Errorf("row 1 = %v", got[1])
	}
	if len(got[2]) < 10 || got[2][9] != "Non trouvé" { // kind column still filled on a miss
		t.Errorf("row 2 = %v", got[2])
	}
}

func TestWriteUnsupportedExtension(t *testing.T) {
	err := Write(filepath.Join(t.TempDir(), "out.ods"), Headers, nil)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}
