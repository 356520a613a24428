package internal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func buildStore(t *testing.T, rows []ResultRow) string {
	t.Helper()
	sink, err := NewResultSink(false)
	if err != nil {
		t.Fatalf("sink: %v", err)
	}
	t.Cleanup(sink.Remove)
	for _, r := range rows {
		if err := sink.Append(r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	path, err := sink.Finalize()
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	return path
}

func TestExportCSV_RoundTrip(t *testing.T) {
	store := buildStore(t, []ResultRow{
		{Path: "a.txt", Filename: "a.txt", Line: MatchedLine(1), Text: "foo"},
		{Path: "z.zip::in.txt", Filename: "in.txt", Line: MatchedLine(5), Text: "foo, with comma"},
		{Path: "b.txt", Filename: "b.txt", Line: NoMatchLine, Text: NoMatchMarker},
	})

	dst := filepath.Join(t.TempDir(), "out.csv")
	if err := ExportCSV(store, dst); err != nil {
		t.Fatalf("export: %v", err)
	}

	orig, err := os.ReadFile(store)
	if err != nil {
		t.Fatal(err)
	}
	exported, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(orig) != string(exported) {
		t.Fatal("CSV export must be a verbatim copy of the store")
	}

	f, _ := os.Open(dst)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("re-read: %v", err)
	}
	if len(records) != 4 || records[2][3] != "foo, with comma" {
		t.Fatalf("fields must survive the round trip: %v", records)
	}
}

func TestExportExcel(t *testing.T) {
	store := buildStore(t, []ResultRow{
		{Path: "a.txt", Filename: "a.txt", Line: MatchedLine(3), Text: "hit"},
		{Path: "b.txt", Filename: "b.txt", Line: ErrorLine, Text: "Could not read file: boom"},
	})

	dst := filepath.Join(t.TempDir(), "out.xlsx")
	if err := ExportExcel(store, dst); err != nil {
		t.Fatalf("export: %v", err)
	}

	wb, err := excelize.OpenFile(dst)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer wb.Close()

	const sheet = "Search Results"
	if a1, _ := wb.GetCellValue(sheet, "A1"); a1 != "Path" {
		t.Errorf("header cell A1 should be Path, got %q", a1)
	}
	if c2, _ := wb.GetCellValue(sheet, "C2"); c2 != "3" {
		t.Errorf("line number cell should be 3, got %q", c2)
	}
	if c3, _ := wb.GetCellValue(sheet, "C3"); c3 != "ERROR" {
		t.Errorf("error row should keep ERROR marker, got %q", c3)
	}

	rows, err := wb.GetRows(sheet)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
}

func TestExportCSV_MissingStore(t *testing.T) {
	if err := ExportCSV(filepath.Join(t.TempDir(), "none.csv"), filepath.Join(t.TempDir(), "out.csv")); err == nil {
		t.Fatal("missing store must error")
	}
}
