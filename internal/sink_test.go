package internal

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestResultSink_HeaderAndRows(t *testing.T) {
	sink, err := NewResultSink(false)
	if err != nil {
		t.Fatalf("sink: %v", err)
	}
	defer sink.Remove()

	rows := []ResultRow{
		{Path: "a.txt", Filename: "a.txt", Line: MatchedLine(1), Text: "foo"},
		{Path: "b.txt", Filename: "b.txt", Line: NoMatchLine, Text: NoMatchMarker},
		{Path: "c.zip::x.txt", Filename: "x.txt", Line: ErrorLine, Text: "Could not read member: boom"},
	}
	for _, r := range rows {
		if err := sink.Append(r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	path, err := sink.Finalize()
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read store: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected header + 3 rows, got %d records", len(records))
	}
	if strings.Join(records[0], ",") != "Path,Filename,Line Number,Line Content" {
		t.Errorf("unexpected header: %v", records[0])
	}
	if records[1][2] != "1" || records[2][2] != "-" || records[3][2] != "ERROR" {
		t.Errorf("line-number column wrong: %v %v %v", records[1], records[2], records[3])
	}
}

func TestResultSink_PreviewCap(t *testing.T) {
	sink, err := NewResultSink(false)
	if err != nil {
		t.Fatalf("sink: %v", err)
	}
	defer sink.Remove()

	n := previewCap + 25
	for i := 0; i < n; i++ {
		row := ResultRow{Path: "a.txt", Filename: "a.txt", Line: MatchedLine(i + 1), Text: fmt.Sprintf("l%d", i)}
		if err := sink.Append(row); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if len(sink.Preview()) != previewCap {
		t.Fatalf("preview must be capped at %d, got %d", previewCap, len(sink.Preview()))
	}
	if sink.Total() != n {
		t.Fatalf("durable store must hold all %d rows, got %d", n, sink.Total())
	}
	// preview is a prefix, never reordered
	if sink.Preview()[0].Line.Number() != 1 || sink.Preview()[previewCap-1].Line.Number() != previewCap {
		t.Error("preview must keep arrival order")
	}
}

func TestResultSink_ShowAllDisablesCap(t *testing.T) {
	sink, err := NewResultSink(true)
	if err != nil {
		t.Fatalf("sink: %v", err)
	}
	defer sink.Remove()

	n := previewCap + 10
	for i := 0; i < n; i++ {
		if err := sink.Append(ResultRow{Path: "a", Filename: "a", Line: MatchedLine(i + 1)}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if len(sink.Preview()) != n {
		t.Fatalf("show-all preview must hold all rows, got %d", len(sink.Preview()))
	}
}

func TestResultSink_QuotingRoundTrip(t *testing.T) {
	sink, err := NewResultSink(false)
	if err != nil {
		t.Fatalf("sink: %v", err)
	}
	defer sink.Remove()

	tricky := `value with "quotes", commas`
	if err := sink.Append(ResultRow{Path: "a.txt", Filename: "a.txt", Line: MatchedLine(7), Text: tricky}); err != nil {
		t.Fatalf("append: %v", err)
	}
	path, _ := sink.Finalize()

	f, _ := os.Open(path)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read store: %v", err)
	}
	if records[1][3] != tricky {
		t.Fatalf("embedded delimiters must round-trip, got %q", records[1][3])
	}
}
