package rowsource

import (
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already clean", "Control NO", "Control NO"},
		{"non-breaking space", "Control NO", "Control NO"},
		{"embedded newline", "Delivery\ntime", "Delivery time"},
		{"doubled spaces", "Item   NO", "Item NO"},
		{"surrounding whitespace", "  Qty  ", "Qty"},
		{"all whitespace", "  \n ", ""},
		{"japanese untouched", "品番", "品番"},
		{"ideographic space", "品番　/　Item no", "品番 / Item no"},
		{"ideographic space run", "品番　　JANコード", "品番 JANコード"},
		{"surrounding ideographic space", "　数量　", "数量"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeHeader(tc.input)
			if got != tc.want {
				t.Errorf("NormalizeHeader(%q) = %q, want %q", tc.input, got, tc.want)
			}
			// Idempotence: normalizing an already-normal header is a no-op.
			if again := NormalizeHeader(got); again != got {
				t.Errorf("NormalizeHeader not idempotent: %q -> %q", got, again)
			}
		})
	}
}

// buildWorkbook writes a header row followed by data rows onto a fresh sheet.
func buildWorkbook(t *testing.T, sheet string, rows [][]interface{}) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	idx, err := f.NewSheet(sheet)
	if err != nil {
		t.Fatalf("NewSheet: %v", err)
	}
	f.SetActiveSheet(idx)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	return f
}

func TestParseSheet(t *testing.T) {
	f := buildWorkbook(t, "250826", [][]interface{}{
		{"Control NO", "Item NO", "Qty"},
		{"C-1001", "I-01", "6000"},
		{"", "", ""},
		{"C-1002", "I-02", "250"},
	})

	table, err := ParseSheet(f, "250826", 1)
	if err != nil {
		t.Fatalf("ParseSheet: %v", err)
	}
	if len(table.Headers) != 3 || table.Headers[0] != "Control NO" {
		t.Fatalf("unexpected headers: %v", table.Headers)
	}
	if len(table.Records) != 2 {
		t.Fatalf("got %d records, want 2 (blank row skipped)", len(table.Records))
	}
	if got := table.Records[0].Values["Control NO"]; got != "C-1001" {
		t.Errorf("record 0 Control NO = %q", got)
	}
	if table.Records[0].RowNumber != 2 {
		t.Errorf("record 0 RowNumber = %d, want 2", table.Records[0].RowNumber)
	}
	if table.Records[1].RowNumber != 4 {
		t.Errorf("record 1 RowNumber = %d, want 4 (counts the skipped blank)", table.Records[1].RowNumber)
	}
}

func TestParseSheetHeaderRowOffset(t *testing.T) {
	f := buildWorkbook(t, "data", [][]interface{}{
		{"Purchase Orders August"},
		{"Control NO", "Item NO"},
		{"C-1", "I-1"},
	})

	table, err := ParseSheet(f, "data", 2)
	if err != nil {
		t.Fatalf("ParseSheet: %v", err)
	}
	if len(table.Records) != 1 || table.Records[0].Values["Item NO"] != "I-1" {
		t.Fatalf("unexpected table: %+v", table)
	}
}

func TestParseSheetShortRowsPadded(t *testing.T) {
	f := buildWorkbook(t, "data", [][]interface{}{
		{"Control NO", "Item NO", "Barcode"},
		{"C-1", "I-1"},
	})

	table, err := ParseSheet(f, "data", 1)
	if err != nil {
		t.Fatalf("ParseSheet: %v", err)
	}
	if got, ok := table.Records[0].Values["Barcode"]; !ok || got != "" {
		t.Errorf("short row should map trailing header to empty string, got %q (present=%v)", got, ok)
	}
}

func TestParseSheetErrors(t *testing.T) {
	f := buildWorkbook(t, "data", [][]interface{}{
		{"Control NO"},
	})

	if _, err := ParseSheet(f, "missing", 1); err == nil || !strings.Contains(err.Error(), `"missing"`) {
		t.Errorf("missing sheet error should name the sheet, got %v", err)
	}
	if _, err := ParseSheet(f, "data", 5); err == nil {
		t.Error("header row beyond data should fail")
	}
	if _, err := ParseSheet(f, "data", 1); err == nil || !strings.Contains(err.Error(), "empty") {
		t.Errorf("header-only sheet should report empty, got %v", err)
	}
}
