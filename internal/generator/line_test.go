package generator

import (
	"strings"
	"testing"

	"github.com/ginjaninja78/po-generator/internal/resolver"
	"github.com/ginjaninja78/po-generator/internal/types"
)

func TestBuildLines(t *testing.T) {
	table := &types.Table{
		Headers: []string{"Ctrl", "Item", "JAN", "Quantity", "Unit Price", "Due"},
		Records: []types.Record{
			{
				Values: map[string]string{
					"Ctrl": " C-1001 ", "Item": "I-01", "JAN": "4901234567890",
					"Quantity": "¥6,000", "Unit Price": "60.6", "Due": "2026-09-15",
				},
				RowNumber: 2,
			},
			{
				Values:    map[string]string{"Ctrl": "C-1002", "Item": "I-02"},
				RowNumber: 3,
			},
		},
	}
	mapping := resolver.Mapping{
		types.FieldControlNo: "Ctrl",
		types.FieldItemNo:    "Item",
		types.FieldBarcode:   "JAN",
		types.FieldQty:       "Quantity",
		types.FieldPrice:     "Unit Price",
		types.FieldDelivery:  "Due",
	}

	lines := BuildLines(table, mapping)
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}

	l := lines[0]
	if l.ControlNo != "C-1001" {
		t.Errorf("ControlNo = %q (should be trimmed)", l.ControlNo)
	}
	if l.Qty == nil || *l.Qty != 6000 {
		t.Errorf("Qty = %v, want 6000", l.Qty)
	}
	if l.Price == nil || *l.Price != 60.6 {
		t.Errorf("Price = %v, want 60.6", l.Price)
	}
	if got := l.Amount(); got != 363600 {
		t.Errorf("Amount = %v, want 363600", got)
	}
	if l.SourceRow != 2 {
		t.Errorf("SourceRow = %d", l.SourceRow)
	}

	// A row without numeric values carries absent qty/price and a zero amount.
	if lines[1].Qty != nil || lines[1].Price != nil {
		t.Errorf("absent values should stay nil: %+v", lines[1])
	}
	if got := lines[1].Amount(); got != 0 {
		t.Errorf("Amount with absent inputs = %v, want 0", got)
	}
}

func TestDeduplicateFirstWins(t *testing.T) {
	q1, q2 := 10, 99
	lines := []types.Line{
		{ControlNo: "C1", ItemNo: "I1", Qty: &q1, SourceRow: 2},
		{ControlNo: "C2", ItemNo: "I2", SourceRow: 3},
		{ControlNo: "C1", ItemNo: "I1", Qty: &q2, SourceRow: 4},
		{ControlNo: "C1", ItemNo: "I2", SourceRow: 5},
	}

	out := Deduplicate(lines)
	if len(out) != 3 {
		t.Fatalf("got %d lines, want 3", len(out))
	}
	// First occurrence wins, in original order.
	if out[0].SourceRow != 2 || out[1].SourceRow != 3 || out[2].SourceRow != 5 {
		t.Errorf("wrong survivors/order: %+v", out)
	}
	if *out[0].Qty != 10 {
		t.Errorf("duplicate's values leaked into the survivor: qty=%d", *out[0].Qty)
	}
}

func TestDeduplicateDistinguishesFieldBoundary(t *testing.T) {
	// ("AB", "C") and ("A", "BC") concatenate identically; the key separator
	// must keep them distinct.
	lines := []types.Line{
		{ControlNo: "AB", ItemNo: "C"},
		{ControlNo: "A", ItemNo: "BC"},
	}
	if out := Deduplicate(lines); len(out) != 2 {
		t.Errorf("got %d lines, want 2", len(out))
	}
}

func TestSanitizeSheetTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"clean", "C-1001_I-01", "C-1001_I-01"},
		{"forbidden chars", `a:b\c/d?e*f[g]h`, "a-b-c-d-e-f-g-h"},
		{"surrounding whitespace", "  C1_I1  ", "C1_I1"},
		{"empty", "", "Sheet"},
		{"only forbidden", "***", "---"},
		{"whitespace only", "   ", "Sheet"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeSheetTitle(tc.input); got != tc.want {
				t.Errorf("SanitizeSheetTitle(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestSanitizeSheetTitleCapsRunes(t *testing.T) {
	long := strings.Repeat("x", 40)
	if got := SanitizeSheetTitle(long); len([]rune(got)) != 31 {
		t.Errorf("length = %d runes, want 31", len([]rune(got)))
	}
	// Multibyte titles are capped by rune count, not bytes.
	jp := strings.Repeat("品", 40)
	got := SanitizeSheetTitle(jp)
	if n := len([]rune(got)); n != 31 {
		t.Errorf("multibyte length = %d runes, want 31", n)
	}
}

func TestTitlePoolClaims(t *testing.T) {
	pool := newTitlePool()

	if got := pool.Claim("C1_I1"); got != "C1_I1" {
		t.Errorf("first claim = %q", got)
	}
	if got := pool.Claim("C1_I1"); got != "C1_I1-2" {
		t.Errorf("second claim = %q", got)
	}
	if got := pool.Claim("C1_I1"); got != "C1_I1-3" {
		t.Errorf("third claim = %q", got)
	}
	// Sheet names are case-insensitive in xlsx.
	if got := pool.Claim("c1_i1"); got == "c1_i1" {
		t.Errorf("case-folded duplicate not suffixed: %q", got)
	}
}

func TestTitlePoolSuffixKeepsLengthCap(t *testing.T) {
	pool := newTitlePool()
	long := strings.Repeat("x", 31)
	if got := pool.Claim(long); got != long {
		t.Fatalf("first claim = %q", got)
	}
	got := pool.Claim(long)
	if len([]rune(got)) > 31 {
		t.Errorf("suffixed title exceeds 31 runes: %q", got)
	}
	if !strings.HasSuffix(got, "-2") {
		t.Errorf("suffixed title = %q", got)
	}
}

func TestSheetTitleFor(t *testing.T) {
	l := &types.Line{ControlNo: "C/1", ItemNo: "I:1"}
	if got := SheetTitleFor(l); got != "C-1_I-1" {
		t.Errorf("SheetTitleFor = %q", got)
	}
}
