package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ginjaninja78/po-generator/internal/types"
)

func TestDefaultReproducesTemplateLayout(t *testing.T) {
	cfg := Default()

	if cfg.Input.SheetName != "250826" || cfg.Input.HeaderRow != 1 {
		t.Errorf("input defaults: %+v", cfg.Input)
	}

	cells := map[types.Field]string{
		types.FieldControlNo: "AD9",
		types.FieldItemNo:    "E16",
		types.FieldBarcode:   "S16",
		types.FieldDelivery:  "B28",
		types.FieldQty:       "AA24",
	}
	for f, want := range cells {
		got := cfg.CellsFor(f)
		if len(got) != 1 || got[0] != want {
			t.Errorf("cells for %s = %v, want [%s]", f, got, want)
		}
	}
	if got := cfg.CellsFor(types.FieldPrice); len(got) != 2 || got[0] != "N30" || got[1] != "N32" {
		t.Errorf("price cells = %v, want [N30 N32]", got)
	}
	if cfg.Template.AmountCell != "F37" {
		t.Errorf("amount cell = %q", cfg.Template.AmountCell)
	}
	if len(cfg.Template.ClearCells) != 8 {
		t.Errorf("clear cells = %v", cfg.Template.ClearCells)
	}
	if cfg.Template.DeleteRowStart != 60 || cfg.Template.DeleteRowCount != 5 {
		t.Errorf("delete range = %d+%d", cfg.Template.DeleteRowStart, cfg.Template.DeleteRowCount)
	}

	if cfg.Output.FileName != "PurchaseOrders.xlsx" {
		t.Errorf("file name = %q", cfg.Output.FileName)
	}
	if !cfg.RemoveTemplateSheet() || !cfg.WriteSummary() {
		t.Error("remove_template_sheet and write_summary should default to true")
	}

	for _, f := range types.RequiredFields() {
		if len(cfg.CandidatesFor(f)) == 0 {
			t.Errorf("no candidates for %s", f)
		}
	}
	// The stock candidate lists carry the Japanese supplier headers.
	if cands := cfg.CandidatesFor(types.FieldQty); cands[len(cands)-1] != "数量" {
		t.Errorf("qty candidates = %v", cands)
	}
}

func TestLoadMissingDefaultPath(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"), false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Output.FileName != "PurchaseOrders.xlsx" {
		t.Errorf("missing default path should yield built-in defaults, got %+v", cfg.Output)
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), true); err == nil {
		t.Error("an explicitly requested config file must exist")
	}
}

func TestLoadPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
input:
  sheet_name: "260101"
fields:
  candidates:
    barcode: ["EAN"]
output:
  file_name: "Orders.xlsx"
  remove_template_sheet: false
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Input.SheetName != "260101" {
		t.Errorf("sheet name = %q", cfg.Input.SheetName)
	}
	if cfg.Input.HeaderRow != 1 {
		t.Errorf("header row should default, got %d", cfg.Input.HeaderRow)
	}
	if got := cfg.CandidatesFor(types.FieldBarcode); len(got) != 1 || got[0] != "EAN" {
		t.Errorf("barcode candidates = %v", got)
	}
	// Other fields keep their stock candidate lists.
	if got := cfg.CandidatesFor(types.FieldQty); len(got) < 2 {
		t.Errorf("qty candidates lost: %v", got)
	}
	if cfg.Output.FileName != "Orders.xlsx" {
		t.Errorf("file name = %q", cfg.Output.FileName)
	}
	if cfg.RemoveTemplateSheet() {
		t.Error("remove_template_sheet: false should stick")
	}
	// Untouched sections default wholesale.
	if cfg.Template.AmountCell != "F37" || cfg.Server.ListenAddr != ":8080" {
		t.Errorf("defaults missing: %+v %+v", cfg.Template, cfg.Server)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
input:
  header_row: -3
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, true); err == nil {
		t.Error("negative header_row should be rejected")
	}
}
