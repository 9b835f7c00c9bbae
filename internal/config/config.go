// =============================================================================
// Purchase Order Generator - Configuration Module
// =============================================================================
//
// This module loads and manages the application configuration. A single YAML
// file describes everything the six former one-off variants of this tool used
// to hard-code separately:
//   - the candidate header names per canonical field (Field Resolver)
//   - the fixed template cell mapping (Sheet Materializer)
//   - the clear list and the row-deletion range (template cleanup)
//   - input defaults (sheet name, header row) and output settings
//
// The built-in defaults reproduce the hand-authored purchase-order template
// exactly, so the tool is fully usable without any configuration file.
//
// =============================================================================

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/po-generator/internal/types"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the full application configuration.
type Config struct {
	// Input contains defaults for reading the input workbook.
	Input InputSettings `yaml:"input"`

	// Fields contains the candidate header lists per canonical field.
	Fields FieldSettings `yaml:"fields"`

	// Template describes the fixed layout of the reference sheet.
	Template TemplateSettings `yaml:"template"`

	// Output controls the generated workbook and run artifacts.
	Output OutputSettings `yaml:"output"`

	// Server configures the HTTP surface (serve command).
	Server ServerSettings `yaml:"server"`

	// LogLevel controls verbosity: "debug", "info", "warn", "error".
	// Default: "info"
	LogLevel string `yaml:"log_level"`
}

// InputSettings contains defaults for reading the input workbook.
type InputSettings struct {
	// SheetName is the input sheet to read when none is given explicitly.
	SheetName string `yaml:"sheet_name"`

	// HeaderRow is the 1-based row containing the column headers.
	// Default: 1
	HeaderRow int `yaml:"header_row"`
}

// FieldSettings contains the candidate header lists used by auto-detection.
type FieldSettings struct {
	// Candidates maps a canonical field name to its candidate headers,
	// most-preferred first. Matching tries exact, then case-insensitive,
	// then substring, trying candidates in this order within each pass.
	Candidates map[string][]string `yaml:"candidates"`
}

// TemplateSettings describes the fixed layout of the reference sheet.
// The cell coordinates must be reproduced exactly for compatibility with the
// hand-authored template: blue cells are overwritten per line, green cells
// are left untouched.
type TemplateSettings struct {
	// SheetName selects the reference sheet inside the template workbook.
	// Empty means the workbook's active sheet.
	SheetName string `yaml:"sheet_name"`

	// Path is the bundled template workbook used when no template is
	// supplied with the request. Empty means a template must be supplied.
	Path string `yaml:"path"`

	// Cells maps a canonical field to the cell coordinates that receive its
	// value. A field may target more than one cell (price is written twice).
	Cells map[string][]string `yaml:"cells"`

	// AmountCell receives the derived qty x price amount.
	AmountCell string `yaml:"amount_cell"`

	// ClearCells are auxiliary coordinates emptied on every cloned sheet.
	ClearCells []string `yaml:"clear_cells"`

	// DeleteRowStart / DeleteRowCount define the contiguous row range removed
	// from every cloned sheet (1-based start, inclusive count).
	DeleteRowStart int `yaml:"delete_row_start"`
	DeleteRowCount int `yaml:"delete_row_count"`
}

// OutputSettings controls the generated workbook and run artifacts.
type OutputSettings struct {
	// FileName is the delivered artifact name.
	// Default: "PurchaseOrders.xlsx"
	FileName string `yaml:"file_name"`

	// RemoveTemplateSheet removes the original reference sheet from the
	// output workbook after all lines are materialized.
	// Default: true
	RemoveTemplateSheet *bool `yaml:"remove_template_sheet"`

	// Dir is the directory where the generate command writes its artifacts.
	// Default: "./output"
	Dir string `yaml:"dir"`

	// NameFormat names archived output copies. Placeholders:
	//   {uuid}      - a random UUID
	//   {timestamp} - current timestamp (YYYYMMDD_HHMMSS)
	//   {name}      - the base artifact name without extension
	// Default: "{name}_{timestamp}_{uuid}.xlsx"
	NameFormat string `yaml:"name_format"`

	// WriteSummary writes a JSON run summary next to the artifact.
	// Default: true
	WriteSummary *bool `yaml:"write_summary"`
}

// ServerSettings configures the HTTP surface.
type ServerSettings struct {
	// ListenAddr is the address the serve command binds to.
	// Default: ":8080"; overridable via the PO_LISTEN_ADDR environment
	// variable.
	ListenAddr string `yaml:"listen_addr"`

	// MaxUploadMB caps multipart upload size.
	// Default: 64
	MaxUploadMB int `yaml:"max_upload_mb"`
}

// =============================================================================
// MIME TYPE
// =============================================================================

// WorkbookMIMEType is the content type of the delivered artifact.
const WorkbookMIMEType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration, which reproduces the fixed
// purchase-order template layout and the stock candidate header lists.
func Default() *Config {
	removeTemplate := true
	writeSummary := true
	return &Config{
		Input: InputSettings{
			SheetName: "250826",
			HeaderRow: 1,
		},
		Fields: FieldSettings{
			Candidates: map[string][]string{
				string(types.FieldControlNo): {"Control NO", "CONTROL NO", "Control No", "control no", "ControlNO", "Ctrl No", "Control code", "Control"},
				string(types.FieldItemNo):    {"Item NO", "ITEM NO", "Item No", "item no", "Item code", "品番", "品番 / Item no"},
				string(types.FieldBarcode):   {"Barcode", "JAN", "JAN code", "JAN Code", "JANコード"},
				string(types.FieldQty):       {"Qty", "QTY", "Quantity", "数量"},
				string(types.FieldPrice):     {"Price", "単価", "Unit Price", "Unit price"},
				string(types.FieldDelivery):  {"Delivery time", "Delivery", "Delivery date", "納期"},
			},
		},
		Template: TemplateSettings{
			Cells: map[string][]string{
				string(types.FieldControlNo): {"AD9"},
				string(types.FieldItemNo):    {"E16"},
				string(types.FieldBarcode):   {"S16"},
				string(types.FieldDelivery):  {"B28"},
				string(types.FieldQty):       {"AA24"},
				string(types.FieldPrice):     {"N30", "N32"},
			},
			AmountCell:     "F37",
			ClearCells:     []string{"E18", "E20", "E24", "N24", "B26", "A35", "R37", "F39"},
			DeleteRowStart: 60,
			DeleteRowCount: 5,
		},
		Output: OutputSettings{
			FileName:            "PurchaseOrders.xlsx",
			RemoveTemplateSheet: &removeTemplate,
			Dir:                 "./output",
			NameFormat:          "{name}_{timestamp}_{uuid}.xlsx",
			WriteSummary:        &writeSummary,
		},
		Server: ServerSettings{
			ListenAddr:  ":8080",
			MaxUploadMB: 64,
		},
		LogLevel: "info",
	}
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration from a YAML file and fills in defaults for
// everything left unset.
//
// When the file at path does not exist and mustExist is false (the caller
// passed the default path without asking for it), the built-in defaults are
// returned unchanged.
func Load(path string, mustExist bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills unset options from the built-in defaults. Candidate
// lists and cell mappings are defaulted per field, so a config file may
// override a single field's candidates without restating the others.
func applyDefaults(cfg *Config) {
	def := Default()

	if cfg.Input.SheetName == "" {
		cfg.Input.SheetName = def.Input.SheetName
	}
	if cfg.Input.HeaderRow == 0 {
		cfg.Input.HeaderRow = def.Input.HeaderRow
	}

	if cfg.Fields.Candidates == nil {
		cfg.Fields.Candidates = map[string][]string{}
	}
	for field, cands := range def.Fields.Candidates {
		if len(cfg.Fields.Candidates[field]) == 0 {
			cfg.Fields.Candidates[field] = cands
		}
	}

	if cfg.Template.Cells == nil {
		cfg.Template.Cells = map[string][]string{}
	}
	for field, cells := range def.Template.Cells {
		if len(cfg.Template.Cells[field]) == 0 {
			cfg.Template.Cells[field] = cells
		}
	}
	if cfg.Template.AmountCell == "" {
		cfg.Template.AmountCell = def.Template.AmountCell
	}
	if cfg.Template.ClearCells == nil {
		cfg.Template.ClearCells = def.Template.ClearCells
	}
	if cfg.Template.DeleteRowStart == 0 {
		cfg.Template.DeleteRowStart = def.Template.DeleteRowStart
	}
	if cfg.Template.DeleteRowCount == 0 {
		cfg.Template.DeleteRowCount = def.Template.DeleteRowCount
	}

	if cfg.Output.FileName == "" {
		cfg.Output.FileName = def.Output.FileName
	}
	if cfg.Output.RemoveTemplateSheet == nil {
		cfg.Output.RemoveTemplateSheet = def.Output.RemoveTemplateSheet
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = def.Output.Dir
	}
	if cfg.Output.NameFormat == "" {
		cfg.Output.NameFormat = def.Output.NameFormat
	}
	if cfg.Output.WriteSummary == nil {
		cfg.Output.WriteSummary = def.Output.WriteSummary
	}

	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = def.Server.ListenAddr
	}
	if cfg.Server.MaxUploadMB == 0 {
		cfg.Server.MaxUploadMB = def.Server.MaxUploadMB
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
}

// validate performs the structural checks that do not need a template
// workbook. Deeper template compatibility checks live in the validation
// package.
func validate(cfg *Config) error {
	if cfg.Input.HeaderRow < 1 {
		return fmt.Errorf("input.header_row must be >= 1, got %d", cfg.Input.HeaderRow)
	}
	if cfg.Template.DeleteRowStart < 1 {
		return fmt.Errorf("template.delete_row_start must be >= 1, got %d", cfg.Template.DeleteRowStart)
	}
	if cfg.Template.DeleteRowCount < 0 {
		return fmt.Errorf("template.delete_row_count must be >= 0, got %d", cfg.Template.DeleteRowCount)
	}
	for _, field := range types.RequiredFields() {
		if len(cfg.Fields.Candidates[string(field)]) == 0 {
			return fmt.Errorf("fields.candidates is missing entries for %q", field)
		}
	}
	return nil
}

// =============================================================================
// ACCESSORS
// =============================================================================

// CandidatesFor returns the candidate header list for a canonical field.
func (c *Config) CandidatesFor(field types.Field) []string {
	return c.Fields.Candidates[string(field)]
}

// CellsFor returns the template cell coordinates for a canonical field.
func (c *Config) CellsFor(field types.Field) []string {
	return c.Template.Cells[string(field)]
}

// RemoveTemplateSheet reports whether the reference sheet is removed from the
// output workbook after materialization.
func (c *Config) RemoveTemplateSheet() bool {
	return c.Output.RemoveTemplateSheet == nil || *c.Output.RemoveTemplateSheet
}

// WriteSummary reports whether a JSON run summary is written.
func (c *Config) WriteSummary() bool {
	return c.Output.WriteSummary == nil || *c.Output.WriteSummary
}
