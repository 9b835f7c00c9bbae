// =============================================================================
// Purchase Order Generator - Run Orchestration
// =============================================================================
//
// This module orchestrates one generation run: resolve -> coerce -> dedup ->
// materialize -> serialize. A run is single-threaded and request/response
// shaped: it owns its output workbook exclusively, either completes or is
// discarded whole, and leaves no state behind.
//
// MATERIALIZATION MODES:
//   - template : clone a hand-authored reference sheet per line and fill the
//                fixed blue cells (template.go)
//   - layout   : synthesize a tabular sheet per line from scratch (layout.go)
//
// Per-cell failures during materialization are absorbed, never fatal: a
// malformed template must not block generation of the other sheets. Every
// absorbed failure is recorded as a CellWrite in the per-sheet report so it
// stays inspectable.
//
// =============================================================================

package generator

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/po-generator/internal/config"
	"github.com/ginjaninja78/po-generator/internal/resolver"
	"github.com/ginjaninja78/po-generator/internal/rowsource"
	"github.com/ginjaninja78/po-generator/internal/types"
)

// =============================================================================
// LOGGER
// =============================================================================

// Logger is the printf-style logging interface the generator writes to.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// defaultLogger is a simple logger that prints to stdout.
type defaultLogger struct{ verbose bool }

func (l *defaultLogger) Debug(msg string, args ...interface{}) {
	if l.verbose {
		fmt.Printf("[DEBUG] "+msg+"\n", args...)
	}
}

func (l *defaultLogger) Info(msg string, args ...interface{}) {
	fmt.Printf("[INFO] "+msg+"\n", args...)
}

func (l *defaultLogger) Warn(msg string, args ...interface{}) {
	fmt.Printf("[WARN] "+msg+"\n", args...)
}

func (l *defaultLogger) Error(msg string, args ...interface{}) {
	fmt.Printf("[ERROR] "+msg+"\n", args...)
}

// NewLogger returns the default stdout logger. Debug lines are emitted only
// when verbose is set.
func NewLogger(verbose bool) Logger {
	return &defaultLogger{verbose: verbose}
}

// =============================================================================
// CELL-LEVEL REPORTS
// =============================================================================

// CellWriteStatus classifies the outcome of one best-effort cell operation.
type CellWriteStatus string

const (
	// CellWritten means the value landed in the cell.
	CellWritten CellWriteStatus = "written"

	// CellSkipped means the operation failed and was absorbed; the cell
	// keeps its template default.
	CellSkipped CellWriteStatus = "skipped"
)

// CellWrite records the outcome of one cell write or clear.
type CellWrite struct {
	Cell   string          `json:"cell"`
	Field  string          `json:"field,omitempty"`
	Status CellWriteStatus `json:"status"`
	Reason string          `json:"reason,omitempty"`
}

// SheetReport aggregates the best-effort operations applied to one generated
// sheet.
type SheetReport struct {
	// Title is the final (sanitized, collision-free) sheet title.
	Title string `json:"title"`

	// SourceRow is the input row the sheet was generated from.
	SourceRow int `json:"source_row,omitempty"`

	// Writes are the field-value cell writes.
	Writes []CellWrite `json:"writes,omitempty"`

	// Clears are the auxiliary cell clears.
	Clears []CellWrite `json:"clears,omitempty"`

	// RowsDeleted counts template rows actually removed.
	RowsDeleted int `json:"rows_deleted,omitempty"`
}

// SkippedCells counts the absorbed failures across writes and clears.
func (r *SheetReport) SkippedCells() int {
	n := 0
	for _, w := range r.Writes {
		if w.Status == CellSkipped {
			n++
		}
	}
	for _, c := range r.Clears {
		if c.Status == CellSkipped {
			n++
		}
	}
	return n
}

// =============================================================================
// RESULT
// =============================================================================

// Result is the outcome of one generation run.
type Result struct {
	// Titles lists the generated sheet titles in output order (the manifest).
	Titles []string `json:"titles"`

	// Reports holds one per-sheet report per generated sheet.
	Reports []SheetReport `json:"reports"`

	// TemplateSheetRemoved reports whether the reference sheet was removed
	// from the output document.
	TemplateSheetRemoved bool `json:"template_sheet_removed"`

	// FileName is the delivered artifact name.
	FileName string `json:"file_name"`

	// Artifact is the serialized output workbook.
	Artifact []byte `json:"-"`
}

// SheetCount returns the number of generated sheets.
func (r *Result) SheetCount() int {
	return len(r.Titles)
}

// =============================================================================
// GENERATOR
// =============================================================================

// Generator runs generation against one configuration.
type Generator struct {
	cfg    *config.Config
	logger Logger
}

// New creates a Generator. A nil logger falls back to the stdout default.
func New(cfg *config.Config, logger Logger) *Generator {
	if logger == nil {
		logger = NewLogger(false)
	}
	return &Generator{cfg: cfg, logger: logger}
}

// ResolveTable auto-detects the field mapping for a table, merges explicit
// overrides, and enforces the completeness precondition. On failure the
// returned error is an *resolver.UnresolvedFieldsError carrying the partial
// mapping and the available headers.
func (g *Generator) ResolveTable(table *types.Table, overrides map[string]string) (resolver.Mapping, error) {
	mapping := resolver.Resolve(table.Headers, g.cfg.Fields.Candidates)

	if len(overrides) > 0 {
		merged, err := resolver.ApplyOverrides(mapping, overrides, table.Headers)
		if err != nil {
			return nil, err
		}
		mapping = merged
	}

	if err := resolver.Require(mapping, table.Headers); err != nil {
		return nil, err
	}
	return mapping, nil
}

// Lines builds and deduplicates canonical lines from a resolved table.
func (g *Generator) Lines(table *types.Table, mapping resolver.Mapping) []types.Line {
	lines := BuildLines(table, mapping)
	deduped := Deduplicate(lines)
	if dropped := len(lines) - len(deduped); dropped > 0 {
		g.logger.Debug("Dropped %d duplicate line(s) by (control_no, item_no)", dropped)
	}
	return deduped
}

// Run materializes one sheet per deduplicated line. When tmpl is non-nil the
// template mode is used; otherwise the generated tabular layout. The input
// table must already be resolved; lines are the deduplicated canonical lines.
func (g *Generator) Run(lines []types.Line, tmpl *excelize.File) (*Result, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("no purchase-order lines to generate")
	}

	var (
		result *Result
		err    error
	)
	if tmpl != nil {
		result, err = g.materializeTemplate(tmpl, lines)
	} else {
		result, err = g.materializeLayout(lines)
	}
	if err != nil {
		return nil, err
	}

	result.FileName = g.cfg.Output.FileName
	g.logger.Info("Created %d sheet(s)", result.SheetCount())
	return result, nil
}

// GenerateFromTable is the one-call convenience used by the CLI and HTTP
// surfaces: resolve, build lines, materialize.
func (g *Generator) GenerateFromTable(table *types.Table, overrides map[string]string, tmpl *excelize.File) (*Result, error) {
	mapping, err := g.ResolveTable(table, overrides)
	if err != nil {
		return nil, err
	}
	return g.Run(g.Lines(table, mapping), tmpl)
}

// LoadTemplate opens the template workbook configured under template.path.
// Used when a run does not supply its own template.
func (g *Generator) LoadTemplate() (*excelize.File, error) {
	if g.cfg.Template.Path == "" {
		return nil, nil
	}
	f, err := rowsource.OpenWorkbook(g.cfg.Template.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template: %w", err)
	}
	return f, nil
}
