// =============================================================================
// Purchase Order Generator - Configuration & Template Validation
// =============================================================================
//
// This module performs the structural checks behind the 'validate' command:
// every configured cell coordinate must parse, the row-deletion range must be
// sane, and, when a template workbook is supplied, the reference sheet must
// exist and be large enough that the fixed layout plausibly matches.
//
// Validation collects every finding instead of stopping at the first, so one
// run shows the whole state of a configuration.
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/po-generator/internal/config"
	"github.com/ginjaninja78/po-generator/internal/types"
)

// =============================================================================
// VALIDATION ERRORS
// =============================================================================

// Severity classifies a finding.
type Severity string

const (
	// SeverityError findings make generation unreliable.
	SeverityError Severity = "error"

	// SeverityWarning findings are survivable; per-cell operations are
	// best-effort at run time.
	SeverityWarning Severity = "warning"
)

// Finding is one validation result.
type Finding struct {
	// Severity is error or warning.
	Severity Severity

	// Scope names the configuration area, e.g. "template.cells".
	Scope string

	// Ref is the offending value (a cell coordinate, a field name).
	Ref string

	// Message describes the problem.
	Message string
}

func (f *Finding) Error() string {
	return fmt.Sprintf("[%s] %s (%s): %s", strings.ToUpper(string(f.Severity)), f.Scope, f.Ref, f.Message)
}

// HasErrors reports whether any finding is error-severity.
func HasErrors(findings []*Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Format renders findings one per line for CLI output.
func Format(findings []*Finding) string {
	var b strings.Builder
	for _, f := range findings {
		b.WriteString(f.Error())
		b.WriteString("\n")
	}
	return b.String()
}

// =============================================================================
// CONFIGURATION CHECKS
// =============================================================================

// CheckConfig validates the configuration without a template workbook.
func CheckConfig(cfg *config.Config) []*Finding {
	var findings []*Finding

	checkCell := func(scope, cell string) {
		if _, _, err := excelize.CellNameToCoordinates(cell); err != nil {
			findings = append(findings, &Finding{
				Severity: SeverityError,
				Scope:    scope,
				Ref:      cell,
				Message:  "not a valid cell coordinate",
			})
		}
	}

	for _, field := range types.RequiredFields() {
		cells := cfg.CellsFor(field)
		if field != types.FieldQty && field != types.FieldPrice && len(cells) > 1 {
			findings = append(findings, &Finding{
				Severity: SeverityWarning,
				Scope:    "template.cells",
				Ref:      string(field),
				Message:  "multiple target cells configured; all will receive the same value",
			})
		}
		for _, cell := range cells {
			checkCell("template.cells."+string(field), cell)
		}
		if len(cfg.CandidatesFor(field)) == 0 {
			findings = append(findings, &Finding{
				Severity: SeverityError,
				Scope:    "fields.candidates",
				Ref:      string(field),
				Message:  "no candidate headers configured",
			})
		}
	}

	if cfg.Template.AmountCell != "" {
		checkCell("template.amount_cell", cfg.Template.AmountCell)
	}
	for _, cell := range cfg.Template.ClearCells {
		checkCell("template.clear_cells", cell)
	}

	if cfg.Template.DeleteRowStart < 1 {
		findings = append(findings, &Finding{
			Severity: SeverityError,
			Scope:    "template.delete_row_start",
			Ref:      fmt.Sprintf("%d", cfg.Template.DeleteRowStart),
			Message:  "row numbers start at 1",
		})
	}

	return findings
}

// =============================================================================
// TEMPLATE COMPATIBILITY CHECKS
// =============================================================================

// CheckTemplate validates a template workbook against the configuration: the
// reference sheet must exist, and the fixed layout should fit inside it.
// Coordinates past the end of the sheet are warnings (at run time those
// writes extend the sheet rather than fail), but they usually mean the wrong
// template was supplied.
func CheckTemplate(cfg *config.Config, tmpl *excelize.File) []*Finding {
	var findings []*Finding

	refSheet := cfg.Template.SheetName
	if refSheet == "" {
		refSheet = tmpl.GetSheetName(tmpl.GetActiveSheetIndex())
	}
	idx, err := tmpl.GetSheetIndex(refSheet)
	if err != nil || idx < 0 {
		return append(findings, &Finding{
			Severity: SeverityError,
			Scope:    "template.sheet_name",
			Ref:      refSheet,
			Message:  "reference sheet not found in template workbook",
		})
	}

	rows, err := tmpl.GetRows(refSheet)
	if err != nil {
		return append(findings, &Finding{
			Severity: SeverityError,
			Scope:    "template",
			Ref:      refSheet,
			Message:  fmt.Sprintf("could not read reference sheet: %v", err),
		})
	}
	rowCount := len(rows)

	checkRow := func(scope, cell string) {
		_, row, err := excelize.CellNameToCoordinates(cell)
		if err != nil {
			return // reported by CheckConfig
		}
		if row > rowCount {
			findings = append(findings, &Finding{
				Severity: SeverityWarning,
				Scope:    scope,
				Ref:      cell,
				Message:  fmt.Sprintf("beyond the reference sheet's last row (%d)", rowCount),
			})
		}
	}

	for _, field := range types.RequiredFields() {
		for _, cell := range cfg.CellsFor(field) {
			checkRow("template.cells."+string(field), cell)
		}
	}
	if cfg.Template.AmountCell != "" {
		checkRow("template.amount_cell", cfg.Template.AmountCell)
	}
	for _, cell := range cfg.Template.ClearCells {
		checkRow("template.clear_cells", cell)
	}

	if end := cfg.Template.DeleteRowStart + cfg.Template.DeleteRowCount - 1; end > rowCount {
		findings = append(findings, &Finding{
			Severity: SeverityWarning,
			Scope:    "template.delete_row_start",
			Ref:      fmt.Sprintf("%d-%d", cfg.Template.DeleteRowStart, end),
			Message:  fmt.Sprintf("row range extends past the reference sheet's last row (%d)", rowCount),
		})
	}

	return findings
}
