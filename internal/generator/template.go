// =============================================================================
// Purchase Order Generator - Template Materializer
// =============================================================================
//
// Template mode clones a hand-authored reference sheet once per canonical
// line. The template's green regions stay untouched; the blue cells listed in
// the configuration are overwritten with the line's resolved values. A fixed
// set of auxiliary cells is cleared and a fixed row range is deleted from
// every clone.
//
// Every cell write, clear, and row delete is independently best-effort: a
// failure is absorbed, recorded in the sheet report, and the affected cell
// keeps its template default. The run itself still succeeds with a count of
// generated sheets.
//
// =============================================================================

package generator

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/po-generator/internal/types"
)

// materializeTemplate builds the output workbook by cloning the reference
// sheet per line inside the loaded template document. The template workbook
// in memory becomes the output document; the reference sheet itself is only
// removed at the end when configured.
func (g *Generator) materializeTemplate(tmpl *excelize.File, lines []types.Line) (*Result, error) {
	refSheet := g.cfg.Template.SheetName
	if refSheet == "" {
		refSheet = tmpl.GetSheetName(tmpl.GetActiveSheetIndex())
	}

	refIdx, err := tmpl.GetSheetIndex(refSheet)
	if err != nil || refIdx < 0 {
		return nil, fmt.Errorf("template has no sheet %q", refSheet)
	}

	result := &Result{}
	pool := newTitlePool()
	// Every existing sheet name is taken: NewSheet on a taken name returns
	// the existing sheet and CopySheet would overwrite it.
	for _, name := range tmpl.GetSheetList() {
		pool.Claim(name)
	}

	for i := range lines {
		line := &lines[i]
		title := pool.Claim(SheetTitleFor(line))

		idx, err := tmpl.NewSheet(title)
		if err != nil {
			return nil, fmt.Errorf("failed to create sheet %q: %w", title, err)
		}
		if err := tmpl.CopySheet(refIdx, idx); err != nil {
			return nil, fmt.Errorf("failed to clone reference sheet into %q: %w", title, err)
		}

		report := g.fillSheet(tmpl, title, line)
		report.SourceRow = line.SourceRow

		result.Titles = append(result.Titles, title)
		result.Reports = append(result.Reports, report)
		g.logger.Debug("Materialized sheet %q (%d cell(s) skipped)", title, report.SkippedCells())
	}

	if g.cfg.RemoveTemplateSheet() {
		if err := tmpl.DeleteSheet(refSheet); err != nil {
			// Leaving the reference sheet in place beats producing an
			// invalid document (e.g. it was the only remaining sheet).
			g.logger.Warn("Could not remove template sheet %q: %v", refSheet, err)
		} else {
			result.TemplateSheetRemoved = true
		}
	}

	buf, err := tmpl.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize output workbook: %w", err)
	}
	result.Artifact = buf.Bytes()

	return result, nil
}

// fillSheet applies the fixed cell map, the clear list, and the row deletion
// to one cloned sheet. All operations are best-effort.
func (g *Generator) fillSheet(f *excelize.File, sheet string, line *types.Line) SheetReport {
	report := SheetReport{Title: sheet}

	write := func(field types.Field, cell string, value interface{}) {
		w := CellWrite{Cell: cell, Field: string(field), Status: CellWritten}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			w.Status = CellSkipped
			w.Reason = err.Error()
		}
		report.Writes = append(report.Writes, w)
	}

	// Fill dynamic cells (the template's blue regions).
	for _, cell := range g.cfg.CellsFor(types.FieldControlNo) {
		write(types.FieldControlNo, cell, line.ControlNo)
	}
	for _, cell := range g.cfg.CellsFor(types.FieldItemNo) {
		write(types.FieldItemNo, cell, line.ItemNo)
	}
	for _, cell := range g.cfg.CellsFor(types.FieldBarcode) {
		write(types.FieldBarcode, cell, line.Barcode)
	}
	for _, cell := range g.cfg.CellsFor(types.FieldDelivery) {
		write(types.FieldDelivery, cell, line.Delivery)
	}
	for _, cell := range g.cfg.CellsFor(types.FieldQty) {
		write(types.FieldQty, cell, nilableInt(line.Qty))
	}
	// Price intentionally lands in more than one coordinate.
	for _, cell := range g.cfg.CellsFor(types.FieldPrice) {
		write(types.FieldPrice, cell, nilableFloat(line.Price))
	}
	if cell := g.cfg.Template.AmountCell; cell != "" {
		write("amount", cell, line.Amount())
	}

	// Clear auxiliary cells.
	for _, cell := range g.cfg.Template.ClearCells {
		c := CellWrite{Cell: cell, Status: CellWritten}
		if err := f.SetCellValue(sheet, cell, nil); err != nil {
			c.Status = CellSkipped
			c.Reason = err.Error()
		}
		report.Clears = append(report.Clears, c)
	}

	// Delete the reserved row range. Each removal shifts the remaining rows
	// up, so the start row is removed count times.
	for i := 0; i < g.cfg.Template.DeleteRowCount; i++ {
		if err := f.RemoveRow(sheet, g.cfg.Template.DeleteRowStart); err != nil {
			g.logger.Debug("Row delete on %q stopped after %d row(s): %v", sheet, report.RowsDeleted, err)
			break
		}
		report.RowsDeleted++
	}

	return report
}

// nilableInt converts an absent quantity to a blank cell value.
func nilableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// nilableFloat converts an absent price to a blank cell value.
func nilableFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
