// =============================================================================
// Purchase Order Generator - Generated-Layout Materializer
// =============================================================================
//
// Layout mode synthesizes one sheet per canonical line without any external
// template: a bold centered title, a labeled header block (control number and
// delivery), and a styled one-row item table directly beneath. Numeric
// display formats follow the column semantics: integer grouping for the
// quantity, three-decimal fixed point for the unit price, currency-styled two
// decimals for the amount. Column widths auto-size to the widest rendered
// value within sane bounds.
//
// =============================================================================

package generator

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/po-generator/internal/types"
)

// Column width bounds, in characters.
const (
	minColWidth = 8.0
	maxColWidth = 50.0
)

// itemHeaders are the one-row item table column headers, A through E.
var itemHeaders = []string{"Item NO", "Barcode", "Qty", "Unit Price", "Amount"}

// layoutStyles holds the style IDs registered once per output workbook.
type layoutStyles struct {
	title  int
	label  int
	header int
	text   int
	qty    int
	price  int
	amount int
}

// materializeLayout builds a fresh workbook with one generated sheet per
// line. The starter sheet excelize creates by default is removed before
// delivery so only generated sheets remain.
func (g *Generator) materializeLayout(lines []types.Line) (*Result, error) {
	f := excelize.NewFile()
	defer f.Close()

	starter := f.GetSheetName(f.GetActiveSheetIndex())

	styles, err := registerLayoutStyles(f)
	if err != nil {
		return nil, fmt.Errorf("failed to register styles: %w", err)
	}

	result := &Result{}
	pool := newTitlePool()
	pool.Claim(starter)

	for i := range lines {
		line := &lines[i]
		title := pool.Claim(SheetTitleFor(line))

		if _, err := f.NewSheet(title); err != nil {
			return nil, fmt.Errorf("failed to create sheet %q: %w", title, err)
		}
		report := g.writeLayoutSheet(f, title, line, styles)
		report.SourceRow = line.SourceRow

		result.Titles = append(result.Titles, title)
		result.Reports = append(result.Reports, report)
		g.logger.Debug("Generated sheet %q", title)
	}

	if err := f.DeleteSheet(starter); err != nil {
		g.logger.Warn("Could not remove starter sheet %q: %v", starter, err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize output workbook: %w", err)
	}
	result.Artifact = buf.Bytes()

	return result, nil
}

// writeLayoutSheet renders one generated sheet. Cell writes stay best-effort
// for parity with template mode, though they only fail on programming errors
// here.
func (g *Generator) writeLayoutSheet(f *excelize.File, sheet string, line *types.Line, styles *layoutStyles) SheetReport {
	report := SheetReport{Title: sheet}

	set := func(field types.Field, cell string, value interface{}, styleID int) {
		w := CellWrite{Cell: cell, Field: string(field), Status: CellWritten}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			w.Status = CellSkipped
			w.Reason = err.Error()
			report.Writes = append(report.Writes, w)
			return
		}
		if styleID != 0 {
			if err := f.SetCellStyle(sheet, cell, cell, styleID); err != nil {
				w.Reason = err.Error()
			}
		}
		report.Writes = append(report.Writes, w)
	}

	// Title block.
	set("", "A1", "Purchase Order", styles.title)
	if err := f.MergeCell(sheet, "A1", "E1"); err == nil {
		_ = f.SetCellStyle(sheet, "A1", "E1", styles.title)
	}

	// Header block: control number and delivery.
	set("", "A3", "Control NO", styles.label)
	set(types.FieldControlNo, "B3", line.ControlNo, styles.text)
	set("", "A4", "Delivery", styles.label)
	set(types.FieldDelivery, "B4", line.Delivery, styles.text)

	// Item table header row.
	for i, h := range itemHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 6)
		set("", cell, h, styles.header)
	}

	// Item table data row.
	set(types.FieldItemNo, "A7", line.ItemNo, styles.text)
	set(types.FieldBarcode, "B7", line.Barcode, styles.text)
	set(types.FieldQty, "C7", nilableInt(line.Qty), styles.qty)
	set(types.FieldPrice, "D7", nilableFloat(line.Price), styles.price)
	set("amount", "E7", line.Amount(), styles.amount)

	g.sizeColumns(f, sheet, line)

	return report
}

// sizeColumns widens each item-table column to its widest rendered value,
// clamped to [minColWidth, maxColWidth] characters. The header-block labels
// and values participate for columns A and B.
func (g *Generator) sizeColumns(f *excelize.File, sheet string, line *types.Line) {
	qty, price := "", ""
	if line.Qty != nil {
		qty = strconv.Itoa(*line.Qty)
	}
	if line.Price != nil {
		price = strconv.FormatFloat(*line.Price, 'f', 3, 64)
	}
	amount := strconv.FormatFloat(line.Amount(), 'f', 2, 64)

	columns := [][]string{
		{itemHeaders[0], line.ItemNo, "Control NO", line.ControlNo},
		{itemHeaders[1], line.Barcode, line.Delivery},
		{itemHeaders[2], qty},
		{itemHeaders[3], price},
		{itemHeaders[4], amount},
	}

	for i, values := range columns {
		width := minColWidth
		for _, v := range values {
			// A small pad keeps characters clear of the cell edge.
			if w := float64(utf8.RuneCountInString(v)) + 2; w > width {
				width = w
			}
		}
		if width > maxColWidth {
			width = maxColWidth
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			g.logger.Debug("Could not size column %s on %q: %v", col, sheet, err)
		}
	}
}

// registerLayoutStyles registers the generated-layout styles on a workbook.
func registerLayoutStyles(f *excelize.File) (*layoutStyles, error) {
	thin := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}

	title, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	label, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, err
	}

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thin,
	})
	if err != nil {
		return nil, err
	}

	text, err := f.NewStyle(&excelize.Style{Border: thin})
	if err != nil {
		return nil, err
	}

	qtyFmt := "#,##0"
	qty, err := f.NewStyle(&excelize.Style{CustomNumFmt: &qtyFmt, Border: thin})
	if err != nil {
		return nil, err
	}

	priceFmt := "0.000"
	price, err := f.NewStyle(&excelize.Style{CustomNumFmt: &priceFmt, Border: thin})
	if err != nil {
		return nil, err
	}

	amountFmt := "¥#,##0.00"
	amount, err := f.NewStyle(&excelize.Style{CustomNumFmt: &amountFmt, Border: thin})
	if err != nil {
		return nil, err
	}

	return &layoutStyles{
		title:  title,
		label:  label,
		header: header,
		text:   text,
		qty:    qty,
		price:  price,
		amount: amount,
	}, nil
}
