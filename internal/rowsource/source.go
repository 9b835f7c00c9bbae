// =============================================================================
// Purchase Order Generator - Row Source (XLSX Input)
// =============================================================================
//
// This module produces the sequence of input records a generation run works
// on. Rows come from an uploaded spreadsheet sheet (selected by name, with a
// configurable header row) or from manually entered lines (accumulator.go);
// both normalize to the same Table shape.
//
// HEADER NORMALIZATION:
//   Raw headers are messy: non-breaking spaces, embedded newlines from
//   wrapped template cells, doubled spaces. Every header is canonicalized
//   before field resolution so candidate matching sees a stable form.
//
// =============================================================================

package rowsource

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/po-generator/internal/types"
)

// =============================================================================
// HEADER NORMALIZER
// =============================================================================

// NormalizeHeader canonicalizes one raw column header: every run of Unicode
// whitespace (ordinary spaces, newlines, non-breaking spaces, the ideographic
// space U+3000 common in Japanese headers) becomes a single ordinary space,
// and the result is trimmed. Pure and idempotent; an all-whitespace header
// maps to the empty string.
func NormalizeHeader(h string) string {
	return strings.Join(strings.FieldsFunc(h, unicode.IsSpace), " ")
}

// NormalizeHeaders canonicalizes a full header row.
func NormalizeHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = NormalizeHeader(h)
	}
	return out
}

// =============================================================================
// WORKBOOK LOADING
// =============================================================================

// OpenWorkbook opens an input workbook from a file path.
func OpenWorkbook(path string) (*excelize.File, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input workbook %s: %w", path, err)
	}
	return f, nil
}

// OpenWorkbookReader opens an input workbook from a stream (HTTP upload).
func OpenWorkbookReader(r io.Reader) (*excelize.File, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open input workbook: %w", err)
	}
	return f, nil
}

// =============================================================================
// SHEET PARSING
// =============================================================================

// ParseSheet reads one sheet of an open workbook into a Table. headerRow is
// 1-based; rows above it are ignored, the header row supplies the normalized
// column names, and every following non-empty row becomes a Record.
//
// Failure modes are fatal to the run and name the offending sheet: a missing
// sheet, a header row beyond the data, or a sheet with no data rows.
func ParseSheet(f *excelize.File, sheetName string, headerRow int) (*types.Table, error) {
	if headerRow < 1 {
		headerRow = 1
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("could not read sheet %q: %w", sheetName, err)
	}
	if len(rows) < headerRow {
		return nil, fmt.Errorf("sheet %q has no header row at position %d", sheetName, headerRow)
	}

	headers := NormalizeHeaders(rows[headerRow-1])

	table := &types.Table{Headers: headers}
	for i := headerRow; i < len(rows); i++ {
		row := rows[i]
		if isRowEmpty(row) {
			continue
		}

		values := make(map[string]string, len(headers))
		for j, h := range headers {
			if h == "" {
				continue
			}
			if j < len(row) {
				values[h] = row[j]
			} else {
				values[h] = ""
			}
		}

		table.Records = append(table.Records, types.Record{
			Values:    values,
			RowNumber: i + 1,
		})
	}

	if len(table.Records) == 0 {
		return nil, fmt.Errorf("sheet %q appears to be empty", sheetName)
	}

	return table, nil
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
