// =============================================================================
// Purchase Order Generator - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - rowsource
//   - resolver
//   - generator
//   - server
//
// =============================================================================

package types

import "strings"

// =============================================================================
// CANONICAL FIELDS
// =============================================================================

// Field identifies one of the canonical purchase-order fields that every
// input row is resolved into.
type Field string

const (
	FieldControlNo Field = "control_no"
	FieldItemNo    Field = "item_no"
	FieldBarcode   Field = "barcode"
	FieldQty       Field = "qty"
	FieldPrice     Field = "price"
	FieldDelivery  Field = "delivery"
)

// RequiredFields returns the canonical fields that must be resolved before a
// generation run may start. The order is stable and is used for display and
// for deterministic iteration.
func RequiredFields() []Field {
	return []Field{
		FieldControlNo,
		FieldItemNo,
		FieldBarcode,
		FieldQty,
		FieldPrice,
		FieldDelivery,
	}
}

// Label returns a human-readable name for the field, e.g. "Control No".
func (f Field) Label() string {
	parts := strings.Split(string(f), "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

// =============================================================================
// INPUT RECORDS
// =============================================================================

// Record is one row of source data: a header -> raw value mapping.
// Values are untyped strings exactly as read from the source.
type Record struct {
	// Values maps a normalized header to the raw cell value for this row.
	Values map[string]string

	// RowNumber is the 1-based row number in the source sheet.
	// Useful for error reporting; zero for manually entered rows.
	RowNumber int
}

// Table is a parsed tabular dataset: the normalized headers in source order
// plus the data rows.
type Table struct {
	// Headers are the normalized column headers, in source order.
	Headers []string

	// Records are the data rows.
	Records []Record
}

// =============================================================================
// CANONICAL LINES
// =============================================================================

// Line is the resolved, typed form of one record. Qty and Price are nil when
// the source value was blank or could not be parsed as a number.
type Line struct {
	ControlNo string
	ItemNo    string
	Barcode   string
	Delivery  string
	Qty       *int
	Price     *float64

	// SourceRow is the 1-based row number of the record this line came from.
	SourceRow int
}

// Amount derives qty x price, treating a missing quantity or price as zero.
// The result is always numeric, never "absent".
func (l *Line) Amount() float64 {
	qty := 0
	if l.Qty != nil {
		qty = *l.Qty
	}
	price := 0.0
	if l.Price != nil {
		price = *l.Price
	}
	return float64(qty) * price
}

// groupKeySep joins the two key halves. U+0001 cannot occur in either field,
// so distinct (control, item) pairs can never collide.
const groupKeySep = "\x01"

// GroupKey returns the (control_no, item_no) grouping key for deduplication.
// Comparison is exact string equality after trimming; case and character
// width are NOT normalized. Full-width and half-width variants of the same
// identifier therefore group separately, which is a documented limitation.
func (l *Line) GroupKey() string {
	return strings.TrimSpace(l.ControlNo) + groupKeySep + strings.TrimSpace(l.ItemNo)
}
