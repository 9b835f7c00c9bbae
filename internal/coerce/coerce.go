// =============================================================================
// Purchase Order Generator - Value Coercion
// =============================================================================
//
// This module turns raw spreadsheet strings into typed values. Source data
// mixes plain numbers with localized currency renderings such as "¥6,000" or
// "￥6,000" (half-width and full-width yen signs), and blank cells mean
// "absent", not zero.
//
// Coercion never returns an error: a value that cannot be parsed is absent
// (nil), and absence propagates per the amount-derivation rule instead of
// aborting the run.
//
// =============================================================================

package coerce

import (
	"math"
	"strconv"
	"strings"
)

// =============================================================================
// NUMERIC PARSING
// =============================================================================

// Float parses a localized numeric string. Thousands-separator commas, the
// full-width (￥) and half-width (¥) yen signs, and surrounding whitespace are
// stripped before parsing; on failure the parse is retried with all internal
// whitespace removed. Blank input and repeated failure both yield nil.
func Float(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	cleaned := strings.NewReplacer(",", "", "￥", "", "¥", "").Replace(s)
	cleaned = strings.TrimSpace(cleaned)

	if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return &f
	}

	// Second attempt: some sources carry stray spaces inside the number.
	compact := strings.Join(strings.Fields(cleaned), "")
	if f, err := strconv.ParseFloat(compact, 64); err == nil {
		return &f
	}

	return nil
}

// Int parses a localized numeric string and rounds it to the nearest integer.
// The rounding rule is half-away-from-zero (math.Round): "60.600" becomes 61,
// "0.5" becomes 1, "-0.5" becomes -1. Nil input semantics follow Float.
func Int(s string) *int {
	f := Float(s)
	if f == nil {
		return nil
	}
	n := int(math.Round(*f))
	return &n
}

// =============================================================================
// STRING COERCION
// =============================================================================

// String trims surrounding whitespace. A missing source value is the empty
// string, so this is total.
func String(s string) string {
	return strings.TrimSpace(s)
}

// =============================================================================
// AMOUNT DERIVATION
// =============================================================================

// Amount derives qty x price with absent values contributing zero. Unlike
// the individual coercions, the result is always numeric, never nil.
func Amount(qty *int, price *float64) float64 {
	q := 0
	if qty != nil {
		q = *qty
	}
	p := 0.0
	if price != nil {
		p = *price
	}
	return float64(q) * p
}
