// =============================================================================
// Purchase Order Generator - Canonical Lines
// =============================================================================
//
// This file turns resolved records into typed canonical lines, deduplicates
// them by (control_no, item_no), and sanitizes output sheet titles.
//
// =============================================================================

package generator

import (
	"strconv"
	"strings"

	"github.com/ginjaninja78/po-generator/internal/coerce"
	"github.com/ginjaninja78/po-generator/internal/resolver"
	"github.com/ginjaninja78/po-generator/internal/types"
)

// =============================================================================
// LINE BUILDING
// =============================================================================

// BuildLines coerces every record of the table into a canonical line using a
// complete field mapping. Coercion never fails; unparseable numbers become
// absent values.
func BuildLines(table *types.Table, mapping resolver.Mapping) []types.Line {
	lines := make([]types.Line, 0, len(table.Records))
	for _, rec := range table.Records {
		get := func(f types.Field) string {
			return rec.Values[mapping[f]]
		}
		lines = append(lines, types.Line{
			ControlNo: coerce.String(get(types.FieldControlNo)),
			ItemNo:    coerce.String(get(types.FieldItemNo)),
			Barcode:   coerce.String(get(types.FieldBarcode)),
			Delivery:  coerce.String(get(types.FieldDelivery)),
			Qty:       coerce.Int(get(types.FieldQty)),
			Price:     coerce.Float(get(types.FieldPrice)),
			SourceRow: rec.RowNumber,
		})
	}
	return lines
}

// =============================================================================
// DEDUPLICATION
// =============================================================================

// Deduplicate keeps the first line per distinct (control_no, item_no) key,
// preserving the original relative order of first occurrences. Later lines
// sharing a key are silently discarded: the output contains exactly one sheet
// per distinct key.
func Deduplicate(lines []types.Line) []types.Line {
	seen := map[string]bool{}
	out := make([]types.Line, 0, len(lines))
	for _, l := range lines {
		key := l.GroupKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, l)
	}
	return out
}

// =============================================================================
// SHEET TITLE SANITIZER
// =============================================================================

// maxSheetTitleLen is the xlsx sheet-name length ceiling.
const maxSheetTitleLen = 31

// invalidTitleChars are forbidden in xlsx sheet names.
const invalidTitleChars = `:\/?*[]`

// SanitizeSheetTitle makes an arbitrary string usable as a sheet name:
// forbidden characters become hyphens, surrounding whitespace is trimmed, an
// empty result falls back to "Sheet", and the title is capped at 31 runes.
// Total and deterministic.
func SanitizeSheetTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		if strings.ContainsRune(invalidTitleChars, r) {
			b.WriteRune('-')
		} else {
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		out = "Sheet"
	}
	return truncateRunes(out, maxSheetTitleLen)
}

// titlePool hands out collision-free sheet titles. Distinct grouping keys can
// sanitize to the same title (e.g. "A/B"_"C" and "A-B"_"C"), and xlsx sheet
// names are case-insensitive, so later duplicates get a numeric suffix
// re-capped to the length ceiling instead of silently overwriting a sheet.
type titlePool struct {
	used map[string]bool
}

func newTitlePool() *titlePool {
	return &titlePool{used: map[string]bool{}}
}

// Claim returns the title itself when free, otherwise the first free
// "-2", "-3", ... suffixed variant.
func (p *titlePool) Claim(title string) string {
	if !p.used[strings.ToLower(title)] {
		p.used[strings.ToLower(title)] = true
		return title
	}
	for i := 2; ; i++ {
		suffix := "-" + strconv.Itoa(i)
		base := truncateRunes(title, maxSheetTitleLen-len(suffix))
		candidate := base + suffix
		if !p.used[strings.ToLower(candidate)] {
			p.used[strings.ToLower(candidate)] = true
			return candidate
		}
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// SheetTitleFor returns the sanitized "{control_no}_{item_no}" title for a
// line, before collision handling.
func SheetTitleFor(l *types.Line) string {
	return SanitizeSheetTitle(l.ControlNo + "_" + l.ItemNo)
}
