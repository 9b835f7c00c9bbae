// =============================================================================
// Purchase Order Generator - Field Resolver
// =============================================================================
//
// This module maps heterogeneous input column names to the fixed canonical
// field set. Input files come from several suppliers with several header
// conventions ("Control NO", "Ctrl No", "品番 / Item no", ...), so resolution
// is a string-heuristic match against an ordered candidate list per field.
//
// ALGORITHM (three passes, independently per field; the first pass that
// yields any hit wins for that field):
//   1. Exact string match, candidates tried in priority order.
//   2. Case-insensitive exact match, same order.
//   3. Substring match: lowercased candidate found anywhere inside a
//      lowercased header, same order.
//
// When auto-detection leaves required fields unresolved, the caller receives
// an UnresolvedFieldsError carrying the partial mapping and every available
// header, and must obtain explicit overrides. A complete mapping is a hard
// precondition of generation, not a warning.
//
// =============================================================================

package resolver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ginjaninja78/po-generator/internal/types"
)

// =============================================================================
// MAPPING
// =============================================================================

// Mapping associates each canonical field with the input header that feeds
// it. An absent entry means the field is unresolved.
type Mapping map[types.Field]string

// Missing returns the required fields that have no mapped header, in the
// canonical field order.
func (m Mapping) Missing() []types.Field {
	var missing []types.Field
	for _, f := range types.RequiredFields() {
		if m[f] == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// Complete reports whether every required field has a mapped header.
func (m Mapping) Complete() bool {
	return len(m.Missing()) == 0
}

// =============================================================================
// RESOLUTION
// =============================================================================

// Resolve auto-detects the header for every required field using the
// candidate lists. Unresolved fields are simply absent from the result;
// use Missing to inspect them.
func Resolve(headers []string, candidates map[string][]string) Mapping {
	mapping := Mapping{}
	for _, field := range types.RequiredFields() {
		if h := findHeader(headers, candidates[string(field)]); h != "" {
			mapping[field] = h
		}
	}
	return mapping
}

// findHeader runs the three matching passes for one field.
func findHeader(headers []string, candidates []string) string {
	// Pass 1: exact match.
	for _, cand := range candidates {
		for _, h := range headers {
			if h == cand {
				return h
			}
		}
	}

	// Pass 2: case-insensitive exact match.
	for _, cand := range candidates {
		for _, h := range headers {
			if strings.EqualFold(h, cand) {
				return h
			}
		}
	}

	// Pass 3: substring match.
	for _, cand := range candidates {
		low := strings.ToLower(cand)
		for _, h := range headers {
			if strings.Contains(strings.ToLower(h), low) {
				return h
			}
		}
	}

	return ""
}

// =============================================================================
// MANUAL OVERRIDES
// =============================================================================

// ApplyOverrides merges user-specified field -> header choices over an
// auto-detected mapping. Override keys must be canonical field names and the
// chosen headers must exist in the input; either violation is an error so a
// typo cannot silently feed the wrong column into a purchase order.
func ApplyOverrides(mapping Mapping, overrides map[string]string, headers []string) (Mapping, error) {
	known := map[types.Field]bool{}
	for _, f := range types.RequiredFields() {
		known[f] = true
	}

	headerSet := map[string]bool{}
	for _, h := range headers {
		headerSet[h] = true
	}

	merged := Mapping{}
	for f, h := range mapping {
		merged[f] = h
	}

	for key, header := range overrides {
		field := types.Field(key)
		if !known[field] {
			return nil, fmt.Errorf("unknown field %q in mapping override", key)
		}
		if !headerSet[header] {
			return nil, fmt.Errorf("override for %q names header %q which is not present in the input", key, header)
		}
		merged[field] = header
	}

	return merged, nil
}

// =============================================================================
// UNRESOLVED FIELDS ERROR
// =============================================================================

// UnresolvedFieldsError reports the required fields auto-detection could not
// match. It carries the partial mapping and the available headers so an
// interactive caller can present selectable options per unresolved field,
// pre-seeded with any partial guess.
type UnresolvedFieldsError struct {
	// Missing lists the unresolved required fields.
	Missing []types.Field

	// Partial is the mapping for the fields that did resolve.
	Partial Mapping

	// Headers are all available normalized input headers.
	Headers []string
}

func (e *UnresolvedFieldsError) Error() string {
	names := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		names[i] = string(f)
	}
	sort.Strings(names)
	return fmt.Sprintf("could not auto-detect columns for: %s (specify an explicit mapping)",
		strings.Join(names, ", "))
}

// Require returns an UnresolvedFieldsError if the mapping is incomplete,
// nil otherwise.
func Require(mapping Mapping, headers []string) error {
	missing := mapping.Missing()
	if len(missing) == 0 {
		return nil
	}
	return &UnresolvedFieldsError{
		Missing: missing,
		Partial: mapping,
		Headers: headers,
	}
}
