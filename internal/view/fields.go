// Package view produces the visible, ordered subset of the reconciled rows
// for a pivot: free-text search, stage multi-select, and a field-aware
// stable sort.
package view

import "strings"

// textFields is the explicit allow-list of fields compared as text. Anything
// not listed here and not date-like falls through to the numeric comparator,
// which itself falls back to text for unparsable values; the allow-list
// exists because many fields are ambiguous strings (a rate column may hold
// "SOFR + 2.35%" or a bare number) where numeric coercion would silently
// corrupt the sort.
var textFields = map[string]bool{
	"ProjectName": true,
	"Property":    true,
	"City":        true,
	"State":       true,
	"Region":      true,
	"ProductType": true,
	"Stage":       true,
	"ConLender":   true,
	"PermLender":  true,
	"Bank":        true,
	"Partner":     true,
	"Role":        true,
	"Guarantor":   true,
	"ConRate":     true,
	"PermRate":    true,
}

// numericFields is the explicit allow-list of fields compared numerically.
var numericFields = map[string]bool{
	"Units":           true,
	"DealSequence":    true,
	"ConAmount":       true,
	"PermAmount":      true,
	"Share":           true,
	"Amount":          true,
	"Commitment":      true,
	"Funded":          true,
	"PercentComplete": true,
}

// Fields with bespoke comparator rules.
const (
	// fieldIOMaturity sorts past-due dates before future ones regardless of
	// direction, ascending within each phase.
	fieldIOMaturity = "ConIOMaturityDate"
	// fieldDealSequence pins "Under Contract" rows to the end regardless of
	// direction.
	fieldDealSequence = "DealSequence"
)

type fieldClass int

const (
	classText fieldClass = iota
	classNumeric
	classDate
)

// classify dispatches a logical field name to its comparator class.
func classify(field string) fieldClass {
	if isDateField(field) {
		return classDate
	}
	if textFields[field] {
		return classText
	}
	if numericFields[field] {
		return classNumeric
	}
	// Default: numeric parse with text fallback.
	return classNumeric
}

func isDateField(field string) bool {
	return strings.Contains(field, "Date") ||
		strings.Contains(field, "Maturity") ||
		strings.Contains(field, "Closing")
}
