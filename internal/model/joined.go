package model

// KeyKind tags a row key as backed by a real project or synthesized for an
// unmatched feed row. Downstream code must never treat a synthetic key as a
// backend foreign key.
type KeyKind string

const (
	KeyReal      KeyKind = "real"
	KeySynthetic KeyKind = "synthetic"
)

// RowKey identifies a joined row.
type RowKey struct {
	Kind  KeyKind `json:"kind"`
	Value string  `json:"value"`
}

// RealKey returns a key backed by a project name.
func RealKey(value string) RowKey {
	return RowKey{Kind: KeyReal, Value: value}
}

// SyntheticKey returns a fallback key for a row with no usable name.
func SyntheticKey(value string) RowKey {
	return RowKey{Kind: KeySynthetic, Value: value}
}

// IsZero reports whether the key is empty.
func (k RowKey) IsZero() bool {
	return k.Value == ""
}

// JoinedRow is the reconciled, board-facing record: a banking row merged with
// (optionally) a status-feed row. Exactly one joined row exists per underlying
// project or unmatched status row, and every row carries a non-empty key.
type JoinedRow struct {
	Key          RowKey `json:"key"`
	PropertyName string `json:"property_name"`
	Stage        Stage  `json:"stage,omitempty"`

	// Back-references to the sources; either may be nil but never both.
	Status  *StatusRow  `json:"status,omitempty"`
	Banking *BankingRow `json:"banking,omitempty"`

	// Fields holds the flattened display fields, banking values winning over
	// feed values on collision.
	Fields map[string]string `json:"fields,omitempty"`
}

// Field resolves a logical field name with the documented precedence:
// merged fields first, then the raw status-feed fields. The precedence rule
// lives here and nowhere else.
func (r *JoinedRow) Field(name string) (string, bool) {
	if v, ok := r.Fields[name]; ok && v != "" {
		return v, true
	}
	if r.Status != nil {
		if v, ok := r.Status.Fields[name]; ok && v != "" {
			return v, true
		}
	}
	return "", false
}
