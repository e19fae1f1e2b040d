package model

// Pivot selects which projection of the board a query operates on.
type Pivot string

const (
	PivotProperty Pivot = "property"
	PivotBank     Pivot = "bank"
	PivotEquity   Pivot = "equity"
)

// IsValid checks whether the pivot is a known value.
func (p Pivot) IsValid() bool {
	switch p {
	case PivotProperty, PivotBank, PivotEquity:
		return true
	}
	return false
}

// SortDir is a sort direction.
type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// RowFilter holds criteria for querying joined rows.
type RowFilter struct {
	Pivot  Pivot   `json:"pivot,omitempty"`
	Search string  `json:"search,omitempty"` // case-insensitive, over searchable fields
	Stages []Stage `json:"stages,omitempty"` // empty = all stages
	Sort   string  `json:"sort,omitempty"`   // logical field name
	Dir    SortDir `json:"dir,omitempty"`
}
