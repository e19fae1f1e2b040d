package view

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/oakmontcap/lendboard/internal/model"
)

// dateLayouts are tried in order when parsing a date field. Feed dates arrive
// in US spreadsheet formats; backend dates as ISO.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"1/2/2006",
	"01/02/2006",
}

// Sort orders rows by the named logical field, stable within equal keys.
func Sort(rows []model.JoinedRow, field string, dir model.SortDir) {
	sortAt(rows, field, dir, time.Now())
}

func sortAt(rows []model.JoinedRow, field string, dir model.SortDir, now time.Time) {
	if field == "" {
		return
	}
	less := lessFunc(field, dir, now)
	sort.SliceStable(rows, func(i, j int) bool {
		return less(&rows[i], &rows[j])
	})
}

// lessFunc builds the comparator for a field. Every comparator first orders
// by a group rank that ignores direction (missing values last, plus the
// pinned groups of the special-cased fields), then by value within the group.
func lessFunc(field string, dir model.SortDir, now time.Time) func(a, b *model.JoinedRow) bool {
	desc := dir == model.SortDesc

	switch {
	case field == fieldIOMaturity:
		return func(a, b *model.JoinedRow) bool {
			ga, ka := ioMaturityRank(fieldValue(a, field), now)
			gb, kb := ioMaturityRank(fieldValue(b, field), now)
			if ga != gb {
				return ga < gb
			}
			// Ascending within each phase regardless of direction: most
			// overdue first, then soonest upcoming.
			return ka < kb
		}

	case field == fieldDealSequence:
		return func(a, b *model.JoinedRow) bool {
			ga, ka := dealSequenceRank(a)
			gb, kb := dealSequenceRank(b)
			if ga != gb {
				return ga < gb
			}
			if ga != 0 {
				// Missing-sequence and Under-Contract groups keep input order.
				return false
			}
			if desc {
				return ka > kb
			}
			return ka < kb
		}
	}

	switch classify(field) {
	case classDate:
		return func(a, b *model.JoinedRow) bool {
			ta, oka := parseDate(fieldValue(a, field))
			tb, okb := parseDate(fieldValue(b, field))
			if oka != okb {
				return oka // unparsable sorts last
			}
			if !oka {
				return false
			}
			if desc {
				return tb.Before(ta)
			}
			return ta.Before(tb)
		}

	case classText:
		return textLess(field, desc)

	default:
		return func(a, b *model.JoinedRow) bool {
			na, oka := parseNumeric(fieldValue(a, field))
			nb, okb := parseNumeric(fieldValue(b, field))
			if oka && okb {
				if desc {
					return nb < na
				}
				return na < nb
			}
			if oka != okb {
				return oka // unparsable sorts last
			}
			// Neither side parses: fall back to text.
			return textLess(field, desc)(a, b)
		}
	}
}

func textLess(field string, desc bool) func(a, b *model.JoinedRow) bool {
	return func(a, b *model.JoinedRow) bool {
		va := strings.ToLower(strings.TrimSpace(fieldValue(a, field)))
		vb := strings.ToLower(strings.TrimSpace(fieldValue(b, field)))
		if (va == "") != (vb == "") {
			return va != "" // empty sorts last regardless of direction
		}
		if desc {
			return vb < va
		}
		return va < vb
	}
}

// ioMaturityRank groups the interest-only maturity: 0 = past due, 1 = future,
// 2 = unparsable. The key is epoch millis for ascending order within a group.
func ioMaturityRank(v string, now time.Time) (int, int64) {
	t, ok := parseDate(v)
	if !ok {
		return 2, 0
	}
	if t.Before(now) {
		return 0, t.UnixMilli()
	}
	return 1, t.UnixMilli()
}

// dealSequenceRank groups rows for the deal-sequence comparator: 0 = has a
// sequence, 1 = missing sequence, 2 = stage "Under Contract" (always last).
func dealSequenceRank(r *model.JoinedRow) (int, float64) {
	if r.Stage == model.StageUnderContract {
		return 2, 0
	}
	n, ok := parseNumeric(fieldValue(r, fieldDealSequence))
	if !ok {
		return 1, 0
	}
	return 0, n
}

func fieldValue(r *model.JoinedRow, field string) string {
	v, _ := r.Field(field)
	return v
}

func parseDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseNumeric parses a number with currency and percent decoration stripped
// ("$1,250,000", "65%").
func parseNumeric(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	v = strings.NewReplacer("$", "", ",", "", "%", "", " ", "").Replace(v)
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
