package match

import "strings"

// Best-match score tiers. The scale is coarse on purpose: candidate ranking
// only needs exact > containment > heuristic.
const (
	ScoreExact       = 100
	ScoreContainment = 50
	ScoreHeuristic   = 25
)

// Score rates how strongly two names match on the best-match scale:
// exact = 100, containment = 50, any heuristic match = 25, no match = 0.
func Score(a, b string) int {
	la := strings.ToLower(strings.TrimSpace(a))
	lb := strings.ToLower(strings.TrimSpace(b))
	if la == "" || lb == "" {
		return 0
	}
	if la == lb {
		return ScoreExact
	}
	na := Normalize(a)
	nb := Normalize(b)
	if na != "" && na == nb {
		return ScoreExact
	}
	if na != "" && nb != "" && (strings.Contains(na, nb) || strings.Contains(nb, na)) {
		return ScoreContainment
	}
	if Match(a, b) {
		return ScoreHeuristic
	}
	return 0
}

// BestMatch returns the index of the highest-scoring candidate for name, or
// -1 when no candidate matches at all. Ties keep the first-found candidate.
func BestMatch(name string, candidates []string) int {
	best := -1
	bestScore := 0
	for i, c := range candidates {
		if s := Score(name, c); s > bestScore {
			best, bestScore = i, s
		}
	}
	return best
}

// QuickMatch is the reconciler's cheap pre-filter: names equal ignoring case
// and spaces, or both longer than three characters with one containing the
// other. It is deliberately cruder than Match; both live in this package so
// the divergence stays visible and tested in one place.
func QuickMatch(a, b string) bool {
	la := strings.ToLower(strings.TrimSpace(a))
	lb := strings.ToLower(strings.TrimSpace(b))
	if la == "" || lb == "" {
		return false
	}
	if strings.ReplaceAll(la, " ", "") == strings.ReplaceAll(lb, " ", "") {
		return true
	}
	return len(la) > 3 && len(lb) > 3 &&
		(strings.Contains(la, lb) || strings.Contains(lb, la))
}
