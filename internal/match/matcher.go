// Package match decides whether two free-text property names plausibly name
// the same real-world property. The status and schedule feeds share no key
// with the backend, so the name string is the only attribute to match on.
package match

import (
	"strings"
	"unicode"
)

// stopWords are generic tokens that carry no identifying signal and are
// dropped before token scoring. Includes the generic property descriptors
// ("waters", "heights", ...) that two unrelated properties routinely share.
var stopWords = map[string]bool{
	"the": true, "and": true, "at": true, "of": true, "in": true, "on": true,
	"llc": true, "lp": true, "phase": true,
	"apartments": true, "apartment": true, "homes": true,
	"waters": true, "heights": true, "flats": true, "towers": true,
	"plaza": true, "place": true,
}

// genericDescriptors are tokens that survive tokenization but do not count as
// location-like: sharing one of these is not evidence of a shared location.
var genericDescriptors = map[string]bool{
	"village": true, "commons": true, "crossing": true, "station": true,
	"square": true, "gardens": true, "landing": true, "pointe": true,
	"estates": true, "residences": true, "lofts": true,
}

// phaseNumerals are dropped when they follow "phase" during normalization.
var phaseNumerals = map[string]bool{
	"1": true, "2": true, "3": true, "4": true,
	"one": true, "two": true, "three": true, "four": true,
	"i": true, "ii": true, "iii": true, "iv": true,
}

// Match reports whether the two names plausibly refer to the same property.
// It is symmetric, and returns false (never an error) for blank input.
//
// The decision is tiered; each tier short-circuits to true:
//  1. exact after trim+lowercase
//  2. exact after normalization
//  3. containment of the normalized strings
//  4. weighted token overlap score >= 50
//  5. fallback heuristics for pairs tier 4 under-scores
func Match(a, b string) bool {
	la := strings.ToLower(strings.TrimSpace(a))
	lb := strings.ToLower(strings.TrimSpace(b))
	if la == "" || lb == "" {
		return false
	}
	if la == lb {
		return true
	}

	na := Normalize(a)
	nb := Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}

	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true
	}

	ta := Tokenize(na)
	tb := Tokenize(nb)
	if tokenScore(ta, tb) >= 50 {
		return true
	}

	return heuristicMatch(na, nb, ta, tb)
}

// Normalize lowercases, strips punctuation, drops the leading "the",
// collapses "X at Y" phrasing, and removes generic suffix words ("apartments",
// "llc", "phase two") so minor phrasing differences compare equal.
func Normalize(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteRune(' ')
		}
	}

	raw := strings.Fields(sb.String())
	out := make([]string, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		w := raw[i]
		if i == 0 && w == "the" {
			continue
		}
		switch w {
		case "at", "apartments", "apartment", "llc":
			continue
		case "phase":
			// Drop "phase" and a trailing numeral ("phase two", "phase 2").
			if i+1 < len(raw) && phaseNumerals[raw[i+1]] {
				i++
			}
			continue
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}

// Tokenize splits a normalized name into scoring tokens, dropping tokens of
// two characters or fewer and the generic stop words.
func Tokenize(normalized string) []string {
	var tokens []string
	for _, w := range strings.Fields(normalized) {
		if len(w) <= 2 || stopWords[w] {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// tokenScore computes the weighted token overlap score on a 0-100 scale.
// Each token contributes its best pairing: exact = 2, substring containment
// = 1.5, fuzzy prefix = 1. The per-side sums are averaged so the score is
// symmetric, then normalized by (maxTokenCount * 2).
func tokenScore(ta, tb []string) float64 {
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	pts := (sideScore(ta, tb) + sideScore(tb, ta)) / 2
	maxTokens := len(ta)
	if len(tb) > maxTokens {
		maxTokens = len(tb)
	}
	return pts / (float64(maxTokens) * 2) * 100
}

func sideScore(from, to []string) float64 {
	var total float64
	for _, t := range from {
		var best float64
		for _, u := range to {
			s := pairScore(t, u)
			if s > best {
				best = s
			}
			if best == 2 {
				break
			}
		}
		total += best
	}
	return total
}

func pairScore(a, b string) float64 {
	if a == b {
		return 2
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 1.5
	}
	if fuzzyPrefix(a, b) {
		return 1
	}
	return 0
}

// fuzzyPrefix reports whether two tokens share enough of a leading fragment
// to count as a weak match: both longer than four characters, the shorter at
// least 60% the length of the longer, and the shorter's leading 60% appearing
// inside the longer.
func fuzzyPrefix(a, b string) bool {
	if len(a) <= 4 || len(b) <= 4 {
		return false
	}
	short, long := a, b
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short)*10 < len(long)*6 {
		return false
	}
	prefix := short[:(len(short)*6+9)/10]
	return strings.Contains(long, prefix)
}

// heuristicMatch covers edge cases the token score under-scores. Each branch
// requires corroborating evidence (a second shared token, or a rare
// location-specific token) before accepting a weak match.
func heuristicMatch(na, nb string, ta, tb []string) bool {
	shared := sharedTokens(ta, tb)

	// (a) Two or more shared tokens, at least one longer than three
	// characters, and no conflicting location words.
	if len(shared) >= 2 {
		for _, t := range shared {
			if len(t) > 3 && locationConsistent(ta, tb, shared) {
				return true
			}
		}
	}

	// (b) One shared significant token plus a near-miss token score.
	for _, t := range shared {
		if len(t) > 5 && tokenScore(ta, tb) >= 40 {
			return true
		}
	}

	// (c) Two or more long tokens from either side embedded in the other
	// full normalized string.
	if longEmbeddedCount(na, nb, ta, tb) >= 2 {
		return true
	}

	// (d) A shared location-like token plus at least one other shared token.
	if len(shared) >= 2 {
		for _, t := range shared {
			if len(t) > 5 && !genericDescriptors[t] {
				return true
			}
		}
	}

	return false
}

func sharedTokens(ta, tb []string) []string {
	set := make(map[string]bool, len(tb))
	for _, t := range tb {
		set[t] = true
	}
	var shared []string
	seen := make(map[string]bool)
	for _, t := range ta {
		if set[t] && !seen[t] {
			shared = append(shared, t)
			seen[t] = true
		}
	}
	return shared
}

// locationConsistent reports false when both names carry location-like tokens
// but share none of them: "waters robinwood" and "waters bartlett" name two
// different places no matter how much else lines up.
func locationConsistent(ta, tb []string, shared []string) bool {
	sharedSet := make(map[string]bool, len(shared))
	for _, t := range shared {
		sharedSet[t] = true
	}
	la := locationTokens(ta, sharedSet)
	lb := locationTokens(tb, sharedSet)
	if len(la) == 0 || len(lb) == 0 {
		return true
	}
	// Unshared location words on both sides: conflicting locations.
	return false
}

func locationTokens(tokens []string, exclude map[string]bool) []string {
	var out []string
	for _, t := range tokens {
		if len(t) > 5 && !genericDescriptors[t] && !exclude[t] {
			out = append(out, t)
		}
	}
	return out
}

func longEmbeddedCount(na, nb string, ta, tb []string) int {
	seen := make(map[string]bool)
	for _, t := range ta {
		if len(t) > 6 && strings.Contains(nb, t) {
			seen[t] = true
		}
	}
	for _, t := range tb {
		if len(t) > 6 && strings.Contains(na, t) {
			seen[t] = true
		}
	}
	return len(seen)
}
