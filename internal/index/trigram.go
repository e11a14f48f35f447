package index

import "strings"

// Trigrams returns the set of 3-rune sliding windows of the lower-cased
// input, plus the whole lower-cased input itself. Strings shorter than three
// runes contribute only themselves.
func Trigrams(s string) map[string]struct{} {
	out := make(map[string]struct{})
	lower := strings.ToLower(strings.TrimSpace(s))
	if lower == "" {
		return out
	}
	out[lower] = struct{}{}
	runes := []rune(lower)
	for i := 0; i+3 <= len(runes); i++ {
		out[string(runes[i:i+3])] = struct{}{}
	}
	return out
}

// Jaccard returns |a ∩ b| / |a ∪ b| for two trigram sets, 0 when either is
// empty.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	inter := 0
	for t := range small {
		if _, ok := large[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// encodeTrigrams serializes a trigram set for storage. Trigrams may contain
// spaces (titles are not tokenized), so the separator is a unit separator
// byte which cannot appear in input text in practice.
func encodeTrigrams(set map[string]struct{}) string {
	parts := make([]string, 0, len(set))
	for t := range set {
		parts = append(parts, t)
	}
	return strings.Join(parts, trigramSep)
}

func decodeTrigrams(s string) map[string]struct{} {
	out := make(map[string]struct{})
	if s == "" {
		return out
	}
	for _, t := range strings.Split(s, trigramSep) {
		if t != "" {
			out[t] = struct{}{}
		}
	}
	return out
}

const trigramSep = "\x1f"
