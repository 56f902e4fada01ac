package internal

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// SimilarNames returns up to limit candidates resembling target, closest
// first. Candidates within edit distance rank before subsequence matches,
// so "echo2" suggests "echo" and "crd" suggests "card".
func SimilarNames(target string, candidates []string, limit int) []string {
	if target == StringEmpty || len(candidates) == 0 || limit <= 0 {
		return nil
	}

	threshold := max(len([]rune(target))/2, SuggestMinDistance)
	lower := strings.ToLower(target)

	type scored struct {
		name     string
		distance int
	}

	var similar []scored
	seen := make(map[string]bool, len(candidates))
	for _, candidate := range candidates {
		if d := levenshtein(lower, strings.ToLower(candidate)); d <= threshold {
			similar = append(similar, scored{name: candidate, distance: d})
			seen[candidate] = true
		}
	}
	sort.SliceStable(similar, func(i, j int) bool {
		return similar[i].distance < similar[j].distance
	})

	for _, m := range fuzzy.Find(target, candidates) {
		if seen[m.Str] {
			continue
		}
		seen[m.Str] = true
		similar = append(similar, scored{name: m.Str, distance: threshold + 1})
	}

	n := min(limit, len(similar))
	out := make([]string, n)
	for i := range out {
		out[i] = similar[i].name
	}
	return out
}

// levenshtein is the rune edit distance between a and b.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// FormatSuggestions renders suggestions as a sentence, e.g.
// "Did you mean `card` or `c`?". Empty input gives an empty string.
func FormatSuggestions(suggestions []string) string {
	if len(suggestions) == 0 {
		return StringEmpty
	}

	var sb strings.Builder
	sb.WriteString(SuggestPrefix)
	for i, s := range suggestions {
		switch {
		case i == 0:
		case i == len(suggestions)-1:
			sb.WriteString(SuggestLastSep)
		default:
			sb.WriteString(SuggestSep)
		}
		sb.WriteByte('`')
		sb.WriteString(s)
		sb.WriteByte('`')
	}
	sb.WriteByte('?')
	return sb.String()
}
