package spawn

import (
	"sort"
	"strings"
)

const (
	maxSuggestionDistance = 5
	maxSuggestions        = 3
)

type keyMatch struct {
	key      string
	distance int
}

// suggestKeys finds stable keys similar to an unresolved one, so the
// failure can carry a usable "did you mean" list. Matching is
// case-insensitive; keys containing the target (or its trailing
// segment) count as close regardless of edit distance.
func suggestKeys(target string, candidates []string) []string {
	needle := strings.ToLower(target)
	tail := needle
	if i := strings.LastIndex(needle, "::"); i >= 0 {
		tail = needle[i+2:]
	}

	var matches []keyMatch
	for _, candidate := range candidates {
		lower := strings.ToLower(candidate)
		if strings.Contains(lower, needle) || (tail != "" && strings.Contains(lower, tail)) {
			matches = append(matches, keyMatch{key: candidate, distance: 0})
			continue
		}
		if dist := levenshtein(needle, lower); dist <= maxSuggestionDistance {
			matches = append(matches, keyMatch{key: candidate, distance: dist})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})

	result := make([]string, 0, maxSuggestions)
	for i := 0; i < len(matches) && i < maxSuggestions; i++ {
		result = append(result, matches[i].key)
	}
	return result
}

// levenshtein is the minimum number of single-character edits turning
// s1 into s2.
func levenshtein(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	prev := make([]int, len(s2)+1)
	cur := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(s1); i++ {
		cur[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			cur[j] = minInt(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(s2)]
}

func minInt(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
