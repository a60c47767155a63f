package ui

import (
	"sort"
	"strings"
)

const (
	// maxDistance is the maximum edit distance to consider for a suggestion
	maxDistance = 3
	// maxSuggestions is the maximum number of suggestions to return
	maxSuggestions = 3
)

type suggestion struct {
	value    string
	distance int
}

// FindSimilar finds names similar to the target using Levenshtein distance.
// Matching is case-insensitive; at most three suggestions are returned,
// closest first.
//
// Example:
//
//	candidates := []string{"Environment", "Reference", "Extension"}
//	FindSimilar("Enviroment", candidates)
//	// Returns: ["Environment"]
func FindSimilar(target string, candidates []string) []string {
	var suggestions []suggestion

	lowered := strings.ToLower(target)
	for _, candidate := range candidates {
		distance := levenshtein(lowered, strings.ToLower(candidate))
		if distance <= maxDistance {
			suggestions = append(suggestions, suggestion{candidate, distance})
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].distance < suggestions[j].distance
	})

	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}

	// Nil when nothing is close enough, so that callers can range or check
	// emptiness without caring.
	var result []string
	for _, s := range suggestions {
		result = append(result, s.value)
	}
	return result
}

// levenshtein computes the edit distance between two strings
func levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	previous := make([]int, len(rb)+1)
	current := make([]int, len(rb)+1)

	for j := 0; j <= len(rb); j++ {
		previous[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		current[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			current[j] = min3(
				previous[j]+1,
				current[j-1]+1,
				previous[j-1]+cost,
			)
		}
		previous, current = current, previous
	}

	return previous[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
