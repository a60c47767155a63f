package ui

import (
	"reflect"
	"testing"
)

func TestFindSimilar(t *testing.T) {
	candidates := []string{"Referable", "Identifiable", "Extension", "Qualifier"}

	tests := []struct {
		name   string
		target string
		want   []string
	}{
		{
			name:   "single close match",
			target: "Referble",
			want:   []string{"Referable"},
		},
		{
			name:   "exact match",
			target: "Extension",
			want:   []string{"Extension"},
		},
		{
			name:   "case insensitive",
			target: "referable",
			want:   []string{"Referable"},
		},
		{
			name:   "nothing close enough",
			target: "SubmodelElementCollection",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindSimilar(tt.target, candidates)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FindSimilar(%q) = %v, want %v", tt.target, got, tt.want)
			}
		})
	}
}

func TestFindSimilar_ClosestFirst(t *testing.T) {
	candidates := []string{"Reference", "Referable", "Referenced"}

	got := FindSimilar("Referenc", candidates)
	if len(got) == 0 || got[0] != "Reference" {
		t.Errorf("expected Reference first, got %v", got)
	}
}

func TestFindSimilar_CapsSuggestions(t *testing.T) {
	candidates := []string{"name1", "name2", "name3", "name4", "name5"}

	got := FindSimilar("name", candidates)
	if len(got) != 3 {
		t.Errorf("expected at most 3 suggestions, got %d: %v", len(got), got)
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"referable", "referble", 1},
	}

	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
