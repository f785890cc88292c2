package typoutil

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{"both empty", "", "", 0},
		{"a empty", "", "docker", 6},
		{"b empty", "docker", "", 6},
		{"identical", "python", "python", 0},
		{"substitution", "kotlin", "kotlen", 1},
		{"insertion", "golang", "goolang", 1},
		{"deletion", "kubernetes", "kubernets", 1},
		{"transposition", "pyhton", "python", 1},
		{"transposition pair", "dokcer", "docker", 1},
		{"multiple edits", "saturday", "sunday", 3},
		{"unicode", "résumé", "resume", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Distance(tt.a, tt.b))
			assert.Equal(t, tt.want, Distance(tt.b, tt.a), "distance must be symmetric")
		})
	}
}

func TestDistanceWithLimit(t *testing.T) {
	assert.Equal(t, 1, DistanceWithLimit("pyhton", "python", 2))
	assert.Equal(t, 3, DistanceWithLimit("java", "javascript", 2), "length gap exceeds limit")
	assert.Equal(t, 2, DistanceWithLimit("postgres", "mongodb", 1), "row minimum exceeds limit")
	assert.Equal(t, 0, DistanceWithLimit("", "", 0))
}

func TestSuggest(t *testing.T) {
	terms := []string{"python", "pytorch", "docker", "go", "golang", "kotlin", "swift", "rust", "ruby"}
	s := NewSuggester(terms, nil)

	tests := []struct {
		name        string
		term        string
		maxDistance int
		maxResults  int
		want        []string
	}{
		{"transposition", "pyhton", 2, 5, []string{"python"}},
		{"closest first", "rusy", 1, 5, []string{"ruby", "rust"}},
		{"limit results", "rusy", 1, 1, []string{"ruby"}},
		{"term itself skipped", "docker", 2, 5, []string{}},
		{"nothing close", "haskell", 2, 5, []string{}},
		{"zero distance", "pyhton", 0, 5, []string{}},
		{"empty term", "", 2, 5, []string{}},
		{"zero results", "pyhton", 2, 0, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Suggest(tt.term, tt.maxDistance, tt.maxResults))
		})
	}
}

func TestSuggestCacheIsClearedOnSetTerms(t *testing.T) {
	s := NewSuggester([]string{"python"}, nil)
	assert.Equal(t, []string{"python"}, s.Suggest("pyhton", 2, 5))

	s.SetTerms([]string{"typescript"})
	assert.Equal(t, 1, s.Len())
	assert.Empty(t, s.Suggest("pyhton", 2, 5))
}

func TestSuggestResultsAreCopies(t *testing.T) {
	s := NewSuggester([]string{"python", "pythons"}, nil)
	first := s.Suggest("pyhton", 2, 5)
	first[0] = "mutated"
	assert.Equal(t, "python", s.Suggest("pyhton", 2, 5)[0])
}

func TestSuggestConcurrent(t *testing.T) {
	terms := make([]string, 0, 200)
	for i := 0; i < 200; i++ {
		terms = append(terms, fmt.Sprintf("skill%03d", i))
	}
	s := NewSuggester(terms, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got := s.Suggest(fmt.Sprintf("skil%03d", i), 1, 3)
			assert.Contains(t, got, fmt.Sprintf("skill%03d", i))
		}(i)
	}
	wg.Wait()
}
