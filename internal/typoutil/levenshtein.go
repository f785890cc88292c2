// Package typoutil suggests known skill names for misspelled lookups.
package typoutil

// Distance returns the Damerau-Levenshtein (optimal string alignment) distance
// between a and b, counting runes rather than bytes.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	return boundedDistance(ra, rb, len(ra)+len(rb))
}

// DistanceWithLimit is Distance with early termination: once every cell of a
// row exceeds limit it returns limit+1.
func DistanceWithLimit(a, b string, limit int) int {
	return boundedDistance([]rune(a), []rune(b), limit)
}

func boundedDistance(a, b []rune, limit int) int {
	if diff := abs(len(a) - len(b)); diff > limit {
		return limit + 1
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	// Three rows: i-2 is needed for transpositions.
	prevPrev := make([]int, len(b)+1)
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		rowMin := i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
			if i > 1 && j > 1 && a[i-1] == b[j-2] && a[i-2] == b[j-1] {
				curr[j] = min(curr[j], prevPrev[j-2]+1)
			}
			rowMin = min(rowMin, curr[j])
		}
		if rowMin > limit {
			return limit + 1
		}
		prevPrev, prev, curr = prev, curr, prevPrev
	}

	if prev[len(b)] > limit {
		return limit + 1
	}
	return prev[len(b)]
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
