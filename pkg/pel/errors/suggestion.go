package errors

import (
	"fmt"
	"strings"
)

// pelKeywords are the identifiers the lexer treats as keywords, plus
// the comparison operators, used for typo suggestions.
var pelKeywords = []string{"AND", "OR", "IN", "BETWEEN"}

// SuggestKeyword suggests a keyword when an identifier looks like a
// mistyped logical keyword (e.g. "ADN" → "AND"). Returns "" when
// nothing is close enough.
func SuggestKeyword(word string) string {
	upper := strings.ToUpper(word)

	best := ""
	bestDist := 3 // only suggest for small typos
	for _, kw := range pelKeywords {
		if dist := levenshteinDistance(upper, kw); dist < bestDist {
			bestDist = dist
			best = kw
		}
	}

	if best == "" || best == upper {
		return ""
	}
	return fmt.Sprintf("did you mean %q?", best)
}

// SuggestComparator lists the valid comparators, for errors where an
// unknown operator symbol was used.
func SuggestComparator() string {
	return "valid comparators: =, !=, >, >=, <, <=, IN, BETWEEN"
}

// levenshteinDistance computes the edit distance between two strings.
func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}

	len1 := len(s1)
	len2 := len(s2)

	matrix := make([][]int, len1+1)
	for i := range matrix {
		matrix[i] = make([]int, len2+1)
		matrix[i][0] = i
	}
	for j := 0; j <= len2; j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len1; i++ {
		for j := 1; j <= len2; j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}

			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len1][len2]
}
