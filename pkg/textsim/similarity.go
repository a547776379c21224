// Package textsim provides normalized text similarity scoring for comparing
// submitted answers against reference answers.
package textsim

import (
	"strings"
	"unicode"
)

// Normalize lowercases the input, trims surrounding whitespace and collapses
// internal whitespace runs into single spaces.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// NormalizeStrict applies Normalize and additionally removes every rune that
// is not a letter, a digit or a space.
func NormalizeStrict(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return Normalize(b.String())
}

// Distance computes the Levenshtein edit distance between a and b counted in
// runes, not bytes, so multi-byte alphabets are measured correctly.
func Distance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// Similarity scores two strings in [0,100] after applying Normalize.
func Similarity(a, b string) float64 {
	return score(Normalize(a), Normalize(b))
}

// SimilarityStrict scores two strings in [0,100] after applying NormalizeStrict.
func SimilarityStrict(a, b string) float64 {
	return score(NormalizeStrict(a), NormalizeStrict(b))
}

func score(a, b string) float64 {
	if a == b {
		return 100
	}

	la := len([]rune(a))
	lb := len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 100
	}

	distance := Distance(a, b)
	return 100 * (1 - float64(distance)/float64(longest))
}

// LongestCommonSubstring returns the length in runes of the longest substring
// shared by a and b.
func LongestCommonSubstring(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	best := 0

	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > best {
					best = curr[j]
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
		for j := range curr {
			curr[j] = 0
		}
	}

	return best
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
