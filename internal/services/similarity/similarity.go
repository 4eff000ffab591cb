// Package similarity provides the string-distance score the matcher uses to
// disambiguate same-amount candidates.
package similarity

import (
	"math"
	"strings"
	"unicode"
)

// Score returns an integer 0..100 expressing how close two strings are after
// normalization (lowercase, non-alphanumerics stripped). Equal normalized
// forms score 100; otherwise the score is derived from Levenshtein distance
// over the longer length. Symmetric and deterministic.
func Score(a, b string) int {
	na := normalize(a)
	nb := normalize(b)

	if na == nb {
		return 100
	}

	ra := []rune(na)
	rb := []rune(nb)
	longer := len(ra)
	if len(rb) > longer {
		longer = len(rb)
	}

	dist := levenshtein(ra, rb)
	return int(math.Round(float64(longer-dist) / float64(longer) * 100))
}

func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// levenshtein computes edit distance with a rolling cost row, O(n·m) time and
// O(min(n,m)) space.
func levenshtein(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	if len(b) == 0 {
		return len(a)
	}

	row := make([]int, len(b)+1)
	for j := range row {
		row[j] = j
	}

	for i := 1; i <= len(a); i++ {
		prev := row[0]
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			cur := minOf(row[j]+1, row[j-1]+1, prev+cost)
			prev = row[j]
			row[j] = cur
		}
	}
	return row[len(b)]
}

func minOf(a, b, c int) int {
	if a < b && a < c {
		return a
	}
	if b < c {
		return b
	}
	return c
}
