package spam

import (
	"regexp"
	"strings"
)

var (
	urlRegex           = regexp.MustCompile(`\S+://\S+`)
	nonAlphanumRegex   = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespaceRunRegex = regexp.MustCompile(`\s+`)
)

// Normalize reduces a message to its comparable core: lowercase, URLs
// stripped, punctuation stripped, whitespace collapsed. Idempotent.
func Normalize(text string) string {
	s := strings.ToLower(text)
	s = urlRegex.ReplaceAllString(s, "")
	s = nonAlphanumRegex.ReplaceAllString(s, "")
	s = whitespaceRunRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Similarity scores how alike two strings are on a 0-100 scale. Identical
// strings score 100; if either is empty while the other is not, 0. Pairs
// whose length ratio is below 0.5 are rejected before the edit-distance
// computation.
func Similarity(a, b string) int {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}

	ra := []rune(a)
	rb := []rune(b)
	shorter, longer := len(ra), len(rb)
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	if float64(shorter)/float64(longer) < 0.5 {
		return 0
	}

	distance := levenshtein(ra, rb)
	score := int(100 * (1 - float64(distance)/float64(longer)))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// levenshtein computes the edit distance between two rune slices with
// unit-cost insertions, deletions and substitutions.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
