// Package fuzzy provides string normalization and similarity scoring
// for merchant and beneficiary names.
package fuzzy

import (
	"regexp"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// noiseToken matches store/reference numbers appended to merchant names,
// like "#4521", "*0042" or a bare digit run.
var noiseToken = regexp.MustCompile(`^[#*]?\d+$`)

// Normalize canonicalizes a merchant or beneficiary name for comparison:
// lowercased, trimmed, inner whitespace collapsed, trailing reference
// numbers stripped ("STARBUCKS #4521" and "Starbucks" compare equal).
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	fields := strings.Fields(s)
	for len(fields) > 1 && noiseToken.MatchString(fields[len(fields)-1]) {
		fields = fields[:len(fields)-1]
	}
	return strings.Join(fields, " ")
}

// Similarity returns a score in [0, 1] for two names based on Levenshtein
// distance over their normalized forms. Identical strings score 1.0; empty
// or fully dissimilar strings score 0.0.
func Similarity(a, b string) float64 {
	a = Normalize(a)
	b = Normalize(b)

	if a == "" || b == "" {
		return 0.0
	}
	if a == b {
		return 1.0
	}

	ra := []rune(a)
	rb := []rune(b)

	distance := levenshtein.DistanceForStrings(ra, rb, levenshtein.DefaultOptions)

	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}

	return 1.0 - float64(distance)/float64(maxLen)
}
