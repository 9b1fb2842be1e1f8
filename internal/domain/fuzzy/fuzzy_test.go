package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase", "SPAR BUDAPEST", "spar budapest"},
		{"trims whitespace", "  Tesco  ", "tesco"},
		{"collapses inner whitespace", "Lidl   Aldi\tSpar", "lidl aldi spar"},
		{"strips store number", "STARBUCKS #4521", "starbucks"},
		{"strips card reference", "Lidl *0042", "lidl"},
		{"strips trailing digit run", "SPAR Budapest 042", "spar budapest"},
		{"keeps digit-only name", "247", "247"},
		{"keeps inner digits", "7 Eleven Store", "7 eleven store"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestSimilarity_Identical(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("SPAR Budapest", "spar budapest"),
		"case and whitespace differences should not matter")
}

func TestSimilarity_Dissimilar(t *testing.T) {
	score := Similarity("SPAR", "Netflix")
	assert.Less(t, score, 0.3)
}

func TestSimilarity_CloseVariants(t *testing.T) {
	score := Similarity("SPAR Budapest Delta", "SPAR Budapest Delra")
	assert.Greater(t, score, 0.9, "single character difference in long names")
}

func TestSimilarity_StoreNumberIsNoise(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("STARBUCKS #4521", "Starbucks"),
		"reference numbers must not count against the match")
}

func TestSimilarity_Empty(t *testing.T) {
	assert.Equal(t, 0.0, Similarity("", "anything"))
	assert.Equal(t, 0.0, Similarity("", ""))
	assert.Equal(t, 0.0, Similarity("   ", "\t"))
}

func TestSimilarity_Symmetric(t *testing.T) {
	a, b := "Lidl Magyarorszag", "Lidl Mo."
	assert.Equal(t, Similarity(a, b), Similarity(b, a))
}

func TestSimilarity_Range(t *testing.T) {
	pairs := [][2]string{
		{"a", "b"},
		{"OTP Bank", "OTP Bank Nyrt"},
		{"x", "a completely different and much longer string"},
	}
	for _, p := range pairs {
		score := Similarity(p[0], p[1])
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
}
