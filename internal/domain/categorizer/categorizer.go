// Package categorizer suggests categories for transactions using learned
// merchant patterns.
package categorizer

import (
	"github.com/vargak/pennyflow-backend/internal/domain/fuzzy"
	"github.com/vargak/pennyflow-backend/internal/domain/patterns"
)

// Confidence level labels attached to suggestions
const (
	LevelVeryHigh = "very_high"
	LevelHigh     = "high"
	LevelMedium   = "medium"
	LevelLow      = "low"
)

// DefaultFuzzyFloor is the minimum name similarity for a fuzzy match
const DefaultFuzzyFloor = 0.85

// Suggestion is a proposed category for one transaction
type Suggestion struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Level      string  `json:"level"`
	Matched    string  `json:"matched_merchant,omitempty"`
}

// Categorizer matches beneficiary names against learned patterns.
// Exact key lookups hit a map; unknown names fall back to a fuzzy scan
// with the match confidence discounted by the name similarity.
type Categorizer struct {
	byKey      map[string]patterns.Pattern
	keys       []string
	fuzzyFloor float64
}

// New creates a categorizer over the given patterns
func New(learned []patterns.Pattern, fuzzyFloor float64) *Categorizer {
	if fuzzyFloor <= 0 {
		fuzzyFloor = DefaultFuzzyFloor
	}

	c := &Categorizer{
		byKey:      make(map[string]patterns.Pattern, len(learned)),
		fuzzyFloor: fuzzyFloor,
	}
	for _, p := range learned {
		c.byKey[p.MerchantKey] = p
		c.keys = append(c.keys, p.MerchantKey)
	}

	return c
}

// Suggest returns a category suggestion for the beneficiary, or nil when
// nothing matches.
func (c *Categorizer) Suggest(beneficiary string) *Suggestion {
	key := fuzzy.Normalize(beneficiary)
	if key == "" {
		return nil
	}

	// Exact match first
	if p, ok := c.byKey[key]; ok {
		return &Suggestion{
			Category:   p.Category,
			Confidence: p.Confidence,
			Level:      LevelFor(p.Confidence),
			Matched:    p.MerchantKey,
		}
	}

	// Fuzzy fallback over all known merchants
	bestScore := 0.0
	var best *patterns.Pattern
	for _, known := range c.keys {
		score := fuzzy.Similarity(key, known)
		if score >= c.fuzzyFloor && score > bestScore {
			p := c.byKey[known]
			best = &p
			bestScore = score
		}
	}
	if best == nil {
		return nil
	}

	confidence := best.Confidence * bestScore
	return &Suggestion{
		Category:   best.Category,
		Confidence: confidence,
		Level:      LevelFor(confidence),
		Matched:    best.MerchantKey,
	}
}

// LevelFor maps a numeric confidence to its display label
func LevelFor(confidence float64) string {
	switch {
	case confidence >= 0.91:
		return LevelVeryHigh
	case confidence >= 0.71:
		return LevelHigh
	case confidence >= 0.41:
		return LevelMedium
	default:
		return LevelLow
	}
}
