// Package patterns learns merchant-to-category patterns from labeled
// training examples.
package patterns

import (
	"sort"

	"github.com/vargak/pennyflow-backend/internal/domain/fuzzy"
)

// Example is one labeled training row
type Example struct {
	Beneficiary string
	Category    string
}

// Pattern maps a normalized merchant key to its dominant category.
// Confidence is the share of the merchant's examples that carry the
// dominant category.
type Pattern struct {
	MerchantKey string
	Category    string
	Confidence  float64
	Occurrences int
}

// defaultCategoryMapping translates common Hungarian labels to English
var defaultCategoryMapping = map[string]string{
	"kávé":       "Food & Beverage",
	"étel":       "Food & Beverage",
	"ruha":       "Clothing",
	"háztartás":  "Household",
	"autó":       "Transportation",
	"szórakozás": "Entertainment",
}

// TranslateCategory maps a raw category label through the custom mapping
// (if any) and then the built-in Hungarian defaults. Unknown labels pass
// through unchanged.
func TranslateCategory(label string, mapping map[string]string) string {
	key := fuzzy.Normalize(label)
	if mapping != nil {
		if translated, ok := mapping[key]; ok {
			return translated
		}
	}
	if translated, ok := defaultCategoryMapping[key]; ok {
		return translated
	}
	return label
}

// Learn extracts merchant patterns from labeled examples. Rows with an
// empty beneficiary or category are skipped. The category mapping is
// applied before counting, so a merchant labeled in mixed languages
// still converges on one category.
func Learn(examples []Example, categoryMapping map[string]string) []Pattern {
	// merchant key -> category -> count
	counts := make(map[string]map[string]int)

	for _, ex := range examples {
		key := fuzzy.Normalize(ex.Beneficiary)
		category := TranslateCategory(ex.Category, categoryMapping)
		if key == "" || category == "" {
			continue
		}

		if counts[key] == nil {
			counts[key] = make(map[string]int)
		}
		counts[key][category]++
	}

	patterns := make([]Pattern, 0, len(counts))
	for key, byCategory := range counts {
		total := 0
		dominant := ""
		dominantCount := 0
		for category, count := range byCategory {
			total += count
			// Ties break lexicographically so learning is deterministic
			if count > dominantCount || (count == dominantCount && category < dominant) {
				dominant = category
				dominantCount = count
			}
		}

		patterns = append(patterns, Pattern{
			MerchantKey: key,
			Category:    dominant,
			Confidence:  float64(dominantCount) / float64(total),
			Occurrences: total,
		})
	}

	sort.Slice(patterns, func(i, j int) bool {
		return patterns[i].MerchantKey < patterns[j].MerchantKey
	})

	return patterns
}

// CountCategories returns the number of distinct categories across patterns
func CountCategories(patterns []Pattern) int {
	seen := make(map[string]bool)
	for _, p := range patterns {
		seen[p.Category] = true
	}
	return len(seen)
}
