package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLearn_SingleMerchantSingleCategory(t *testing.T) {
	examples := []Example{
		{Beneficiary: "SPAR Budapest", Category: "Groceries"},
		{Beneficiary: "spar budapest", Category: "Groceries"},
		{Beneficiary: "  SPAR Budapest ", Category: "Groceries"},
	}

	learned := Learn(examples, nil)
	require.Len(t, learned, 1, "normalized variants collapse into one merchant key")

	p := learned[0]
	assert.Equal(t, "spar budapest", p.MerchantKey)
	assert.Equal(t, "Groceries", p.Category)
	assert.Equal(t, 1.0, p.Confidence)
	assert.Equal(t, 3, p.Occurrences)
}

func TestLearn_ConfidenceIsDominantShare(t *testing.T) {
	examples := []Example{
		{Beneficiary: "Tesco", Category: "Groceries"},
		{Beneficiary: "Tesco", Category: "Groceries"},
		{Beneficiary: "Tesco", Category: "Groceries"},
		{Beneficiary: "Tesco", Category: "Household"},
	}

	learned := Learn(examples, nil)
	require.Len(t, learned, 1)
	assert.Equal(t, "Groceries", learned[0].Category)
	assert.InDelta(t, 0.75, learned[0].Confidence, 1e-9)
	assert.Equal(t, 4, learned[0].Occurrences)
}

func TestLearn_TieBreaksDeterministically(t *testing.T) {
	examples := []Example{
		{Beneficiary: "Rossmann", Category: "Household"},
		{Beneficiary: "Rossmann", Category: "Cosmetics"},
	}

	learned := Learn(examples, nil)
	require.Len(t, learned, 1)
	assert.Equal(t, "Cosmetics", learned[0].Category)
	assert.InDelta(t, 0.5, learned[0].Confidence, 1e-9)
}

func TestLearn_SkipsBlankRows(t *testing.T) {
	examples := []Example{
		{Beneficiary: "", Category: "Groceries"},
		{Beneficiary: "SPAR", Category: ""},
		{Beneficiary: "   ", Category: "Groceries"},
		{Beneficiary: "SPAR", Category: "Groceries"},
	}

	learned := Learn(examples, nil)
	require.Len(t, learned, 1)
	assert.Equal(t, 1, learned[0].Occurrences)
}

func TestLearn_SortedByMerchantKey(t *testing.T) {
	examples := []Example{
		{Beneficiary: "Zara", Category: "Clothing"},
		{Beneficiary: "Aldi", Category: "Groceries"},
		{Beneficiary: "Lidl", Category: "Groceries"},
	}

	learned := Learn(examples, nil)
	require.Len(t, learned, 3)
	assert.Equal(t, "aldi", learned[0].MerchantKey)
	assert.Equal(t, "lidl", learned[1].MerchantKey)
	assert.Equal(t, "zara", learned[2].MerchantKey)
}

func TestTranslateCategory_Defaults(t *testing.T) {
	assert.Equal(t, "Transportation", TranslateCategory("autó", nil))
	assert.Equal(t, "Transportation", TranslateCategory("AUTÓ", nil), "matching is case-insensitive")
	assert.Equal(t, "Food & Beverage", TranslateCategory("kávé", nil))
	assert.Equal(t, "Groceries", TranslateCategory("Groceries", nil), "unknown labels pass through")
}

func TestTranslateCategory_CustomMappingWins(t *testing.T) {
	mapping := map[string]string{"autó": "Car Expenses"}
	assert.Equal(t, "Car Expenses", TranslateCategory("autó", mapping))
	assert.Equal(t, "Entertainment", TranslateCategory("szórakozás", mapping),
		"defaults still apply for labels the custom mapping omits")
}

func TestLearn_MappingUnifiesMixedLabels(t *testing.T) {
	examples := []Example{
		{Beneficiary: "MOL Budapest", Category: "autó"},
		{Beneficiary: "MOL Budapest", Category: "Transportation"},
	}

	learned := Learn(examples, nil)
	require.Len(t, learned, 1)
	assert.Equal(t, "Transportation", learned[0].Category)
	assert.Equal(t, 1.0, learned[0].Confidence, "translated labels count as one category")
}

func TestCountCategories(t *testing.T) {
	learned := []Pattern{
		{MerchantKey: "a", Category: "Groceries"},
		{MerchantKey: "b", Category: "Groceries"},
		{MerchantKey: "c", Category: "Clothing"},
	}
	assert.Equal(t, 2, CountCategories(learned))
}
