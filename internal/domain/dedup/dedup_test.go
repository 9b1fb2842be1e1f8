package dedup

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(id, date, amount, beneficiary string) Transaction {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return Transaction{
		ID:          id,
		Date:        d,
		Amount:      decimal.RequireFromString(amount),
		Beneficiary: beneficiary,
	}
}

func TestScorer_Score_ExactDuplicate(t *testing.T) {
	s := NewScorer(DefaultConfig())

	a := tx("a", "2026-01-10", "-25.99", "SPAR Budapest")
	b := tx("b", "2026-01-10", "-25.99", "SPAR Budapest")

	assert.InDelta(t, 1.0, s.Score(a, b), 1e-9)
}

func TestScorer_Score_SameDayDifferentMerchant(t *testing.T) {
	s := NewScorer(DefaultConfig())

	a := tx("a", "2026-01-10", "-25.99", "SPAR Budapest")
	b := tx("b", "2026-01-10", "-25.99", "Netflix Subscription")

	score := s.Score(a, b)
	assert.Less(t, score, 0.8, "matching date and amount alone must not cross the threshold")
}

func TestScorer_Score_DateDecay(t *testing.T) {
	s := NewScorer(DefaultConfig())

	base := tx("a", "2026-01-10", "-25.99", "SPAR Budapest")

	tests := []struct {
		date     string
		expected float64
	}{
		{"2026-01-10", 1.0},           // same day
		{"2026-01-11", 1.0 - 0.3/3.0}, // 1 day: date signal at 2/3
		{"2026-01-13", 1.0 - 0.3},     // at window edge: date signal zero
		{"2026-01-20", 1.0 - 0.3},     // outside window: still zero
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			other := tx("b", tt.date, "-25.99", "SPAR Budapest")
			assert.InDelta(t, tt.expected, s.Score(base, other), 1e-9)
		})
	}
}

func TestScorer_Score_AmountIsBinary(t *testing.T) {
	s := NewScorer(DefaultConfig())

	a := tx("a", "2026-01-10", "-25.99", "SPAR Budapest")

	within := tx("b", "2026-01-10", "-25.98", "SPAR Budapest")
	assert.InDelta(t, 1.0, s.Score(a, within), 1e-9, "one cent inside tolerance")

	outside := tx("c", "2026-01-10", "-25.50", "SPAR Budapest")
	assert.InDelta(t, 0.6, s.Score(a, outside), 1e-9, "amount signal drops to zero")
}

func TestScorer_FindGroups_PairAboveThreshold(t *testing.T) {
	s := NewScorer(DefaultConfig())

	groups := s.FindGroups([]Transaction{
		tx("a", "2026-01-10", "-25.99", "SPAR Budapest"),
		tx("b", "2026-01-11", "-25.99", "SPAR Budapest"),
		tx("c", "2026-01-10", "-9.99", "Netflix"),
	})

	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Members, 2)
	assert.GreaterOrEqual(t, groups[0].Score, 0.8)
}

func TestScorer_FindGroups_TransitiveChain(t *testing.T) {
	s := NewScorer(DefaultConfig())

	// a-b and b-c are close pairs; a-c may be weaker but all three end
	// up in one group through b
	groups := s.FindGroups([]Transaction{
		tx("a", "2026-01-10", "-25.99", "SPAR Budapest"),
		tx("b", "2026-01-11", "-25.99", "SPAR Budapest"),
		tx("c", "2026-01-12", "-25.99", "SPAR Budapest"),
	})

	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Members, 3)
}

func TestScorer_FindGroups_NoOverlap(t *testing.T) {
	s := NewScorer(DefaultConfig())

	groups := s.FindGroups([]Transaction{
		tx("a", "2026-01-10", "-25.99", "SPAR Budapest"),
		tx("b", "2026-01-10", "-25.99", "SPAR Budapest"),
		tx("c", "2026-02-10", "-12.00", "Tesco"),
		tx("d", "2026-02-10", "-12.00", "Tesco"),
	})

	require.Len(t, groups, 2)

	seen := make(map[string]int)
	for _, g := range groups {
		for _, m := range g.Members {
			seen[m.ID]++
		}
	}
	for id, count := range seen {
		assert.Equal(t, 1, count, "transaction %s must appear in exactly one group", id)
	}
}

func TestScorer_FindGroups_WindowLimitsComparisons(t *testing.T) {
	s := NewScorer(DefaultConfig())

	// Identical amount and merchant but a month apart: not duplicates
	groups := s.FindGroups([]Transaction{
		tx("a", "2026-01-10", "-25.99", "SPAR Budapest"),
		tx("b", "2026-02-10", "-25.99", "SPAR Budapest"),
	})

	assert.Empty(t, groups)
}

func TestScorer_FindGroups_EmptyAndSingle(t *testing.T) {
	s := NewScorer(DefaultConfig())

	assert.Empty(t, s.FindGroups(nil))
	assert.Empty(t, s.FindGroups([]Transaction{tx("a", "2026-01-10", "-1.00", "X")}))
}

func TestScorer_FindGroups_SortedByScore(t *testing.T) {
	s := NewScorer(DefaultConfig())

	groups := s.FindGroups([]Transaction{
		// Perfect pair
		tx("a", "2026-01-10", "-25.99", "SPAR Budapest"),
		tx("b", "2026-01-10", "-25.99", "SPAR Budapest"),
		// Weaker pair, two days apart
		tx("c", "2026-02-10", "-12.00", "Tesco Extra"),
		tx("d", "2026-02-12", "-12.00", "Tesco Extra"),
	})

	require.Len(t, groups, 2)
	assert.GreaterOrEqual(t, groups[0].Score, groups[1].Score)
	assert.InDelta(t, 1.0, groups[0].Score, 1e-9)
}

func TestScorer_FindGroups_DeterministicAcrossRuns(t *testing.T) {
	s := NewScorer(DefaultConfig())

	txs := []Transaction{
		tx("a", "2026-01-10", "-25.99", "SPAR Budapest"),
		tx("b", "2026-01-11", "-25.99", "SPAR Budapest"),
		tx("c", "2026-02-10", "-12.00", "Tesco Extra"),
		tx("d", "2026-02-11", "-12.00", "Tesco Extra"),
		tx("e", "2026-03-01", "-9.99", "Netflix"),
	}
	reversed := make([]Transaction, len(txs))
	for i, item := range txs {
		reversed[len(txs)-1-i] = item
	}

	first := s.FindGroups(txs)
	second := s.FindGroups(reversed)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.InDelta(t, first[i].Score, second[i].Score, 1e-9)
		require.Equal(t, len(first[i].Members), len(second[i].Members))
		for j := range first[i].Members {
			assert.Equal(t, first[i].Members[j].ID, second[i].Members[j].ID,
				"group membership and order must not depend on input order")
		}
	}
}

func TestScorer_FindGroups_ManyTransactions(t *testing.T) {
	s := NewScorer(DefaultConfig())

	// Many unrelated transactions spread over a year plus one planted pair
	var txs []Transaction
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 300; i++ {
		txs = append(txs, Transaction{
			ID:          fmt.Sprintf("tx-%d", i),
			Date:        base.AddDate(0, 0, i),
			Amount:      decimal.NewFromInt(int64(-i - 1)),
			Beneficiary: fmt.Sprintf("Merchant %d", i),
		})
	}
	txs = append(txs,
		tx("dup-1", "2026-06-15", "-42.00", "Aldi Pecs"),
		tx("dup-2", "2026-06-16", "-42.00", "Aldi Pecs"),
	)

	groups := s.FindGroups(txs)
	require.Len(t, groups, 1)
	ids := []string{groups[0].Members[0].ID, groups[0].Members[1].ID}
	assert.ElementsMatch(t, []string{"dup-1", "dup-2"}, ids)
}
