// Package dedup detects likely duplicate transactions by combining date
// proximity, amount equality and beneficiary similarity into a single score.
package dedup

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vargak/pennyflow-backend/internal/domain/fuzzy"
)

// Config holds the scoring parameters
type Config struct {
	// WindowDays is the maximum date distance considered at all
	WindowDays int

	// AmountTolerance is the absolute difference under which two
	// amounts count as equal
	AmountTolerance float64

	// Threshold is the minimum combined score for a duplicate pair
	Threshold float64

	// Signal weights, expected to sum to 1.0
	DateWeight        float64
	AmountWeight      float64
	BeneficiaryWeight float64
}

// DefaultConfig returns the standard scoring parameters
func DefaultConfig() Config {
	return Config{
		WindowDays:        3,
		AmountTolerance:   0.01,
		Threshold:         0.8,
		DateWeight:        0.3,
		AmountWeight:      0.4,
		BeneficiaryWeight: 0.3,
	}
}

// Transaction is the minimal view of a transaction needed for scoring
type Transaction struct {
	ID          string
	Date        time.Time
	Amount      decimal.Decimal
	Beneficiary string
}

// Group is a set of transactions connected by duplicate-level pair scores.
// Score is the highest pair score found inside the group.
type Group struct {
	Members []Transaction
	Score   float64
}

// Scorer scores transaction pairs and groups duplicates
type Scorer struct {
	cfg       Config
	tolerance decimal.Decimal
}

// NewScorer creates a scorer with the given config
func NewScorer(cfg Config) *Scorer {
	return &Scorer{
		cfg:       cfg,
		tolerance: decimal.NewFromFloat(cfg.AmountTolerance),
	}
}

// Score returns the combined duplicate score for a pair in [0, 1]
func (s *Scorer) Score(a, b Transaction) float64 {
	return s.cfg.DateWeight*s.dateScore(a.Date, b.Date) +
		s.cfg.AmountWeight*s.amountScore(a.Amount, b.Amount) +
		s.cfg.BeneficiaryWeight*fuzzy.Similarity(a.Beneficiary, b.Beneficiary)
}

// dateScore decays linearly from 1.0 at zero days apart to 0.0 outside
// the window
func (s *Scorer) dateScore(a, b time.Time) float64 {
	diff := daysBetween(a, b)
	if diff > s.cfg.WindowDays {
		return 0.0
	}
	return 1.0 - float64(diff)/float64(s.cfg.WindowDays)
}

// amountScore is binary: amounts within tolerance match, anything else
// does not. Partial credit on amounts produces too many false positives.
func (s *Scorer) amountScore(a, b decimal.Decimal) float64 {
	if a.Sub(b).Abs().Cmp(s.tolerance) <= 0 {
		return 1.0
	}
	return 0.0
}

// FindGroups returns duplicate groups among the given transactions.
// Pairs are only compared within the date window, and groups are the
// connected components of the pair graph, so a transaction belongs to
// at most one group.
func (s *Scorer) FindGroups(txs []Transaction) []Group {
	if len(txs) < 2 {
		return nil
	}

	sorted := make([]Transaction, len(txs))
	copy(sorted, txs)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		// Stable order across rescans
		return sorted[i].ID < sorted[j].ID
	})

	// Compare each transaction only against later ones inside the window
	adjacency := make(map[int][]int)
	pairScores := make(map[[2]int]float64)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if daysBetween(sorted[i].Date, sorted[j].Date) > s.cfg.WindowDays {
				break
			}
			score := s.Score(sorted[i], sorted[j])
			if score >= s.cfg.Threshold {
				adjacency[i] = append(adjacency[i], j)
				adjacency[j] = append(adjacency[j], i)
				pairScores[[2]int{i, j}] = score
			}
		}
	}

	// Collect connected components
	visited := make(map[int]bool)
	var groups []Group
	for i := range sorted {
		if visited[i] || len(adjacency[i]) == 0 {
			continue
		}

		component := s.collectComponent(i, adjacency, visited)
		if len(component) < 2 {
			continue
		}

		group := Group{}
		for _, idx := range component {
			group.Members = append(group.Members, sorted[idx])
		}
		for pair, score := range pairScores {
			if containsInt(component, pair[0]) && containsInt(component, pair[1]) && score > group.Score {
				group.Score = score
			}
		}
		groups = append(groups, group)
	}

	// Highest-scoring groups first
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Score != groups[j].Score {
			return groups[i].Score > groups[j].Score
		}
		return groups[i].Members[0].ID < groups[j].Members[0].ID
	})

	return groups
}

// collectComponent walks the adjacency graph breadth-first from start
func (s *Scorer) collectComponent(start int, adjacency map[int][]int, visited map[int]bool) []int {
	var component []int
	queue := []int{start}
	visited[start] = true

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		component = append(component, current)

		for _, neighbor := range adjacency[current] {
			if !visited[neighbor] {
				visited[neighbor] = true
				queue = append(queue, neighbor)
			}
		}
	}

	sort.Ints(component)
	return component
}

// daysBetween returns the absolute calendar-day distance between two dates
func daysBetween(a, b time.Time) int {
	ad := a.Truncate(24 * time.Hour)
	bd := b.Truncate(24 * time.Hour)
	diff := int(ad.Sub(bd).Hours() / 24)
	if diff < 0 {
		diff = -diff
	}
	return diff
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
