package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vargak/pennyflow-backend/internal/infrastructure/storage"
)

var labeledCSV = []byte(`date,amount,description,category
2026-01-02,-12.50,SPAR Budapest,Groceries
2026-01-05,-8.20,SPAR Budapest,Groceries
2026-01-09,-4.10,Starbucks Oktogon,kávé
2026-01-12,-60.00,MOL Benzinkút,autó
2026-01-15,-33.00,Unlabeled Shop,
`)

func newTrainingService(repo *storage.MockRepository) *TrainingService {
	return NewTrainingService(repo, testLogger())
}

func TestTrainingService_CreateFromFile(t *testing.T) {
	repo := storage.NewMockRepository()
	svc := newTrainingService(repo)

	result, err := svc.CreateFromFile("user-1", "My labels", "labeled.csv", labeledCSV, nil)
	require.NoError(t, err)

	assert.Equal(t, "My labels", result.Dataset.Name)
	assert.Equal(t, "labeled.csv", result.Dataset.SourceFilename)
	assert.Equal(t, 3, result.PatternsExtracted)
	assert.Equal(t, 1, result.RowsSkipped)
	assert.True(t, repo.SaveDatasetCalled)

	_, stored, err := svc.Get("user-1", result.Dataset.ID)
	require.NoError(t, err)
	require.Len(t, stored, 3)

	byKey := make(map[string]*storage.TrainingPattern)
	for _, p := range stored {
		byKey[p.MerchantKey] = p
	}

	spar := byKey["spar budapest"]
	require.NotNil(t, spar)
	assert.Equal(t, "Groceries", spar.Category)
	assert.Equal(t, 2, spar.Occurrences)
	assert.InDelta(t, 1.0, spar.Confidence, 1e-9)

	// Hungarian labels are translated through the default mapping
	coffee := byKey["starbucks oktogon"]
	require.NotNil(t, coffee)
	assert.Equal(t, "Food & Beverage", coffee.Category)

	fuel := byKey["mol benzinkút"]
	require.NotNil(t, fuel)
	assert.Equal(t, "Transportation", fuel.Category)
}

func TestTrainingService_CreateFromFileCustomMapping(t *testing.T) {
	repo := storage.NewMockRepository()
	svc := newTrainingService(repo)

	mapping := map[string]string{"kávé": "Coffee Budget"}
	result, err := svc.CreateFromFile("user-1", "", "labeled.csv", labeledCSV, mapping)
	require.NoError(t, err)

	// Blank name falls back to a derived one
	assert.Equal(t, "Training data from labeled.csv", result.Dataset.Name)

	_, stored, err := svc.Get("user-1", result.Dataset.ID)
	require.NoError(t, err)

	var coffee *storage.TrainingPattern
	for _, p := range stored {
		if p.MerchantKey == "starbucks oktogon" {
			coffee = p
		}
	}
	require.NotNil(t, coffee)
	assert.Equal(t, "Coffee Budget", coffee.Category)
}

func TestTrainingService_CreateFromFileUnparseable(t *testing.T) {
	repo := storage.NewMockRepository()
	svc := newTrainingService(repo)

	_, err := svc.CreateFromFile("user-1", "", "scan.pdf", []byte("%PDF-1.4"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not parse training file")
	assert.False(t, repo.SaveDatasetCalled)
}

func TestTrainingService_ListAndDelete(t *testing.T) {
	repo := storage.NewMockRepository()
	svc := newTrainingService(repo)

	result, err := svc.CreateFromFile("user-1", "My labels", "labeled.csv", labeledCSV, nil)
	require.NoError(t, err)

	datasets, err := svc.List("user-1")
	require.NoError(t, err)
	require.Len(t, datasets, 1)
	assert.Equal(t, 3, datasets[0].PatternCount)

	// Other users see nothing
	other, err := svc.List("user-2")
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, svc.Delete("user-1", result.Dataset.ID))
	_, _, err = svc.Get("user-1", result.Dataset.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTrainingService_CreateFromRawFile(t *testing.T) {
	repo := storage.NewMockRepository()
	svc := newTrainingService(repo)

	require.NoError(t, repo.SaveRawFile(&storage.RawFile{
		ID:       "file-1",
		UserID:   "user-1",
		Filename: "labeled.csv",
		Content:  labeledCSV,
	}))

	result, err := svc.CreateFromRawFile("user-1", "file-1", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "Training data from labeled.csv", result.Dataset.Name)
	assert.Equal(t, 3, result.PatternsExtracted)

	// File ownership is enforced
	_, err = svc.CreateFromRawFile("user-2", "file-1", "", nil)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
