package service

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vargak/pennyflow-backend/internal/infrastructure/config"
	"github.com/vargak/pennyflow-backend/internal/infrastructure/storage"
	"github.com/vargak/pennyflow-backend/internal/ingest"
)

func newUploadService() (*UploadService, *storage.MockRepository) {
	repo := storage.NewMockRepository()
	cfg := config.UploadConfig{MaxFileSizeMB: 1, ProgressEvery: 100}
	return NewUploadService(repo, cfg, testLogger()), repo
}

var sampleCSV = []byte("Date,Amount,Description\n2026-01-05,-12.50,SPAR Budapest\n")

func TestUploadService_SaveUpload(t *testing.T) {
	svc, _ := newUploadService()

	result, err := svc.SaveUpload("user-1", "statement.csv", "text/csv", sampleCSV)
	require.NoError(t, err)

	assert.False(t, result.Duplicate)
	assert.NotEmpty(t, result.File.ID)
	assert.Len(t, result.File.ContentHash, 64, "sha-256 hex digest")
	require.NotNil(t, result.Schema)
	assert.Equal(t, ingest.FormatGeneric, result.Schema.Format)
	assert.Equal(t, 1, result.Schema.RowCount)
}

func TestUploadService_DuplicateContentIsNotAnError(t *testing.T) {
	svc, _ := newUploadService()

	first, err := svc.SaveUpload("user-1", "statement.csv", "text/csv", sampleCSV)
	require.NoError(t, err)

	second, err := svc.SaveUpload("user-1", "renamed.csv", "text/csv", sampleCSV)
	require.NoError(t, err)

	assert.True(t, second.Duplicate)
	assert.Equal(t, first.File.ID, second.File.ID, "existing file is returned")
}

func TestUploadService_SameContentDifferentUsers(t *testing.T) {
	svc, _ := newUploadService()

	_, err := svc.SaveUpload("user-1", "statement.csv", "text/csv", sampleCSV)
	require.NoError(t, err)

	result, err := svc.SaveUpload("user-2", "statement.csv", "text/csv", sampleCSV)
	require.NoError(t, err)
	assert.False(t, result.Duplicate, "dedup is per user")
}

func TestUploadService_HashLookupFailureSurfaces(t *testing.T) {
	svc, repo := newUploadService()

	// A broken storage backend must not be mistaken for "no duplicate"
	repo.FindRawFileErr = assert.AnError
	_, err := svc.SaveUpload("user-1", "statement.csv", "text/csv", sampleCSV)
	assert.ErrorIs(t, err, assert.AnError)

	files, listErr := repo.ListRawFiles("user-1", 10)
	require.NoError(t, listErr)
	assert.Empty(t, files, "nothing stored when the dedup check fails")
}

func TestUploadService_RejectsOversizedFile(t *testing.T) {
	svc, _ := newUploadService()

	huge := bytes.Repeat([]byte("x"), 2*1024*1024)
	_, err := svc.SaveUpload("user-1", "huge.csv", "text/csv", huge)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestUploadService_RejectsEmptyFile(t *testing.T) {
	svc, _ := newUploadService()

	_, err := svc.SaveUpload("user-1", "empty.csv", "text/csv", nil)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestUploadService_RejectsUnsupportedExtension(t *testing.T) {
	svc, _ := newUploadService()

	_, err := svc.SaveUpload("user-1", "notes.pdf", "application/pdf", []byte("%PDF-1.4"))
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
}

func TestUploadService_UnparseableContentStillStored(t *testing.T) {
	svc, repo := newUploadService()

	// Whitelisted extension but content the parser cannot use; stored
	// anyway, the session fails later with a proper error
	result, err := svc.SaveUpload("user-1", "broken.xlsx", "application/octet-stream", []byte("not a real workbook"))
	require.NoError(t, err)

	assert.Nil(t, result.Schema, "schema detection failed quietly")
	_, err = repo.GetRawFile("user-1", result.File.ID)
	assert.NoError(t, err)
}

func TestUploadService_GetSchemaFromStoredJSON(t *testing.T) {
	svc, _ := newUploadService()

	saved, err := svc.SaveUpload("user-1", "statement.csv", "text/csv", sampleCSV)
	require.NoError(t, err)

	schema, err := svc.GetSchema("user-1", saved.File.ID)
	require.NoError(t, err)
	assert.Equal(t, ingest.FormatGeneric, schema.Format)
	assert.Equal(t, []string{"date", "amount", "description"}, schema.Columns)
}
