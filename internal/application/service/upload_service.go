package service

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vargak/pennyflow-backend/internal/infrastructure/config"
	"github.com/vargak/pennyflow-backend/internal/infrastructure/storage"
	"github.com/vargak/pennyflow-backend/internal/ingest"
)

// UploadResult describes the outcome of one upload
type UploadResult struct {
	File      *storage.RawFile `json:"file"`
	Duplicate bool             `json:"duplicate"`
	Schema    *ingest.Schema   `json:"schema,omitempty"`
}

// UploadService stores raw statement files with content dedup
type UploadService struct {
	storage storage.Repository
	cfg     config.UploadConfig
	logger  *slog.Logger
}

// NewUploadService creates an upload service
func NewUploadService(store storage.Repository, cfg config.UploadConfig, logger *slog.Logger) *UploadService {
	return &UploadService{
		storage: store,
		cfg:     cfg,
		logger:  logger,
	}
}

// allowedExtensions are the statement file types accepted for upload
var allowedExtensions = map[string]bool{
	".csv":  true,
	".txt":  true,
	".xlsx": true,
	".xls":  true,
}

// SaveUpload stores a file unless the same content was uploaded before.
// Re-uploads are not an error; the existing file is returned with the
// duplicate flag set so the frontend can reuse it.
func (s *UploadService) SaveUpload(userID, filename, mimeType string, content []byte) (*UploadResult, error) {
	if !allowedExtensions[strings.ToLower(filepath.Ext(filename))] {
		return nil, ErrUnsupportedFileType
	}
	if len(content) == 0 {
		return nil, ErrEmptyFile
	}
	if int64(len(content)) > int64(s.cfg.MaxFileSizeMB)*1024*1024 {
		return nil, ErrFileTooLarge
	}

	sum := sha256.Sum256(content)
	contentHash := hex.EncodeToString(sum[:])

	existing, err := s.storage.FindRawFileByHash(userID, contentHash)
	if err == nil {
		s.logger.Info("duplicate upload detected",
			"user_id", userID,
			"file_id", existing.ID,
			"filename", filename,
		)
		return &UploadResult{File: existing, Duplicate: true}, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	result := &UploadResult{}

	// Schema detection is best-effort; an unparseable file is still stored
	// and fails later with a proper session error.
	schemaJSON := ""
	if schema, err := ingest.DetectSchema(content, filename); err == nil {
		result.Schema = schema
		if data, err := json.Marshal(schema); err == nil {
			schemaJSON = string(data)
		}
	}

	file := &storage.RawFile{
		ID:          uuid.NewString(),
		UserID:      userID,
		Filename:    filename,
		ContentHash: contentHash,
		SizeBytes:   int64(len(content)),
		MimeType:    mimeType,
		Content:     content,
		SchemaJSON:  schemaJSON,
		UploadedAt:  time.Now().UTC(),
	}
	if err := s.storage.SaveRawFile(file); err != nil {
		return nil, err
	}

	s.logger.Info("file uploaded",
		"user_id", userID,
		"file_id", file.ID,
		"filename", filename,
		"size_bytes", file.SizeBytes,
	)

	result.File = file
	return result, nil
}

// GetSchema re-reads the stored schema for a file
func (s *UploadService) GetSchema(userID, fileID string) (*ingest.Schema, error) {
	file, err := s.storage.GetRawFile(userID, fileID)
	if err != nil {
		return nil, err
	}

	if file.SchemaJSON != "" {
		var schema ingest.Schema
		if err := json.Unmarshal([]byte(file.SchemaJSON), &schema); err == nil {
			return &schema, nil
		}
	}

	return ingest.DetectSchema(file.Content, file.Filename)
}

// ListFiles returns the user's uploads
func (s *UploadService) ListFiles(userID string, limit int) ([]*storage.RawFile, error) {
	return s.storage.ListRawFiles(userID, limit)
}
