package storage

import "database/sql"

// SaveRawFile stores an uploaded file
func (s *Storage) SaveRawFile(file *RawFile) error {
	query := `
		INSERT INTO raw_files
		(id, user_id, filename, content_hash, size_bytes, mime_type, content, schema_json, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		file.ID,
		file.UserID,
		file.Filename,
		file.ContentHash,
		file.SizeBytes,
		file.MimeType,
		file.Content,
		file.SchemaJSON,
		file.UploadedAt,
	)

	return err
}

// GetRawFile retrieves a file by ID, scoped to the owning user
func (s *Storage) GetRawFile(userID, id string) (*RawFile, error) {
	query := `
		SELECT id, user_id, filename, content_hash, size_bytes, mime_type, content, schema_json, uploaded_at
		FROM raw_files WHERE id = ? AND user_id = ?
	`

	return s.scanRawFile(s.db.QueryRow(query, id, userID))
}

// FindRawFileByHash looks up a file by content hash for upload dedup
func (s *Storage) FindRawFileByHash(userID, contentHash string) (*RawFile, error) {
	query := `
		SELECT id, user_id, filename, content_hash, size_bytes, mime_type, content, schema_json, uploaded_at
		FROM raw_files WHERE user_id = ? AND content_hash = ?
	`

	return s.scanRawFile(s.db.QueryRow(query, userID, contentHash))
}

// ListRawFiles returns the user's uploads, newest first.
// File content is not loaded for listings.
func (s *Storage) ListRawFiles(userID string, limit int) ([]*RawFile, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, user_id, filename, content_hash, size_bytes, mime_type, schema_json, uploaded_at
		FROM raw_files
		WHERE user_id = ?
		ORDER BY uploaded_at DESC
		LIMIT ?
	`

	rows, err := s.db.Query(query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var files []*RawFile
	for rows.Next() {
		file := &RawFile{}
		var mimeType, schemaJSON sql.NullString
		err := rows.Scan(
			&file.ID,
			&file.UserID,
			&file.Filename,
			&file.ContentHash,
			&file.SizeBytes,
			&mimeType,
			&schemaJSON,
			&file.UploadedAt,
		)
		if err != nil {
			return nil, err
		}
		file.MimeType = mimeType.String
		file.SchemaJSON = schemaJSON.String
		files = append(files, file)
	}

	return files, rows.Err()
}

func (s *Storage) scanRawFile(row *sql.Row) (*RawFile, error) {
	file := &RawFile{}
	var mimeType, schemaJSON sql.NullString
	err := row.Scan(
		&file.ID,
		&file.UserID,
		&file.Filename,
		&file.ContentHash,
		&file.SizeBytes,
		&mimeType,
		&file.Content,
		&schemaJSON,
		&file.UploadedAt,
	)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	file.MimeType = mimeType.String
	file.SchemaJSON = schemaJSON.String

	return file, nil
}
