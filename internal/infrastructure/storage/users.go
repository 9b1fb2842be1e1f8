package storage

// CreateUser inserts a new user
func (s *Storage) CreateUser(user *User) error {
	query := `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := s.db.Exec(query, user.ID, user.Email, user.PasswordHash, user.CreatedAt)
	return err
}

// GetUserByEmail retrieves a user by email
func (s *Storage) GetUserByEmail(email string) (*User, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM users WHERE email = ?
	`

	user := &User{}
	err := s.db.QueryRow(query, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, wrapNotFound(err)
	}

	return user, nil
}

// GetUser retrieves a user by ID
func (s *Storage) GetUser(id string) (*User, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM users WHERE id = ?
	`

	user := &User{}
	err := s.db.QueryRow(query, id).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, wrapNotFound(err)
	}

	return user, nil
}
