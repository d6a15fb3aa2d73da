// ABOUTME: User and trainer persistence for the SQLite store
// ABOUTME: Accounts, coaching profiles, and profile updates

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CreateUser creates a new user account.
// Returns ErrDuplicateUser if the email is already registered.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, email, password_hash, full_name, role, age, height_cm, weight_kg, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.Role,
		user.Age,
		user.HeightCm,
		user.WeightKg,
		user.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	s.logger.Debug("created user", "id", user.ID, "role", user.Role)
	return nil
}

// GetUser retrieves a user by ID.
// Returns ErrNotFound if the user doesn't exist.
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, email, password_hash, full_name, role, age, height_cm, weight_kg, created_at
		FROM users
		WHERE id = ?
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, id))
}

// GetUserByEmail retrieves a user by email address.
// Returns ErrNotFound if no account uses the email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, email, password_hash, full_name, role, age, height_cm, weight_kg, created_at
		FROM users
		WHERE email = ?
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, email))
}

func (s *SQLiteStore) scanUser(row *sql.Row) (*User, error) {
	var user User
	var createdAtStr string

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.Role,
		&user.Age,
		&user.HeightCm,
		&user.WeightKg,
		&createdAtStr,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	user.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &user, nil
}

// UpdateUserProfile updates the mutable profile fields of a user.
// Returns ErrNotFound if the user doesn't exist.
func (s *SQLiteStore) UpdateUserProfile(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET full_name = ?, age = ?, height_cm = ?, weight_kg = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		user.FullName,
		user.Age,
		user.HeightCm,
		user.WeightKg,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("updating user profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("updated user profile", "id", user.ID)
	return nil
}

// CreateTrainer creates a coaching profile for a trainer-role user.
func (s *SQLiteStore) CreateTrainer(ctx context.Context, trainer *Trainer) error {
	query := `
		INSERT INTO trainers (id, user_id, bio, specialization, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		trainer.ID,
		trainer.UserID,
		trainer.Bio,
		trainer.Specialization,
		trainer.IsActive,
		trainer.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting trainer: %w", err)
	}

	s.logger.Debug("created trainer", "id", trainer.ID, "user_id", trainer.UserID)
	return nil
}

// GetTrainer retrieves a trainer profile by its ID.
// Returns ErrNotFound if it doesn't exist.
func (s *SQLiteStore) GetTrainer(ctx context.Context, id string) (*Trainer, error) {
	query := `
		SELECT id, user_id, bio, specialization, is_active, created_at
		FROM trainers
		WHERE id = ?
	`
	return s.scanTrainer(s.db.QueryRowContext(ctx, query, id))
}

// GetTrainerByUserID retrieves the trainer profile owned by a user account.
// Returns ErrNotFound if the user has no trainer profile.
func (s *SQLiteStore) GetTrainerByUserID(ctx context.Context, userID string) (*Trainer, error) {
	query := `
		SELECT id, user_id, bio, specialization, is_active, created_at
		FROM trainers
		WHERE user_id = ?
	`
	return s.scanTrainer(s.db.QueryRowContext(ctx, query, userID))
}

func (s *SQLiteStore) scanTrainer(row *sql.Row) (*Trainer, error) {
	var trainer Trainer
	var createdAtStr string

	err := row.Scan(
		&trainer.ID,
		&trainer.UserID,
		&trainer.Bio,
		&trainer.Specialization,
		&trainer.IsActive,
		&createdAtStr,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning trainer: %w", err)
	}

	trainer.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &trainer, nil
}
