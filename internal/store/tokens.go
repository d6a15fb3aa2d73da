// ABOUTME: Refresh token persistence for the SQLite store
// ABOUTME: Durable login sessions with expiry-based cleanup

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SaveRefreshToken stores a new refresh token.
func (s *SQLiteStore) SaveRefreshToken(ctx context.Context, token *RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, token, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		token.ID,
		token.UserID,
		token.Token,
		token.CreatedAt.UTC().Format(time.RFC3339),
		token.ExpiresAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting refresh token: %w", err)
	}

	s.logger.Debug("saved refresh token", "id", token.ID, "user_id", token.UserID)
	return nil
}

// GetRefreshToken retrieves a refresh token by its opaque value.
// Returns ErrNotFound if the token doesn't exist.
func (s *SQLiteStore) GetRefreshToken(ctx context.Context, tokenValue string) (*RefreshToken, error) {
	query := `
		SELECT id, user_id, token, created_at, expires_at
		FROM refresh_tokens
		WHERE token = ?
	`

	var token RefreshToken
	var createdAtStr, expiresAtStr string

	err := s.db.QueryRowContext(ctx, query, tokenValue).Scan(
		&token.ID,
		&token.UserID,
		&token.Token,
		&createdAtStr,
		&expiresAtStr,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying refresh token: %w", err)
	}

	token.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	token.ExpiresAt, err = time.Parse(time.RFC3339, expiresAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing expires_at: %w", err)
	}

	return &token, nil
}

// DeleteRefreshToken removes a refresh token (logout or rotation).
// Returns ErrNotFound if the token doesn't exist.
func (s *SQLiteStore) DeleteRefreshToken(ctx context.Context, tokenValue string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token = ?`, tokenValue)
	if err != nil {
		return fmt.Errorf("deleting refresh token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteExpiredRefreshTokens removes tokens past their expiry and returns
// how many were deleted.
func (s *SQLiteStore) DeleteExpiredRefreshTokens(ctx context.Context) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	result, err := s.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= ?`, now)
	if err != nil {
		return 0, fmt.Errorf("deleting expired refresh tokens: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected > 0 {
		s.logger.Debug("deleted expired refresh tokens", "count", rowsAffected)
	}
	return rowsAffected, nil
}
