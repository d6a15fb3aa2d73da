// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Opens the database in WAL mode and creates the schema automatically

package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			full_name TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT 'user',
			age INTEGER NOT NULL DEFAULT 0,
			height_cm REAL NOT NULL DEFAULT 0,
			weight_kg REAL NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,

			CHECK (role IN ('user', 'trainer', 'admin'))
		);

		CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);

		CREATE TABLE IF NOT EXISTS trainers (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
			bio TEXT NOT NULL DEFAULT '',
			specialization TEXT NOT NULL DEFAULT '',
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS nutrition_goals (
			user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			calories INTEGER NOT NULL,
			protein INTEGER NOT NULL,
			fat INTEGER NOT NULL,
			carbs INTEGER NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS nutrition_logs (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			meal_type TEXT NOT NULL,
			calories INTEGER NOT NULL,
			protein INTEGER NOT NULL DEFAULT 0,
			fat INTEGER NOT NULL DEFAULT 0,
			carbs INTEGER NOT NULL DEFAULT 0,
			eaten_at TEXT NOT NULL,

			CHECK (meal_type IN ('breakfast', 'lunch', 'dinner', 'snack'))
		);

		CREATE INDEX IF NOT EXISTS idx_nutrition_logs_user
			ON nutrition_logs(user_id, eaten_at DESC);

		CREATE TABLE IF NOT EXISTS activity_logs (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			activity_type TEXT NOT NULL,
			intensity TEXT NOT NULL,
			duration_minutes INTEGER NOT NULL,
			completed_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_activity_logs_user
			ON activity_logs(user_id, completed_at DESC);

		CREATE TABLE IF NOT EXISTS sleep_logs (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			quality INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_sleep_logs_user
			ON sleep_logs(user_id, end_time DESC);

		-- seq is the store-assigned ordering key: appends within the same
		-- millisecond still get distinct, monotonic positions.
		CREATE TABLE IF NOT EXISTS ai_messages (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			content TEXT NOT NULL,
			from_user INTEGER NOT NULL,
			failed INTEGER NOT NULL DEFAULT 0,
			sent_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_ai_messages_user ON ai_messages(user_id, seq);

		CREATE TABLE IF NOT EXISTS trainer_messages (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			trainer_id TEXT NOT NULL REFERENCES trainers(id) ON DELETE CASCADE,
			content TEXT NOT NULL,
			from_user INTEGER NOT NULL,
			sent_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_trainer_messages_pair
			ON trainer_messages(user_id, trainer_id, seq);

		CREATE TABLE IF NOT EXISTS refresh_tokens (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			token TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL,
			expires_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_refresh_tokens_token ON refresh_tokens(token);
		CREATE INDEX IF NOT EXISTS idx_refresh_tokens_expires ON refresh_tokens(expires_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// isConstraintViolation checks if the error is a SQLite UNIQUE constraint violation
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "constraint failed")
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// Ensure SQLiteStore implements Store interface
var _ Store = (*SQLiteStore)(nil)
