// ABOUTME: Nutrition goal and lifestyle log persistence for the SQLite store
// ABOUTME: Meal, workout and sleep history, listed most-recent-first

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SetNutritionGoal inserts or replaces the user's macro targets.
func (s *SQLiteStore) SetNutritionGoal(ctx context.Context, goal *NutritionGoal) error {
	query := `
		INSERT OR REPLACE INTO nutrition_goals (user_id, calories, protein, fat, carbs, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		goal.UserID,
		goal.Calories,
		goal.Protein,
		goal.Fat,
		goal.Carbs,
		goal.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("setting nutrition goal: %w", err)
	}

	s.logger.Debug("set nutrition goal", "user_id", goal.UserID, "calories", goal.Calories)
	return nil
}

// GetNutritionGoal retrieves the user's macro targets.
// Returns ErrNotFound if the user has not set goals.
func (s *SQLiteStore) GetNutritionGoal(ctx context.Context, userID string) (*NutritionGoal, error) {
	query := `
		SELECT user_id, calories, protein, fat, carbs, updated_at
		FROM nutrition_goals
		WHERE user_id = ?
	`

	var goal NutritionGoal
	var updatedAtStr string

	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&goal.UserID,
		&goal.Calories,
		&goal.Protein,
		&goal.Fat,
		&goal.Carbs,
		&updatedAtStr,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying nutrition goal: %w", err)
	}

	goal.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &goal, nil
}

// CreateNutritionLog saves a logged meal.
func (s *SQLiteStore) CreateNutritionLog(ctx context.Context, log *NutritionLog) error {
	query := `
		INSERT INTO nutrition_logs (id, user_id, name, meal_type, calories, protein, fat, carbs, eaten_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		log.ID,
		log.UserID,
		log.Name,
		log.MealType,
		log.Calories,
		log.Protein,
		log.Fat,
		log.Carbs,
		log.EatenAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting nutrition log: %w", err)
	}

	s.logger.Debug("created nutrition log", "id", log.ID, "user_id", log.UserID)
	return nil
}

// ListNutritionLogs returns all of the user's meals, most recent first.
func (s *SQLiteStore) ListNutritionLogs(ctx context.Context, userID string) ([]*NutritionLog, error) {
	query := `
		SELECT id, user_id, name, meal_type, calories, protein, fat, carbs, eaten_at
		FROM nutrition_logs
		WHERE user_id = ?
		ORDER BY eaten_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying nutrition logs: %w", err)
	}
	defer rows.Close()

	var logs []*NutritionLog
	for rows.Next() {
		var log NutritionLog
		var eatenAtStr string

		if err := rows.Scan(
			&log.ID,
			&log.UserID,
			&log.Name,
			&log.MealType,
			&log.Calories,
			&log.Protein,
			&log.Fat,
			&log.Carbs,
			&eatenAtStr,
		); err != nil {
			return nil, fmt.Errorf("scanning nutrition log: %w", err)
		}

		log.EatenAt, err = time.Parse(time.RFC3339, eatenAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing eaten_at: %w", err)
		}

		logs = append(logs, &log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating nutrition log rows: %w", err)
	}
	return logs, nil
}

// CreateActivityLog saves a logged workout.
func (s *SQLiteStore) CreateActivityLog(ctx context.Context, log *ActivityLog) error {
	query := `
		INSERT INTO activity_logs (id, user_id, activity_type, intensity, duration_minutes, completed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		log.ID,
		log.UserID,
		log.ActivityType,
		log.Intensity,
		log.DurationMinutes,
		log.CompletedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting activity log: %w", err)
	}

	s.logger.Debug("created activity log", "id", log.ID, "user_id", log.UserID)
	return nil
}

// ListActivityLogs returns all of the user's workouts, most recent first.
func (s *SQLiteStore) ListActivityLogs(ctx context.Context, userID string) ([]*ActivityLog, error) {
	query := `
		SELECT id, user_id, activity_type, intensity, duration_minutes, completed_at
		FROM activity_logs
		WHERE user_id = ?
		ORDER BY completed_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying activity logs: %w", err)
	}
	defer rows.Close()

	var logs []*ActivityLog
	for rows.Next() {
		var log ActivityLog
		var completedAtStr string

		if err := rows.Scan(
			&log.ID,
			&log.UserID,
			&log.ActivityType,
			&log.Intensity,
			&log.DurationMinutes,
			&completedAtStr,
		); err != nil {
			return nil, fmt.Errorf("scanning activity log: %w", err)
		}

		log.CompletedAt, err = time.Parse(time.RFC3339, completedAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing completed_at: %w", err)
		}

		logs = append(logs, &log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activity log rows: %w", err)
	}
	return logs, nil
}

// CreateSleepLog saves a logged sleep period.
func (s *SQLiteStore) CreateSleepLog(ctx context.Context, log *SleepLog) error {
	query := `
		INSERT INTO sleep_logs (id, user_id, start_time, end_time, quality)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		log.ID,
		log.UserID,
		log.StartTime.UTC().Format(time.RFC3339),
		log.EndTime.UTC().Format(time.RFC3339),
		log.Quality,
	)
	if err != nil {
		return fmt.Errorf("inserting sleep log: %w", err)
	}

	s.logger.Debug("created sleep log", "id", log.ID, "user_id", log.UserID)
	return nil
}

// ListSleepLogs returns all of the user's sleep periods, most recent first.
func (s *SQLiteStore) ListSleepLogs(ctx context.Context, userID string) ([]*SleepLog, error) {
	query := `
		SELECT id, user_id, start_time, end_time, quality
		FROM sleep_logs
		WHERE user_id = ?
		ORDER BY end_time DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying sleep logs: %w", err)
	}
	defer rows.Close()

	var logs []*SleepLog
	for rows.Next() {
		var log SleepLog
		var startStr, endStr string

		if err := rows.Scan(&log.ID, &log.UserID, &startStr, &endStr, &log.Quality); err != nil {
			return nil, fmt.Errorf("scanning sleep log: %w", err)
		}

		log.StartTime, err = time.Parse(time.RFC3339, startStr)
		if err != nil {
			return nil, fmt.Errorf("parsing start_time: %w", err)
		}
		log.EndTime, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			return nil, fmt.Errorf("parsing end_time: %w", err)
		}

		logs = append(logs, &log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sleep log rows: %w", err)
	}
	return logs, nil
}
