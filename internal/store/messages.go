// ABOUTME: Trainer message persistence for the SQLite store
// ABOUTME: Directional user<->trainer rows plus distinct chat lists per side

package store

import (
	"context"
	"fmt"
	"time"
)

// SaveTrainerMessage saves a message between a user and a trainer.
// The store assigns the sequence number; it is written back to msg.Seq.
func (s *SQLiteStore) SaveTrainerMessage(ctx context.Context, msg *TrainerMessage) error {
	query := `
		INSERT INTO trainer_messages (id, user_id, trainer_id, content, from_user, sent_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		msg.ID,
		msg.UserID,
		msg.TrainerID,
		msg.Content,
		msg.FromUser,
		msg.SentAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting trainer message: %w", err)
	}

	seq, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting trainer message seq: %w", err)
	}
	msg.Seq = seq

	s.logger.Debug("saved trainer message",
		"id", msg.ID,
		"user_id", msg.UserID,
		"trainer_id", msg.TrainerID,
		"from_user", msg.FromUser)
	return nil
}

// ListTrainerMessages returns the conversation between a user and a trainer
// in sequence order (oldest first).
func (s *SQLiteStore) ListTrainerMessages(ctx context.Context, userID, trainerID string) ([]*TrainerMessage, error) {
	query := `
		SELECT seq, id, user_id, trainer_id, content, from_user, sent_at
		FROM trainer_messages
		WHERE user_id = ? AND trainer_id = ?
		ORDER BY seq ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID, trainerID)
	if err != nil {
		return nil, fmt.Errorf("querying trainer messages: %w", err)
	}
	defer rows.Close()

	var messages []*TrainerMessage
	for rows.Next() {
		var msg TrainerMessage
		var sentAtStr string

		if err := rows.Scan(
			&msg.Seq,
			&msg.ID,
			&msg.UserID,
			&msg.TrainerID,
			&msg.Content,
			&msg.FromUser,
			&sentAtStr,
		); err != nil {
			return nil, fmt.Errorf("scanning trainer message: %w", err)
		}

		msg.SentAt, err = time.Parse(time.RFC3339, sentAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing sent_at: %w", err)
		}

		messages = append(messages, &msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating trainer message rows: %w", err)
	}
	return messages, nil
}

// ListUserChats returns the distinct trainer IDs the user has exchanged
// messages with.
func (s *SQLiteStore) ListUserChats(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT DISTINCT trainer_id FROM trainer_messages WHERE user_id = ?`
	return s.listChatPartners(ctx, query, userID)
}

// ListTrainerChats returns the distinct user IDs the trainer has exchanged
// messages with.
func (s *SQLiteStore) ListTrainerChats(ctx context.Context, trainerID string) ([]string, error) {
	query := `SELECT DISTINCT user_id FROM trainer_messages WHERE trainer_id = ?`
	return s.listChatPartners(ctx, query, trainerID)
}

func (s *SQLiteStore) listChatPartners(ctx context.Context, query, id string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("querying chat partners: %w", err)
	}
	defer rows.Close()

	var partners []string
	for rows.Next() {
		var partner string
		if err := rows.Scan(&partner); err != nil {
			return nil, fmt.Errorf("scanning chat partner: %w", err)
		}
		partners = append(partners, partner)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chat partner rows: %w", err)
	}
	return partners, nil
}
