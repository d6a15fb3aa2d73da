// ABOUTME: AI chat message persistence for the SQLite store
// ABOUTME: Append-only per-user conversation rows with a store-assigned sequence

package store

import (
	"context"
	"fmt"
	"time"
)

// AppendChatMessage appends a message to the user's AI conversation.
// The store assigns the sequence number; it is written back to msg.Seq.
func (s *SQLiteStore) AppendChatMessage(ctx context.Context, msg *ChatMessage) error {
	query := `
		INSERT INTO ai_messages (id, user_id, content, from_user, failed, sent_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		msg.ID,
		msg.UserID,
		msg.Content,
		msg.FromUser,
		msg.Failed,
		msg.SentAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting chat message: %w", err)
	}

	seq, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting chat message seq: %w", err)
	}
	msg.Seq = seq

	s.logger.Debug("appended chat message",
		"id", msg.ID,
		"user_id", msg.UserID,
		"seq", seq,
		"from_user", msg.FromUser)
	return nil
}

// ListChatMessages returns the user's AI conversation in sequence order,
// excluding rows marked failed.
func (s *SQLiteStore) ListChatMessages(ctx context.Context, userID string) ([]*ChatMessage, error) {
	query := `
		SELECT seq, id, user_id, content, from_user, failed, sent_at
		FROM ai_messages
		WHERE user_id = ? AND failed = 0
		ORDER BY seq ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying chat messages: %w", err)
	}
	defer rows.Close()

	var messages []*ChatMessage
	for rows.Next() {
		var msg ChatMessage
		var sentAtStr string

		if err := rows.Scan(
			&msg.Seq,
			&msg.ID,
			&msg.UserID,
			&msg.Content,
			&msg.FromUser,
			&msg.Failed,
			&sentAtStr,
		); err != nil {
			return nil, fmt.Errorf("scanning chat message: %w", err)
		}

		msg.SentAt, err = time.Parse(time.RFC3339, sentAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing sent_at: %w", err)
		}

		messages = append(messages, &msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chat message rows: %w", err)
	}
	return messages, nil
}

// CountChatMessages returns the number of stored messages for the user,
// including failed rows. A non-zero count means a conversation exists.
func (s *SQLiteStore) CountChatMessages(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM ai_messages WHERE user_id = ?`

	var count int
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting chat messages: %w", err)
	}
	return count, nil
}

// MarkChatMessageFailed flags an outbound message whose AI turn never
// completed. Failed rows are excluded from history reads so derived
// indices stay gap-free.
func (s *SQLiteStore) MarkChatMessageFailed(ctx context.Context, id string) error {
	query := `UPDATE ai_messages SET failed = 1 WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("marking chat message failed: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("marked chat message failed", "id", id)
	return nil
}
