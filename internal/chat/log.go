// ABOUTME: Append-only conversation log over the durable store
// ABOUTME: Indices are derived at read time from store-assigned sequence order

package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Bonte-Project/bonte-server/internal/store"
)

// ErrEmptyHistory is returned when a visible history is requested for a
// conversation that has no messages at all.
var ErrEmptyHistory = errors.New("conversation history is empty")

// Message is a single conversation entry as callers see it. Index is not
// stored; it is the message's zero-based position in the requested sequence.
type Message struct {
	ID       string    `json:"id"`
	Index    int       `json:"index"`
	Content  string    `json:"content"`
	FromUser bool      `json:"fromUser"`
	SentAt   time.Time `json:"sentAt"`
}

// LogStore is the store surface the conversation log needs.
type LogStore interface {
	AppendChatMessage(ctx context.Context, msg *store.ChatMessage) error
	ListChatMessages(ctx context.Context, userID string) ([]*store.ChatMessage, error)
	CountChatMessages(ctx context.Context, userID string) (int, error)
	MarkChatMessageFailed(ctx context.Context, id string) error
}

// Log is the append-only record of one-user-to-assistant exchanges. All
// ordering comes from the store's insert sequence, never from timestamps.
type Log struct {
	store LogStore
}

// NewLog creates a conversation log backed by st.
func NewLog(st LogStore) *Log {
	return &Log{store: st}
}

// Append durably records a message and returns it with its assigned ID.
func (l *Log) Append(ctx context.Context, userID string, fromUser bool, content string) (*store.ChatMessage, error) {
	msg := &store.ChatMessage{
		ID:       uuid.New().String(),
		UserID:   userID,
		Content:  content,
		FromUser: fromUser,
		SentAt:   time.Now(),
	}
	if err := l.store.AppendChatMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("appending chat message: %w", err)
	}
	return msg, nil
}

// MarkFailed flags a persisted message as failed so history reads skip it.
func (l *Log) MarkFailed(ctx context.Context, messageID string) error {
	return l.store.MarkChatMessageFailed(ctx, messageID)
}

// HasHistory reports whether any message was ever appended for the user,
// including messages later marked failed.
func (l *Log) HasHistory(ctx context.Context, userID string) (bool, error) {
	n, err := l.store.CountChatMessages(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("counting chat messages: %w", err)
	}
	return n > 0, nil
}

// FullHistory returns every non-failed message in insert order with indices
// starting at zero. An empty conversation yields an empty slice.
func (l *Log) FullHistory(ctx context.Context, userID string) ([]Message, error) {
	rows, err := l.store.ListChatMessages(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing chat messages: %w", err)
	}
	history := make([]Message, len(rows))
	for i, row := range rows {
		history[i] = Message{
			ID:       row.ID,
			Index:    i,
			Content:  row.Content,
			FromUser: row.FromUser,
			SentAt:   row.SentAt,
		}
	}
	return history, nil
}

// VisibleHistory returns the history without its first entry, renumbered
// from zero. The first entry is the assistant's welcome and is presented to
// clients out of band. Returns ErrEmptyHistory when no messages exist.
func (l *Log) VisibleHistory(ctx context.Context, userID string) ([]Message, error) {
	full, err := l.FullHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(full) == 0 {
		return nil, ErrEmptyHistory
	}
	visible := make([]Message, len(full)-1)
	for i, m := range full[1:] {
		m.Index = i
		visible[i] = m
	}
	return visible, nil
}
