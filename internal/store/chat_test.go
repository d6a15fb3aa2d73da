// ABOUTME: Tests for AI chat message persistence
// ABOUTME: Covers sequence assignment, ordering, counting, and failed-row exclusion

package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendMessage(t *testing.T, s *SQLiteStore, userID, content string, fromUser bool) *ChatMessage {
	t.Helper()
	msg := &ChatMessage{
		ID:       uuid.New().String(),
		UserID:   userID,
		Content:  content,
		FromUser: fromUser,
		SentAt:   time.Now().UTC(),
	}
	require.NoError(t, s.AppendChatMessage(context.Background(), msg))
	return msg
}

func TestStore_AppendChatMessage_AssignsMonotonicSeq(t *testing.T) {
	store := setupTestStore(t)
	user := makeUser(t, store, RoleUser)

	// Same wall-clock instant for every row: the sequence must still be
	// strictly increasing.
	var prev int64
	for i := 0; i < 5; i++ {
		msg := appendMessage(t, store, user.ID, fmt.Sprintf("msg-%d", i), i%2 == 0)
		assert.Greater(t, msg.Seq, prev)
		prev = msg.Seq
	}
}

func TestStore_ListChatMessages_OrderedAndStable(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	user := makeUser(t, store, RoleUser)

	appendMessage(t, store, user.ID, "welcome", false)
	appendMessage(t, store, user.ID, "question", true)
	appendMessage(t, store, user.ID, "answer", false)

	first, err := store.ListChatMessages(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, first, 3)
	assert.Equal(t, "welcome", first[0].Content)
	assert.Equal(t, "question", first[1].Content)
	assert.Equal(t, "answer", first[2].Content)

	// Repeated read returns the same order (idempotent read).
	second, err := store.ListChatMessages(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, second, 3)
	for i := range first {
		assert.Equal(t, first[i].Seq, second[i].Seq)
	}
}

func TestStore_ListChatMessages_ExcludesFailed(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	user := makeUser(t, store, RoleUser)

	appendMessage(t, store, user.ID, "welcome", false)
	dangling := appendMessage(t, store, user.ID, "lost turn", true)
	require.NoError(t, store.MarkChatMessageFailed(ctx, dangling.ID))

	messages, err := store.ListChatMessages(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "welcome", messages[0].Content)

	// The failed row still counts toward conversation existence.
	count, err := store.CountChatMessages(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestStore_CountChatMessages_Empty(t *testing.T) {
	store := setupTestStore(t)
	user := makeUser(t, store, RoleUser)

	count, err := store.CountChatMessages(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStore_MarkChatMessageFailed_NotFound(t *testing.T) {
	store := setupTestStore(t)

	err := store.MarkChatMessageFailed(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ChatMessages_IsolatedPerUser(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	alice := makeUser(t, store, RoleUser)
	bob := makeUser(t, store, RoleUser)

	appendMessage(t, store, alice.ID, "alice only", false)

	messages, err := store.ListChatMessages(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}
