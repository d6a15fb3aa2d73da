// ABOUTME: Tests for the conversation coordinator
// ABOUTME: Covers create-once, turn ordering, cold-start rebuild, and mid-turn failure

package chat

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bonte-Project/bonte-server/internal/ai"
	"github.com/Bonte-Project/bonte-server/internal/briefing"
	"github.com/Bonte-Project/bonte-server/internal/store"
)

type fakeAssembler struct {
	calls atomic.Int64
}

func (f *fakeAssembler) Assemble(ctx context.Context, userID string) (*briefing.Briefing, error) {
	f.calls.Add(1)
	return &briefing.Briefing{
		Profile:   "### User Profile:\n- Name: Test",
		Goals:     "No nutrition goals set yet.",
		Nutrition: "No meals logged yet.",
		Activity:  "No activities logged yet.",
		Sleep:     "No sleep logged yet.",
		HasLogs:   false,
	}, nil
}

// fakeReasoner satisfies ai.Reasoner. A single busy flag is shared across
// its sessions so any interleaved turn is detected as a hard failure.
type fakeReasoner struct {
	mu         sync.Mutex
	startCalls [][]ai.Turn
	welcomeErr error
	startErr   error
	failNext   atomic.Bool
	busy       atomic.Bool
	turns      atomic.Int64
}

func (f *fakeReasoner) GenerateWelcome(ctx context.Context, briefing string, hasLogs bool) (string, error) {
	if f.welcomeErr != nil {
		return "", f.welcomeErr
	}
	return "Welcome to Bonte!", nil
}

func (f *fakeReasoner) StartSession(ctx context.Context, opening []ai.Turn) (ai.Session, error) {
	f.mu.Lock()
	f.startCalls = append(f.startCalls, opening)
	f.mu.Unlock()
	if f.startErr != nil {
		return nil, f.startErr
	}
	return &fakeSession{r: f}, nil
}

func (f *fakeReasoner) lastStart() []ai.Turn {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.startCalls) == 0 {
		return nil
	}
	return f.startCalls[len(f.startCalls)-1]
}

type fakeSession struct {
	r *fakeReasoner
}

func (s *fakeSession) Send(ctx context.Context, text string) (string, error) {
	if !s.r.busy.CompareAndSwap(false, true) {
		return "", errors.New("interleaved reasoner turn")
	}
	defer s.r.busy.Store(false)
	time.Sleep(time.Millisecond)
	if s.r.failNext.CompareAndSwap(true, false) {
		return "", errors.New("upstream model error")
	}
	return fmt.Sprintf("reply %d", s.r.turns.Add(1)), nil
}

func setupService(t *testing.T) (*Service, *fakeReasoner, *Registry, store.Store) {
	t.Helper()

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	reasoner := &fakeReasoner{}
	registry := NewRegistry(30*time.Minute, 64, nil)
	svc := NewService(st, NewLog(st), &fakeAssembler{}, reasoner, registry, nil)
	return svc, reasoner, registry, st
}

func makeUser(t *testing.T, st store.Store) string {
	t.Helper()
	u := &store.User{
		ID:           uuid.New().String(),
		Email:        uuid.New().String() + "@example.com",
		PasswordHash: "x",
		FullName:     "Test User",
		Role:         store.RoleUser,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, st.CreateUser(context.Background(), u))
	return u.ID
}

func TestCreateConversation(t *testing.T) {
	svc, reasoner, _, st := setupService(t)
	ctx := context.Background()
	userID := makeUser(t, st)

	welcome, err := svc.CreateConversation(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, welcome.Index)
	assert.Equal(t, "Welcome to Bonte!", welcome.Content)
	assert.False(t, welcome.FromUser)

	// The welcome is durable and the session is primed with it.
	history, err := svc.History(ctx, userID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, welcome.ID, history[0].ID)

	opening := reasoner.lastStart()
	require.Len(t, opening, 2)
	assert.True(t, opening[0].FromUser)
	assert.False(t, opening[1].FromUser)
	assert.Equal(t, "Welcome to Bonte!", opening[1].Text)
}

func TestCreateConversationOnlyOnce(t *testing.T) {
	svc, _, _, st := setupService(t)
	ctx := context.Background()
	userID := makeUser(t, st)

	_, err := svc.CreateConversation(ctx, userID)
	require.NoError(t, err)

	_, err = svc.CreateConversation(ctx, userID)
	assert.ErrorIs(t, err, ErrConversationExists)
}

func TestCreateConversationConcurrent(t *testing.T) {
	svc, _, _, st := setupService(t)
	ctx := context.Background()
	userID := makeUser(t, st)

	const n = 8
	var wg sync.WaitGroup
	var created atomic.Int64
	var conflicts atomic.Int64
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateConversation(ctx, userID)
			switch {
			case err == nil:
				created.Add(1)
			case errors.Is(err, ErrConversationExists):
				conflicts.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), created.Load())
	assert.Equal(t, int64(n-1), conflicts.Load())

	history, err := svc.History(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestSendMessageRequiresConversation(t *testing.T) {
	svc, _, _, st := setupService(t)
	userID := makeUser(t, st)

	_, err := svc.SendMessage(context.Background(), userID, "hello")
	assert.ErrorIs(t, err, ErrNoConversation)
}

func TestSendMessageTurn(t *testing.T) {
	svc, _, _, st := setupService(t)
	ctx := context.Background()
	userID := makeUser(t, st)

	_, err := svc.CreateConversation(ctx, userID)
	require.NoError(t, err)

	turn, err := svc.SendMessage(ctx, userID, "what should I eat today?")
	require.NoError(t, err)
	assert.Equal(t, 1, turn.UserMessage.Index)
	assert.Equal(t, "what should I eat today?", turn.UserMessage.Content)
	assert.True(t, turn.UserMessage.FromUser)
	assert.Equal(t, 2, turn.Reply.Index)
	assert.False(t, turn.Reply.FromUser)

	full, err := svc.History(ctx, userID)
	require.NoError(t, err)
	require.Len(t, full, 3)

	// Visible history drops the welcome and renumbers from zero.
	visible, err := svc.VisibleHistory(ctx, userID)
	require.NoError(t, err)
	require.Len(t, visible, 2)
	assert.Equal(t, 0, visible[0].Index)
	assert.Equal(t, turn.UserMessage.ID, visible[0].ID)
	assert.Equal(t, 1, visible[1].Index)
	assert.Equal(t, turn.Reply.ID, visible[1].ID)
}

func TestSendMessageColdStartRebuildsFromHistory(t *testing.T) {
	svc, reasoner, registry, st := setupService(t)
	ctx := context.Background()
	userID := makeUser(t, st)

	_, err := svc.CreateConversation(ctx, userID)
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, userID, "first question")
	require.NoError(t, err)

	// Evict the live session; durable history survives.
	registry.mu.Lock()
	e := registry.entries[userID]
	registry.evictLocked(userID, e)
	registry.mu.Unlock()
	require.Equal(t, 0, registry.Len())

	turn, err := svc.SendMessage(ctx, userID, "second question")
	require.NoError(t, err)
	assert.Equal(t, 3, turn.UserMessage.Index)
	assert.Equal(t, 4, turn.Reply.Index)

	// The rebuilt session was primed with the briefing, the stored welcome,
	// and the earlier exchange in order.
	opening := reasoner.lastStart()
	require.Len(t, opening, 4)
	assert.True(t, opening[0].FromUser)
	assert.Equal(t, "Welcome to Bonte!", opening[1].Text)
	assert.Equal(t, "first question", opening[2].Text)
	assert.True(t, opening[2].FromUser)
	assert.False(t, opening[3].FromUser)
}

func TestSendMessageFailureKeepsHistoryGapFree(t *testing.T) {
	svc, reasoner, registry, st := setupService(t)
	ctx := context.Background()
	userID := makeUser(t, st)

	_, err := svc.CreateConversation(ctx, userID)
	require.NoError(t, err)

	reasoner.failNext.Store(true)
	_, err = svc.SendMessage(ctx, userID, "doomed message")
	require.Error(t, err)

	// The failed outbound message is invisible to reads and the session is
	// dropped so the next turn rebuilds cleanly.
	history, err := svc.History(ctx, userID)
	require.NoError(t, err)
	require.Len(t, history, 1)

	registry.mu.Lock()
	e := registry.entries[userID]
	registry.mu.Unlock()
	require.NotNil(t, e)
	assert.Nil(t, e.session)

	turn, err := svc.SendMessage(ctx, userID, "retry message")
	require.NoError(t, err)
	assert.Equal(t, 1, turn.UserMessage.Index)
	assert.Equal(t, 2, turn.Reply.Index)
}

func TestSendMessageSerializedPerUser(t *testing.T) {
	svc, _, _, st := setupService(t)
	ctx := context.Background()
	userID := makeUser(t, st)

	_, err := svc.CreateConversation(ctx, userID)
	require.NoError(t, err)

	// The fake session hard-fails on any interleaved turn, so all of these
	// succeeding proves turns are serialized.
	const n = 6
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.SendMessage(ctx, userID, fmt.Sprintf("message %d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	history, err := svc.History(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, history, 1+2*n)
	for i, m := range history {
		assert.Equal(t, i, m.Index)
	}
}

func TestEstablishedSessionGetsBriefingRefresh(t *testing.T) {
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	recorder := &payloadRecorder{}
	registry := NewRegistry(30*time.Minute, 64, nil)
	svc := NewService(st, NewLog(st), &fakeAssembler{}, recorder, registry, nil)
	ctx := context.Background()
	userID := makeUser(t, st)

	_, err = svc.CreateConversation(ctx, userID)
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, userID, "how did I sleep?")
	require.NoError(t, err)

	require.Len(t, recorder.payloads, 1)
	payload := recorder.payloads[0]
	assert.True(t, strings.HasPrefix(payload, "[SYSTEM UPDATE - Latest User Data]"))
	assert.Contains(t, payload, "[USER MESSAGE]\nhow did I sleep?")
}

func TestHistoryUnknownUser(t *testing.T) {
	svc, _, _, _ := setupService(t)

	_, err := svc.History(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.VisibleHistory(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestVisibleHistoryEmptyConversation(t *testing.T) {
	svc, _, _, st := setupService(t)
	userID := makeUser(t, st)

	_, err := svc.VisibleHistory(context.Background(), userID)
	assert.ErrorIs(t, err, ErrEmptyHistory)
}

// payloadRecorder is a Reasoner whose sessions record every payload they are
// asked to send.
type payloadRecorder struct {
	mu       sync.Mutex
	payloads []string
}

func (p *payloadRecorder) GenerateWelcome(ctx context.Context, briefing string, hasLogs bool) (string, error) {
	return "Welcome to Bonte!", nil
}

func (p *payloadRecorder) StartSession(ctx context.Context, opening []ai.Turn) (ai.Session, error) {
	return &recorderSession{p: p}, nil
}

type recorderSession struct {
	p *payloadRecorder
}

func (s *recorderSession) Send(ctx context.Context, text string) (string, error) {
	s.p.mu.Lock()
	s.p.payloads = append(s.p.payloads, text)
	s.p.mu.Unlock()
	return "noted", nil
}
