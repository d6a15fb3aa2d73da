// ABOUTME: Conversation coordinator tying the log, briefings, and reasoner sessions together
// ABOUTME: Serializes per-user turns, rebuilds cold sessions from history, records before acting

package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Bonte-Project/bonte-server/internal/ai"
	"github.com/Bonte-Project/bonte-server/internal/briefing"
	"github.com/Bonte-Project/bonte-server/internal/store"
)

var (
	// ErrConversationExists is returned when a conversation was already
	// opened for the user. Opening is strictly once per user.
	ErrConversationExists = errors.New("conversation already exists")

	// ErrNoConversation is returned when a message is sent to a user whose
	// conversation was never opened.
	ErrNoConversation = errors.New("conversation has not been created")
)

// Assembler produces a user's current data briefing.
type Assembler interface {
	Assemble(ctx context.Context, userID string) (*briefing.Briefing, error)
}

// UserStore is the store surface the service needs beyond the log.
type UserStore interface {
	GetUser(ctx context.Context, id string) (*store.User, error)
}

// Turn is the durable result of one exchange: the user's message and the
// assistant's reply, with their positions in the full history.
type Turn struct {
	UserMessage Message `json:"userMessage"`
	Reply       Message `json:"reply"`
}

// Service coordinates conversations. Every operation for a given user runs
// under that user's registry critical section, so turns never interleave and
// a session is never rebuilt twice concurrently.
type Service struct {
	users     UserStore
	log       *Log
	assembler Assembler
	reasoner  ai.Reasoner
	registry  *Registry
	logger    *slog.Logger
}

// NewService creates a conversation service.
func NewService(users UserStore, log *Log, asm Assembler, reasoner ai.Reasoner, registry *Registry, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:     users,
		log:       log,
		assembler: asm,
		reasoner:  reasoner,
		registry:  registry,
		logger:    logger.With("component", "chat"),
	}
}

// CreateConversation opens the user's conversation: it generates the welcome
// from a fresh briefing, records it durably as history index 0, and primes a
// live session. Returns ErrConversationExists if any message was ever
// recorded for the user, including failed ones, and store.ErrNotFound if the
// user does not exist.
func (s *Service) CreateConversation(ctx context.Context, userID string) (*Message, error) {
	e := s.registry.lock(userID)
	defer s.registry.unlock(userID, e)

	exists, err := s.log.HasHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrConversationExists
	}

	b, err := s.assembler.Assemble(ctx, userID)
	if err != nil {
		return nil, err
	}

	welcome, err := s.reasoner.GenerateWelcome(ctx, b.System(), b.HasLogs)
	if err != nil {
		return nil, fmt.Errorf("generating welcome: %w", err)
	}

	msg, err := s.log.Append(ctx, userID, false, welcome)
	if err != nil {
		return nil, err
	}

	// A session failure here is not fatal: the welcome is already durable,
	// and the first message will rebuild the session from history.
	sess, err := s.reasoner.StartSession(ctx, []ai.Turn{
		{FromUser: true, Text: b.System()},
		{FromUser: false, Text: welcome},
	})
	if err != nil {
		s.logger.Warn("failed to prime session after welcome", "user_id", userID, "error", err)
	} else {
		e.session = sess
	}

	s.logger.Info("conversation created", "user_id", userID, "message_id", msg.ID)
	return &Message{ID: msg.ID, Index: 0, Content: msg.Content, FromUser: false, SentAt: msg.SentAt}, nil
}

// SendMessage runs one conversation turn: it ensures a live session (cold
// starting from durable history when needed), records the outbound message,
// transmits it with a fresh briefing, and records the reply. Returns
// ErrNoConversation if the conversation was never opened. If the reasoner
// fails mid-turn the recorded outbound message is marked failed so history
// stays gap-free, the session is dropped, and the error surfaces to the
// caller; the reasoner is never retried here.
func (s *Service) SendMessage(ctx context.Context, userID, content string) (*Turn, error) {
	e := s.registry.lock(userID)
	defer s.registry.unlock(userID, e)

	history, err := s.log.FullHistory(ctx, userID)
	if err != nil {
		return nil, err
	}

	b, err := s.assembler.Assemble(ctx, userID)
	if err != nil {
		return nil, err
	}

	coldStart := e.session == nil
	if coldStart {
		if len(history) == 0 {
			return nil, ErrNoConversation
		}
		sess, err := s.rebuildSession(ctx, b, history)
		if err != nil {
			return nil, err
		}
		e.session = sess
		s.logger.Info("session rebuilt from history", "user_id", userID, "messages", len(history))
	}

	outbound, err := s.log.Append(ctx, userID, true, content)
	if err != nil {
		return nil, err
	}
	outboundIndex := len(history)

	// A freshly rebuilt session already carries the current briefing in its
	// priming; established sessions get a briefing refresh with each turn.
	payload := content
	if !coldStart {
		payload = b.Refresh() + "\n\n[USER MESSAGE]\n" + content
	}

	reply, err := e.session.Send(ctx, payload)
	if err != nil {
		if markErr := s.log.MarkFailed(ctx, outbound.ID); markErr != nil {
			s.logger.Error("failed to mark message failed", "user_id", userID, "message_id", outbound.ID, "error", markErr)
		}
		e.session = nil
		s.logger.Warn("reasoner turn failed, session dropped", "user_id", userID, "error", err)
		return nil, fmt.Errorf("sending message to reasoner: %w", err)
	}

	replyMsg, err := s.log.Append(ctx, userID, false, reply)
	if err != nil {
		return nil, err
	}

	return &Turn{
		UserMessage: Message{ID: outbound.ID, Index: outboundIndex, Content: outbound.Content, FromUser: true, SentAt: outbound.SentAt},
		Reply:       Message{ID: replyMsg.ID, Index: outboundIndex + 1, Content: replyMsg.Content, FromUser: false, SentAt: replyMsg.SentAt},
	}, nil
}

// rebuildSession primes a new reasoner session from durable history: the
// briefing takes the first user slot, the stored welcome answers it, and
// every later message replays in order.
func (s *Service) rebuildSession(ctx context.Context, b *briefing.Briefing, history []Message) (ai.Session, error) {
	turns := make([]ai.Turn, 0, len(history)+1)
	turns = append(turns,
		ai.Turn{FromUser: true, Text: b.System()},
		ai.Turn{FromUser: false, Text: history[0].Content},
	)
	for _, m := range history[1:] {
		turns = append(turns, ai.Turn{FromUser: m.FromUser, Text: m.Content})
	}
	sess, err := s.reasoner.StartSession(ctx, turns)
	if err != nil {
		return nil, fmt.Errorf("rebuilding session: %w", err)
	}
	return sess, nil
}

// History returns the user's full conversation in order. Returns
// store.ErrNotFound if the user does not exist.
func (s *Service) History(ctx context.Context, userID string) ([]Message, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.log.FullHistory(ctx, userID)
}

// VisibleHistory returns the conversation as clients display it, without the
// welcome entry. Returns store.ErrNotFound if the user does not exist and
// ErrEmptyHistory if the conversation was never opened.
func (s *Service) VisibleHistory(ctx context.Context, userID string) ([]Message, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.log.VisibleHistory(ctx, userID)
}
