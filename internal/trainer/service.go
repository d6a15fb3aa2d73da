// ABOUTME: User-to-trainer messaging service
// ABOUTME: Validates sender/recipient roles, persists durably, then nudges any long-poll waiter

package trainer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Bonte-Project/bonte-server/internal/store"
)

// ErrInvalidRole is returned when a sender's role does not permit the
// requested direction: users message trainers, trainers message users.
var ErrInvalidRole = errors.New("sender role does not permit this recipient")

// Notifier resolves a pending long-poll waiter for a user, if one exists.
type Notifier interface {
	Notify(userID string, msg *store.TrainerMessage) bool
}

// Service handles the human coaching channel. Delivery is storage-first:
// the message is durable before any notification fires, and a missed
// notification only delays display until the recipient's next fetch.
type Service struct {
	store    store.Store
	notifier Notifier
	logger   *slog.Logger
}

// NewService creates a trainer messaging service.
func NewService(st store.Store, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    st,
		notifier: notifier,
		logger:   logger.With("component", "trainer"),
	}
}

// SendMessage records a message from the sender to the recipient and wakes
// the recipient's long-poll waiter when one is registered.
//
// For a user sender, recipientID names a trainer profile. For a trainer
// sender, recipientID names a user account. Returns store.ErrNotFound when
// either party is missing and ErrInvalidRole for any other pairing.
func (s *Service) SendMessage(ctx context.Context, senderUserID, recipientID, content string) (*store.TrainerMessage, error) {
	sender, err := s.store.GetUser(ctx, senderUserID)
	if err != nil {
		return nil, fmt.Errorf("looking up sender: %w", err)
	}

	msg := &store.TrainerMessage{
		ID:      uuid.New().String(),
		Content: content,
		SentAt:  time.Now(),
	}

	var notifyUserID string
	switch sender.Role {
	case store.RoleUser:
		tr, err := s.store.GetTrainer(ctx, recipientID)
		if err != nil {
			return nil, fmt.Errorf("looking up recipient trainer: %w", err)
		}
		msg.UserID = senderUserID
		msg.TrainerID = tr.ID
		msg.FromUser = true
		notifyUserID = tr.UserID

	case store.RoleTrainer:
		if _, err := s.store.GetUser(ctx, recipientID); err != nil {
			return nil, fmt.Errorf("looking up recipient user: %w", err)
		}
		tr, err := s.store.GetTrainerByUserID(ctx, senderUserID)
		if err != nil {
			return nil, fmt.Errorf("looking up sender trainer profile: %w", err)
		}
		msg.UserID = recipientID
		msg.TrainerID = tr.ID
		msg.FromUser = false
		notifyUserID = recipientID

	default:
		return nil, ErrInvalidRole
	}

	if err := s.store.SaveTrainerMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("saving trainer message: %w", err)
	}

	delivered := s.notifier.Notify(notifyUserID, msg)
	s.logger.Info("trainer message sent",
		"message_id", msg.ID,
		"user_id", msg.UserID,
		"trainer_id", msg.TrainerID,
		"from_user", msg.FromUser,
		"waiter_resolved", delivered)

	return msg, nil
}

// ListMessages returns the full exchange between the requester and the
// other party, in insert order. The pair resolves by the requester's role:
// users name a trainer profile, trainers name a user account.
func (s *Service) ListMessages(ctx context.Context, requesterUserID, otherID string) ([]*store.TrainerMessage, error) {
	requester, err := s.store.GetUser(ctx, requesterUserID)
	if err != nil {
		return nil, fmt.Errorf("looking up requester: %w", err)
	}

	switch requester.Role {
	case store.RoleUser:
		return s.store.ListTrainerMessages(ctx, requesterUserID, otherID)
	case store.RoleTrainer:
		tr, err := s.store.GetTrainerByUserID(ctx, requesterUserID)
		if err != nil {
			return nil, fmt.Errorf("looking up trainer profile: %w", err)
		}
		return s.store.ListTrainerMessages(ctx, otherID, tr.ID)
	default:
		return nil, ErrInvalidRole
	}
}

// ListChats returns the IDs of the requester's active conversations:
// trainer profile IDs for a user, user IDs for a trainer.
func (s *Service) ListChats(ctx context.Context, requesterUserID string) ([]string, error) {
	requester, err := s.store.GetUser(ctx, requesterUserID)
	if err != nil {
		return nil, fmt.Errorf("looking up requester: %w", err)
	}

	switch requester.Role {
	case store.RoleUser:
		return s.store.ListUserChats(ctx, requesterUserID)
	case store.RoleTrainer:
		tr, err := s.store.GetTrainerByUserID(ctx, requesterUserID)
		if err != nil {
			return nil, fmt.Errorf("looking up trainer profile: %w", err)
		}
		return s.store.ListTrainerChats(ctx, tr.ID)
	default:
		return nil, ErrInvalidRole
	}
}
