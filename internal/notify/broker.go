// ABOUTME: Single-shot long-poll notification broker keyed by user identity
// ABOUTME: At most one waiter per user; notify resolves it exactly once or is a no-op

package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Bonte-Project/bonte-server/internal/store"
)

// waiter is a registered long-poll listener. Its channel is buffered so a
// racing Notify never blocks; it is closed when the waiter is superseded.
type waiter struct {
	ch chan *store.TrainerMessage
}

// Broker delivers "a new message arrived" events to at most one long-poll
// waiter per user. Nothing is queued: a notify with no waiter is dropped,
// and the recipient picks the message up from durable storage on its next
// full fetch.
type Broker struct {
	mu      sync.Mutex
	waiters map[string]*waiter
	logger  *slog.Logger
}

// NewBroker creates a Broker. Pass nil logger for default.
func NewBroker(logger *slog.Logger) *Broker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broker{
		waiters: make(map[string]*waiter),
		logger:  logger.With("component", "notify"),
	}
}

// Await registers a one-shot waiter for userID and blocks until a message is
// delivered, the timeout elapses, or ctx is canceled (client disconnect).
//
// Returns (msg, nil) on delivery and (nil, nil) on timeout; timeout is a
// normal outcome, not an error. Returns (nil, ctx.Err()) on disconnect.
// If another Await for the same user arrives while this one is blocked, the
// new registration supersedes this one and this call returns (nil, nil).
// The registration is removed in every case.
func (b *Broker) Await(ctx context.Context, userID string, timeout time.Duration) (*store.TrainerMessage, error) {
	w := &waiter{ch: make(chan *store.TrainerMessage, 1)}

	b.mu.Lock()
	if prev, ok := b.waiters[userID]; ok {
		// Supersede the earlier registration: its channel closes and the
		// earlier caller observes "no content".
		close(prev.ch)
	}
	b.waiters[userID] = w
	b.mu.Unlock()

	b.logger.Debug("waiter registered", "user_id", userID, "timeout", timeout)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg, ok := <-w.ch:
		if !ok {
			// Superseded by a newer Await; Notify already removed nothing.
			return nil, nil
		}
		// Notify removed the registration before sending.
		return msg, nil

	case <-timer.C:
		b.remove(userID, w)
		// A Notify may have won the race and parked a message before the
		// timer fired; prefer delivering it over reporting a timeout.
		select {
		case msg, ok := <-w.ch:
			if ok {
				return msg, nil
			}
		default:
		}
		return nil, nil

	case <-ctx.Done():
		b.remove(userID, w)
		return nil, ctx.Err()
	}
}

// Notify resolves the waiter registered for userID, if any, with msg.
// Returns true if a waiter was resolved. With no waiter registered the call
// is an intentional no-op and the message is not queued.
func (b *Broker) Notify(userID string, msg *store.TrainerMessage) bool {
	b.mu.Lock()
	w, ok := b.waiters[userID]
	if ok {
		delete(b.waiters, userID)
	}
	b.mu.Unlock()

	if !ok {
		return false
	}

	w.ch <- msg
	b.logger.Debug("waiter resolved", "user_id", userID, "message_id", msg.ID)
	return true
}

// remove deletes the registration if it still belongs to w. A waiter must
// never remove a successor that superseded it.
func (b *Broker) remove(userID string, w *waiter) {
	b.mu.Lock()
	if cur, ok := b.waiters[userID]; ok && cur == w {
		delete(b.waiters, userID)
	}
	b.mu.Unlock()
}
