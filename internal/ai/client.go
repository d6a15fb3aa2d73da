// ABOUTME: Reasoner and Session interfaces for the external reasoning service
// ABOUTME: Defines what the chat layer needs from the AI provider

package ai

import "context"

// Turn is one message in a session priming history.
// FromUser marks the human side; the other side is the model.
type Turn struct {
	FromUser bool
	Text     string
}

// Session is a live, stateful conversation with the reasoning service.
// Sessions carry server-side state and are not safe for concurrent use;
// callers serialize turns per session.
type Session interface {
	Send(ctx context.Context, text string) (string, error)
}

// Reasoner creates sessions and welcome messages. Failures are surfaced to
// the caller unretried: a turn may already be partially applied to the
// remote session, so a blind retry could duplicate it.
type Reasoner interface {
	// GenerateWelcome produces the opening message for a new conversation
	// given the user's briefing.
	GenerateWelcome(ctx context.Context, briefing string, hasLogs bool) (string, error)

	// StartSession primes a new stateful session with the given opening
	// turns, in order.
	StartSession(ctx context.Context, opening []Turn) (Session, error)
}
