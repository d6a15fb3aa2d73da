// ABOUTME: Gemini implementation of the Reasoner interface
// ABOUTME: Uses google.golang.org/genai chat sessions for stateful turns

package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/genai"
)

// maxOutputTokens bounds reply length per turn.
const maxOutputTokens = 8192

// Canned welcome variants. The model is not consulted for the welcome:
// its content depends only on whether the user has any logged history.
const (
	welcomeWithLogs = "I have analyzed your entire history of meals, workouts, and sleep. " +
		"I can see your long-term trends. What would you like to review?"
	welcomeEmpty = "Hello! I am ready to track and analyze your health history. " +
		"Start by logging your first meal or workout."
)

// Gemini implements Reasoner using the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewGemini creates a Gemini-backed Reasoner. Pass nil logger for default.
func NewGemini(ctx context.Context, apiKey, model string, logger *slog.Logger) (*Gemini, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return &Gemini{
		client: client,
		model:  model,
		logger: logger.With("component", "ai"),
	}, nil
}

// GenerateWelcome returns the opening message for a new conversation.
func (g *Gemini) GenerateWelcome(_ context.Context, _ string, hasLogs bool) (string, error) {
	if hasLogs {
		return welcomeWithLogs, nil
	}
	return welcomeEmpty, nil
}

// StartSession primes a new chat session with the given opening turns.
func (g *Gemini) StartSession(ctx context.Context, opening []Turn) (Session, error) {
	history := make([]*genai.Content, 0, len(opening))
	for _, turn := range opening {
		role := genai.RoleModel
		if turn.FromUser {
			role = genai.RoleUser
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: turn.Text}},
		})
	}

	chat, err := g.client.Chats.Create(ctx, g.model, &genai.GenerateContentConfig{
		MaxOutputTokens: maxOutputTokens,
	}, history)
	if err != nil {
		return nil, fmt.Errorf("priming chat session: %w", err)
	}

	g.logger.Debug("chat session primed", "model", g.model, "opening_turns", len(opening))
	return &geminiSession{chat: chat}, nil
}

// geminiSession wraps a live genai chat.
type geminiSession struct {
	chat *genai.Chat
}

// Send transmits one turn and returns the reply text.
func (s *geminiSession) Send(ctx context.Context, text string) (string, error) {
	resp, err := s.chat.SendMessage(ctx, genai.Part{Text: text})
	if err != nil {
		return "", fmt.Errorf("sending chat turn: %w", err)
	}

	reply := resp.Text()
	if reply == "" {
		return "", errors.New("empty reply from model")
	}
	return reply, nil
}

// Ensure Gemini implements Reasoner
var _ Reasoner = (*Gemini)(nil)
