// ABOUTME: HTTP handlers for the AI conversation endpoints
// ABOUTME: Create conversation, send a turn, and read full or visible history

package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Bonte-Project/bonte-server/internal/auth"
	"github.com/Bonte-Project/bonte-server/internal/chat"
	"github.com/Bonte-Project/bonte-server/internal/store"
)

// SendAIMessageRequest is the JSON body for POST /api/ai/messages.
type SendAIMessageRequest struct {
	Message string `json:"message"`
}

// HistoryResponse is the JSON response for the history endpoints.
type HistoryResponse struct {
	Messages []chat.Message `json:"messages"`
}

// handleCreateConversation handles POST /api/ai/conversation.
func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	authCtx := auth.MustFromContext(r.Context())

	welcome, err := s.chat.CreateConversation(r.Context(), authCtx.UserID)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrConversationExists):
			s.sendJSONError(w, http.StatusConflict, "conversation already exists")
		case errors.Is(err, store.ErrNotFound):
			s.sendJSONError(w, http.StatusNotFound, "user not found")
		default:
			s.logger.Error("failed to create conversation", "error", err, "user_id", authCtx.UserID)
			s.sendJSONError(w, http.StatusBadGateway, "assistant unavailable")
		}
		return
	}

	s.sendJSON(w, http.StatusCreated, welcome)
}

// handleSendAIMessage handles POST /api/ai/messages.
// A reasoner failure maps to 502: the message was not answered and its
// record is excluded from history, so the client can simply retry.
func (s *Server) handleSendAIMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	authCtx := auth.MustFromContext(r.Context())

	var req SendAIMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Message == "" {
		s.sendJSONError(w, http.StatusBadRequest, "message is required")
		return
	}

	turn, err := s.chat.SendMessage(r.Context(), authCtx.UserID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrNoConversation):
			s.sendJSONError(w, http.StatusNotFound, "conversation has not been created")
		case errors.Is(err, store.ErrNotFound):
			s.sendJSONError(w, http.StatusNotFound, "user not found")
		default:
			s.logger.Error("AI turn failed", "error", err, "user_id", authCtx.UserID)
			s.sendJSONError(w, http.StatusBadGateway, "assistant unavailable")
		}
		return
	}

	s.sendJSON(w, http.StatusOK, turn)
}

// handleHistory handles GET /api/ai/history.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	authCtx := auth.MustFromContext(r.Context())

	messages, err := s.chat.History(r.Context(), authCtx.UserID)
	if err != nil {
		s.storeError(w, err, "user not found")
		return
	}
	s.sendJSON(w, http.StatusOK, HistoryResponse{Messages: messages})
}

// handleVisibleHistory handles GET /api/ai/history/visible.
func (s *Server) handleVisibleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	authCtx := auth.MustFromContext(r.Context())

	messages, err := s.chat.VisibleHistory(r.Context(), authCtx.UserID)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyHistory) {
			s.sendJSONError(w, http.StatusNotFound, "conversation has not been created")
			return
		}
		s.storeError(w, err, "user not found")
		return
	}
	s.sendJSON(w, http.StatusOK, HistoryResponse{Messages: messages})
}
