// ABOUTME: HTTP handlers for user/trainer messaging and the long-poll endpoint
// ABOUTME: Poll returns 200 with a message, 204 on timeout or supersession

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Bonte-Project/bonte-server/internal/auth"
	"github.com/Bonte-Project/bonte-server/internal/store"
	"github.com/Bonte-Project/bonte-server/internal/trainer"
)

// TrainerMessageRequest is the JSON body for POST /api/messages/{id}.
type TrainerMessageRequest struct {
	Content string `json:"content"`
}

// TrainerMessageResponse is the JSON shape of a trainer channel message.
type TrainerMessageResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	TrainerID string `json:"trainerId"`
	Content   string `json:"content"`
	FromUser  bool   `json:"fromUser"`
	SentAt    string `json:"sentAt"`
}

// ChatListResponse is the JSON response for GET /api/messages.
type ChatListResponse struct {
	Chats []string `json:"chats"`
}

func trainerMessageResponse(m *store.TrainerMessage) TrainerMessageResponse {
	return TrainerMessageResponse{
		ID:        m.ID,
		UserID:    m.UserID,
		TrainerID: m.TrainerID,
		Content:   m.Content,
		FromUser:  m.FromUser,
		SentAt:    m.SentAt.Format(time.RFC3339),
	}
}

// handleChatList handles GET /api/messages.
func (s *Server) handleChatList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	authCtx := auth.MustFromContext(r.Context())

	chats, err := s.trainer.ListChats(r.Context(), authCtx.UserID)
	if err != nil {
		s.trainerError(w, err)
		return
	}
	if chats == nil {
		chats = []string{}
	}
	s.sendJSON(w, http.StatusOK, ChatListResponse{Chats: chats})
}

// handlePoll handles GET /api/messages/poll. The request blocks until a new
// message arrives for the caller or the poll window closes empty.
func (s *Server) handlePoll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	authCtx := auth.MustFromContext(r.Context())

	msg, err := s.broker.Await(r.Context(), authCtx.UserID, s.config.Chat.PollTimeout)
	if err != nil {
		// Client disconnected; nothing useful to write.
		return
	}
	if msg == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.sendJSON(w, http.StatusOK, trainerMessageResponse(msg))
}

// handleTrainerMessages handles POST and GET /api/messages/{id}, where {id}
// names the other party: a trainer profile for users, a user account for
// trainers.
func (s *Server) handleTrainerMessages(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())

	otherID := strings.TrimPrefix(r.URL.Path, "/api/messages/")
	if otherID == "" || strings.Contains(otherID, "/") {
		s.sendJSONError(w, http.StatusBadRequest, "invalid path")
		return
	}

	switch r.Method {
	case http.MethodPost:
		var req TrainerMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.Content == "" {
			s.sendJSONError(w, http.StatusBadRequest, "content is required")
			return
		}

		msg, err := s.trainer.SendMessage(r.Context(), authCtx.UserID, otherID, req.Content)
		if err != nil {
			s.trainerError(w, err)
			return
		}
		s.sendJSON(w, http.StatusCreated, trainerMessageResponse(msg))

	case http.MethodGet:
		messages, err := s.trainer.ListMessages(r.Context(), authCtx.UserID, otherID)
		if err != nil {
			s.trainerError(w, err)
			return
		}
		response := make([]TrainerMessageResponse, len(messages))
		for i, m := range messages {
			response[i] = trainerMessageResponse(m)
		}
		s.sendJSON(w, http.StatusOK, response)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// trainerError maps trainer service failures onto HTTP statuses.
func (s *Server) trainerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.sendJSONError(w, http.StatusNotFound, "recipient not found")
	case errors.Is(err, trainer.ErrInvalidRole):
		s.sendJSONError(w, http.StatusForbidden, "role does not permit this action")
	default:
		s.logger.Error("trainer messaging error", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
	}
}
