// ABOUTME: HTTP server wiring for the bonte API
// ABOUTME: Builds the route table, applies auth middleware, and handles graceful shutdown

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Bonte-Project/bonte-server/internal/auth"
	"github.com/Bonte-Project/bonte-server/internal/chat"
	"github.com/Bonte-Project/bonte-server/internal/config"
	"github.com/Bonte-Project/bonte-server/internal/notify"
	"github.com/Bonte-Project/bonte-server/internal/store"
	"github.com/Bonte-Project/bonte-server/internal/trainer"
)

// Server is the HTTP API front of the application services.
type Server struct {
	config     *config.Config
	store      store.Store
	auth       *auth.Service
	chat       *chat.Service
	trainer    *trainer.Service
	broker     *notify.Broker
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a Server with all routes registered.
func New(cfg *config.Config, st store.Store, authSvc *auth.Service, chatSvc *chat.Service, trainerSvc *trainer.Service, broker *notify.Broker, verifier auth.TokenVerifier, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:  cfg,
		store:   st,
		auth:    authSvc,
		chat:    chatSvc,
		trainer: trainerSvc,
		broker:  broker,
		logger:  logger.With("component", "server"),
	}

	mux := http.NewServeMux()

	// Health endpoints - no auth required
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health/ready", s.handleReady)

	// Public auth endpoints
	mux.HandleFunc("/api/auth/register", s.handleRegister)
	mux.HandleFunc("/api/auth/login", s.handleLogin)
	mux.HandleFunc("/api/auth/refresh", s.handleRefresh)
	mux.HandleFunc("/api/auth/logout", s.handleLogout)

	// Everything else requires a bearer token
	authed := auth.HTTPAuthMiddleware(verifier)
	mux.Handle("/api/users/me", authed(http.HandlerFunc(s.handleMe)))
	mux.Handle("/api/goals", authed(http.HandlerFunc(s.handleGoals)))
	mux.Handle("/api/logs/nutrition", authed(http.HandlerFunc(s.handleNutritionLogs)))
	mux.Handle("/api/logs/activity", authed(http.HandlerFunc(s.handleActivityLogs)))
	mux.Handle("/api/logs/sleep", authed(http.HandlerFunc(s.handleSleepLogs)))
	mux.Handle("/api/ai/conversation", authed(http.HandlerFunc(s.handleCreateConversation)))
	mux.Handle("/api/ai/messages", authed(http.HandlerFunc(s.handleSendAIMessage)))
	mux.Handle("/api/ai/history", authed(http.HandlerFunc(s.handleHistory)))
	mux.Handle("/api/ai/history/visible", authed(http.HandlerFunc(s.handleVisibleHistory)))
	mux.Handle("/api/messages", authed(http.HandlerFunc(s.handleChatList)))
	mux.Handle("/api/messages/poll", authed(http.HandlerFunc(s.handlePoll)))
	mux.Handle("/api/messages/", authed(http.HandlerFunc(s.handleTrainerMessages)))

	s.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler exposes the route table, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
	case err := <-errCh:
		return err
	}

	// Fresh context: the original one is already canceled.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// handleHealth returns liveness status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady returns readiness: the store must answer a read.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	_, err := s.store.GetUser(r.Context(), "readiness-probe")
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.sendJSONError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	s.sendJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// sendJSON writes a JSON response with the given status.
func (s *Server) sendJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// sendJSONError writes a JSON error response.
func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
