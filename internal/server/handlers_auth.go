// ABOUTME: HTTP handlers for registration, login, and token refresh
// ABOUTME: Public endpoints; everything else on the API requires the tokens minted here

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Bonte-Project/bonte-server/internal/auth"
	"github.com/Bonte-Project/bonte-server/internal/store"
)

// RegisterRequest is the JSON request body for POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Role     string `json:"role,omitempty"`
}

// LoginRequest is the JSON request body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest is the JSON request body for POST /api/auth/refresh and logout.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// AuthResponse is the JSON response for register and login.
type AuthResponse struct {
	User   UserResponse    `json:"user"`
	Tokens *auth.TokenPair `json:"tokens"`
}

// UserResponse is the JSON shape of an account.
type UserResponse struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	FullName  string  `json:"fullName"`
	Role      string  `json:"role"`
	Age       int     `json:"age,omitempty"`
	HeightCm  float64 `json:"heightCm,omitempty"`
	WeightKg  float64 `json:"weightKg,omitempty"`
	CreatedAt string  `json:"createdAt"`
}

func userResponse(u *store.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		Age:       u.Age,
		HeightCm:  u.HeightCm,
		WeightKg:  u.WeightKg,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

// handleRegister handles POST /api/auth/register.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" || req.FullName == "" {
		s.sendJSONError(w, http.StatusBadRequest, "email, password, and fullName are required")
		return
	}
	if req.Role == "" {
		req.Role = store.RoleUser
	}

	user, tokens, err := s.auth.Register(r.Context(), req.Email, req.Password, req.FullName, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateUser):
			s.sendJSONError(w, http.StatusConflict, "email already registered")
		case errors.Is(err, auth.ErrInvalidRole):
			s.sendJSONError(w, http.StatusBadRequest, "role must be user or trainer")
		default:
			s.logger.Error("registration failed", "error", err)
			s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	s.sendJSON(w, http.StatusCreated, AuthResponse{User: userResponse(user), Tokens: tokens})
}

// handleLogin handles POST /api/auth/login.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		s.sendJSONError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, tokens, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.sendJSONError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		s.logger.Error("login failed", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.sendJSON(w, http.StatusOK, AuthResponse{User: userResponse(user), Tokens: tokens})
}

// handleRefresh handles POST /api/auth/refresh.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		s.sendJSONError(w, http.StatusBadRequest, "refreshToken is required")
		return
	}

	tokens, err := s.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrExpiredToken) {
			s.sendJSONError(w, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		s.logger.Error("refresh failed", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.sendJSON(w, http.StatusOK, tokens)
}

// handleLogout handles POST /api/auth/logout.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		s.sendJSONError(w, http.StatusBadRequest, "refreshToken is required")
		return
	}

	if err := s.auth.Logout(r.Context(), req.RefreshToken); err != nil {
		s.logger.Error("logout failed", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
