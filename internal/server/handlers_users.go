// ABOUTME: HTTP handlers for the account profile and nutrition goals
// ABOUTME: Profile fields here feed the AI briefing on the next conversation turn

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Bonte-Project/bonte-server/internal/auth"
	"github.com/Bonte-Project/bonte-server/internal/store"
)

// UpdateProfileRequest is the JSON request body for PATCH /api/users/me.
// Absent fields are left unchanged.
type UpdateProfileRequest struct {
	FullName *string  `json:"fullName,omitempty"`
	Age      *int     `json:"age,omitempty"`
	HeightCm *float64 `json:"heightCm,omitempty"`
	WeightKg *float64 `json:"weightKg,omitempty"`
}

// GoalRequest is the JSON body for PUT /api/goals.
type GoalRequest struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Fat      int `json:"fat"`
	Carbs    int `json:"carbs"`
}

// GoalResponse is the JSON shape of a nutrition goal.
type GoalResponse struct {
	Calories  int    `json:"calories"`
	Protein   int    `json:"protein"`
	Fat       int    `json:"fat"`
	Carbs     int    `json:"carbs"`
	UpdatedAt string `json:"updatedAt"`
}

// handleMe handles GET and PATCH /api/users/me.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())

	switch r.Method {
	case http.MethodGet:
		user, err := s.store.GetUser(r.Context(), authCtx.UserID)
		if err != nil {
			s.storeError(w, err, "user not found")
			return
		}
		s.sendJSON(w, http.StatusOK, userResponse(user))

	case http.MethodPatch:
		var req UpdateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		user, err := s.store.GetUser(r.Context(), authCtx.UserID)
		if err != nil {
			s.storeError(w, err, "user not found")
			return
		}

		if req.FullName != nil {
			user.FullName = *req.FullName
		}
		if req.Age != nil {
			user.Age = *req.Age
		}
		if req.HeightCm != nil {
			user.HeightCm = *req.HeightCm
		}
		if req.WeightKg != nil {
			user.WeightKg = *req.WeightKg
		}

		if err := s.store.UpdateUserProfile(r.Context(), user); err != nil {
			s.storeError(w, err, "user not found")
			return
		}
		s.sendJSON(w, http.StatusOK, userResponse(user))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleGoals handles GET and PUT /api/goals.
func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())

	switch r.Method {
	case http.MethodGet:
		goal, err := s.store.GetNutritionGoal(r.Context(), authCtx.UserID)
		if err != nil {
			s.storeError(w, err, "no goals set")
			return
		}
		s.sendJSON(w, http.StatusOK, goalResponse(goal))

	case http.MethodPut:
		var req GoalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.Calories <= 0 {
			s.sendJSONError(w, http.StatusBadRequest, "calories must be positive")
			return
		}

		goal := &store.NutritionGoal{
			UserID:    authCtx.UserID,
			Calories:  req.Calories,
			Protein:   req.Protein,
			Fat:       req.Fat,
			Carbs:     req.Carbs,
			UpdatedAt: time.Now(),
		}
		if err := s.store.SetNutritionGoal(r.Context(), goal); err != nil {
			s.logger.Error("failed to set goal", "error", err)
			s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		s.sendJSON(w, http.StatusOK, goalResponse(goal))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func goalResponse(g *store.NutritionGoal) GoalResponse {
	return GoalResponse{
		Calories:  g.Calories,
		Protein:   g.Protein,
		Fat:       g.Fat,
		Carbs:     g.Carbs,
		UpdatedAt: g.UpdatedAt.Format(time.RFC3339),
	}
}

// storeError maps store lookup failures onto HTTP statuses.
func (s *Server) storeError(w http.ResponseWriter, err error, notFoundMsg string) {
	if errors.Is(err, store.ErrNotFound) {
		s.sendJSONError(w, http.StatusNotFound, notFoundMsg)
		return
	}
	s.logger.Error("store error", "error", err)
	s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
}
