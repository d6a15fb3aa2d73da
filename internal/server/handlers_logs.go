// ABOUTME: HTTP handlers for nutrition, activity, and sleep logs
// ABOUTME: Create and list per type; lists are most-recent-first

package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Bonte-Project/bonte-server/internal/auth"
	"github.com/Bonte-Project/bonte-server/internal/store"
)

// NutritionLogRequest is the JSON body for POST /api/logs/nutrition.
type NutritionLogRequest struct {
	Name     string    `json:"name"`
	MealType string    `json:"mealType"`
	Calories int       `json:"calories"`
	Protein  int       `json:"protein"`
	Fat      int       `json:"fat"`
	Carbs    int       `json:"carbs"`
	EatenAt  time.Time `json:"eatenAt,omitempty"`
}

// ActivityLogRequest is the JSON body for POST /api/logs/activity.
type ActivityLogRequest struct {
	ActivityType    string    `json:"activityType"`
	Intensity       string    `json:"intensity"`
	DurationMinutes int       `json:"durationMinutes"`
	CompletedAt     time.Time `json:"completedAt,omitempty"`
}

// SleepLogRequest is the JSON body for POST /api/logs/sleep.
type SleepLogRequest struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Quality   int       `json:"quality,omitempty"`
}

// NutritionLogResponse is the JSON shape of a logged meal.
type NutritionLogResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MealType string `json:"mealType"`
	Calories int    `json:"calories"`
	Protein  int    `json:"protein"`
	Fat      int    `json:"fat"`
	Carbs    int    `json:"carbs"`
	EatenAt  string `json:"eatenAt"`
}

// ActivityLogResponse is the JSON shape of a logged workout.
type ActivityLogResponse struct {
	ID              string `json:"id"`
	ActivityType    string `json:"activityType"`
	Intensity       string `json:"intensity,omitempty"`
	DurationMinutes int    `json:"durationMinutes"`
	CompletedAt     string `json:"completedAt"`
}

// SleepLogResponse is the JSON shape of a logged sleep period.
type SleepLogResponse struct {
	ID        string `json:"id"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Quality   int    `json:"quality,omitempty"`
}

func nutritionLogResponse(l *store.NutritionLog) NutritionLogResponse {
	return NutritionLogResponse{
		ID:       l.ID,
		Name:     l.Name,
		MealType: l.MealType,
		Calories: l.Calories,
		Protein:  l.Protein,
		Fat:      l.Fat,
		Carbs:    l.Carbs,
		EatenAt:  l.EatenAt.Format(time.RFC3339),
	}
}

func activityLogResponse(l *store.ActivityLog) ActivityLogResponse {
	return ActivityLogResponse{
		ID:              l.ID,
		ActivityType:    l.ActivityType,
		Intensity:       l.Intensity,
		DurationMinutes: l.DurationMinutes,
		CompletedAt:     l.CompletedAt.Format(time.RFC3339),
	}
}

func sleepLogResponse(l *store.SleepLog) SleepLogResponse {
	return SleepLogResponse{
		ID:        l.ID,
		StartTime: l.StartTime.Format(time.RFC3339),
		EndTime:   l.EndTime.Format(time.RFC3339),
		Quality:   l.Quality,
	}
}

// handleNutritionLogs handles POST and GET /api/logs/nutrition.
func (s *Server) handleNutritionLogs(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())

	switch r.Method {
	case http.MethodPost:
		var req NutritionLogRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.Name == "" || req.MealType == "" {
			s.sendJSONError(w, http.StatusBadRequest, "name and mealType are required")
			return
		}
		if req.EatenAt.IsZero() {
			req.EatenAt = time.Now()
		}

		entry := &store.NutritionLog{
			ID:       uuid.New().String(),
			UserID:   authCtx.UserID,
			Name:     req.Name,
			MealType: req.MealType,
			Calories: req.Calories,
			Protein:  req.Protein,
			Fat:      req.Fat,
			Carbs:    req.Carbs,
			EatenAt:  req.EatenAt,
		}
		if err := s.store.CreateNutritionLog(r.Context(), entry); err != nil {
			s.logger.Error("failed to create nutrition log", "error", err)
			s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		s.sendJSON(w, http.StatusCreated, nutritionLogResponse(entry))

	case http.MethodGet:
		logs, err := s.store.ListNutritionLogs(r.Context(), authCtx.UserID)
		if err != nil {
			s.logger.Error("failed to list nutrition logs", "error", err)
			s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		response := make([]NutritionLogResponse, len(logs))
		for i, l := range logs {
			response[i] = nutritionLogResponse(l)
		}
		s.sendJSON(w, http.StatusOK, response)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleActivityLogs handles POST and GET /api/logs/activity.
func (s *Server) handleActivityLogs(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())

	switch r.Method {
	case http.MethodPost:
		var req ActivityLogRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.ActivityType == "" || req.DurationMinutes <= 0 {
			s.sendJSONError(w, http.StatusBadRequest, "activityType and a positive durationMinutes are required")
			return
		}
		if req.CompletedAt.IsZero() {
			req.CompletedAt = time.Now()
		}

		entry := &store.ActivityLog{
			ID:              uuid.New().String(),
			UserID:          authCtx.UserID,
			ActivityType:    req.ActivityType,
			Intensity:       req.Intensity,
			DurationMinutes: req.DurationMinutes,
			CompletedAt:     req.CompletedAt,
		}
		if err := s.store.CreateActivityLog(r.Context(), entry); err != nil {
			s.logger.Error("failed to create activity log", "error", err)
			s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		s.sendJSON(w, http.StatusCreated, activityLogResponse(entry))

	case http.MethodGet:
		logs, err := s.store.ListActivityLogs(r.Context(), authCtx.UserID)
		if err != nil {
			s.logger.Error("failed to list activity logs", "error", err)
			s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		response := make([]ActivityLogResponse, len(logs))
		for i, l := range logs {
			response[i] = activityLogResponse(l)
		}
		s.sendJSON(w, http.StatusOK, response)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleSleepLogs handles POST and GET /api/logs/sleep.
func (s *Server) handleSleepLogs(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())

	switch r.Method {
	case http.MethodPost:
		var req SleepLogRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.StartTime.IsZero() || req.EndTime.IsZero() || !req.EndTime.After(req.StartTime) {
			s.sendJSONError(w, http.StatusBadRequest, "startTime and a later endTime are required")
			return
		}
		if req.Quality < 0 || req.Quality > 10 {
			s.sendJSONError(w, http.StatusBadRequest, "quality must be between 1 and 10")
			return
		}

		entry := &store.SleepLog{
			ID:        uuid.New().String(),
			UserID:    authCtx.UserID,
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
			Quality:   req.Quality,
		}
		if err := s.store.CreateSleepLog(r.Context(), entry); err != nil {
			s.logger.Error("failed to create sleep log", "error", err)
			s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		s.sendJSON(w, http.StatusCreated, sleepLogResponse(entry))

	case http.MethodGet:
		logs, err := s.store.ListSleepLogs(r.Context(), authCtx.UserID)
		if err != nil {
			s.logger.Error("failed to list sleep logs", "error", err)
			s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		response := make([]SleepLogResponse, len(logs))
		for i, l := range logs {
			response[i] = sleepLogResponse(l)
		}
		s.sendJSON(w, http.StatusOK, response)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
