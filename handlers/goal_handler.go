package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"wellNestAPI/internal/apperr"
	"wellNestAPI/internal/goal"
	"wellNestAPI/middleware"
	"wellNestAPI/services"
)

type GoalHandler struct {
	goalService *services.GoalService
}

func NewGoalHandler(goalService *services.GoalService) *GoalHandler {
	return &GoalHandler{
		goalService: goalService,
	}
}

// SetGoals handles PUT /user/goals.
func (h *GoalHandler) SetGoals(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithAppError(w, apperr.ErrNotAuthorized)
		return
	}

	var req goal.SetGoalsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	g, err := h.goalService.SetGoals(ctx, clerkID, &req, time.Now())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, g)
}

// GetGoals handles GET /user/goals.
func (h *GoalHandler) GetGoals(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithAppError(w, apperr.ErrNotAuthorized)
		return
	}

	g, err := h.goalService.GetGoals(ctx, clerkID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, g)
}
