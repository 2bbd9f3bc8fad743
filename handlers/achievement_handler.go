package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"wellNestAPI/internal/apperr"
	"wellNestAPI/middleware"
	"wellNestAPI/services"
)

type AchievementHandler struct {
	achievementService *services.AchievementService
}

func NewAchievementHandler(achievementService *services.AchievementService) *AchievementHandler {
	return &AchievementHandler{
		achievementService: achievementService,
	}
}

// GetAchievements handles GET /user/achievements: the full catalog with
// per-entry earned status.
func (h *AchievementHandler) GetAchievements(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithAppError(w, apperr.ErrNotAuthorized)
		return
	}

	achievements, err := h.achievementService.GetAchievements(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, achievements)
}

// GrantAchievement handles POST /admin/achievements/grant (basic auth).
// Strict semantics: a duplicate grant surfaces code 106 rather than the
// issuer's silent success.
func (h *AchievementHandler) GrantAchievement(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req struct {
		ClerkID       string `json:"clerkId"`
		AchievementID string `json:"achievementId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	achievementID, err := uuid.Parse(req.AchievementID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid achievement id")
		return
	}

	if err := h.achievementService.GrantAchievement(ctx, req.ClerkID, achievementID, time.Now()); err != nil {
		log.Printf("GrantAchievement Handler: Service error: %v", err)
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{"message": "Achievement granted"})
}
