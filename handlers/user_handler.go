package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"wellNestAPI/internal/apperr"
	"wellNestAPI/internal/user"
	"wellNestAPI/middleware"
	"wellNestAPI/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetProfile returns the wellness profile projection for the caller.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithAppError(w, apperr.ErrNotAuthorized)
		return
	}

	profile, err := h.userService.GetWellnessProfile(ctx, clerkID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, profile)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithAppError(w, apperr.ErrNotAuthorized)
		return
	}

	var req user.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.userService.UpdateProfileByClerkID(ctx, clerkID, &req)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithAppError(w, apperr.ErrNotAuthorized)
		return
	}

	if err := h.userService.DeleteUserByClerkID(ctx, clerkID); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Account deleted successfully"})
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithAppError maps the ledger's stable numeric codes onto HTTP
// statuses and echoes the code in the body.
func respondWithAppError(w http.ResponseWriter, err error) {
	appErr, ok := apperr.As(err)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var status int
	switch appErr {
	case apperr.ErrNotAuthorized:
		status = http.StatusUnauthorized
	case apperr.ErrInvalidMetricKind, apperr.ErrInvalidValue, apperr.ErrMetricValueTooHigh:
		status = http.StatusBadRequest
	case apperr.ErrGoalNotFound, apperr.ErrUserNotFound:
		status = http.StatusNotFound
	case apperr.ErrAchievementAlreadyEarned, apperr.ErrCannotOverwrite:
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
	}

	respondWithJSON(w, status, appErr)
}
