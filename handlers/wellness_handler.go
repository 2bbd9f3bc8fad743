package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"wellNestAPI/internal/apperr"
	"wellNestAPI/internal/metric"
	"wellNestAPI/middleware"
	"wellNestAPI/services"
)

type WellnessHandler struct {
	wellnessService *services.WellnessService
}

func NewWellnessHandler(wellnessService *services.WellnessService) *WellnessHandler {
	return &WellnessHandler{
		wellnessService: wellnessService,
	}
}

// RecordMetric handles POST /user/metrics.
func (h *WellnessHandler) RecordMetric(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithAppError(w, apperr.ErrNotAuthorized)
		return
	}

	var req metric.RecordMetricRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	now := time.Now()
	if req.Timestamp != nil {
		now = time.Unix(*req.Timestamp, 0)
	}

	resp, err := h.wellnessService.RecordDailyMetric(ctx, clerkID, metric.Kind(req.Kind), req.Value, now)
	if err != nil {
		log.Printf("RecordMetric Handler: Service error for %s: %v", clerkID, err)
		respondWithAppError(w, err)
		return
	}

	middleware.CountMetricRecorded(req.Kind)
	respondWithJSON(w, http.StatusCreated, resp)
}

// GetDailyMetric handles GET /user/metrics/daily?date=YYYY-MM-DD.
func (h *WellnessHandler) GetDailyMetric(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithAppError(w, apperr.ErrNotAuthorized)
		return
	}

	date := time.Now()
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	m, err := h.wellnessService.GetDailyMetric(ctx, clerkID, date)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	if m == nil {
		respondWithError(w, http.StatusNotFound, "No metrics recorded for this date")
		return
	}

	respondWithJSON(w, http.StatusOK, m)
}

// RecalculateScore handles POST /user/score/recalculate.
func (h *WellnessHandler) RecalculateScore(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithAppError(w, apperr.ErrNotAuthorized)
		return
	}

	score, err := h.wellnessService.RecalculateScore(ctx, clerkID, time.Now())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]int{"wellness_score": score})
}

func (h *WellnessHandler) GetUserStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithAppError(w, apperr.ErrNotAuthorized)
		return
	}

	st, err := h.wellnessService.GetUserStats(ctx, clerkID, time.Now())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, st)
}

func (h *WellnessHandler) GetWeeklyDaysLogged(w http.ResponseWriter, r *http.Request) {
	h.daysLogged(w, r, "week")
}

func (h *WellnessHandler) GetMonthlyDaysLogged(w http.ResponseWriter, r *http.Request) {
	h.daysLogged(w, r, "month")
}

func (h *WellnessHandler) GetYearlyDaysLogged(w http.ResponseWriter, r *http.Request) {
	h.daysLogged(w, r, "year")
}

func (h *WellnessHandler) GetAllTimeDaysLogged(w http.ResponseWriter, r *http.Request) {
	h.daysLogged(w, r, "all_time")
}

func (h *WellnessHandler) daysLogged(w http.ResponseWriter, r *http.Request, period string) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithAppError(w, apperr.ErrNotAuthorized)
		return
	}

	st, err := h.wellnessService.GetDaysLogged(ctx, clerkID, period, time.Now())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, st)
}

// GetCalendar handles GET /user/calendar?year=&month=.
func (h *WellnessHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithAppError(w, apperr.ErrNotAuthorized)
		return
	}

	now := time.Now()
	year := now.Year()
	month := int(now.Month())

	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		parsed, err := strconv.Atoi(yearStr)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid year")
			return
		}
		year = parsed
	}
	if monthStr := r.URL.Query().Get("month"); monthStr != "" {
		parsed, err := strconv.Atoi(monthStr)
		if err != nil || parsed < 1 || parsed > 12 {
			respondWithError(w, http.StatusBadRequest, "Invalid month")
			return
		}
		month = parsed
	}

	cal, err := h.wellnessService.GetCalendar(ctx, clerkID, year, month)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, cal)
}
