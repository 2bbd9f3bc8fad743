package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellNestAPI/internal/metric"
	modelUser "wellNestAPI/internal/user"
	"wellNestAPI/middleware"
	"wellNestAPI/services"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL or DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}
	return pool
}

func cleanupTestDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), "DELETE FROM users WHERE clerk_id LIKE 'user_test_%'")
	if err != nil {
		t.Logf("Warning: failed to cleanup test data: %v", err)
	}
	pool.Close()
}

func authedRequest(method, target string, body string, clerkID string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	ctx := context.WithValue(req.Context(), middleware.ClerkIDKey, clerkID)
	return req.WithContext(ctx)
}

// TestFullWellnessFlow walks the main product loop: sign up via the Clerk
// webhook, set goals, log metrics, and read the profile back.
func TestFullWellnessFlow(t *testing.T) {
	pool := setupTestDB(t)
	defer cleanupTestDB(t, pool)

	userService := services.NewUserService(pool)
	goalService := services.NewGoalService(pool, userService)
	notificationService := services.NewNotificationService(pool)
	achievementService := services.NewAchievementService(pool, notificationService)
	wellnessService := services.NewWellnessService(pool, userService, goalService, achievementService)

	userHandler := NewUserHandler(userService)
	goalHandler := NewGoalHandler(goalService)
	wellnessHandler := NewWellnessHandler(wellnessService)
	achievementHandler := NewAchievementHandler(achievementService)
	webhookHandler := NewWebhookHandler(userService)

	os.Setenv("CLERK_WEBHOOK_SECRET", "")
	defer os.Unsetenv("CLERK_WEBHOOK_SECRET")

	clerkID := "user_test_flow_" + time.Now().Format("20060102150405")
	ctx := context.Background()

	t.Log("Step 1: User signs up via Clerk webhook")
	createPayload := fmt.Sprintf(`{
		"data": {
			"id": "%s",
			"username": "testflow",
			"email_addresses": [{"id": "email_123", "email_address": "test.flow@example.com"}],
			"primary_email_address_id": "email_123",
			"image_url": "https://example.com/image.jpg"
		},
		"object": "event",
		"type": "user.created"
	}`, clerkID)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewReader([]byte(createPayload)))
	rr := httptest.NewRecorder()
	webhookHandler.HandleClerkWebhook(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	u, err := userService.GetUserByClerkID(ctx, clerkID)
	require.NoError(t, err)
	assert.Equal(t, "test.flow@example.com", u.Email)

	t.Log("Step 2: User sets goals")
	rr = httptest.NewRecorder()
	goalHandler.SetGoals(rr, authedRequest(http.MethodPut, "/api/v1/user/goals",
		`{"sleepHoursGoal": 8, "waterMlGoal": 2000, "meditationMinutesGoal": 20}`, clerkID))
	require.Equal(t, http.StatusOK, rr.Code)

	t.Log("Step 3: User logs a metric")
	rr = httptest.NewRecorder()
	wellnessHandler.RecordMetric(rr, authedRequest(http.MethodPost, "/api/v1/user/metrics",
		`{"kind": "water_ml", "value": 2000}`, clerkID))
	require.Equal(t, http.StatusCreated, rr.Code)

	var recorded metric.RecordMetricResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &recorded))
	assert.True(t, recorded.GoalMet)
	assert.Equal(t, 1, recorded.StreakDays)

	t.Log("Step 4: User reads the day back")
	rr = httptest.NewRecorder()
	wellnessHandler.GetDailyMetric(rr, authedRequest(http.MethodGet, "/api/v1/user/metrics/daily", "", clerkID))
	require.Equal(t, http.StatusOK, rr.Code)

	var day metric.DailyMetric
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &day))
	assert.Equal(t, 2000, day.WaterMl)

	t.Log("Step 5: User reads the profile")
	rr = httptest.NewRecorder()
	userHandler.GetProfile(rr, authedRequest(http.MethodGet, "/api/v1/user", "", clerkID))
	require.Equal(t, http.StatusOK, rr.Code)

	var profile modelUser.WellnessProfile
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &profile))
	assert.Equal(t, 1, profile.StreakDays)

	t.Log("Step 6: Achievement catalog lists earned status")
	rr = httptest.NewRecorder()
	achievementHandler.GetAchievements(rr, authedRequest(http.MethodGet, "/api/v1/user/achievements", "", clerkID))
	assert.Equal(t, http.StatusOK, rr.Code)

	t.Log("Step 7: User deletes the account")
	rr = httptest.NewRecorder()
	userHandler.DeleteAccount(rr, authedRequest(http.MethodDelete, "/api/v1/user/delete-account", "", clerkID))
	require.Equal(t, http.StatusOK, rr.Code)

	_, err = userService.GetUserByClerkID(ctx, clerkID)
	assert.Error(t, err, "user should be deleted")
}

func TestRecordMetric_BadRequests(t *testing.T) {
	pool := setupTestDB(t)
	defer cleanupTestDB(t, pool)

	userService := services.NewUserService(pool)
	goalService := services.NewGoalService(pool, userService)
	notificationService := services.NewNotificationService(pool)
	achievementService := services.NewAchievementService(pool, notificationService)
	wellnessService := services.NewWellnessService(pool, userService, goalService, achievementService)
	wellnessHandler := NewWellnessHandler(wellnessService)

	clerkID := "user_test_bad_" + time.Now().Format("20060102150405")

	// No auth context at all.
	rr := httptest.NewRecorder()
	wellnessHandler.RecordMetric(rr, httptest.NewRequest(http.MethodPost, "/api/v1/user/metrics", strings.NewReader(`{"kind": "water_ml", "value": 1}`)))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// Unknown metric kind carries the stable code 101.
	rr = httptest.NewRecorder()
	wellnessHandler.RecordMetric(rr, authedRequest(http.MethodPost, "/api/v1/user/metrics",
		`{"kind": "steps", "value": 100}`, clerkID))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.EqualValues(t, 101, body["code"])

	// Out-of-range value carries code 104.
	rr = httptest.NewRecorder()
	wellnessHandler.RecordMetric(rr, authedRequest(http.MethodPost, "/api/v1/user/metrics",
		`{"kind": "sleep_hours", "value": 25}`, clerkID))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.EqualValues(t, 104, body["code"])
}
