package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellNestAPI/internal/achievement"
	"wellNestAPI/internal/apperr"
)

func seedAchievement(t *testing.T, pool *pgxpool.Pool, category achievement.Category, threshold int) uuid.UUID {
	t.Helper()

	id := uuid.New()
	name := fmt.Sprintf("test_%s_%d_%d", category, threshold, time.Now().UnixNano())
	_, err := pool.Exec(context.Background(),
		`INSERT INTO achievements (id, name, description, category, threshold) VALUES ($1, $2, '', $3, $4)`,
		id, name, category, threshold,
	)
	require.NoError(t, err)
	return id
}

func seedUser(t *testing.T, pool *pgxpool.Pool, userService *UserService, clerkID string) uuid.UUID {
	t.Helper()

	ctx := context.Background()
	require.NoError(t, userService.EnsureUserExists(ctx, clerkID, time.Now()))

	var userID uuid.UUID
	require.NoError(t, pool.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID))
	return userID
}

func TestIssueAchievement_WriteOnce(t *testing.T) {
	pool := setupTestDB(t)
	defer cleanupTestDB(t, pool)

	svc := NewAchievementService(pool, NewNotificationService(pool))
	userService := NewUserService(pool)
	ctx := context.Background()

	userID := seedUser(t, pool, userService, testClerkID(t))
	achID := seedAchievement(t, pool, achievement.CategorySleep, 8)

	first := time.Now().Add(-time.Hour)
	inserted, err := svc.IssueAchievement(ctx, pool, userID, achID, "test_first", first)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = svc.IssueAchievement(ctx, pool, userID, achID, "test_second", time.Now())
	require.NoError(t, err)
	assert.False(t, inserted, "second issue must be a no-op")

	// The original entry survives untouched.
	var name string
	var earnedAt time.Time
	err = pool.QueryRow(ctx,
		`SELECT achievement_name, earned_at FROM user_achievements WHERE user_id = $1 AND achievement_id = $2`,
		userID, achID,
	).Scan(&name, &earnedAt)
	require.NoError(t, err)
	assert.Equal(t, "test_first", name)
	assert.WithinDuration(t, first, earnedAt, time.Second)
}

func TestGrantAchievement_DuplicateIsConflict(t *testing.T) {
	pool := setupTestDB(t)
	defer cleanupTestDB(t, pool)

	svc := NewAchievementService(pool, NewNotificationService(pool))
	userService := NewUserService(pool)
	ctx := context.Background()
	clerkID := testClerkID(t)

	seedUser(t, pool, userService, clerkID)
	achID := seedAchievement(t, pool, achievement.CategoryStreak, 7)

	require.NoError(t, svc.GrantAchievement(ctx, clerkID, achID, time.Now()))

	err := svc.GrantAchievement(ctx, clerkID, achID, time.Now())
	assert.ErrorIs(t, err, apperr.ErrAchievementAlreadyEarned)
}

func TestGrantAchievement_UnknownUser(t *testing.T) {
	pool := setupTestDB(t)
	defer cleanupTestDB(t, pool)

	svc := NewAchievementService(pool, NewNotificationService(pool))
	achID := seedAchievement(t, pool, achievement.CategoryStreak, 7)

	err := svc.GrantAchievement(context.Background(), "user_test_missing", achID, time.Now())
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)
}

func TestCheckAndUnlock_ThresholdsAndIdempotence(t *testing.T) {
	pool := setupTestDB(t)
	defer cleanupTestDB(t, pool)

	svc := NewAchievementService(pool, NewNotificationService(pool))
	userService := NewUserService(pool)
	ctx := context.Background()

	userID := seedUser(t, pool, userService, testClerkID(t))
	lowID := seedAchievement(t, pool, achievement.CategoryMeditation, 5)
	highID := seedAchievement(t, pool, achievement.CategoryMeditation, 30)

	unlocked, err := svc.CheckAndUnlock(ctx, pool, userID, achievement.CategoryMeditation, 10, time.Now())
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	assert.Equal(t, lowID, unlocked[0].ID)

	// Crossing the higher threshold later unlocks only the new badge.
	unlocked, err = svc.CheckAndUnlock(ctx, pool, userID, achievement.CategoryMeditation, 45, time.Now())
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	assert.Equal(t, highID, unlocked[0].ID)

	unlocked, err = svc.CheckAndUnlock(ctx, pool, userID, achievement.CategoryMeditation, 45, time.Now())
	require.NoError(t, err)
	assert.Empty(t, unlocked)
}
