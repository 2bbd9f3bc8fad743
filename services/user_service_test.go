package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellNestAPI/internal/apperr"
	"wellNestAPI/internal/user"
)

func TestEnsureUserExists_Idempotent(t *testing.T) {
	pool := setupTestDB(t)
	defer cleanupTestDB(t, pool)

	svc := NewUserService(pool)
	ctx := context.Background()
	clerkID := testClerkID(t)

	require.NoError(t, svc.EnsureUserExists(ctx, clerkID, time.Now()))

	first, err := svc.GetUserByClerkID(ctx, clerkID)
	require.NoError(t, err)
	assert.Equal(t, 0, first.WellnessScore)
	assert.Equal(t, 0, first.StreakDays)

	// Second call leaves the existing profile untouched.
	require.NoError(t, svc.EnsureUserExists(ctx, clerkID, time.Now().Add(time.Hour)))

	second, err := svc.GetUserByClerkID(ctx, clerkID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)

	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE clerk_id = $1`, clerkID).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestCreateUser_UpsertsOnClerkID(t *testing.T) {
	pool := setupTestDB(t)
	defer cleanupTestDB(t, pool)

	svc := NewUserService(pool)
	ctx := context.Background()
	clerkID := testClerkID(t)

	created, err := svc.CreateUser(ctx, &user.CreateUserRequest{
		ClerkID:  clerkID,
		Email:    "test.create@example.com",
		Username: "testcreate",
	})
	require.NoError(t, err)

	updated, err := svc.CreateUser(ctx, &user.CreateUserRequest{
		ClerkID:  clerkID,
		Email:    "test.updated@example.com",
		Username: "testupdated",
	})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID, "same clerk id keeps one profile")
	assert.Equal(t, "test.updated@example.com", updated.Email)
}

func TestGetUserByClerkID_NotFound(t *testing.T) {
	pool := setupTestDB(t)
	defer cleanupTestDB(t, pool)

	svc := NewUserService(pool)

	_, err := svc.GetUserByClerkID(context.Background(), "user_test_does_not_exist")
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)
}

func TestGetWellnessProfile(t *testing.T) {
	pool := setupTestDB(t)
	defer cleanupTestDB(t, pool)

	svc := NewUserService(pool)
	ctx := context.Background()
	clerkID := testClerkID(t)

	require.NoError(t, svc.EnsureUserExists(ctx, clerkID, time.Now()))

	profile, err := svc.GetWellnessProfile(ctx, clerkID)
	require.NoError(t, err)
	assert.Equal(t, 0, profile.WellnessScore)
	assert.Equal(t, 0, profile.StreakDays)
	assert.False(t, profile.JoinedAt.IsZero())
}
