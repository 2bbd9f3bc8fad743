package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"wellNestAPI/internal/achievement"
	"wellNestAPI/internal/apperr"
	"wellNestAPI/internal/metric"
	"wellNestAPI/internal/notification"
)

type AchievementService struct {
	db                  *pgxpool.Pool
	notificationService *NotificationService
}

func NewAchievementService(db *pgxpool.Pool, notificationService *NotificationService) *AchievementService {
	return &AchievementService{db: db, notificationService: notificationService}
}

// CategoryForKind maps a tracked metric to its achievement category.
func CategoryForKind(kind metric.Kind) (achievement.Category, bool) {
	switch kind {
	case metric.KindSleepHours:
		return achievement.CategorySleep, true
	case metric.KindWaterMl:
		return achievement.CategoryHydration, true
	case metric.KindMeditationMinutes:
		return achievement.CategoryMeditation, true
	}
	return "", false
}

func (s *AchievementService) GetAchievements(ctx context.Context, clerkID string) ([]*achievement.AchievementWithStatus, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	query := `
	SELECT
		a.id,
		a.name,
		a.description,
		a.category,
		a.threshold,
		a.created_at,
		CASE WHEN ua.achievement_id IS NOT NULL THEN true ELSE false END as earned,
		ua.earned_at
	FROM achievements a
	LEFT JOIN user_achievements ua ON a.id = ua.achievement_id AND ua.user_id = $1
	ORDER BY earned DESC, a.threshold ASC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch achievements: %w", err)
	}
	defer rows.Close()

	var achievements []*achievement.AchievementWithStatus

	for rows.Next() {
		ach := &achievement.AchievementWithStatus{}
		err := rows.Scan(
			&ach.ID,
			&ach.Name,
			&ach.Description,
			&ach.Category,
			&ach.Threshold,
			&ach.CreatedAt,
			&ach.Earned,
			&ach.EarnedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}

		achievements = append(achievements, ach)
	}

	if achievements == nil {
		achievements = []*achievement.AchievementWithStatus{}
	}

	return achievements, nil
}

// IssueAchievement writes a ledger entry for (user, achievement). The ledger
// is write-once: a duplicate issue is a success no-op and the original
// earned_at and name are kept. Returns whether a new entry was written.
func (s *AchievementService) IssueAchievement(ctx context.Context, q querier, userID uuid.UUID, achievementID uuid.UUID, name string, earnedAt time.Time) (bool, error) {
	query := `
	INSERT INTO user_achievements (user_id, achievement_id, achievement_name, earned_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (user_id, achievement_id) DO NOTHING
	`

	result, err := q.Exec(ctx, query, userID, achievementID, name, earnedAt)
	if err != nil {
		return false, fmt.Errorf("failed to issue achievement: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// GrantAchievement is the strict admin path: unlike the idempotent issuer it
// surfaces achievement-already-earned instead of succeeding silently.
func (s *AchievementService) GrantAchievement(ctx context.Context, clerkID string, achievementID uuid.UUID, now time.Time) error {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return apperr.ErrUserNotFound
	}

	var name string
	err = s.db.QueryRow(ctx, `SELECT name FROM achievements WHERE id = $1`, achievementID).Scan(&name)
	if err != nil {
		return fmt.Errorf("achievement not found: %w", err)
	}

	inserted, err := s.IssueAchievement(ctx, s.db, userID, achievementID, name, now)
	if err != nil {
		return err
	}
	if !inserted {
		return apperr.ErrAchievementAlreadyEarned
	}

	return nil
}

// CheckAndUnlock issues every catalog entry in category whose threshold the
// value reaches and which the user has not earned yet. Runs on the caller's
// transaction so unlocks commit together with the triggering write.
func (s *AchievementService) CheckAndUnlock(ctx context.Context, q querier, userID uuid.UUID, category achievement.Category, value int, now time.Time) ([]*achievement.Achievement, error) {
	query := `
	SELECT a.id, a.name, a.description, a.category, a.threshold, a.created_at
	FROM achievements a
	WHERE a.category = $1
		AND a.threshold <= $2
		AND NOT EXISTS (
			SELECT 1 FROM user_achievements ua
			WHERE ua.user_id = $3 AND ua.achievement_id = a.id
		)
	ORDER BY a.threshold ASC
	`

	rows, err := q.Query(ctx, query, category, value, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check achievements: %w", err)
	}
	defer rows.Close()

	var candidates []*achievement.Achievement
	for rows.Next() {
		ach := &achievement.Achievement{}
		if err := rows.Scan(&ach.ID, &ach.Name, &ach.Description, &ach.Category, &ach.Threshold, &ach.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		candidates = append(candidates, ach)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating achievements: %w", err)
	}

	var unlocked []*achievement.Achievement
	for _, ach := range candidates {
		inserted, err := s.IssueAchievement(ctx, q, userID, ach.ID, ach.Name, now)
		if err != nil {
			return nil, err
		}
		if inserted {
			unlocked = append(unlocked, ach)
		}
	}

	return unlocked, nil
}

// AnnounceUnlocks creates a notification per fresh unlock. Best effort:
// failures are logged, never propagated into the recording flow.
func (s *AchievementService) AnnounceUnlocks(ctx context.Context, userID uuid.UUID, unlocked []*achievement.Achievement) {
	for _, ach := range unlocked {
		req := &notification.CreateNotificationRequest{
			UserID:  userID,
			Type:    notification.NotificationAchievement,
			Title:   "Achievement unlocked!",
			Message: fmt.Sprintf("You earned %q: %s", ach.Name, ach.Description),
		}
		if _, err := s.notificationService.CreateNotification(ctx, req); err != nil {
			log.Printf("Failed to create unlock notification for user %s: %v", userID, err)
		}
	}
}
