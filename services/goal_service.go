package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"wellNestAPI/internal/apperr"
	"wellNestAPI/internal/goal"
	"wellNestAPI/internal/metric"
)

type GoalService struct {
	db          *pgxpool.Pool
	userService *UserService
}

func NewGoalService(db *pgxpool.Pool, userService *UserService) *GoalService {
	return &GoalService{db: db, userService: userService}
}

// SetGoals upserts the caller's goal set. Goals are user-owned and mutable
// at will; a zero goal disables that metric's score contribution.
func (s *GoalService) SetGoals(ctx context.Context, clerkID string, req *goal.SetGoalsRequest, now time.Time) (*goal.GoalSet, error) {
	if req.SleepHoursGoal < 0 || req.WaterMlGoal < 0 || req.MeditationMinutesGoal < 0 {
		return nil, apperr.ErrInvalidValue
	}

	if err := s.userService.EnsureUserExists(ctx, clerkID, now); err != nil {
		return nil, err
	}

	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	query := `
	INSERT INTO goals (user_id, sleep_hours_goal, water_ml_goal, meditation_minutes_goal, updated_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (user_id)
	DO UPDATE SET
		sleep_hours_goal = $2,
		water_ml_goal = $3,
		meditation_minutes_goal = $4,
		updated_at = $5
	RETURNING user_id, sleep_hours_goal, water_ml_goal, meditation_minutes_goal, updated_at
	`

	g := &goal.GoalSet{}
	err = s.db.QueryRow(ctx, query, userID, req.SleepHoursGoal, req.WaterMlGoal, req.MeditationMinutesGoal, now).Scan(
		&g.UserID,
		&g.SleepHoursGoal,
		&g.WaterMlGoal,
		&g.MeditationMinutesGoal,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set goals: %w", err)
	}

	return g, nil
}

func (s *GoalService) GetGoals(ctx context.Context, clerkID string) (*goal.GoalSet, error) {
	query := `
	SELECT g.user_id, g.sleep_hours_goal, g.water_ml_goal, g.meditation_minutes_goal, g.updated_at
	FROM goals g
	JOIN users u ON u.id = g.user_id
	WHERE u.clerk_id = $1
	`

	g := &goal.GoalSet{}
	err := s.db.QueryRow(ctx, query, clerkID).Scan(
		&g.UserID,
		&g.SleepHoursGoal,
		&g.WaterMlGoal,
		&g.MeditationMinutesGoal,
		&g.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrGoalNotFound
		}
		return nil, fmt.Errorf("failed to get goals: %w", err)
	}

	return g, nil
}

// MeetsGoal reports whether value reaches the caller's goal for kind.
// False when no goal set exists or the kind is unrecognized. Pure read.
func (s *GoalService) MeetsGoal(ctx context.Context, clerkID string, kind metric.Kind, value int) (bool, error) {
	g, err := s.GetGoals(ctx, clerkID)
	if err != nil {
		if errors.Is(err, apperr.ErrGoalNotFound) {
			return false, nil
		}
		return false, err
	}

	return meetsGoal(g, kind, value), nil
}

func meetsGoal(g *goal.GoalSet, kind metric.Kind, value int) bool {
	switch kind {
	case metric.KindSleepHours:
		return value >= g.SleepHoursGoal
	case metric.KindWaterMl:
		return value >= g.WaterMlGoal
	case metric.KindMeditationMinutes:
		return value >= g.MeditationMinutesGoal
	}
	return false
}
