package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"wellNestAPI/internal/achievement"
	"wellNestAPI/internal/apperr"
	"wellNestAPI/internal/calendar"
	"wellNestAPI/internal/goal"
	"wellNestAPI/internal/metric"
	"wellNestAPI/internal/stats"
	"wellNestAPI/utils"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx so the score and
// achievement paths can run inside the recording transaction.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type WellnessService struct {
	db                 *pgxpool.Pool
	userService        *UserService
	goalService        *GoalService
	achievementService *AchievementService
}

func NewWellnessService(db *pgxpool.Pool, userService *UserService, goalService *GoalService, achievementService *AchievementService) *WellnessService {
	return &WellnessService{
		db:                 db,
		userService:        userService,
		goalService:        goalService,
		achievementService: achievementService,
	}
}

func metricColumn(kind metric.Kind) (string, bool) {
	switch kind {
	case metric.KindSleepHours:
		return "sleep_hours", true
	case metric.KindWaterMl:
		return "water_ml", true
	case metric.KindMeditationMinutes:
		return "meditation_minutes", true
	}
	return "", false
}

// RecordDailyMetric is the main write path: validate, bootstrap the profile,
// upsert the day record, advance the streak, recalculate the wellness score
// (which reads yesterday's record, not today's), and unlock achievements on
// goal attainment. Everything commits in one transaction.
func (s *WellnessService) RecordDailyMetric(ctx context.Context, clerkID string, kind metric.Kind, value int, now time.Time) (*metric.RecordMetricResponse, error) {
	column, ok := metricColumn(kind)
	if !ok {
		return nil, apperr.ErrInvalidMetricKind
	}
	if value < 0 {
		return nil, apperr.ErrInvalidValue
	}
	if value > metric.MaxValues[kind] {
		return nil, apperr.ErrMetricValueTooHigh
	}

	if err := s.userService.EnsureUserExists(ctx, clerkID, now); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var userID uuid.UUID
	var oldScore, streakDays int
	var lastLoggedBucket int64
	err = tx.QueryRow(ctx,
		`SELECT id, wellness_score, streak_days, last_logged_bucket FROM users WHERE clerk_id = $1 FOR UPDATE`,
		clerkID,
	).Scan(&userID, &oldScore, &streakDays, &lastLoggedBucket)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to lock user row: %w", err)
	}

	goals, err := goalsByUserID(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	bucket := utils.DayBucket(now.Unix())

	// One row per (user, day); a later write for the same day overwrites
	// this metric's value and refreshes recorded_at.
	upsert := fmt.Sprintf(`
	INSERT INTO daily_metrics (user_id, day_bucket, %s, recorded_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (user_id, day_bucket)
	DO UPDATE SET %s = $3, recorded_at = $4
	`, column, column)

	if _, err := tx.Exec(ctx, upsert, userID, bucket, value, now); err != nil {
		return nil, fmt.Errorf("failed to record metric: %w", err)
	}

	// First write of the day advances or resets the streak; repeated
	// same-day writes leave it alone.
	if bucket != lastLoggedBucket {
		if lastLoggedBucket == bucket-utils.SecondsPerDay {
			streakDays++
		} else {
			streakDays = 1
		}
		if _, err := tx.Exec(ctx,
			`UPDATE users SET streak_days = $2, last_logged_bucket = $3, updated_at = NOW() WHERE id = $1`,
			userID, streakDays, bucket,
		); err != nil {
			return nil, fmt.Errorf("failed to update streak: %w", err)
		}
	}

	newScore, err := computeScore(ctx, tx, userID, oldScore, goals, now)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE users SET wellness_score = $2, updated_at = NOW() WHERE id = $1`,
		userID, newScore,
	); err != nil {
		return nil, fmt.Errorf("failed to persist wellness score: %w", err)
	}

	goalMet := meetsGoal(goals, kind, value)

	var unlocked []*achievement.Achievement
	if goalMet {
		if category, ok := CategoryForKind(kind); ok {
			fresh, err := s.achievementService.CheckAndUnlock(ctx, tx, userID, category, value, now)
			if err != nil {
				return nil, err
			}
			unlocked = append(unlocked, fresh...)
		}
	}

	// Streak badges ride along on every logging day.
	if bucket != lastLoggedBucket {
		fresh, err := s.achievementService.CheckAndUnlock(ctx, tx, userID, achievement.CategoryStreak, streakDays, now)
		if err != nil {
			return nil, err
		}
		unlocked = append(unlocked, fresh...)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	// Notifications fire after commit so a push failure cannot roll back
	// the ledger writes.
	if len(unlocked) > 0 {
		s.achievementService.AnnounceUnlocks(ctx, userID, unlocked)
	}

	return &metric.RecordMetricResponse{
		DayBucket:     bucket,
		WellnessScore: newScore,
		GoalMet:       goalMet,
		StreakDays:    streakDays,
	}, nil
}

// RecalculateScore recomputes and persists the caller's wellness score from
// yesterday's record. Missing profile or goals propagate as not-found; the
// no-metrics branch decays the score instead.
func (s *WellnessService) RecalculateScore(ctx context.Context, clerkID string, now time.Time) (int, error) {
	u, err := s.userService.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		return 0, err
	}

	userID, err := uuid.Parse(u.ID)
	if err != nil {
		return 0, fmt.Errorf("invalid user id: %w", err)
	}

	goals, err := goalsByUserID(ctx, s.db, userID)
	if err != nil {
		return 0, err
	}

	newScore, err := computeScore(ctx, s.db, userID, u.WellnessScore, goals, now)
	if err != nil {
		return 0, err
	}

	if _, err := s.db.Exec(ctx,
		`UPDATE users SET wellness_score = $2, updated_at = NOW() WHERE id = $1`,
		userID, newScore,
	); err != nil {
		return 0, fmt.Errorf("failed to persist wellness score: %w", err)
	}

	return newScore, nil
}

// computeScore implements the smoothing recurrence. With a record for
// yesterday: new = old/10 + (avg/100)*90 over the three attainment
// percentages; without one: flat decay of 5, floored at 0. Integer division
// throughout, truncation preserved exactly.
func computeScore(ctx context.Context, q querier, userID uuid.UUID, oldScore int, g *goal.GoalSet, now time.Time) (int, error) {
	yesterday := utils.YesterdayBucket(now.Unix())

	var m metric.DailyMetric
	err := q.QueryRow(ctx,
		`SELECT sleep_hours, water_ml, meditation_minutes FROM daily_metrics WHERE user_id = $1 AND day_bucket = $2`,
		userID, yesterday,
	).Scan(&m.SleepHours, &m.WaterMl, &m.MeditationMinutes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return utils.DecayedScore(oldScore), nil
		}
		return 0, fmt.Errorf("failed to read yesterday's metrics: %w", err)
	}

	avg := utils.AveragePercent(
		utils.GoalAttainmentPercent(m.SleepHours, g.SleepHoursGoal),
		utils.GoalAttainmentPercent(m.WaterMl, g.WaterMlGoal),
		utils.GoalAttainmentPercent(m.MeditationMinutes, g.MeditationMinutesGoal),
	)

	return utils.NextWellnessScore(oldScore, avg), nil
}

func goalsByUserID(ctx context.Context, q querier, userID uuid.UUID) (*goal.GoalSet, error) {
	g := &goal.GoalSet{}
	err := q.QueryRow(ctx,
		`SELECT user_id, sleep_hours_goal, water_ml_goal, meditation_minutes_goal, updated_at FROM goals WHERE user_id = $1`,
		userID,
	).Scan(&g.UserID, &g.SleepHoursGoal, &g.WaterMlGoal, &g.MeditationMinutesGoal, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrGoalNotFound
		}
		return nil, fmt.Errorf("failed to get goals: %w", err)
	}
	return g, nil
}

// GetDailyMetric returns the record whose day bucket contains date, or nil
// when nothing was logged that day.
func (s *WellnessService) GetDailyMetric(ctx context.Context, clerkID string, date time.Time) (*metric.DailyMetric, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	bucket := utils.DayBucket(date.Unix())

	m := &metric.DailyMetric{}
	err = s.db.QueryRow(ctx,
		`SELECT user_id, day_bucket, sleep_hours, water_ml, meditation_minutes, recorded_at
		 FROM daily_metrics WHERE user_id = $1 AND day_bucket = $2`,
		userID, bucket,
	).Scan(&m.UserID, &m.DayBucket, &m.SleepHours, &m.WaterMl, &m.MeditationMinutes, &m.RecordedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get daily metric: %w", err)
	}

	return m, nil
}

func (s *WellnessService) GetUserStats(ctx context.Context, clerkID string, now time.Time) (*stats.UserStats, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	todayBucket := utils.DayBucket(now.Unix())
	weekStart, monthStart, yearStart := periodStarts(now)

	query := `
	SELECT
		EXISTS(SELECT 1 FROM daily_metrics WHERE user_id = $1 AND day_bucket = $2) as today_logged,
		(SELECT COUNT(*) FROM daily_metrics WHERE user_id = $1 AND day_bucket >= $3) as days_this_week,
		(SELECT COUNT(*) FROM daily_metrics WHERE user_id = $1 AND day_bucket >= $4) as days_this_month,
		(SELECT COUNT(*) FROM daily_metrics WHERE user_id = $1 AND day_bucket >= $5) as days_this_year,
		(SELECT COUNT(*) FROM daily_metrics WHERE user_id = $1) as total_days_logged,
		u.streak_days,
		u.wellness_score,
		(SELECT COUNT(*) FROM user_achievements WHERE user_id = $1) as achievements_count
	FROM users u
	WHERE u.id = $1
	`

	st := &stats.UserStats{}
	err = s.db.QueryRow(ctx, query, userID, todayBucket, weekStart, monthStart, yearStart).Scan(
		&st.TodayLogged,
		&st.DaysThisWeek,
		&st.DaysThisMonth,
		&st.DaysThisYear,
		&st.TotalDaysLogged,
		&st.CurrentStreak,
		&st.WellnessScore,
		&st.AchievementsCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}

	return st, nil
}

func (s *WellnessService) GetDaysLogged(ctx context.Context, clerkID string, period string, now time.Time) (*stats.DaysStat, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	weekStart, monthStart, yearStart := periodStarts(now)

	var since int64
	st := &stats.DaysStat{Period: period}
	switch period {
	case "week":
		since = weekStart
		st.TotalDays = 7
	case "month":
		since = monthStart
		st.TotalDays = daysInMonth(now)
	case "year":
		since = yearStart
		st.TotalDays = daysInYear(now)
	case "all_time":
		since = 0
	default:
		return nil, fmt.Errorf("unknown period: %s", period)
	}

	err = s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM daily_metrics WHERE user_id = $1 AND day_bucket >= $2`,
		userID, since,
	).Scan(&st.DaysLogged)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s stats: %w", period, err)
	}

	if period == "all_time" {
		st.TotalDays = st.DaysLogged
	}

	return st, nil
}

func (s *WellnessService) GetCalendar(ctx context.Context, clerkID string, year int, month int) (*calendar.CalendarResponse, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	startDate := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	endDate := startDate.AddDate(0, 1, -1)

	rows, err := s.db.Query(ctx,
		`SELECT day_bucket FROM daily_metrics WHERE user_id = $1 AND day_bucket >= $2 AND day_bucket <= $3 ORDER BY day_bucket`,
		userID, startDate.Unix(), endDate.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch calendar: %w", err)
	}
	defer rows.Close()

	logged := make(map[int64]bool)
	for rows.Next() {
		var bucket int64
		if err := rows.Scan(&bucket); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		logged[bucket] = true
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	todayBucket := utils.DayBucket(time.Now().Unix())

	var days []*calendar.CalendarDay
	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		bucket := utils.DayBucket(d.Unix())
		days = append(days, &calendar.CalendarDay{
			Date:    d,
			Logged:  logged[bucket],
			IsToday: bucket == todayBucket,
		})
	}

	return &calendar.CalendarResponse{
		Year:  year,
		Month: month,
		Days:  days,
	}, nil
}

func periodStarts(now time.Time) (week, month, year int64) {
	now = now.UTC()
	weekday := (int(now.Weekday()) + 6) % 7 // Monday = 0
	week = utils.DayBucket(now.Unix()) - int64(weekday)*utils.SecondsPerDay
	month = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).Unix()
	year = time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC).Unix()
	return week, month, year
}

func daysInMonth(now time.Time) int {
	return time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func daysInYear(now time.Time) int {
	if now.Year()%4 == 0 && (now.Year()%100 != 0 || now.Year()%400 == 0) {
		return 366
	}
	return 365
}
