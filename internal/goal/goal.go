package goal

import (
	"time"

	"github.com/google/uuid"
)

// GoalSet holds one user's daily targets. A zero goal disables that
// metric's contribution to the wellness score.
type GoalSet struct {
	UserID                uuid.UUID `json:"user_id" db:"user_id"`
	SleepHoursGoal        int       `json:"sleep_hours_goal" db:"sleep_hours_goal"`
	WaterMlGoal           int       `json:"water_ml_goal" db:"water_ml_goal"`
	MeditationMinutesGoal int       `json:"meditation_minutes_goal" db:"meditation_minutes_goal"`
	UpdatedAt             time.Time `json:"updated_at" db:"updated_at"`
}

type SetGoalsRequest struct {
	SleepHoursGoal        int `json:"sleepHoursGoal"`
	WaterMlGoal           int `json:"waterMlGoal"`
	MeditationMinutesGoal int `json:"meditationMinutesGoal"`
}
