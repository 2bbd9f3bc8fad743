package achievement

import (
	"time"

	"github.com/google/uuid"
)

type Category string

const (
	CategorySleep      Category = "sleep"
	CategoryHydration  Category = "hydration"
	CategoryMeditation Category = "meditation"
	CategoryStreak     Category = "streak"
)

// Achievement is an immutable catalog entry, defined out of band.
type Achievement struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Category    Category  `json:"category" db:"category"`
	Threshold   int       `json:"threshold" db:"threshold"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// UserAchievement is a write-once ledger entry. Once present it is never
// reissued or overwritten.
type UserAchievement struct {
	UserID          uuid.UUID `json:"user_id" db:"user_id"`
	AchievementID   uuid.UUID `json:"achievement_id" db:"achievement_id"`
	AchievementName string    `json:"achievement_name" db:"achievement_name"`
	EarnedAt        time.Time `json:"earned_at" db:"earned_at"`
}

type AchievementWithStatus struct {
	Achievement
	Earned   bool       `json:"earned"`
	EarnedAt *time.Time `json:"earned_at,omitempty"`
}
