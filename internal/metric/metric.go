package metric

import (
	"time"

	"github.com/google/uuid"
)

// Kind identifies one of the tracked daily metrics.
type Kind string

const (
	KindSleepHours        Kind = "sleep_hours"
	KindWaterMl           Kind = "water_ml"
	KindMeditationMinutes Kind = "meditation_minutes"
)

// MaxValues caps each metric at a physically plausible daily amount.
var MaxValues = map[Kind]int{
	KindSleepHours:        24,
	KindWaterMl:           10000,
	KindMeditationMinutes: 1440,
}

func IsValidKind(kind Kind) bool {
	_, ok := MaxValues[kind]
	return ok
}

// Validate reports whether value is an acceptable daily amount for kind.
func Validate(kind Kind, value int) bool {
	max, ok := MaxValues[kind]
	if !ok {
		return false
	}
	return value >= 0 && value <= max
}

// DailyMetric is one user's record for one day bucket.
type DailyMetric struct {
	UserID            uuid.UUID `json:"user_id" db:"user_id"`
	DayBucket         int64     `json:"day_bucket" db:"day_bucket"`
	SleepHours        int       `json:"sleep_hours" db:"sleep_hours"`
	WaterMl           int       `json:"water_ml" db:"water_ml"`
	MeditationMinutes int       `json:"meditation_minutes" db:"meditation_minutes"`
	RecordedAt        time.Time `json:"recorded_at" db:"recorded_at"`
}

// Value returns the stored amount for kind, 0 for an unknown kind.
func (m *DailyMetric) Value(kind Kind) int {
	switch kind {
	case KindSleepHours:
		return m.SleepHours
	case KindWaterMl:
		return m.WaterMl
	case KindMeditationMinutes:
		return m.MeditationMinutes
	}
	return 0
}
