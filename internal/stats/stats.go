package stats

type DaysStat struct {
	Period     string `json:"period"` // "week", "month", "year", "all_time"
	DaysLogged int    `json:"days_logged" db:"days_logged"`
	TotalDays  int    `json:"total_days"`
}

type UserStats struct {
	TodayLogged       bool `json:"today_logged"`
	DaysThisWeek      int  `json:"days_this_week"`
	DaysThisMonth     int  `json:"days_this_month"`
	DaysThisYear      int  `json:"days_this_year"`
	TotalDaysLogged   int  `json:"total_days_logged"`
	CurrentStreak     int  `json:"current_streak"`
	WellnessScore     int  `json:"wellness_score"`
	AchievementsCount int  `json:"achievements_count"`
}
