package metric

type RecordMetricRequest struct {
	Kind  string `json:"kind"`
	Value int    `json:"value"`
	// Optional unix seconds; defaults to the server clock.
	Timestamp *int64 `json:"timestamp,omitempty"`
}

type RecordMetricResponse struct {
	DayBucket     int64 `json:"day_bucket"`
	WellnessScore int   `json:"wellness_score"`
	GoalMet       bool  `json:"goal_met"`
	StreakDays    int   `json:"streak_days"`
}
