package user

import "time"

type User struct {
	ID               string    `json:"id"`
	ClerkID          string    `json:"clerkId"`
	Email            string    `json:"email"`
	Username         string    `json:"username"`
	ImageURL         string    `json:"imageUrl,omitempty"`
	WellnessScore    int       `json:"wellnessScore"`
	StreakDays       int       `json:"streakDays"`
	LastLoggedBucket int64     `json:"lastLoggedBucket"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// WellnessProfile is the read-only projection returned by GET /user.
type WellnessProfile struct {
	Username      string    `json:"username"`
	JoinedAt      time.Time `json:"joinedAt"`
	WellnessScore int       `json:"wellnessScore"`
	StreakDays    int       `json:"streakDays"`
}
