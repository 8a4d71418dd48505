// Package mission owns mission eligibility and completion: the daily
// quota from the member's tier, the once-per-day rule and type-specific
// proof validation. models.go describes the missions and
// mission_completions tables.
package mission

import "time"

// Mission types with dedicated proof validation. Unknown types pass
// validation by default.
const (
	TypeAd     = "ad"
	TypeSocial = "social"
	TypeSurvey = "survey"
)

// Mission is an admin-managed earning task.
type Mission struct {
	ID           int64     `db:"id"`
	Title        string    `db:"title"`
	Description  string    `db:"description"`
	Instructions string    `db:"instructions"`
	Reward       int64     `db:"reward"` // KES
	Type         string    `db:"type"`
	ContentURL   string    `db:"content_url"`
	Duration     int       `db:"duration"` // seconds, ad missions
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Completion records one finished mission. The reward is snapshotted
// from the mission at completion time and never re-read, so later
// reward edits do not rewrite history.
type Completion struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	MissionID   int64     `db:"mission_id"`
	Reward      int64     `db:"reward"`
	Proof       string    `db:"proof"`
	CompletedAt time.Time `db:"completed_at"`
}

// Stats summarizes a user's completion history.
type Stats struct {
	Today         int   `db:"today"`
	ThisWeek      int   `db:"this_week"`
	ThisMonth     int   `db:"this_month"`
	TotalEarnings int64 `db:"total_earnings"`
}
