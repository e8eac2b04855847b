package model

import "time"

// CategoryRaw is the tracked minutes of one category on one day.
type CategoryRaw struct {
	CategoryID int64 `json:"category_id"`
	Minutes    int   `json:"minutes"`
}

// CategoryRounded is the rounding target of one category on one day.
// RoundedMinutes is never below RawMinutes.
type CategoryRounded struct {
	CategoryID     int64 `json:"category_id"`
	RawMinutes     int   `json:"raw_minutes"`
	RoundedMinutes int   `json:"rounded_minutes"`
}

type CategorySummary struct {
	CategoryID   int64   `json:"category_id"`
	Name         string  `json:"name"`
	Color        string  `json:"color"`
	WorkdayCode  *string `json:"workday_code"`
	Minutes      int     `json:"minutes"`
	RoundedHours float64 `json:"rounded_hours"`
}

type DaySummary struct {
	Date         string            `json:"date"`
	TotalMinutes int               `json:"total_minutes"`
	GoalMinutes  int               `json:"goal_minutes"`
	Categories   []CategorySummary `json:"categories"`
}

type WeeklySummary struct {
	Week         string       `json:"week"`
	TotalMinutes int          `json:"total_minutes"`
	GoalMinutes  int          `json:"goal_minutes"`
	Days         []DaySummary `json:"days"`
}

// AdjustedEntry records the own duration of an entry before and after its end time was shifted.
type AdjustedEntry struct {
	EntryID    int64 `json:"entry_id"`
	OldMinutes int   `json:"old_minutes"`
	NewMinutes int   `json:"new_minutes"`
}

type RoundingResult struct {
	Date            string          `json:"date"`
	RoundingApplied bool            `json:"rounding_applied"`
	WeekWouldExceed bool            `json:"week_would_exceed"`
	AdjustedEntries []AdjustedEntry `json:"adjusted_entries"`
}

// RoundingRun is the audit row written for every rounding pass that consumed entries.
type RoundingRun struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Date            string    `json:"date"`
	Applied         bool      `json:"applied"`
	WeekWouldExceed bool      `json:"week_would_exceed"`
	Adjusted        int       `json:"adjusted"`
	CreatedAt       time.Time `json:"created_at"`
}
