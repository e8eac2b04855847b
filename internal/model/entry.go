package model

import "time"

// Entry represents a single tracked time entry.
type Entry struct {
	ID         int64      `json:"id"`
	UserID     string     `json:"user_id"`
	CategoryID int64      `json:"category_id"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    *time.Time `json:"end_time"`
	Notes      *string    `json:"notes"`
	Rounded    bool       `json:"rounded"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Running reports whether the entry's timer is still open.
func (e Entry) Running() bool {
	return e.EndTime == nil
}

// EntryFilter narrows ListEntries results. The zero value matches every entry.
type EntryFilter struct {
	// Completed keeps only entries with an end time.
	Completed bool
	// Rounded, when set, keeps only entries whose rounded flag equals *Rounded.
	Rounded *bool
	// Exclusive makes the upper bound of the start-time range strict.
	Exclusive bool
}

// EntryUpdate lists the fields of an entry to change. Nil fields are left alone.
type EntryUpdate struct {
	CategoryID *int64
	StartTime  *time.Time
	EndTime    *time.Time
	Rounded    *bool
	Notes      *string
}

// Category groups entries; summaries report time per category.
type Category struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	WorkdayCode *string   `json:"workday_code"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Settings holds the per-user knobs that drive rounding and goals.
type Settings struct {
	UserID            string `json:"user_id"`
	WeeklyGoalHours   int    `json:"weekly_goal_hours"`
	RoundingIncrement int    `json:"rounding_increment"`
}
