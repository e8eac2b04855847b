// Package rounding turns one day's raw per-category minutes into rounded
// minutes, capped so the ISO week does not run past the weekly goal.
//
// Each category is rounded up to the next increment. When the rounded day
// would push the week over its goal, rounding bonus is stripped again,
// largest rounded category first, but raw tracked time is never removed.
package rounding

import (
	"sort"

	"github.com/Tiliavir/time-keeper/internal/model"
)

const (
	WeeklyGoalMinutes = 2400 // 40h
	DefaultIncrement  = 60
)

// Result is the outcome of Compute. Categories are in the caller's input order.
type Result struct {
	Categories      []model.CategoryRounded
	WeekWouldExceed bool
	Capped          bool
}

type options struct {
	weeklyGoal int
	increment  int
}

// Option adjusts the goal or increment used by Compute.
type Option func(*options)

// WithWeeklyGoal sets the weekly cap in minutes. Negative values are treated as 0.
func WithWeeklyGoal(minutes int) Option {
	return func(o *options) {
		o.weeklyGoal = max(0, minutes)
	}
}

// WithIncrement sets the rounding increment in minutes. Non-positive values keep the default.
func WithIncrement(minutes int) Option {
	return func(o *options) {
		if minutes > 0 {
			o.increment = minutes
		}
	}
}

// Compute rounds the day's categories given the minutes already booked
// earlier in the same week.
func Compute(categories []model.CategoryRaw, weekMinutesSoFar int, opts ...Option) Result {
	o := options{weeklyGoal: WeeklyGoalMinutes, increment: DefaultIncrement}
	for _, opt := range opts {
		opt(&o)
	}

	if allZero(categories) {
		out := make([]model.CategoryRounded, len(categories))
		for i, c := range categories {
			out[i] = model.CategoryRounded{CategoryID: c.CategoryID, RawMinutes: c.Minutes, RoundedMinutes: c.Minutes}
		}
		return Result{Categories: out}
	}

	rounded := make([]model.CategoryRounded, len(categories))
	dayTotal := 0
	for i, c := range categories {
		rounded[i] = model.CategoryRounded{
			CategoryID:     c.CategoryID,
			RawMinutes:     c.Minutes,
			RoundedMinutes: ceilTo(c.Minutes, o.increment),
		}
		dayTotal += rounded[i].RoundedMinutes
	}

	if weekMinutesSoFar+dayTotal <= o.weeklyGoal {
		return Result{Categories: rounded}
	}

	headroom := max(0, o.weeklyGoal-weekMinutesSoFar)
	excess := dayTotal - headroom

	// Walk indexes instead of copies so results stay in input order.
	order := make([]int, len(rounded))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return rounded[order[a]].RoundedMinutes > rounded[order[b]].RoundedMinutes
	})

	for _, i := range order {
		if excess <= 0 {
			break
		}
		reducible := rounded[i].RoundedMinutes - rounded[i].RawMinutes
		remove := min(excess, reducible)
		rounded[i].RoundedMinutes -= remove
		excess -= remove
	}

	return Result{Categories: rounded, WeekWouldExceed: true, Capped: true}
}

func allZero(categories []model.CategoryRaw) bool {
	for _, c := range categories {
		if c.Minutes != 0 {
			return false
		}
	}
	return true
}

// ceilTo rounds minutes up to the next multiple of increment; 0 stays 0.
func ceilTo(minutes, increment int) int {
	if minutes <= 0 {
		return minutes
	}
	return (minutes + increment - 1) / increment * increment
}
