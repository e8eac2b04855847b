package timecalc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for day keys ("2026-02-27").
const DateLayout = "2006-01-02"

var (
	// ErrInvalidWeek is returned by ParseWeek for anything that is not a valid "YYYY-Www" id.
	ErrInvalidWeek = errors.New("invalid ISO week")
	// ErrInvalidDate is returned by ParseDate for anything that is not a valid "YYYY-MM-DD" date.
	ErrInvalidDate = errors.New("invalid date")
)

// Week identifies an ISO-8601 week.
type Week struct {
	Year int
	Week int
}

// String returns a label like "2026-W09".
func (w Week) String() string {
	return fmt.Sprintf("%d-W%02d", w.Year, w.Week)
}

// WeekOf returns the ISO week containing the UTC date of t.
// The date is shifted to the Thursday of its week; the week number is the
// count of 7-day blocks from January 1st of that Thursday's year.
func WeekOf(t time.Time) Week {
	d := StartOfDay(t)
	d = d.AddDate(0, 0, 4-isoWeekday(d))
	return Week{Year: d.Year(), Week: (d.YearDay() + 6) / 7}
}

// ParseWeek parses a "YYYY-Www" label. Week 53 is only accepted for years that have one.
func ParseWeek(s string) (Week, error) {
	yearStr, weekStr, ok := strings.Cut(strings.TrimSpace(s), "-W")
	if !ok || len(yearStr) != 4 || len(weekStr) != 2 {
		return Week{}, fmt.Errorf("%w: %q", ErrInvalidWeek, s)
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return Week{}, fmt.Errorf("%w: %q", ErrInvalidWeek, s)
	}
	week, err := strconv.Atoi(weekStr)
	if err != nil || week < 1 || week > 53 {
		return Week{}, fmt.Errorf("%w: %q", ErrInvalidWeek, s)
	}
	w := Week{Year: year, Week: week}
	if start, _ := w.Bounds(); WeekOf(start) != w {
		return Week{}, fmt.Errorf("%w: %d has no week %d", ErrInvalidWeek, year, week)
	}
	return w, nil
}

// Bounds returns Monday 00:00 UTC and Sunday 00:00 UTC of the week.
// January 4th always falls in week 1.
func (w Week) Bounds() (time.Time, time.Time) {
	jan4 := time.Date(w.Year, time.January, 4, 0, 0, 0, 0, time.UTC)
	monday := jan4.AddDate(0, 0, 1-isoWeekday(jan4)+(w.Week-1)*7)
	return monday, monday.AddDate(0, 0, 6)
}

// Range returns the inclusive instant range of the week, Monday 00:00:00.000
// to Sunday 23:59:59.999 UTC.
func (w Week) Range() (time.Time, time.Time) {
	monday, sunday := w.Bounds()
	return monday, EndOfDay(sunday)
}

// Days returns the seven dates of the week, Monday first.
func (w Week) Days() []time.Time {
	monday, _ := w.Bounds()
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = monday.AddDate(0, 0, i)
	}
	return days
}

// WeekRange returns the Monday and the end of Sunday of the ISO week containing t.
func WeekRange(t time.Time) (time.Time, time.Time) {
	return WeekOf(t).Range()
}

// ISOWeekLabel returns a label like "2026-W09".
func ISOWeekLabel(t time.Time) string {
	return WeekOf(t).String()
}

func isoWeekday(t time.Time) int {
	// Go's weekday: Sunday=0, Monday=1, …, Saturday=6
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7 // treat Sunday as 7 (ISO)
	}
	return wd
}

// FormatDuration formats minutes as "1h 40m", "2h" or "45m". Non-positive values format as "0m".
func FormatDuration(minutes int) string {
	if minutes <= 0 {
		return "0m"
	}
	h := minutes / 60
	m := minutes % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

// FormatElapsed formats seconds as H:MM:SS.
func FormatElapsed(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

// Minutes returns the whole minutes between start and end, floored.
func Minutes(start, end time.Time) int {
	ms := end.Sub(start).Milliseconds()
	q := ms / 60000
	if ms%60000 != 0 && ms < 0 {
		q--
	}
	return int(q)
}

// StartOfDay returns 00:00:00 UTC of t's UTC date.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns 23:59:59.999 UTC of t's UTC date.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).Add(24*time.Hour - time.Millisecond)
}

// Midnight returns the start of the next UTC day.
func Midnight(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1)
}

// DayRange returns the inclusive instant range of t's UTC date.
func DayRange(t time.Time) (time.Time, time.Time) {
	return StartOfDay(t), EndOfDay(t)
}

// SameDay reports whether two times fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// DateString formats the UTC date of t as YYYY-MM-DD.
func DateString(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD date as 00:00 UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}
