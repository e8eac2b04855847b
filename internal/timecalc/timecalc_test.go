package timecalc_test

import (
	"errors"
	"testing"
	"time"

	"github.com/Tiliavir/time-keeper/internal/timecalc"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{-5, "0m"},
		{0, "0m"},
		{45, "45m"},
		{60, "1h"},
		{90, "1h 30m"},
		{120, "2h"},
		{2400, "40h"},
		{61, "1h 1m"},
	}
	for _, tt := range tests {
		got := timecalc.FormatDuration(tt.minutes)
		if got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "0:00:00"},
		{61, "0:01:01"},
		{3661, "1:01:01"},
		{36000, "10:00:00"},
	}
	for _, tt := range tests {
		got := timecalc.FormatElapsed(tt.seconds)
		if got != tt.want {
			t.Errorf("FormatElapsed(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestMinutesFloors(t *testing.T) {
	start := time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		end  time.Time
		want int
	}{
		{start, 0},
		{start.Add(59 * time.Second), 0},
		{start.Add(time.Minute), 1},
		{start.Add(90*time.Minute + 59*time.Second + 999*time.Millisecond), 90},
		{start.Add(-time.Millisecond), -1},
	}
	for _, tt := range tests {
		if got := timecalc.Minutes(start, tt.end); got != tt.want {
			t.Errorf("Minutes(%v) = %d, want %d", tt.end.Sub(start), got, tt.want)
		}
	}
}

func TestWeekRange(t *testing.T) {
	// 2026-02-27 is a Friday (week 9).
	fri := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
	monday, sunday := timecalc.WeekRange(fri)

	wantMonday := time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)
	wantSunday := time.Date(2026, 3, 1, 23, 59, 59, 999_000_000, time.UTC)

	if !monday.Equal(wantMonday) {
		t.Errorf("WeekRange monday = %v, want %v", monday, wantMonday)
	}
	if !sunday.Equal(wantSunday) {
		t.Errorf("WeekRange sunday = %v, want %v", sunday, wantSunday)
	}
}

func TestISOWeekLabel(t *testing.T) {
	fri := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
	got := timecalc.ISOWeekLabel(fri)
	if got != "2026-W09" {
		t.Errorf("ISOWeekLabel = %q, want %q", got, "2026-W09")
	}
}

func TestWeekOfYearBoundaries(t *testing.T) {
	tests := []struct {
		date time.Time
		want string
	}{
		{time.Date(2021, 1, 3, 0, 0, 0, 0, time.UTC), "2020-W53"},
		{time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC), "2021-W01"},
		{time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC), "2025-W01"},
		{time.Date(2026, 1, 1, 23, 59, 0, 0, time.UTC), "2026-W01"},
		{time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), "2026-W53"},
		{time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC), "2026-W07"},
	}
	for _, tt := range tests {
		if got := timecalc.WeekOf(tt.date).String(); got != tt.want {
			t.Errorf("WeekOf(%s) = %q, want %q", tt.date.Format(time.DateOnly), got, tt.want)
		}
	}
}

func TestWeekOfMatchesStdlib(t *testing.T) {
	d := time.Date(2018, 12, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3000; i++ {
		year, week := d.ISOWeek()
		got := timecalc.WeekOf(d)
		if got.Year != year || got.Week != week {
			t.Fatalf("WeekOf(%s) = %v, want %d-W%02d", d.Format(time.DateOnly), got, year, week)
		}
		d = d.AddDate(0, 0, 1)
	}
}

func TestWeekBoundsRoundTrip(t *testing.T) {
	for year := 2015; year <= 2035; year++ {
		for week := 1; week <= 53; week++ {
			label := timecalc.Week{Year: year, Week: week}.String()
			w, err := timecalc.ParseWeek(label)
			if err != nil {
				if week == 53 {
					continue
				}
				t.Fatalf("ParseWeek(%q): %v", label, err)
			}
			start, end := w.Bounds()
			if start.Weekday() != time.Monday {
				t.Errorf("%s start weekday = %s", label, start.Weekday())
			}
			if end.Weekday() != time.Sunday || end.Sub(start) != 6*24*time.Hour {
				t.Errorf("%s end = %v", label, end)
			}
			if got := timecalc.WeekOf(start); got != w {
				t.Errorf("WeekOf(Bounds(%s).start) = %s", label, got)
			}
		}
	}
}

func TestParseWeek(t *testing.T) {
	w, err := timecalc.ParseWeek("2026-W07")
	if err != nil {
		t.Fatalf("ParseWeek: %v", err)
	}
	start, end := w.Bounds()
	if got := timecalc.DateString(start); got != "2026-02-09" {
		t.Errorf("start = %s, want 2026-02-09", got)
	}
	if got := timecalc.DateString(end); got != "2026-02-15" {
		t.Errorf("end = %s, want 2026-02-15", got)
	}

	for _, bad := range []string{"", "2026", "2026-W00", "2026-W54", "2025-W53", "26-W07", "2026-07", "2026-Wab"} {
		if _, err := timecalc.ParseWeek(bad); !errors.Is(err, timecalc.ErrInvalidWeek) {
			t.Errorf("ParseWeek(%q) error = %v, want ErrInvalidWeek", bad, err)
		}
	}
}

func TestWeekDays(t *testing.T) {
	days := timecalc.Week{Year: 2026, Week: 9}.Days()
	if len(days) != 7 {
		t.Fatalf("Days() = %d, want 7", len(days))
	}
	if got := timecalc.DateString(days[0]); got != "2026-02-23" {
		t.Errorf("first day = %s", got)
	}
	if got := timecalc.DateString(days[6]); got != "2026-03-01" {
		t.Errorf("last day = %s", got)
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
	b := time.Date(2026, 2, 27, 23, 59, 59, 0, time.UTC)
	c := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)

	if !timecalc.SameDay(a, b) {
		t.Error("SameDay: expected same day for a and b")
	}
	if timecalc.SameDay(a, c) {
		t.Error("SameDay: expected different day for a and c")
	}
}

func TestParseDate(t *testing.T) {
	d, err := timecalc.ParseDate("2026-02-27")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if !d.Equal(time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("ParseDate = %v", d)
	}
	if _, err := timecalc.ParseDate("27.02.2026"); !errors.Is(err, timecalc.ErrInvalidDate) {
		t.Errorf("ParseDate bad input error = %v", err)
	}
}

func TestMidnight(t *testing.T) {
	got := timecalc.Midnight(time.Date(2026, 2, 27, 22, 15, 0, 0, time.UTC))
	want := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Midnight = %v, want %v", got, want)
	}
}
