package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Tiliavir/time-keeper/internal/model"
)

func testSummary() model.WeeklySummary {
	code := "DEV-1"
	sum := model.WeeklySummary{Week: "2026-W10", TotalMinutes: 150, GoalMinutes: 2400}
	dates := []string{"2026-03-02", "2026-03-03", "2026-03-04", "2026-03-05", "2026-03-06", "2026-03-07", "2026-03-08"}
	for _, d := range dates {
		sum.Days = append(sum.Days, model.DaySummary{Date: d, GoalMinutes: 480, Categories: []model.CategorySummary{}})
	}
	sum.Days[1].TotalMinutes = 150
	sum.Days[1].Categories = []model.CategorySummary{
		{CategoryID: 1, Name: "Development", WorkdayCode: &code, Minutes: 105, RoundedHours: 1.8},
		{CategoryID: 2, Name: "Meetings", Minutes: 45, RoundedHours: 0.8},
	}
	return sum
}

func TestWriteReport(t *testing.T) {
	tests := []struct {
		format string
		want   []string
	}{
		{"md", []string{"Week 2026-W10", "2026-03-03          2h 30m / 8h", "  Development       1h 45m", "Total               2h 30m / 40h"}},
		{"csv", []string{"date,category,workday_code,minutes,rounded_hours", "2026-03-03,Development,DEV-1,105,1.8", "2026-03-03,Meetings,,45,0.8"}},
		{"json", []string{`"week": "2026-W10"`, `"rounded_hours": 1.8`, `"categories": []`}},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := writeReport(&buf, testSummary(), tt.format); err != nil {
				t.Fatal(err)
			}
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("output missing %q:\n%s", w, buf.String())
				}
			}
		})
	}

	if err := writeReport(&bytes.Buffer{}, testSummary(), "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestWeekFlag(t *testing.T) {
	w, err := weekFlag("2026-W10")
	if err != nil || w.String() != "2026-W10" {
		t.Errorf("weekFlag = %v, %v", w, err)
	}
	if _, err := weekFlag("2026-10"); err == nil {
		t.Error("expected error for malformed week")
	}
}

func TestPrintRounding(t *testing.T) {
	var buf bytes.Buffer
	printRounding(&buf, model.RoundingResult{
		Date:            "2026-03-03",
		RoundingApplied: true,
		WeekWouldExceed: true,
		AdjustedEntries: []model.AdjustedEntry{{EntryID: 4, OldMinutes: 25, NewMinutes: 60}},
	})
	want := "2026-03-03: adjusted 1 entries.\n  #4  25m -> 1h\nWeekly goal reached: rounding was capped.\n"
	if buf.String() != want {
		t.Errorf("printRounding = %q, want %q", buf.String(), want)
	}
}
