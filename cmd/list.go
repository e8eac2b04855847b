package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/time-keeper/internal/model"
	"github.com/Tiliavir/time-keeper/internal/timecalc"
)

var (
	listToday bool
	listWeek  bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List time entries",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listToday, "today", false, "Show today's entries")
	listCmd.Flags().BoolVar(&listWeek, "week", false, "Show this week's entries")
}

func runList(cmd *cobra.Command, args []string) error {
	now := time.Now()

	var from, to time.Time
	switch {
	case listWeek:
		from, to = timecalc.WeekRange(now)
	default:
		// Default to today (covers --today and the bare command).
		from, to = timecalc.DayRange(now)
	}

	entries, names, err := loadEntries(cmd.Context(), from, to)
	if err != nil {
		exitStorage(err)
	}
	if listWeek {
		fmt.Printf("Week %s\n", timecalc.ISOWeekLabel(now))
	}
	printList(os.Stdout, entries, names, now)
	return nil
}

// loadEntries returns the current user's entries starting in [from, to] and
// their category names by id.
func loadEntries(ctx context.Context, from, to time.Time) ([]model.Entry, map[int64]string, error) {
	user := currentUser()
	entries, err := env.store.ListEntries(ctx, user, from, to, model.EntryFilter{})
	if err != nil {
		return nil, nil, err
	}
	categories, err := env.store.ListCategories(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return entries, names, nil
}

// printList groups entries by date and prints them. Running entries show
// their elapsed time up to now.
func printList(w io.Writer, entries []model.Entry, names map[int64]string, now time.Time) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No entries found.")
		return
	}

	var currentDay string
	for _, e := range entries {
		day := timecalc.DateString(e.StartTime)
		if day != currentDay {
			fmt.Fprintln(w, day)
			currentDay = day
		}

		end := now
		endStr := "ongoing"
		if e.EndTime != nil {
			end = *e.EndTime
			endStr = end.UTC().Format("15:04")
		}

		flags := ""
		if e.Rounded {
			flags = " [rounded]"
		}
		notes := ""
		if e.Notes != nil && *e.Notes != "" {
			notes = "  " + *e.Notes
		}

		fmt.Fprintf(w, "%s–%s  %s (%s)%s%s\n",
			e.StartTime.UTC().Format("15:04"), endStr, names[e.CategoryID],
			timecalc.FormatDuration(timecalc.Minutes(e.StartTime, end)), flags, notes)
	}
}
