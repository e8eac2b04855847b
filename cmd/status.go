package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/time-keeper/internal/model"
	"github.com/Tiliavir/time-keeper/internal/timecalc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current timer status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	now := time.Now()
	user := currentUser()

	active, err := env.store.ActiveEntry(ctx, user)
	if err != nil {
		exitStorage(err)
	}

	if active != nil {
		name := fmt.Sprintf("#%d", active.CategoryID)
		if cats, err := env.store.ListCategories(ctx, user); err == nil {
			for _, c := range cats {
				if c.ID == active.CategoryID {
					name = c.Name
				}
			}
		}
		elapsed := int64(now.Sub(active.StartTime).Seconds())
		fmt.Println("Running:")
		fmt.Printf("  Category: %s\n", name)
		if active.Notes != nil {
			fmt.Printf("  Notes: %s\n", *active.Notes)
		}
		fmt.Printf("  Since: %s\n", active.StartTime.UTC().Format("15:04"))
		fmt.Printf("  Elapsed: %s\n", timecalc.FormatElapsed(elapsed))
		return nil
	}

	// Idle: show today's total.
	from, to := timecalc.DayRange(now)
	entries, err := env.store.ListEntries(ctx, user, from, to, model.EntryFilter{Completed: true})
	if err != nil {
		exitStorage(err)
	}
	total := 0
	for _, e := range entries {
		total += timecalc.Minutes(e.StartTime, *e.EndTime)
	}

	fmt.Println("No active timer.")
	fmt.Printf("Today: %s logged.\n", timecalc.FormatDuration(total))
	return nil
}
