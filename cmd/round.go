package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/time-keeper/internal/model"
	"github.com/Tiliavir/time-keeper/internal/timecalc"
)

var (
	roundDate    string
	roundJSON    bool
	historyLimit int
)

var roundCmd = &cobra.Command{
	Use:   "round",
	Short: "Round a day's completed entries",
	Long: `Round the completed entries of a UTC day up to whole increments per
category, capped by the weekly goal. Already rounded entries are left alone,
so running it twice for the same day changes nothing.`,
	Args: cobra.NoArgs,
	RunE: runRound,
}

var roundHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent rounding runs",
	Args:  cobra.NoArgs,
	RunE:  runRoundHistory,
}

func init() {
	roundCmd.Flags().StringVar(&roundDate, "date", "", "Day to round as YYYY-MM-DD (default: today, UTC)")
	roundCmd.Flags().BoolVar(&roundJSON, "json", false, "Print the result as JSON")
	roundHistoryCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of runs to show")
	roundCmd.AddCommand(roundHistoryCmd)
}

func runRound(cmd *cobra.Command, args []string) error {
	date := time.Now()
	if roundDate != "" {
		d, err := timecalc.ParseDate(roundDate)
		if err != nil {
			return err
		}
		date = d
	}

	res, err := newService().ApplyRounding(cmd.Context(), currentUser(), date)
	if err != nil {
		exitStorage(err)
	}

	if roundJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	printRounding(os.Stdout, res)
	return nil
}

func printRounding(w io.Writer, res model.RoundingResult) {
	if !res.RoundingApplied {
		fmt.Fprintf(w, "%s: nothing to adjust.\n", res.Date)
	} else {
		fmt.Fprintf(w, "%s: adjusted %d entries.\n", res.Date, len(res.AdjustedEntries))
		for _, a := range res.AdjustedEntries {
			fmt.Fprintf(w, "  #%d  %s -> %s\n", a.EntryID, timecalc.FormatDuration(a.OldMinutes), timecalc.FormatDuration(a.NewMinutes))
		}
	}
	if res.WeekWouldExceed {
		fmt.Fprintln(w, "Weekly goal reached: rounding was capped.")
	}
}

func runRoundHistory(cmd *cobra.Command, args []string) error {
	runs, err := env.store.ListRoundingRuns(cmd.Context(), currentUser(), historyLimit)
	if err != nil {
		exitStorage(err)
	}
	if len(runs) == 0 {
		fmt.Println("No rounding runs yet.")
		return nil
	}
	for _, r := range runs {
		capped := ""
		if r.WeekWouldExceed {
			capped = "  capped"
		}
		fmt.Printf("%s  %s  adjusted %d%s  (%s)\n",
			r.CreatedAt.UTC().Format("2006-01-02 15:04"), r.Date, r.Adjusted, capped, r.ID)
	}
	return nil
}
