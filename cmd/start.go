package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/time-keeper/internal/timecalc"
)

var startNotes string

var startCmd = &cobra.Command{
	Use:   "start <category>",
	Short: "Start a new time entry",
	Long: `Start a timer for a category. The category is created on first use.
A timer that is already running is stopped first.`,
	Args: cobra.ExactArgs(1),
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringVar(&startNotes, "notes", "", "Optional notes")
}

func runStart(cmd *cobra.Command, args []string) error {
	category := strings.TrimSpace(args[0])
	if category == "" {
		return fmt.Errorf("category name must not be empty")
	}

	started, err := newTimer().Start(cmd.Context(), currentUser(), category, startNotes)
	if err != nil {
		exitStorage(err)
	}

	if started.Stopped != nil {
		fmt.Fprintf(os.Stderr, "Warning: auto-stopped running timer after %s\n",
			timecalc.FormatElapsed(int64(started.Stopped.Elapsed.Seconds())))
	}
	fmt.Printf("Started timer for category %q at %s\n",
		started.Category.Name, started.Entry.StartTime.Format("15:04:05"))
	return nil
}
