package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/time-keeper/internal/storage"
)

var (
	settingsGoal      int
	settingsIncrement int
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the weekly goal and rounding increment",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsSet,
}

func init() {
	settingsSetCmd.Flags().IntVar(&settingsGoal, "weekly-goal-hours", storage.DefaultWeeklyGoalHours, "Weekly goal in hours (0-40)")
	settingsSetCmd.Flags().IntVar(&settingsIncrement, "rounding-increment", storage.DefaultRoundingIncrement, "Rounding increment in minutes (30 or 60)")
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	s, err := env.store.GetSettings(cmd.Context(), currentUser())
	if err != nil {
		exitStorage(err)
	}
	fmt.Printf("User:               %s\n", s.UserID)
	fmt.Printf("Weekly goal:        %dh\n", s.WeeklyGoalHours)
	fmt.Printf("Rounding increment: %dm\n", s.RoundingIncrement)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := env.store.GetSettings(ctx, currentUser())
	if err != nil {
		exitStorage(err)
	}
	if cmd.Flags().Changed("weekly-goal-hours") {
		s.WeeklyGoalHours = settingsGoal
	}
	if cmd.Flags().Changed("rounding-increment") {
		s.RoundingIncrement = settingsIncrement
	}

	err = env.store.SaveSettings(ctx, s)
	if errors.Is(err, storage.ErrInvalidSettings) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err != nil {
		exitStorage(err)
	}
	return runSettingsShow(cmd, args)
}
