package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/time-keeper/internal/model"
	"github.com/Tiliavir/time-keeper/internal/storage"
)

var (
	categoryColor       string
	categoryWorkdayCode string
)

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage categories",
}

var categoryAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoryAdd,
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories",
	Args:  cobra.NoArgs,
	RunE:  runCategoryList,
}

func init() {
	categoryAddCmd.Flags().StringVar(&categoryColor, "color", storage.DefaultColor, "Display color")
	categoryAddCmd.Flags().StringVar(&categoryWorkdayCode, "workday-code", "", "Code used when booking this category elsewhere")
	categoryCmd.AddCommand(categoryAddCmd)
	categoryCmd.AddCommand(categoryListCmd)
}

func runCategoryAdd(cmd *cobra.Command, args []string) error {
	c := model.Category{UserID: currentUser(), Name: args[0], Color: categoryColor}
	if categoryWorkdayCode != "" {
		c.WorkdayCode = &categoryWorkdayCode
	}

	err := env.store.CreateCategory(cmd.Context(), &c)
	if errors.Is(err, storage.ErrCategoryExists) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err != nil {
		exitStorage(err)
	}
	fmt.Printf("Created category %q.\n", c.Name)
	return nil
}

func runCategoryList(cmd *cobra.Command, args []string) error {
	cats, err := env.store.ListCategories(cmd.Context(), currentUser())
	if err != nil {
		exitStorage(err)
	}
	if len(cats) == 0 {
		fmt.Println("No categories yet. They are created by \"tk start <category>\".")
		return nil
	}
	for _, c := range cats {
		code := ""
		if c.WorkdayCode != nil {
			code = "  " + *c.WorkdayCode
		}
		fmt.Printf("%-20s%s%s\n", c.Name, c.Color, code)
	}
	return nil
}
