package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/adorep/internal/core"
)

var todayFlag string

var classifyCmd = &cobra.Command{
	Use:   "classify <target-date>",
	Short: "Classify a target date as GREEN, YELLOW, RED or MISSING",
	Long: `Classify a single target date the way the health report does. The next
calendar week runs from the coming Monday to the Sunday after it; on a Monday
the current week is skipped.`,
	Example: `  adorep classify 2025-06-18 --today 2025-06-10
  adorep classify 2025-06-18T00:00:00Z`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loc := rt.Config.Location()
		today := core.DateOf(time.Now(), loc)
		if todayFlag != "" {
			d, ok := core.ParseTargetDate(todayFlag, loc)
			if !ok {
				return fmt.Errorf("invalid --today %q: expected YYYY-MM-DD", todayFlag)
			}
			today = d
		}

		monday := core.NextMonday(today)
		c := core.ClassifyTargetDate(args[0], today, monday, loc)
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s (today %s, next week %s .. %s)\n",
			c, today.Format("2006-01-02"), monday.Format("2006-01-02"), core.WeekEnd(monday).Format("2006-01-02"))
		return err
	},
}

func init() {
	classifyCmd.Flags().StringVar(&todayFlag, "today", "", "reference date (YYYY-MM-DD), defaults to the current date")
	rootCmd.AddCommand(classifyCmd)
}
