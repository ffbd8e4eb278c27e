package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Show health alerts above the configured thresholds",
	Long: `Build the health report and evaluate the alert thresholds from the
alerts section of the configuration:

  max_red                  RED features in the in-progress state (high)
  max_missing_target_date  features without a target date (medium)
  max_data_quality         progress status and info gaps (low)`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newReports(cmd, "Fetching health data")
		if err != nil {
			return err
		}
		ctx, stop := reportContext(cmd)
		defer stop()

		report, err := svc.Health(ctx)
		if err != nil {
			return fmt.Errorf("building health report: %w", err)
		}
		alerts, err := rt.Alerts.Evaluate(report)
		if err != nil {
			return fmt.Errorf("evaluating alerts: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(alerts) == 0 {
			_, err := fmt.Fprintln(out, "No active alerts.")
			return err
		}

		fmt.Fprintf(out, "%d active alert(s):\n\n", len(alerts))
		for _, alert := range alerts {
			severity := strings.ToUpper(string(alert.Severity))
			fmt.Fprintf(out, "  [%s] %s\n", severity, alert.Message)
			if _, err := fmt.Fprintf(out, "         triggered at %s\n\n", alert.TriggeredAt.Format("2006-01-02 15:04 MST")); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(alertsCmd)
}
