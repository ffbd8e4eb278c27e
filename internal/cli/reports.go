package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/adorep/internal/core"
	"github.com/valter-silva-au/adorep/internal/render"
)

// reportContext is cancelled on interrupt so in-flight requests stop.
func reportContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt)
}

// newReports builds the report service, printing link resolution progress to
// the command's stderr.
func newReports(cmd *cobra.Command, what string) (core.ReportService, error) {
	if rt == nil || rt.NewReports == nil {
		return nil, fmt.Errorf("report service not initialized")
	}
	return rt.NewReports(render.Progress(cmd.ErrOrStderr(), what))
}

var missingChildrenCmd = &cobra.Command{
	Use:   "missing-children",
	Short: "List tagged parent features without a child in the child area",
	Long: `Query the parent project for features in the configured state and tag,
resolve the parent of every feature in the child area, and list the parents
that no child points to. Items are listed by id.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newReports(cmd, "Resolving child->parent links")
		if err != nil {
			return err
		}
		ctx, stop := reportContext(cmd)
		defer stop()

		report, err := svc.MissingChildren(ctx)
		if err != nil {
			return fmt.Errorf("building missing children report: %w", err)
		}
		return render.MissingChildren(cmd.OutOrStdout(), rt.Config.OrgURL(), report)
	},
}

var notifyFlag bool

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Weekly traffic-light report of the child area",
	Long: `Classify the child area's features by target date:

  RED      target date in the past
  YELLOW   target date in the next calendar week (Monday to Sunday)
  MISSING  no target date
  GREEN    everything else

and list features without a progress status, or amber features without
progress info. With --notify, alerts above the configured thresholds are
posted to the Slack webhook.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if notifyFlag && rt.Notifier == nil {
			return fmt.Errorf("--notify requires notifications.slack_webhook_url")
		}
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
		if err := render.Health(cmd.OutOrStdout(), rt.Config.OrgURL(), report); err != nil {
			return err
		}

		if !notifyFlag {
			return nil
		}
		alerts, err := rt.Alerts.Evaluate(report)
		if err != nil {
			return fmt.Errorf("evaluating alerts: %w", err)
		}
		if err := rt.Notifier.Notify(ctx, alerts); err != nil {
			return fmt.Errorf("sending notification: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Sent %d alert(s) to Slack\n", len(alerts))
		return nil
	},
}

var consistencyCmd = &cobra.Command{
	Use:   "consistency",
	Short: "Check in-progress children against their parents",
	Long: `For every in-progress feature in the child area, check that its parent is
in progress too and that the child's target date does not run past the
parent's implementation end date.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newReports(cmd, "Resolving child->parent links")
		if err != nil {
			return err
		}
		ctx, stop := reportContext(cmd)
		defer stop()

		report, err := svc.Consistency(ctx)
		if err != nil {
			return fmt.Errorf("building consistency report: %w", err)
		}
		return render.Consistency(cmd.OutOrStdout(), rt.Config.OrgURL(), report)
	},
}

var boardCoverageCmd = &cobra.Command{
	Use:   "board-coverage",
	Short: "List parents none of whose children is on the team board",
	Long: `Load the child team's board area rules, resolve the children of every
tagged parent feature, and list the parents where no child falls inside the
board's areas.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newReports(cmd, "Resolving parent->child links")
		if err != nil {
			return err
		}
		ctx, stop := reportContext(cmd)
		defer stop()

		report, err := svc.BoardCoverage(ctx)
		if err != nil {
			return fmt.Errorf("building board coverage report: %w", err)
		}
		return render.BoardCoverage(cmd.OutOrStdout(), rt.Config.OrgURL(), report)
	},
}

func init() {
	healthCmd.Flags().BoolVar(&notifyFlag, "notify", false, "post alerts to the configured Slack webhook")

	rootCmd.AddCommand(missingChildrenCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(consistencyCmd)
	rootCmd.AddCommand(boardCoverageCmd)
}
