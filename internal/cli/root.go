package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var (
	configFile string
	verbose    bool
	orgFlag    string
)

var rootCmd = &cobra.Command{
	Use:   "adorep",
	Short: "Azure DevOps work item hierarchy reports",
	Long: `adorep checks parent/child feature hierarchies across two Azure DevOps
projects and reports on them.

It lists portfolio features that lack a delivery child, classifies delivery
features by target date, flags children that run ahead of their parents, and
checks that every parent is visible on the delivery team's board.

Settings are read from .adorep.yaml, ADOREP_* environment variables, and a
.env file next to the configuration. The personal access token comes from
AZURE_DEVOPS_EXT_PAT or the configured secret file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if Wire == nil {
			return fmt.Errorf("application not initialized")
		}
		var err error
		rt, err = Wire(WireOptions{
			BasePath:   BasePath,
			ConfigFile: configFile,
			Verbose:    verbose,
			Org:        orgFlag,
		})
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if rt != nil && rt.Logger != nil {
			_ = rt.Logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	// Runs without configuration.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "adorep %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "configuration file (default: .adorep.yaml in the base path)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
	rootCmd.PersistentFlags().StringVar(&orgFlag, "org", "", "Azure DevOps organization, overrides the configuration")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
