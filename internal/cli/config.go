package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/valter-silva-au/adorep/internal/core"
	"github.com/valter-silva-au/adorep/pkg/models"
)

// configDoc is the on-disk layout of .adorep.yaml. Durations are written as
// strings ("30s") rather than nanosecond counts.
type configDoc struct {
	Organization   string                    `yaml:"organization"`
	BaseURL        string                    `yaml:"base_url"`
	APIVersion     string                    `yaml:"api_version"`
	RequestTimeout string                    `yaml:"request_timeout"`
	RequestDelay   string                    `yaml:"request_delay"`
	ProgressEvery  int                       `yaml:"progress_every"`
	Timezone       string                    `yaml:"timezone"`
	Parent         models.ParentConfig       `yaml:"parent"`
	Child          models.ChildConfig        `yaml:"child"`
	Progress       models.ProgressConfig     `yaml:"progress"`
	Ordering       models.OrderingConfig     `yaml:"ordering"`
	Credential     models.CredentialConfig   `yaml:"credential"`
	Alerts         models.AlertConfig        `yaml:"alerts"`
	Notifications  models.NotificationConfig `yaml:"notifications"`
}

func marshalConfig(cfg *models.ReportConfig) ([]byte, error) {
	return yaml.Marshal(configDoc{
		Organization:   cfg.Organization,
		BaseURL:        cfg.BaseURL,
		APIVersion:     cfg.APIVersion,
		RequestTimeout: cfg.RequestTimeout.String(),
		RequestDelay:   cfg.RequestDelay.String(),
		ProgressEvery:  cfg.ProgressEvery,
		Timezone:       cfg.Timezone,
		Parent:         cfg.Parent,
		Child:          cfg.Child,
		Progress:       cfg.Progress,
		Ordering:       cfg.Ordering,
		Credential:     cfg.Credential,
		Alerts:         cfg.Alerts,
		Notifications:  cfg.Notifications,
	})
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the adorep configuration",
}

var forceInit bool

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .adorep.yaml",
	Long: `Write the default configuration to .adorep.yaml in the base path, or to
the file given with --config. An existing file is kept unless --force is set.`,
	Args: cobra.NoArgs,
	// Must work while the existing configuration is broken.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFile
		if path == "" {
			path = filepath.Join(BasePath, core.ConfigFileName+".yaml")
		}

		if _, err := os.Stat(path); err == nil && !forceInit {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("checking %s: %w", path, err)
		}

		data, err := marshalConfig(core.DefaultReportConfig())
		if err != nil {
			return fmt.Errorf("encoding default config: %w", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return err
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration after defaults, .adorep.yaml, .env and ADOREP_*
environment variables have been applied. The token itself is never printed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := marshalConfig(rt.Config)
		if err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "overwrite an existing configuration file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
