// Package core contains the report logic of adorep: configuration, credential
// lookup, hierarchy resolution, area and tag scoping, target date
// classification, and the report generators built on top of them.
package core

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/valter-silva-au/adorep/pkg/models"
)

// ConfigFileName is the base name of the configuration file, without extension.
const ConfigFileName = ".adorep"

// ConfigurationManager loads and validates the report configuration.
type ConfigurationManager interface {
	LoadConfig() (*models.ReportConfig, error)
	ValidateConfig(cfg *models.ReportConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading YAML configuration files and ADOREP_* environment overrides.
type viperConfigManager struct {
	// basePath is the directory searched for .adorep.yaml and .env.
	basePath string
	// configFile, when set, is read instead of searching basePath.
	configFile string
}

// NewConfigurationManager creates a ConfigurationManager that reads
// .adorep.yaml from basePath, or configFile when it is non-empty.
func NewConfigurationManager(basePath, configFile string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath, configFile: configFile}
}

// DefaultReportConfig returns the configuration the reports were written for.
func DefaultReportConfig() *models.ReportConfig {
	return &models.ReportConfig{
		Organization:   "eon-seed",
		BaseURL:        "https://dev.azure.com",
		APIVersion:     "7.1",
		RequestTimeout: 30 * time.Second,
		RequestDelay:   10 * time.Millisecond,
		ProgressEvery:  200,
		Timezone:       "Local",
		Parent: models.ParentConfig{
			Project:         "EEM Portfolio",
			WorkItemType:    "Feature",
			State:           "Ready For Delivery",
			InProgressState: "In Progress",
			Tag:             "MEET",
			EndDateField:    "Custom.ImplementationEndDate",
		},
		Child: models.ChildConfig{
			Project:         "AGI",
			WorkItemType:    "Feature",
			AreaPath:        `AGI\MEET`,
			Team:            "MEET",
			States:          []string{"New", "In Progress"},
			InProgressState: "In Progress",
			InitialState:    "New",
			TargetDateField: "Microsoft.VSTS.Scheduling.TargetDate",
			StartDateField:  "Microsoft.VSTS.Scheduling.StartDate",
			CoverageScope:   string(CoverageBoard),
		},
		Progress: models.ProgressConfig{
			StatusField: "Custom.ProgressStatus",
			InfoField:   "Custom.ProgressInfo",
			AmberValue:  "2-Amber",
		},
		Ordering: models.OrderingConfig{
			MissingChildren: string(IDAscending),
			Health:          string(SourceOrder),
			Consistency:     string(SourceOrder),
			BoardCoverage:   string(IDAscending),
		},
		Credential: models.CredentialConfig{
			EnvVar:     "AZURE_DEVOPS_EXT_PAT",
			SecretFile: "~/.clawdbot/secrets/azure_devops_pat",
		},
	}
}

// LoadConfig reads .env, then the YAML file, then ADOREP_* environment
// variables. A missing config file is not an error; defaults apply.
func (cm *viperConfigManager) LoadConfig() (*models.ReportConfig, error) {
	// .env is optional.
	_ = godotenv.Load(filepath.Join(cm.basePath, ".env"))

	def := DefaultReportConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	if cm.configFile != "" {
		v.SetConfigFile(cm.configFile)
	} else {
		v.SetConfigName(ConfigFileName)
		v.AddConfigPath(cm.basePath)
	}
	v.SetEnvPrefix("ADOREP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("organization", def.Organization)
	v.SetDefault("base_url", def.BaseURL)
	v.SetDefault("api_version", def.APIVersion)
	v.SetDefault("request_timeout", def.RequestTimeout)
	v.SetDefault("request_delay", def.RequestDelay)
	v.SetDefault("progress_every", def.ProgressEvery)
	v.SetDefault("timezone", def.Timezone)
	v.SetDefault("parent.project", def.Parent.Project)
	v.SetDefault("parent.work_item_type", def.Parent.WorkItemType)
	v.SetDefault("parent.state", def.Parent.State)
	v.SetDefault("parent.in_progress_state", def.Parent.InProgressState)
	v.SetDefault("parent.tag", def.Parent.Tag)
	v.SetDefault("parent.end_date_field", def.Parent.EndDateField)
	v.SetDefault("child.project", def.Child.Project)
	v.SetDefault("child.work_item_type", def.Child.WorkItemType)
	v.SetDefault("child.area_path", def.Child.AreaPath)
	v.SetDefault("child.team", def.Child.Team)
	v.SetDefault("child.states", def.Child.States)
	v.SetDefault("child.in_progress_state", def.Child.InProgressState)
	v.SetDefault("child.initial_state", def.Child.InitialState)
	v.SetDefault("child.target_date_field", def.Child.TargetDateField)
	v.SetDefault("child.start_date_field", def.Child.StartDateField)
	v.SetDefault("child.coverage_scope", def.Child.CoverageScope)
	v.SetDefault("progress.status_field", def.Progress.StatusField)
	v.SetDefault("progress.info_field", def.Progress.InfoField)
	v.SetDefault("progress.amber_value", def.Progress.AmberValue)
	v.SetDefault("ordering.missing_children", def.Ordering.MissingChildren)
	v.SetDefault("ordering.health", def.Ordering.Health)
	v.SetDefault("ordering.consistency", def.Ordering.Consistency)
	v.SetDefault("ordering.board_coverage", def.Ordering.BoardCoverage)
	v.SetDefault("credential.env_var", def.Credential.EnvVar)
	v.SetDefault("credential.secret_file", def.Credential.SecretFile)
	v.SetDefault("alerts.max_red", def.Alerts.MaxRed)
	v.SetDefault("alerts.max_missing_target_date", def.Alerts.MaxMissingTargetDate)
	v.SetDefault("alerts.max_data_quality", def.Alerts.MaxDataQuality)
	v.SetDefault("notifications.slack_webhook_url", def.Notifications.SlackWebhookURL)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading %s: %w", cm.describe(), err)
		}
	}

	cfg := &models.ReportConfig{
		Organization:   v.GetString("organization"),
		BaseURL:        v.GetString("base_url"),
		APIVersion:     v.GetString("api_version"),
		RequestTimeout: v.GetDuration("request_timeout"),
		RequestDelay:   v.GetDuration("request_delay"),
		ProgressEvery:  v.GetInt("progress_every"),
		Timezone:       v.GetString("timezone"),
		Parent: models.ParentConfig{
			Project:         v.GetString("parent.project"),
			WorkItemType:    v.GetString("parent.work_item_type"),
			State:           v.GetString("parent.state"),
			InProgressState: v.GetString("parent.in_progress_state"),
			Tag:             v.GetString("parent.tag"),
			EndDateField:    v.GetString("parent.end_date_field"),
		},
		Child: models.ChildConfig{
			Project:         v.GetString("child.project"),
			WorkItemType:    v.GetString("child.work_item_type"),
			AreaPath:        v.GetString("child.area_path"),
			Team:            v.GetString("child.team"),
			States:          stringList(v, "child.states"),
			InProgressState: v.GetString("child.in_progress_state"),
			InitialState:    v.GetString("child.initial_state"),
			TargetDateField: v.GetString("child.target_date_field"),
			StartDateField:  v.GetString("child.start_date_field"),
			CoverageScope:   v.GetString("child.coverage_scope"),
		},
		Progress: models.ProgressConfig{
			StatusField: v.GetString("progress.status_field"),
			InfoField:   v.GetString("progress.info_field"),
			AmberValue:  v.GetString("progress.amber_value"),
		},
		Ordering: models.OrderingConfig{
			MissingChildren: v.GetString("ordering.missing_children"),
			Health:          v.GetString("ordering.health"),
			Consistency:     v.GetString("ordering.consistency"),
			BoardCoverage:   v.GetString("ordering.board_coverage"),
		},
		Credential: models.CredentialConfig{
			EnvVar:     v.GetString("credential.env_var"),
			SecretFile: v.GetString("credential.secret_file"),
		},
		Alerts: models.AlertConfig{
			MaxRed:               v.GetInt("alerts.max_red"),
			MaxMissingTargetDate: v.GetInt("alerts.max_missing_target_date"),
			MaxDataQuality:       v.GetInt("alerts.max_data_quality"),
		},
		Notifications: models.NotificationConfig{
			SlackWebhookURL: v.GetString("notifications.slack_webhook_url"),
		},
	}

	return cfg, nil
}

// stringList reads a list setting. A plain string, as environment variables
// provide, is split on commas so "New,In Progress" keeps "In Progress" whole.
func stringList(v *viper.Viper, key string) []string {
	raw, ok := v.Get(key).(string)
	if !ok {
		return v.GetStringSlice(key)
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (cm *viperConfigManager) describe() string {
	if cm.configFile != "" {
		return cm.configFile
	}
	return filepath.Join(cm.basePath, ConfigFileName+".yaml")
}

// ValidateConfig checks the configuration for invalid values and returns one
// error listing every problem.
func (cm *viperConfigManager) ValidateConfig(cfg *models.ReportConfig) error {
	return ValidateReportConfig(cfg)
}

// ValidateReportConfig is the validation behind ConfigurationManager.ValidateConfig.
func ValidateReportConfig(cfg *models.ReportConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string
	required := []struct {
		key, val string
	}{
		{"organization", cfg.Organization},
		{"api_version", cfg.APIVersion},
		{"parent.project", cfg.Parent.Project},
		{"parent.work_item_type", cfg.Parent.WorkItemType},
		{"parent.state", cfg.Parent.State},
		{"parent.in_progress_state", cfg.Parent.InProgressState},
		{"parent.end_date_field", cfg.Parent.EndDateField},
		{"child.project", cfg.Child.Project},
		{"child.work_item_type", cfg.Child.WorkItemType},
		{"child.area_path", cfg.Child.AreaPath},
		{"child.in_progress_state", cfg.Child.InProgressState},
		{"child.target_date_field", cfg.Child.TargetDateField},
		{"progress.status_field", cfg.Progress.StatusField},
		{"progress.info_field", cfg.Progress.InfoField},
	}
	for _, r := range required {
		if strings.TrimSpace(r.val) == "" {
			errs = append(errs, r.key+" must not be empty")
		}
	}

	if u, err := url.Parse(cfg.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("base_url %q must be an absolute URL", cfg.BaseURL))
	}

	if len(cfg.Child.States) == 0 {
		errs = append(errs, "child.states must list at least one state")
	}

	if cfg.RequestTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("request_timeout must be positive, got %s", cfg.RequestTimeout))
	}

	if cfg.RequestDelay < 0 {
		errs = append(errs, fmt.Sprintf("request_delay must be non-negative, got %s", cfg.RequestDelay))
	}

	if cfg.ProgressEvery < 1 {
		errs = append(errs, fmt.Sprintf("progress_every must be at least 1, got %d", cfg.ProgressEvery))
	}

	if cfg.Child.AreaPath != "" && cfg.Child.Project != "" &&
		cfg.Child.AreaPath != cfg.Child.Project &&
		!strings.HasPrefix(cfg.Child.AreaPath, cfg.Child.Project+AreaSeparator) {
		errs = append(errs, fmt.Sprintf(
			"child.area_path %q must be inside project %q",
			cfg.Child.AreaPath, cfg.Child.Project,
		))
	}

	if cfg.Timezone != "" && !strings.EqualFold(cfg.Timezone, "local") {
		if _, err := time.LoadLocation(cfg.Timezone); err != nil {
			errs = append(errs, fmt.Sprintf("timezone %q is invalid: %v", cfg.Timezone, err))
		}
	}

	orderings := []struct {
		key, val string
	}{
		{"ordering.missing_children", cfg.Ordering.MissingChildren},
		{"ordering.health", cfg.Ordering.Health},
		{"ordering.consistency", cfg.Ordering.Consistency},
		{"ordering.board_coverage", cfg.Ordering.BoardCoverage},
	}
	for _, o := range orderings {
		if o.val == "" {
			continue
		}
		if _, err := ParseOrderingPolicy(o.val); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", o.key, err))
		}
	}

	if cfg.Child.CoverageScope != "" {
		if _, err := ParseCoverageScope(cfg.Child.CoverageScope); err != nil {
			errs = append(errs, fmt.Sprintf("child.coverage_scope: %v", err))
		}
	}

	if cfg.Alerts.MaxRed < 0 || cfg.Alerts.MaxMissingTargetDate < 0 || cfg.Alerts.MaxDataQuality < 0 {
		errs = append(errs, "alerts thresholds must be non-negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// ResolveBasePath returns the directory holding the configuration: ADOREP_HOME
// if set, else the nearest ancestor of the working directory that contains
// .adorep.yaml, else the working directory.
func ResolveBasePath() string {
	if home := os.Getenv("ADOREP_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	cwd := dir
	for {
		if _, err := os.Stat(filepath.Join(dir, ConfigFileName+".yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return cwd
}
