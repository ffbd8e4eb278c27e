package models

import (
	"strings"
	"time"
)

// ParentConfig describes the portfolio-side work items that own children.
type ParentConfig struct {
	Project         string `yaml:"project" mapstructure:"project"`
	WorkItemType    string `yaml:"work_item_type" mapstructure:"work_item_type"`
	State           string `yaml:"state" mapstructure:"state"`
	InProgressState string `yaml:"in_progress_state" mapstructure:"in_progress_state"`
	Tag             string `yaml:"tag" mapstructure:"tag"`
	EndDateField    string `yaml:"end_date_field" mapstructure:"end_date_field"`
}

// ChildConfig describes the delivery-side work items and the team that owns them.
type ChildConfig struct {
	Project         string   `yaml:"project" mapstructure:"project"`
	WorkItemType    string   `yaml:"work_item_type" mapstructure:"work_item_type"`
	AreaPath        string   `yaml:"area_path" mapstructure:"area_path"`
	Team            string   `yaml:"team" mapstructure:"team"`
	States          []string `yaml:"states" mapstructure:"states"`
	InProgressState string   `yaml:"in_progress_state" mapstructure:"in_progress_state"`
	InitialState    string   `yaml:"initial_state" mapstructure:"initial_state"`
	TargetDateField string   `yaml:"target_date_field" mapstructure:"target_date_field"`
	StartDateField  string   `yaml:"start_date_field" mapstructure:"start_date_field"`
	// CoverageScope decides where a child must be for board coverage:
	// "board" (the team's board areas), "area_under" or "area_equals"
	// (the child area itself).
	CoverageScope string `yaml:"coverage_scope" mapstructure:"coverage_scope"`
}

// OrderingConfig names the list ordering of each report, "id" or "source".
type OrderingConfig struct {
	MissingChildren string `yaml:"missing_children" mapstructure:"missing_children"`
	Health          string `yaml:"health" mapstructure:"health"`
	Consistency     string `yaml:"consistency" mapstructure:"consistency"`
	BoardCoverage   string `yaml:"board_coverage" mapstructure:"board_coverage"`
}

// ProgressConfig names the custom progress fields checked by the health report.
type ProgressConfig struct {
	StatusField string `yaml:"status_field" mapstructure:"status_field"`
	InfoField   string `yaml:"info_field" mapstructure:"info_field"`
	AmberValue  string `yaml:"amber_value" mapstructure:"amber_value"`
}

// CredentialConfig locates the personal access token.
type CredentialConfig struct {
	EnvVar     string `yaml:"env_var" mapstructure:"env_var"`
	SecretFile string `yaml:"secret_file" mapstructure:"secret_file"`
}

// AlertConfig holds the thresholds above which health alerts fire.
type AlertConfig struct {
	MaxRed               int `yaml:"max_red" mapstructure:"max_red"`
	MaxMissingTargetDate int `yaml:"max_missing_target_date" mapstructure:"max_missing_target_date"`
	MaxDataQuality       int `yaml:"max_data_quality" mapstructure:"max_data_quality"`
}

// NotificationConfig holds outbound notification settings.
type NotificationConfig struct {
	SlackWebhookURL string `yaml:"slack_webhook_url" mapstructure:"slack_webhook_url"`
}

// ReportConfig holds every setting the reports need, read from .adorep.yaml via Viper.
type ReportConfig struct {
	Organization   string             `yaml:"organization" mapstructure:"organization"`
	BaseURL        string             `yaml:"base_url" mapstructure:"base_url"`
	APIVersion     string             `yaml:"api_version" mapstructure:"api_version"`
	RequestTimeout time.Duration      `yaml:"request_timeout" mapstructure:"request_timeout"`
	RequestDelay   time.Duration      `yaml:"request_delay" mapstructure:"request_delay"`
	ProgressEvery  int                `yaml:"progress_every" mapstructure:"progress_every"`
	Timezone       string             `yaml:"timezone" mapstructure:"timezone"`
	Parent         ParentConfig       `yaml:"parent" mapstructure:"parent"`
	Child          ChildConfig        `yaml:"child" mapstructure:"child"`
	Progress       ProgressConfig     `yaml:"progress" mapstructure:"progress"`
	Ordering       OrderingConfig     `yaml:"ordering" mapstructure:"ordering"`
	Credential     CredentialConfig   `yaml:"credential" mapstructure:"credential"`
	Alerts         AlertConfig        `yaml:"alerts" mapstructure:"alerts"`
	Notifications  NotificationConfig `yaml:"notifications" mapstructure:"notifications"`
}

// OrgURL returns the organization root, e.g. https://dev.azure.com/eon-seed.
func (c *ReportConfig) OrgURL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/" + c.Organization
}

// Location resolves Timezone, falling back to the local zone.
func (c *ReportConfig) Location() *time.Location {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
