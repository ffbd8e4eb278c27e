// Package internal provides the App struct that wires all components of
// adorep together and initializes the CLI layer.
package internal

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/valter-silva-au/adorep/internal/cli"
	"github.com/valter-silva-au/adorep/internal/core"
	"github.com/valter-silva-au/adorep/internal/integration"
	"github.com/valter-silva-au/adorep/internal/observability"
	"github.com/valter-silva-au/adorep/pkg/models"
)

// App holds all service dependencies for adorep.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *models.ReportConfig

	Logger      *zap.Logger
	Credentials core.CredentialSource

	// Observability
	AlertEngine observability.AlertEngine
	Notifier    observability.Notifier

	// newLogger is replaced in tests.
	newLogger func(verbose bool) (*zap.Logger, error)

	tokenOnce sync.Once
	token     string
	tokenErr  error
	client    integration.ADOClient
}

// NewApp creates the App for basePath and registers it with the CLI layer.
// Configuration is loaded per command by Wire, once the root flags are known.
func NewApp(basePath string) (*App, error) {
	app := &App{
		BasePath:  basePath,
		newLogger: observability.NewLogger,
	}

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.Wire = app.Wire

	return app, nil
}

// Wire loads and validates the configuration, builds the logger and the
// observability services, and returns the CLI runtime. The credential is
// not read here; report commands resolve it on first use.
func (a *App) Wire(opts cli.WireOptions) (*cli.Runtime, error) {
	if opts.BasePath != "" {
		a.BasePath = opts.BasePath
	}
	a.ConfigMgr = core.NewConfigurationManager(a.BasePath, opts.ConfigFile)
	cfg, err := a.ConfigMgr.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if opts.Org != "" {
		cfg.Organization = opts.Org
	}
	if err := a.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	a.Config = cfg

	a.Logger, err = a.newLogger(opts.Verbose)
	if err != nil {
		return nil, err
	}
	a.Logger.Debug("configuration loaded",
		zap.String("base_path", a.BasePath),
		zap.String("org_url", cfg.OrgURL()),
		zap.String("child_area", cfg.Child.AreaPath))

	a.Credentials = core.NewCredentialSource(cfg.Credential)

	// --- Observability ---
	a.AlertEngine = observability.NewAlertEngine(cfg.Alerts)
	a.Notifier = nil
	if cfg.Notifications.SlackWebhookURL != "" {
		a.Notifier = observability.NewSlackNotifier(cfg.Notifications.SlackWebhookURL, cfg.Child.AreaPath)
	}

	return &cli.Runtime{
		Config:     cfg,
		Logger:     a.Logger,
		NewReports: a.NewReports,
		Alerts:     a.AlertEngine,
		Notifier:   a.Notifier,
	}, nil
}

// NewReports returns a report service backed by the Azure DevOps REST client.
// The token is read once; a missing token yields core.ErrMissingCredential.
func (a *App) NewReports(progress core.ProgressFunc) (core.ReportService, error) {
	if a.Config == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	client, err := a.adoClient()
	if err != nil {
		return nil, err
	}
	return core.NewReportService(core.ReportDeps{
		Source:   client,
		Config:   a.Config,
		Progress: progress,
	}, a.Logger), nil
}

func (a *App) adoClient() (integration.ADOClient, error) {
	a.tokenOnce.Do(func() {
		a.token, a.tokenErr = a.Credentials.Token()
		if a.tokenErr != nil {
			return
		}
		a.client = integration.NewADOClient(integration.ADOClientConfig{
			OrgURL:     a.Config.OrgURL(),
			APIVersion: a.Config.APIVersion,
			Token:      a.token,
			Timeout:    a.Config.RequestTimeout,
			Logger:     a.Logger,
		})
	})
	return a.client, a.tokenErr
}

// Close flushes the logger. It is safe to call on an App that was never wired.
func (a *App) Close() error {
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return nil
}

// ResolveBasePath determines the directory holding .adorep.yaml.
func ResolveBasePath() string {
	return core.ResolveBasePath()
}
