package cli

import (
	"go.uber.org/zap"

	"github.com/valter-silva-au/adorep/internal/core"
	"github.com/valter-silva-au/adorep/internal/observability"
	"github.com/valter-silva-au/adorep/pkg/models"
)

// WireOptions carries the root flags into Wire.
type WireOptions struct {
	BasePath   string
	ConfigFile string
	Verbose    bool
	Org        string
}

// Runtime is the wired application for one command invocation.
type Runtime struct {
	Config *models.ReportConfig
	Logger *zap.Logger
	// NewReports builds a report service against Azure DevOps. It resolves
	// the credential, so it fails with core.ErrMissingCredential when no
	// token is available. progress may be nil.
	NewReports func(progress core.ProgressFunc) (core.ReportService, error)
	Alerts     observability.AlertEngine
	// Notifier is nil when no Slack webhook is configured.
	Notifier observability.Notifier
}

// Set during app initialization in app.go.
var (
	BasePath string
	Wire     func(opts WireOptions) (*Runtime, error)
)

// rt is the runtime of the running command, set by the root command's
// PersistentPreRunE.
var rt *Runtime
