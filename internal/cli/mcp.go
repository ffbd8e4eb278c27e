package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/adorep/internal/core"
	adomcp "github.com/valter-silva-au/adorep/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the adorep MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the adorep MCP server on stdio",
	Long: `Start the adorep MCP server on stdio transport.

The server exposes the reports as MCP tools that AI assistants can call:
health_report, missing_children, parent_consistency, board_coverage,
classify_target_date, build_child_patch.

The credential is resolved when a report tool is first called, so the
offline tools work without one.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if rt == nil || rt.NewReports == nil {
			return fmt.Errorf("report service not initialized")
		}

		var (
			mu      sync.Mutex
			reports core.ReportService
		)
		srv := adomcp.NewServer(adomcp.Options{
			Reports: func() (core.ReportService, error) {
				mu.Lock()
				defer mu.Unlock()
				if reports != nil {
					return reports, nil
				}
				svc, err := rt.NewReports(nil)
				if err != nil {
					return nil, err
				}
				reports = svc
				return svc, nil
			},
			Alerts:  rt.Alerts,
			Config:  rt.Config,
			Version: appVersion,
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
