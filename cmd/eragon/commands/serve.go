package commands

import (
	"github.com/smallbiznis/eragon/internal/providers"
	"github.com/smallbiznis/eragon/internal/scheduler"
	"github.com/smallbiznis/eragon/internal/server"
	"github.com/smallbiznis/eragon/internal/sitemap"
	"github.com/smallbiznis/eragon/internal/submission"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API and, when DAILY_RESET_ENABLED is set, the daily usage reset loop.

Pending migrations are applied before the listener starts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := fx.New(
			coreModules(),
			providers.Module,
			submission.Module,
			sitemap.Module,
			scheduler.Module,
			server.Module,
			fx.StartTimeout(timeout),
		)
		app.Run()
		return app.Err()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
