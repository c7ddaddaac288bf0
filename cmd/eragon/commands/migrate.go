package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	Long: `Apply database migrations and exit.

PostgreSQL runs the embedded SQL migrations; SQLite and MySQL are auto-migrated from the models.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce(func(ctx context.Context) error {
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
