package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/eragon/internal/apikey"
	"github.com/smallbiznis/eragon/internal/cache"
	"github.com/smallbiznis/eragon/internal/clock"
	"github.com/smallbiznis/eragon/internal/config"
	"github.com/smallbiznis/eragon/internal/coupon"
	"github.com/smallbiznis/eragon/internal/invalidation"
	"github.com/smallbiznis/eragon/internal/legacycoupon"
	"github.com/smallbiznis/eragon/internal/migration"
	"github.com/smallbiznis/eragon/internal/observability"
	"github.com/smallbiznis/eragon/internal/product"
	"github.com/smallbiznis/eragon/internal/ratelimit"
	"github.com/smallbiznis/eragon/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var (
	// Global flags
	nodeID  int64
	timeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "eragon",
	Short: "Eragon coupon and catalog backend",
	Long: `Eragon serves store listings, affiliate coupons and their usage counters.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Int64Var(&nodeID, "node", 1, "Snowflake node id, unique per running instance")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Startup and one-shot command timeout")
}

// coreModules is the dependency graph shared by the server and the one-shot commands.
func coreModules() fx.Option {
	return fx.Options(
		config.Module,
		observability.Module,
		fx.Provide(newSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		cache.Module,
		invalidation.Module,
		product.Module,
		coupon.Module,
		legacycoupon.Module,
		apikey.Module,
		ratelimit.Module,
	)
}

func newSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(nodeID)
}

// runOnce starts the core graph, runs fn against the populated targets and stops the app.
func runOnce(fn func(ctx context.Context) error, targets ...interface{}) error {
	app := fx.New(
		coreModules(),
		fx.Populate(targets...),
		fx.NopLogger,
		fx.StartTimeout(timeout),
	)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return err
	}
	runErr := fn(ctx)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil && runErr == nil {
		return err
	}
	return runErr
}
