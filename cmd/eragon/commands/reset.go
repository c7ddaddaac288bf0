package commands

import (
	"context"
	"fmt"

	coupondomain "github.com/smallbiznis/eragon/internal/coupon/domain"
	"github.com/spf13/cobra"
)

var resetDailyUsageCmd = &cobra.Command{
	Use:   "reset-daily-usage",
	Short: "Set used_today to zero on every coupon",
	Long: `Set used_today to zero on every coupon regardless of its last reset date.

Intended for a daily cron entry; the per-request lazy reset makes it optional.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var coupons coupondomain.Service
		return runOnce(func(ctx context.Context) error {
			affected, err := coupons.ResetDailyUsage(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully reset used_today for %d coupons\n", affected)
			return nil
		}, &coupons)
	},
}

func init() {
	rootCmd.AddCommand(resetDailyUsageCmd)
}
