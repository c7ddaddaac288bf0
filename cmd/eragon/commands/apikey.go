package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	apikeydomain "github.com/smallbiznis/eragon/internal/apikey/domain"
	"github.com/spf13/cobra"
)

var (
	// Apikey flags
	keyName    string
	jsonOutput bool
)

var apikeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage admin API keys",
	Long: `Manage the API keys that authorize product and coupon writes.

Subcommands:
  create  - Issue a new key (the secret is printed once)
  list    - Show issued keys
  revoke  - Deactivate a key`,
}

var apikeyCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Issue a new admin API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		var keys apikeydomain.Service
		return runOnce(func(ctx context.Context) error {
			secret, err := keys.Create(ctx, apikeydomain.CreateRequest{Name: keyName})
			if err != nil {
				return err
			}
			if jsonOutput {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(secret)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "key_id:  %s\napi_key: %s\n", secret.KeyID, secret.APIKey)
			fmt.Fprintln(cmd.OutOrStdout(), "Store the api_key now, it cannot be shown again.")
			return nil
		}, &keys)
	},
}

var apikeyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List admin API keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		var keys apikeydomain.Service
		return runOnce(func(ctx context.Context) error {
			items, err := keys.List(ctx)
			if err != nil {
				return err
			}
			if jsonOutput {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(items)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KEY ID\tNAME\tACTIVE\tCREATED\tLAST USED")
			for _, item := range items {
				lastUsed := "-"
				if item.LastUsedAt != nil {
					lastUsed = item.LastUsedAt.UTC().Format("2006-01-02 15:04")
				}
				fmt.Fprintf(w, "%s\t%s\t%t\t%s\t%s\n",
					item.KeyID,
					item.Name,
					item.IsActive,
					item.CreatedAt.UTC().Format("2006-01-02 15:04"),
					lastUsed,
				)
			}
			return w.Flush()
		}, &keys)
	},
}

var apikeyRevokeCmd = &cobra.Command{
	Use:   "revoke <key_id>",
	Short: "Deactivate an admin API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var keys apikeydomain.Service
		return runOnce(func(ctx context.Context) error {
			keyID := strings.TrimSpace(args[0])
			if err := keys.Revoke(ctx, keyID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "revoked %s\n", keyID)
			return nil
		}, &keys)
	},
}

func init() {
	apikeyCreateCmd.Flags().StringVar(&keyName, "name", "", "Human readable key name (required)")
	_ = apikeyCreateCmd.MarkFlagRequired("name")

	apikeyCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	apikeyCmd.AddCommand(apikeyCreateCmd, apikeyListCmd, apikeyRevokeCmd)
	rootCmd.AddCommand(apikeyCmd)
}
